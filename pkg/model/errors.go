package model

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration    = errors.New("invalid configuration")
	ErrNumericIntegrity = errors.New("solver value is not integral")
)

// ConfigurationError reports inputs rejected before any solve attempt
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return ErrConfiguration.Error()
	}
	return fmt.Sprintf("%s: %s", ErrConfiguration.Error(), e.Msg)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

func configurationErrorf(format string, args ...any) error {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

// MissingPreferenceError names the (agent, period) or (agent, task) pair without a utility
type MissingPreferenceError struct {
	Agent  Agent
	Period Period // Empty for task preferences
	Task   Task   // Empty for period preferences
}

func (e *MissingPreferenceError) Error() string {
	if e == nil {
		return ""
	}
	if e.Task != "" {
		return fmt.Sprintf("%s: missing preference of agent \"%v\" for task \"%v\"", ErrConfiguration.Error(), e.Agent, e.Task)
	}
	return fmt.Sprintf("%s: missing preference of agent \"%v\" for period \"%v\"", ErrConfiguration.Error(), e.Agent, e.Period)
}

func (e *MissingPreferenceError) Unwrap() error { return ErrConfiguration }

// NumericIntegrityError reports a solver value too far from any integer, or a count outside [0, total of its task]
type NumericIntegrityError struct {
	Key   AssignmentKey
	Value float64
}

func (e *NumericIntegrityError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %v has value %v", ErrNumericIntegrity.Error(), e.Key, e.Value)
}

func (e *NumericIntegrityError) Unwrap() error { return ErrNumericIntegrity }
