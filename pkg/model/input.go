package model

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

type RawRules struct {
	SectionsPerCourse  float64            `mapstructure:"sectionsPerCourse"`
	MinimumPerSemester float64            `mapstructure:"minimumPerSemester"`
	LoadPerProfessor   float64            `mapstructure:"loadPerProfessor"`
	CourseSections     map[string]float64 `mapstructure:"courseSections"`
	MinimumSections    map[string]float64 `mapstructure:"minimumSections"`
	ProfessorLoads     map[string]float64 `mapstructure:"professorLoads"`
}

// RawInput mirrors the input file. Numbers are decoded as floats so that non-integral values are
// rejected instead of truncated.
type RawInput struct {
	Name                string                        `mapstructure:"name"`
	Professors          []string                      `mapstructure:"professors"`
	Courses             []string                      `mapstructure:"courses"`
	Semesters           []string                      `mapstructure:"semesters"`
	SemesterPreferences map[string]map[string]float64 `mapstructure:"semesterPreferences"`
	CoursePreferences   map[string]map[string]float64 `mapstructure:"coursePreferences"`
	Rules               RawRules                      `mapstructure:"rules"`
}

// Input is a validated configuration. It is shared read-only between allocations.
type Input struct {
	Name        string
	Registry    *Registry
	Preferences *Preferences
	Rules       Rules
}

// WithRules returns a copy of the input with other rule parameters, for what-if scenarios
func (input Input) WithRules(rules Rules) Input {
	input.Rules = rules
	return input
}

// InputFromFile reads a YAML (.yaml, .yml) or JSON (.json) input file
func InputFromFile(file string) (Input, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return Input{}, fmt.Errorf("cannot read input file: %w", err)
	}

	var inputMap map[string]any
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(content, &inputMap)
	case ".json":
		err = json.Unmarshal(content, &inputMap)
	default:
		return Input{}, fmt.Errorf("unsupported input file extension \"%v\": expected .yaml, .yml or .json", filepath.Ext(file))
	}
	if err != nil {
		return Input{}, fmt.Errorf("cannot parse input file \"%v\": %w", file, err)
	}

	var rawInput RawInput
	var metadata mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &rawInput,
		Metadata:    &metadata,
		ErrorUnused: true, // Misspelled keys must not silently fall back to defaults
	})
	if err != nil {
		return Input{}, err
	}
	if err := decoder.Decode(inputMap); err != nil {
		return Input{}, &ConfigurationError{Msg: err.Error()}
	}
	if missing := missingKeys(metadata.Unset); len(missing) > 0 {
		return Input{}, configurationErrorf("missing required keys: %v", strings.Join(missing, ", "))
	}
	return ProcessRawInput(rawInput)
}

// Every key but the name and the rule overrides; a zero value is never assumed for them
var requiredKeys = []string{
	"professors",
	"courses",
	"semesters",
	"semesterPreferences",
	"coursePreferences",
	"rules.sectionsPerCourse",
	"rules.minimumPerSemester",
	"rules.loadPerProfessor",
}

// missingKeys returns the required keys left unset by the decoder. A missing section ("rules") leaves
// every key below it unset.
func missingKeys(unset []string) []string {
	return lo.Filter(requiredKeys, func(key string, _ int) bool {
		return lo.SomeBy(unset, func(unsetKey string) bool {
			return key == unsetKey || strings.HasPrefix(key, unsetKey+".")
		})
	})
}

func ProcessRawInput(rawInput RawInput) (Input, error) {
	registry, err := NewRegistry(
		lo.Map(rawInput.Professors, func(name string, _ int) Agent { return Agent(name) }),
		lo.Map(rawInput.Courses, func(name string, _ int) Task { return Task(name) }),
		lo.Map(rawInput.Semesters, func(name string, _ int) Period { return Period(name) }),
	)
	if err != nil {
		return Input{}, err
	}

	//** Preferences
	periodUtilities := make(map[Agent]map[Period]int64, len(rawInput.SemesterPreferences))
	for professor, utilities := range rawInput.SemesterPreferences {
		periodUtilities[Agent(professor)] = make(map[Period]int64, len(utilities))
		for semester, utility := range utilities {
			value, err := integral(utility, "preference of \"%v\" for \"%v\"", professor, semester)
			if err != nil {
				return Input{}, err
			}
			periodUtilities[Agent(professor)][Period(semester)] = value
		}
	}
	taskUtilities := make(map[Agent]map[Task]int64, len(rawInput.CoursePreferences))
	for professor, utilities := range rawInput.CoursePreferences {
		taskUtilities[Agent(professor)] = make(map[Task]int64, len(utilities))
		for course, utility := range utilities {
			value, err := integral(utility, "preference of \"%v\" for \"%v\"", professor, course)
			if err != nil {
				return Input{}, err
			}
			taskUtilities[Agent(professor)][Task(course)] = value
		}
	}
	preferences, err := NewPreferences(registry, periodUtilities, taskUtilities)
	if err != nil {
		return Input{}, err
	}

	//** Rules
	rules, err := processRawRules(rawInput.Rules)
	if err != nil {
		return Input{}, err
	}
	if err := rules.Validate(registry); err != nil {
		return Input{}, err
	}

	return Input{
		Name:        lo.Ternary(rawInput.Name != "", rawInput.Name, defaultModelName),
		Registry:    registry,
		Preferences: preferences,
		Rules:       rules,
	}, nil
}

func processRawRules(rawRules RawRules) (Rules, error) {
	var rules Rules
	var err error
	if rules.TotalPerTask, err = integral(rawRules.SectionsPerCourse, "sectionsPerCourse"); err != nil {
		return Rules{}, err
	}
	if rules.MinimumPerTaskPeriod, err = integral(rawRules.MinimumPerSemester, "minimumPerSemester"); err != nil {
		return Rules{}, err
	}
	if rules.LoadPerAgent, err = integral(rawRules.LoadPerProfessor, "loadPerProfessor"); err != nil {
		return Rules{}, err
	}
	if rules.TaskTotals, err = integralOverrides[Task](rawRules.CourseSections, "courseSections"); err != nil {
		return Rules{}, err
	}
	if rules.TaskMinimums, err = integralOverrides[Task](rawRules.MinimumSections, "minimumSections"); err != nil {
		return Rules{}, err
	}
	if rules.AgentLoads, err = integralOverrides[Agent](rawRules.ProfessorLoads, "professorLoads"); err != nil {
		return Rules{}, err
	}
	return rules, nil
}

func integralOverrides[T ~string](overrides map[string]float64, what string) (map[T]int64, error) {
	result := make(map[T]int64, len(overrides))
	for name, value := range overrides {
		integer, err := integral(value, "%v of \"%v\"", what, name)
		if err != nil {
			return nil, err
		}
		result[T(name)] = integer
	}
	return result, nil
}

func integral(value float64, format string, args ...any) (int64, error) {
	if value != math.Trunc(value) {
		return 0, configurationErrorf("%v must be an integer: %v", fmt.Sprintf(format, args...), value)
	}
	if math.Abs(value) > float64(MaxMagnitude) {
		return 0, configurationErrorf("%v must not exceed %v in magnitude: %v", fmt.Sprintf(format, args...), MaxMagnitude, value)
	}
	return int64(value), nil
}
