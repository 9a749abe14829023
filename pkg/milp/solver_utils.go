package milp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	log "github.com/golang/glog"
	"github.com/mitchellh/mapstructure"
)

// ConfigPath points to a JSON object mapping solver keys (e.g. "cbcPath") to executables
var ConfigPath = "../../config.json"

// getExecutablePath resolves a solver executable from the config file, falling back to the
// given binary name looked up in the PATH
func getExecutablePath(solver string, fallback string) (string, error) {
	content, err := os.ReadFile(ConfigPath)
	if err == nil {
		var inputJson map[string]any
		if err := json.Unmarshal(content, &inputJson); err != nil {
			return "", fmt.Errorf("cannot read solver config \"%v\": %w", ConfigPath, err)
		}

		var config map[string]string
		if err := mapstructure.Decode(inputJson, &config); err != nil {
			return "", fmt.Errorf("cannot decode solver config \"%v\": %w", ConfigPath, err)
		}

		if path, ok := config[solver]; ok && path != "" {
			return path, nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("cannot open solver config \"%v\": %w", ConfigPath, err)
	}

	path, err := exec.LookPath(fallback)
	if err != nil {
		return "", fmt.Errorf("solver \"%v\" is not present in config and \"%v\" is not in PATH: %w", solver, fallback, err)
	}
	return path, nil
}

// run executes a solver command. Its standard output is captured and also routed to the progress writer.
func run(path string, args []string, progress io.Writer) (stdout string, stderr string, err error) {
	cmd := exec.Command(path, args...)
	log.V(2).Infof("running %v", cmd.String())

	var stdOut bytes.Buffer
	cmd.Stdout = io.MultiWriter(&stdOut, progress)
	var stdErr bytes.Buffer
	cmd.Stderr = &stdErr

	err = cmd.Run()
	return stdOut.String(), stdErr.String(), err
}

// writeTempModel writes the LP text of the model into a temporary file and returns its name
func writeTempModel(model *Model) (string, error) {
	inputTempFile, err := os.CreateTemp("", "model-*.lp")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %v", err)
	}

	if _, err := inputTempFile.WriteString(model.ToLP()); err != nil {
		inputTempFile.Close()
		os.Remove(inputTempFile.Name())
		return "", fmt.Errorf("failed to write LP to temporary file: %v", err)
	}
	if err := inputTempFile.Close(); err != nil {
		os.Remove(inputTempFile.Name())
		return "", fmt.Errorf("failed to close temporary file: %v", err)
	}
	return inputTempFile.Name(), nil
}

// reserveTempFile creates an empty temporary file for the solver to overwrite
func reserveTempFile(pattern string) (string, error) {
	outputTempFile, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %v", err)
	}
	if err := outputTempFile.Close(); err != nil {
		os.Remove(outputTempFile.Name())
		return "", fmt.Errorf("failed to close temporary file: %v", err)
	}
	return outputTempFile.Name(), nil
}

// solutionFromValues builds a solution and recomputes its objective from the values
func solutionFromValues(model *Model, status Status, values []float64) Solution {
	return Solution{
		Status:    status,
		Objective: evaluateFloat(model.Objective, values),
		Values:    values,
	}
}
