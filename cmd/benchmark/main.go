package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	log "github.com/golang/glog"
	"github.com/limaJavier/courseload/pkg/model"
	"github.com/samber/lo"
)

const (
	executablePath         = "../../bin/courseload"
	testDirectory          = "../../testdata/"
	timeLimit              = "5m"
	MB             float32 = 1024
)

type SolverType int

const (
	bnb SolverType = iota
	cbc
	glpk
)

type ResultType int

const (
	solved ResultType = iota
	noSolution
	unverified
)

var (
	solverTypes = map[SolverType]string{
		bnb:  "bnb",
		cbc:  "cbc",
		glpk: "glpk",
	}
	resultTypes = map[ResultType]string{
		solved:     "solved",
		noSolution: "no-solution",
		unverified: "unverified",
	}
)

type TestMetadata struct {
	Name        string
	Professors  int
	Courses     int
	Semesters   int
	Variables   int
	Constraints int
}

type BenchmarkResult struct {
	Solver        SolverType
	Test          TestMetadata
	Duration      int64
	Memory        float32
	CpuPercentage int64
	Result        ResultType
}

func main() {
	tests := getTests()
	solvers := getSolvers()
	results := make([]BenchmarkResult, 0, len(tests)*len(solvers))

	for _, test := range tests {
		for _, solver := range solvers {
			fmt.Printf("Benchmarking test \"%v\" with solver \"%v\"\n", test.Name, solverTypes[solver])

			duration, maxMemory, cpuPercentage, result := measure(solver, test.Name)

			results = append(results, BenchmarkResult{
				Solver:        solver,
				Test:          test,
				Duration:      duration,
				Memory:        maxMemory,
				CpuPercentage: cpuPercentage,
				Result:        result,
			})
		}
	}

	toCsv(results)
}

func getTests() []TestMetadata {
	testFiles, err := os.ReadDir(testDirectory)
	if err != nil {
		log.Exitf("cannot read directory: %v", err)
	}

	tests := make([]TestMetadata, 0, len(testFiles))
	for _, file := range testFiles {
		filename := filepath.Join(testDirectory, file.Name())
		input, err := model.InputFromFile(filename)
		if err != nil {
			log.Exitf("cannot parse input file: %v", err)
		}
		problem, err := model.Build(input.Registry, input.Preferences, input.Rules)
		if err != nil {
			log.Exitf("cannot build model of \"%v\": %v", filename, err)
		}

		tests = append(tests, TestMetadata{
			Name:        filename,
			Professors:  len(input.Registry.Agents()),
			Courses:     len(input.Registry.Tasks()),
			Semesters:   len(input.Registry.Periods()),
			Variables:   len(problem.Model.Variables),
			Constraints: len(problem.Model.Constraints),
		})
	}

	return tests
}

// getSolvers returns the built-in solver plus every external solver found in the PATH
func getSolvers() []SolverType {
	executables := map[SolverType]string{cbc: "cbc", glpk: "glpsol"}
	return lo.Filter([]SolverType{bnb, cbc, glpk}, func(solver SolverType, _ int) bool {
		executable, external := executables[solver]
		if !external {
			return true
		}
		if _, err := exec.LookPath(executable); err != nil {
			log.Warningf("skipping solver \"%v\": %v", solverTypes[solver], err)
			return false
		}
		return true
	})
}

func measure(solver SolverType, testFile string) (duration int64, maxMemory float32, cpuPercentage int64, result ResultType) {
	cmd := exec.Command("/usr/bin/time", "-v", executablePath, "solve", "--solver", solverTypes[solver], "--time-limit", timeLimit, "--file", testFile, "--out", os.DevNull)

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stdErr bytes.Buffer
	cmd.Stderr = &stdErr

	cmd.Run()
	switch cmd.ProcessState.ExitCode() {
	case 10:
		result = solved
	case 15:
		result = unverified
	case 20:
		result = noSolution
	default:
		log.Exitf("an error occurred during the execution of \"courseload\" at test \"%v\" using solver \"%v\": %v\n", testFile, solverTypes[solver], stdErr.String())
	}
	splits := strings.Split(stdErr.String(), "\n")
	getLine := func(substr string) string {
		line, ok := lo.Find(splits, func(line string) bool {
			return strings.Contains(strings.ToLower(line), substr)
		})
		if !ok {
			log.Exitf("Substring \"%v\" could not be found", substr)
		}
		return line
	}

	duration = parseDurationLine(getLine("wall clock"))
	maxMemory = parseMemoryLine(getLine("maximum resident set size"))
	cpuPercentage = parseCpuPercentageLine(getLine("percent of cpu"))

	return duration, maxMemory, cpuPercentage, result
}

func toCsv(results []BenchmarkResult) {
	file, err := os.Create("benchmark_results.csv")
	if err != nil {
		log.Exitf("cannot create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"Solver", "Test", "Professors", "Courses", "Semesters", "Variables", "Constraints", "Duration(ms)", "Memory(MB)", "CPU(%)", "Result"}
	if err := writer.Write(header); err != nil {
		log.Exitf("cannot write CSV header: %v", err)
	}

	for _, result := range results {
		record := []string{
			solverTypes[result.Solver],
			result.Test.Name,
			fmt.Sprintf("%d", result.Test.Professors),
			fmt.Sprintf("%d", result.Test.Courses),
			fmt.Sprintf("%d", result.Test.Semesters),
			fmt.Sprintf("%d", result.Test.Variables),
			fmt.Sprintf("%d", result.Test.Constraints),
			fmt.Sprintf("%d", result.Duration),
			fmt.Sprintf("%.1f", result.Memory),
			fmt.Sprintf("%d", result.CpuPercentage),
			resultTypes[result.Result],
		}
		if err := writer.Write(record); err != nil {
			log.Exitf("cannot write CSV record: %v", err)
		}
	}
}

func parseDurationLine(line string) int64 {
	durationStr := strings.Split(line, "(h:mm:ss or m:ss):")[1][1:]
	return parseDuration(durationStr)
}

func parseDuration(durationStr string) int64 {
	parts := strings.Split(durationStr, ":")
	secondsStr := parts[len(parts)-1]
	secondsParts := strings.Split(secondsStr, ".")

	var duration int64
	if len(parts) == 3 { // h:mm:ss
		hours := lo.Must(strconv.Atoi(parts[0]))
		minutes := lo.Must(strconv.Atoi(parts[1]))
		seconds := lo.Must(strconv.Atoi(secondsParts[0]))
		hundredthOfSeconds := lo.Must(strconv.Atoi(secondsParts[1]))
		duration = int64(hours*3600+minutes*60+seconds)*1000 + int64(hundredthOfSeconds*10)
	} else if len(parts) == 2 { // m:ss
		minutes := lo.Must(strconv.Atoi(parts[0]))
		seconds := lo.Must(strconv.Atoi(secondsParts[0]))
		hundredthOfSeconds := lo.Must(strconv.Atoi(secondsParts[1]))
		duration = int64(minutes*60+seconds)*1000 + int64(hundredthOfSeconds*10)
	} else {
		log.Exitf("unexpected duration format: %v", durationStr)
	}
	return duration
}

// parseMemoryLine converts the maximum resident set size from kilobytes to megabytes
func parseMemoryLine(line string) float32 {
	memoryStr := strings.Split(line, ":")[1][1:]
	return float32(lo.Must(strconv.ParseFloat(memoryStr, 32))) / MB
}

func parseCpuPercentageLine(line string) int64 {
	percentageStr := strings.Split(line, ":")[1][1:]
	percentageStr = percentageStr[:len(percentageStr)-1]
	return int64(lo.Must(strconv.Atoi(percentageStr)))
}
