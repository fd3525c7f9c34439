package sat

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

// ConfigPath locates the json file mapping solver keys (e.g. "kissatPath") to executables
var ConfigPath = defaultConfigPath()

func defaultConfigPath() string {
	executable, err := os.Executable()
	if err != nil {
		return "config.json"
	}
	return filepath.Join(filepath.Dir(executable), "config.json")
}

func parseSolution(solverOutput string) (SATSolution, error) {
	fields := lo.FlatMap(
		lo.Filter(strings.Split(solverOutput, "\n"), func(line string, _ int) bool {
			return len(line) > 0 && line[0] == 'v'
		}),
		func(line string, _ int) []string {
			return strings.Fields(line[1:])
		},
	)

	solution := make(SATSolution, 0, len(fields))
	for _, field := range fields {
		value, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid literal in solver output: %w", err)
		}
		// Zero terminates the assignment
		if value == 0 {
			break
		}
		solution = append(solution, value)
	}
	return solution, nil
}

// ExecutablePath reads the executable configured under key in ConfigPath
func ExecutablePath(key string) (string, error) {
	bytes, err := os.ReadFile(ConfigPath)
	if err != nil {
		return "", fmt.Errorf("cannot read solver config: %w", err)
	}
	var configJson map[string]any
	if err := json.Unmarshal(bytes, &configJson); err != nil {
		return "", fmt.Errorf("cannot parse solver config %v: %w", ConfigPath, err)
	}

	// Other tools share the file, so non-string entries are tolerated
	var config map[string]string
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{WeaklyTypedInput: true, Result: &config})
	if err != nil {
		return "", err
	}
	if err := decoder.Decode(configJson); err != nil {
		return "", fmt.Errorf("cannot decode solver config %v: %w", ConfigPath, err)
	}

	path, ok := config[key]
	if !ok || path == "" {
		return "", fmt.Errorf("solver \"%v\" is not present in config", key)
	}
	return path, nil
}
