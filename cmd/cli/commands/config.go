package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/limaJavier/sessiontable/pkg/sat"
	"github.com/mitchellh/mapstructure"
)

// Config holds the defaults read from config.json, flags given on the command line override them
type Config struct {
	Strategy        string `mapstructure:"strategy"`
	Solver          string `mapstructure:"solver"`
	Ordering        string `mapstructure:"ordering"`
	Timeout         string `mapstructure:"timeout"`
	MaxNodes        uint64 `mapstructure:"maxNodes"`
	ForwardChecking bool   `mapstructure:"forwardChecking"`
	LogLevel        string `mapstructure:"logLevel"`
}

func defaultConfig() Config {
	return Config{
		Strategy: "backtracking",
		Solver:   "gini",
		Ordering: "registration",
		Timeout:  "1m",
		LogLevel: "warn",
	}
}

// configPath returns config.json next to the executable
func configPath() string {
	executable, err := os.Executable()
	if err != nil {
		return "config.json"
	}
	return filepath.Join(filepath.Dir(executable), "config.json")
}

// loadConfig overlays the file at path on the defaults; a missing file leaves them untouched
func loadConfig(path string) (Config, error) {
	config := defaultConfig()

	bytes, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config, nil
	} else if err != nil {
		return Config{}, fmt.Errorf("cannot read config: %w", err)
	}

	var configJson map[string]any
	if err := json.Unmarshal(bytes, &configJson); err != nil {
		return Config{}, fmt.Errorf("cannot parse config %v: %w", path, err)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &config,
	})
	if err != nil {
		return Config{}, err
	}
	if err := decoder.Decode(configJson); err != nil {
		return Config{}, fmt.Errorf("cannot decode config %v: %w", path, err)
	}

	// The solver layer resolves executables from the same file
	sat.ConfigPath = path
	return config, nil
}
