package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDirectory = "../../../pkg/model/testdata/"

func run(t *testing.T, args ...string) (code int, stdout string, err error) {
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	// An absent config file keeps the defaults
	root.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "config.json")))

	err = root.Execute()
	return exitCode, out.String(), err
}

func TestSolve(t *testing.T) {
	t.Run("Table output", func(t *testing.T) {
		//** Act
		code, stdout, err := run(t, "solve", "--file", testDirectory+"satisfiable/restricted.yaml")

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, exitSolved, code)
		assert.Contains(t, stdout, "SLOT")
		assert.Contains(t, stdout, "Networks")
	})

	t.Run("Json output with every strategy", func(t *testing.T) {
		for _, args := range [][]string{
			{"--strategy", "backtracking"},
			{"--strategy", "backtracking", "--ordering", "degree", "--forward-checking", "--global-distinct"},
			{"--strategy", "sat", "--solver", "gini"},
		} {
			code, stdout, err := run(t, append([]string{"solve", "--file", testDirectory + "satisfiable/semester.json", "--format", "json"}, args...)...)

			require.NoError(t, err, args)
			assert.Equal(t, exitSolved, code, args)

			var assignments map[string]map[string]string
			require.NoError(t, json.Unmarshal([]byte(stdout), &assignments))
			assert.Len(t, assignments, 8)
			assert.Len(t, assignments["Reseaux2"], 3)
			assert.Contains(t, assignments["Securite"], "lecture")
			assert.Contains(t, assignments["Securite"], "tutorial")
		}
	})

	t.Run("Output file", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "timetable.json")

		code, stdout, err := run(t, "solve", "-f", testDirectory+"satisfiable/restricted.yaml", "--format", "json", "-o", out)

		require.NoError(t, err)
		assert.Equal(t, exitSolved, code)
		assert.Empty(t, stdout)
		content, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Contains(t, string(content), "Compilers")
	})

	t.Run("No solution", func(t *testing.T) {
		code, _, err := run(t, "solve", "--file", testDirectory+"unsatisfiable/crowded.json")

		require.NoError(t, err)
		assert.Equal(t, exitNoSolution, code)
	})

	t.Run("Budget exhausted", func(t *testing.T) {
		code, _, err := run(t, "solve", "--file", testDirectory+"unsatisfiable/crowded.json", "--max-nodes", "3")

		require.NoError(t, err)
		assert.Equal(t, exitInconclusive, code)
	})

	t.Run("Invalid request", func(t *testing.T) {
		_, _, err := run(t, "solve", "--file", testDirectory+"invalid/unknown_day.json")
		assert.Error(t, err)
	})

	t.Run("Zero timeout disables the budget", func(t *testing.T) {
		for _, timeout := range []string{"0", "0s", "0ms"} {
			code, _, err := run(t, "solve", "--file", testDirectory+"satisfiable/restricted.yaml", "--timeout", timeout)

			require.NoError(t, err, timeout)
			assert.Equal(t, exitSolved, code, timeout)
		}
	})

	t.Run("Invalid flags", func(t *testing.T) {
		for _, args := range [][]string{
			{"--strategy", "annealing"},
			{"--solver", "minisat"},
			{"--ordering", "random"},
			{"--format", "xml"},
			{"--timeout", "soon"},
			{"--soft-weight", "0"},
		} {
			_, _, err := run(t, append([]string{"solve", "--file", testDirectory + "satisfiable/restricted.yaml"}, args...)...)
			assert.Error(t, err, args)
		}
	})

	t.Run("Missing file flag", func(t *testing.T) {
		_, _, err := run(t, "solve")
		assert.Error(t, err)
	})
}

func TestSlots(t *testing.T) {
	t.Run("Default week", func(t *testing.T) {
		_, stdout, err := run(t, "slots")

		require.NoError(t, err)
		assert.Contains(t, stdout, "Sun: Sun_1 Sun_2 Sun_3 Sun_4 Sun_5\n")
		assert.Contains(t, stdout, "Tue: Tue_1 Tue_2 Tue_3\n")
	})

	t.Run("Week of a request", func(t *testing.T) {
		_, stdout, err := run(t, "slots", "--file", testDirectory+"satisfiable/restricted.yaml")

		require.NoError(t, err)
		assert.Equal(t, "Sat: Sat_1 Sat_2\nMon: Mon_1 Mon_2 Mon_3 Mon_4\nWed: Wed_1 Wed_2 Wed_3 Wed_4\nThu: Thu_1 Thu_2\n", stdout)
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("Missing file", func(t *testing.T) {
		config, err := loadConfig(filepath.Join(t.TempDir(), "config.json"))

		require.NoError(t, err)
		assert.Equal(t, defaultConfig(), config)
	})

	t.Run("Overrides", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"strategy": "sat", "maxNodes": 500, "forwardChecking": "true", "kissatPath": "/usr/bin/kissat"}`), 0o644))

		config, err := loadConfig(path)

		require.NoError(t, err)
		assert.Equal(t, "sat", config.Strategy)
		assert.Equal(t, "gini", config.Solver)
		assert.Equal(t, uint64(500), config.MaxNodes)
		assert.True(t, config.ForwardChecking)
	})

	t.Run("Malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"strategy": `), 0o644))

		_, err := loadConfig(path)
		assert.Error(t, err)
	})
}
