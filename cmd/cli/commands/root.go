package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	exitSolved       = 10
	exitNoSolution   = 20
	exitInconclusive = 30
	exitUnverified   = 15
)

var (
	configFile string
	logLevel   string

	config Config
	logger *zap.Logger

	exitCode int
)

// Execute runs the command line and returns the process exit code
func Execute() (int, error) {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		return 1, err
	}
	return exitCode, nil
}

func newRootCmd() *cobra.Command {
	exitCode = 0

	root := &cobra.Command{
		Use:          "sessiontable",
		Short:        "Weekly session timetabler",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile == "" {
				configFile = configPath()
			}
			loaded, err := loadConfig(configFile)
			if err != nil {
				return err
			}
			config = loaded
			if cmd.Flags().Changed("log-level") {
				config.LogLevel = logLevel
			}

			logger, err = newLogger(config.LogLevel)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (default config.json next to the executable)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn or error")

	root.AddCommand(solveCmd(), slotsCmd())
	return root
}

func newLogger(level string) (*zap.Logger, error) {
	atomicLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}

	loggerConfig := zap.NewProductionConfig()
	if atomicLevel.Level() == zap.DebugLevel {
		loggerConfig = zap.NewDevelopmentConfig()
	}
	loggerConfig.Level = atomicLevel
	return loggerConfig.Build()
}
