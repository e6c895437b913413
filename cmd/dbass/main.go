// Package main provides the dbass command-line tool.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// app holds state shared by all subcommands.
type app struct {
	logger *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(ExitError)
	}
	os.Exit(ExitSuccess)
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "dbass",
		Short: "Derive alleles and classify splice events in DBASS exports",
		Long: `dbass processes tab-separated DBASS records whose NucleotideSequence column
carries in-line variant annotations such as AC(T>G)gt, AC(TTA)gt or AC[TTA]gt.`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(cfgFile); err != nil {
				return err
			}
			a.logger = newLogger(cmd.ErrOrStderr(), viper.GetBool("verbose"))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default: ~/.dbass.yaml)")
	flags.BoolP("verbose", "v", false, "Enable debug logging")
	flags.Int("workers", 0, "Number of concurrent workers (0: one per CPU)")
	viper.BindPFlag("verbose", flags.Lookup("verbose"))
	viper.BindPFlag("workers", flags.Lookup("workers"))

	cmd.AddCommand(newDeriveCmd(a))
	cmd.AddCommand(newLabelCmd(a))
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dbass version %s (%s) built %s\n", version, commit, date)
		},
	}
}

// initConfig reads ~/.dbass.yaml (or the given file) and DBASS_* environment
// variables. A missing default config file is not an error.
func initConfig(cfgFile string) error {
	viper.SetDefault("workers", 0)
	viper.SetDefault("verbose", false)
	viper.SetEnvPrefix("DBASS")
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".dbass")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	for _, key := range knownKeys() {
		if _, err := configKeys[key].parse(viper.GetString(key)); err != nil {
			return fmt.Errorf("config %s: %w", key, err)
		}
	}
	return nil
}

// newLogger builds a console logger writing to w.
func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(zapcore.AddSync(w)),
		level,
	)
	return zap.New(core)
}

// openOutput returns the writer for path, or stdout when path is empty or "-".
// The returned close function must be called when writing is done.
func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, f.Close, nil
}

// inputArg returns the input path argument, defaulting to stdin.
func inputArg(args []string) string {
	if len(args) == 0 {
		return "-"
	}
	return args[0]
}
