package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// configKey describes a setting that can be stored in ~/.dbass.yaml.
type configKey struct {
	help  string
	parse func(string) (any, error)
}

var configKeys = map[string]configKey{
	"workers": {help: "concurrent workers, 0 for one per CPU", parse: parseWorkers},
	"verbose": {help: "debug logging (true/false)", parse: parseSwitch},
}

func parseWorkers(s string) (any, error) {
	n, err := cast.ToIntE(s)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("workers must be a non-negative integer, got %q", s)
	}
	return n, nil
}

func parseSwitch(s string) (any, error) {
	switch strings.ToLower(s) {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	b, err := cast.ToBoolE(s)
	if err != nil {
		return nil, fmt.Errorf("expected true or false, got %q", s)
	}
	return b, nil
}

func lookupConfigKey(key string) (configKey, error) {
	k, ok := configKeys[key]
	if !ok {
		return configKey{}, fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(knownKeys(), ", "))
	}
	return k, nil
}

func knownKeys() []string {
	keys := make([]string, 0, len(configKeys))
	for k := range configKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func newConfigCmd() *cobra.Command {
	var b strings.Builder
	for _, k := range knownKeys() {
		fmt.Fprintf(&b, "\n  %-8s %s", k, configKeys[k].help)
	}

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage dbass configuration",
		Long:  "Show, get, or set configuration values. Config is stored in ~/.dbass.yaml.\n\nKeys:" + b.String(),
		Example: `  dbass config                  # show all config
  dbass config set workers 4    # use four workers
  dbass config get workers      # get a value`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Set a configuration value",
		Args:      cobra.ExactArgs(2),
		ValidArgs: knownKeys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd, args[0], args[1])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:       "get <key>",
		Short:     "Get a configuration value",
		Args:      cobra.ExactArgs(1),
		ValidArgs: knownKeys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(cmd, args[0])
		},
	})

	return cmd
}

// runConfigShow prints the effective value of every known key.
func runConfigShow(cmd *cobra.Command) error {
	settings := make(map[string]any, len(configKeys))
	for _, k := range knownKeys() {
		settings[k] = viper.Get(k)
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if path := viper.ConfigFileUsed(); path != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", path)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(out))
	return nil
}

func runConfigSet(cmd *cobra.Command, key, value string) error {
	k, err := lookupConfigKey(key)
	if err != nil {
		return err
	}
	v, err := k.parse(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}

	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, ".dbass.yaml")
	}

	// Write only the known keys, not every flag and env value viper knows about.
	stored := viper.New()
	stored.SetConfigFile(cfgFile)
	if _, err := os.Stat(cfgFile); err == nil {
		if err := stored.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	stored.Set(key, v)
	if err := stored.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	viper.Set(key, v)

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v in %s\n", key, v, cfgFile)
	return nil
}

func runConfigGet(cmd *cobra.Command, key string) error {
	if _, err := lookupConfigKey(key); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), viper.Get(key))
	return nil
}
