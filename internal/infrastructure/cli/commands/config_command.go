package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	configapp "github.com/rhonimohanraj/anti-bot/internal/application/config"
	"github.com/rhonimohanraj/anti-bot/internal/domain"
	configinfra "github.com/rhonimohanraj/anti-bot/internal/infrastructure/config"
)

const (
	envKeyEditor  = "EDITOR"
	defaultEditor = "vi"
	redacted      = "********"
)

// NewConfigCommand creates the config command with all subcommands
func NewConfigCommand(env *Env) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect anti-bot configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfiguration(cmd.Context(), cmd.OutOrStdout(), env)
		},
	}

	configCmd.AddCommand(
		newConfigShowCommand(env),
		newConfigPathCommand(env),
		newConfigGetCommand(env),
		newConfigSetCommand(env),
		newConfigEditCommand(env),
		newConfigValidateCommand(env),
		newConfigDiffCommand(env),
		newConfigModelsCommand(env),
		newConfigUseCommand(env),
	)

	return configCmd
}

// newConfigShowCommand creates the 'config show' subcommand
func newConfigShowCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show full configuration (token redacted)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfiguration(cmd.Context(), cmd.OutOrStdout(), env)
		},
	}
}

func newConfigPathCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := env.Container(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), container.ConfigLoader.Path())
			return nil
		},
	}
}

// newConfigGetCommand creates the 'config get' subcommand
func newConfigGetCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a value by key path (e.g. proposals.ttl)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Context(), env)
			if err != nil {
				return err
			}
			cfgMap, err := configToMap(cfg)
			if err != nil {
				return err
			}
			value, found := traverse(cfgMap, strings.Split(args[0], "."))
			if !found {
				return fmt.Errorf("key %s not found in configuration", args[0])
			}
			data, err := yaml.Marshal(value)
			if err != nil {
				return fmt.Errorf("failed to marshal value: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

// newConfigSetCommand creates the 'config set' subcommand
func newConfigSetCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value (value accepts YAML syntax)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Context(), env)
			if err != nil {
				return err
			}
			cfgMap, err := configToMap(cfg)
			if err != nil {
				return err
			}
			var parsed interface{}
			if err := yaml.Unmarshal([]byte(strings.Join(args[1:], " ")), &parsed); err != nil {
				return fmt.Errorf("failed to parse value: %w", err)
			}
			if !setValue(cfgMap, strings.Split(args[0], "."), parsed) {
				return fmt.Errorf("unable to set key %s", args[0])
			}
			updated, err := mapToConfig(cfgMap)
			if err != nil {
				return err
			}
			return saveConfig(cmd.Context(), env, updated)
		},
	}
}

// newConfigEditCommand creates the 'config edit' subcommand
func newConfigEditCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Edit configuration in $EDITOR",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := env.Container(cmd.Context())
			if err != nil {
				return err
			}
			editor := os.Getenv(envKeyEditor)
			if editor == "" {
				editor = defaultEditor
			}
			c := exec.CommandContext(cmd.Context(), editor, container.ConfigLoader.Path())
			c.Stdin = os.Stdin
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			if err := c.Run(); err != nil {
				return fmt.Errorf("failed to run editor %s: %w", editor, err)
			}
			return nil
		},
	}
}

// newConfigValidateCommand creates the 'config validate' subcommand
func newConfigValidateCommand(env *Env) *cobra.Command {
	var transport bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Context(), env)
			if err != nil {
				return err
			}
			if err := configapp.Validate(cfg); err != nil {
				return fmt.Errorf("configuration validation failed: %w", err)
			}
			if transport {
				if err := configapp.ValidateTransport(cfg); err != nil {
					return fmt.Errorf("configuration validation failed: %w", err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), MsgConfigurationValid)
			return nil
		},
	}
	cmd.Flags().BoolVar(&transport, "telegram", false, "Also require the Telegram token and chat id")
	return cmd
}

// newConfigDiffCommand creates the 'config diff' subcommand
func newConfigDiffCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "diff",
		Short: "Show differences from default configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Context(), env)
			if err != nil {
				return err
			}
			if cfg.Telegram.Token != "" {
				cfg.Telegram.Token = redacted
			}
			diff := cmp.Diff(configinfra.DefaultConfig(), cfg)
			if diff == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Configuration matches defaults")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Differences from default configuration (- default, + current):")
			fmt.Fprint(cmd.OutOrStdout(), diff)
			return nil
		},
	}
}

func newConfigModelsCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List configured models",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Context(), env)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, model := range cfg.Models {
				marker := " "
				if model.Name == cfg.Preferences.DefaultModel {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s (%s, %s)\n", marker, model.Name, model.Kind(), model.ModelID)
			}
			return nil
		},
	}
}

func newConfigUseCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "use <model>",
		Short: "Set the default model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Context(), env)
			if err != nil {
				return err
			}
			if err := cfg.SetDefaultModel(args[0]); err != nil {
				return err
			}
			return saveConfig(cmd.Context(), env, cfg)
		},
	}
}

// showConfiguration displays the full configuration in YAML format
func showConfiguration(ctx context.Context, out io.Writer, env *Env) error {
	cfg, err := loadConfig(ctx, env)
	if err != nil {
		return err
	}
	if cfg.Telegram.Token != "" {
		cfg.Telegram.Token = redacted
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}
	fmt.Fprint(out, string(data))
	return nil
}

func loadConfig(ctx context.Context, env *Env) (domain.Config, error) {
	container, err := env.Container(ctx)
	if err != nil {
		return domain.Config{}, err
	}
	cfg, err := container.ConfigProvider.Load(ctx)
	if err != nil {
		return domain.Config{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func saveConfig(ctx context.Context, env *Env, cfg domain.Config) error {
	if err := configapp.Validate(cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	container, err := env.Container(ctx)
	if err != nil {
		return err
	}
	return container.ConfigLoader.Save(cfg)
}

func configToMap(cfg domain.Config) (map[string]interface{}, error) {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	var cfgMap map[string]interface{}
	if err := yaml.Unmarshal(raw, &cfgMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal to map: %w", err)
	}
	return cfgMap, nil
}

func mapToConfig(cfgMap map[string]interface{}) (domain.Config, error) {
	raw, err := yaml.Marshal(cfgMap)
	if err != nil {
		return domain.Config{}, fmt.Errorf("failed to marshal updated map: %w", err)
	}
	var updated domain.Config
	if err := yaml.Unmarshal(raw, &updated); err != nil {
		return domain.Config{}, fmt.Errorf("failed to unmarshal to Config: %w", err)
	}
	return updated, nil
}

func traverse(node interface{}, keys []string) (interface{}, bool) {
	for _, key := range keys {
		m, ok := node.(map[string]interface{})
		if !ok {
			return nil, false
		}
		if node, ok = m[key]; !ok {
			return nil, false
		}
	}
	return node, true
}

func setValue(m map[string]interface{}, keys []string, value interface{}) bool {
	if len(keys) == 0 {
		return false
	}
	for _, key := range keys[:len(keys)-1] {
		next, ok := m[key].(map[string]interface{})
		if !ok {
			if _, exists := m[key]; exists {
				return false
			}
			next = map[string]interface{}{}
			m[key] = next
		}
		m = next
	}
	m[keys[len(keys)-1]] = value
	return true
}
