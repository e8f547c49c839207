package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	sharedcfg "github.com/pangpang20/gaussdb-django/internal/config"
	"github.com/spf13/pflag"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// Package-level state of the last load, for commands that report it.
var (
	configFileUsed string
	currentConfig  *Config
)

// Options controls where Load looks for settings.
type Options struct {
	// ConfigFile is an explicit settings file. When empty, gaussql.yaml or
	// gaussql.yml in Dir is used if present.
	ConfigFile string
	// Dir is the directory searched for settings and .env files; "" is the
	// working directory.
	Dir string
	// Environ replaces os.Environ() when non-nil.
	Environ []string
	// Flags are the parsed command flags; only flags set explicitly apply.
	Flags *pflag.FlagSet
}

// ResetConfig forgets the last loaded settings. Used for testing.
func ResetConfig() {
	configFileUsed = ""
	currentConfig = nil
}

// Load resolves settings. Precedence (highest to lowest): flags > env vars >
// .env file > settings file > profile defaults.
func Load(opts Options) (*Config, error) {
	environ := opts.Environ
	if environ == nil {
		environ = os.Environ()
	}
	envMap := environMap(environ)

	cfgFile, err := findConfigFile(opts.ConfigFile, opts.Dir)
	if err != nil {
		return nil, err
	}

	// The settings file, parsed once; it is loaded above the profile later.
	fileK := koanf.New(".")
	if cfgFile != "" {
		if err := fileK.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	dotenv, err := readDotEnv(opts.Dir)
	if err != nil {
		return nil, err
	}

	profileName := selectProfile(opts.Flags, envMap, dotenv, fileK)
	profile, ok := sharedcfg.LookupProfile(profileName)
	if !ok {
		return nil, &UnknownProfileError{Name: profileName, Available: sharedcfg.ProfileNames()}
	}

	k := koanf.New(".")

	// 1. Profile defaults
	defaults := profile.Defaults()
	defaults["output"] = DefaultOutput
	defaults["worker.apps_file"] = DefaultAppsFile
	defaults["worker.script"] = DefaultScript
	defaults["worker.shards"] = DefaultShards
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Settings file
	if err := k.Merge(fileK); err != nil {
		return nil, fmt.Errorf("failed to merge config file %s: %w", cfgFile, err)
	}

	// 3. .env file, then 4. the environment, both under the profile prefix.
	// GAUSSDB_COMPILER__ORDERING_COERCION -> compiler.ordering_coercion
	keyOf := envKeyFunc(profile.EnvPrefix)
	if err := k.Load(confmap.Provider(prefixed(dotenv, keyOf), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", sharedcfg.DotEnvFileName, err)
	}
	if opts.Environ == nil {
		if err := k.Load(env.Provider(profile.EnvPrefix, ".", keyOf), nil); err != nil {
			return nil, fmt.Errorf("failed to load env vars: %w", err)
		}
	} else if err := k.Load(confmap.Provider(prefixed(envMap, keyOf), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 5. Flags
	if opts.Flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(opts.Flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := flagKey(f.Name)
			if key == "" {
				return "", nil
			}
			return key, posflag.FlagVal(opts.Flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}
	_ = k.Set("profile", profile.Name)

	// 6. Decode. Weak typing lets GAUSSDB_PORT=8000 land in an int.
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook:       mapstructure.ComposeDecodeHookFunc(mapstructure.StringToSliceHookFunc(",")),
			WeaklyTypedInput: true,
			Result:           &cfg,
		},
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	configFileUsed = cfgFile
	currentConfig = &cfg
	return &cfg, nil
}

// selectProfile picks the profile: --profile, then GAUSSQL_PROFILE from the
// environment or .env, then the settings file, then the default.
func selectProfile(flags *pflag.FlagSet, environ, dotenv map[string]string, fileK *koanf.Koanf) string {
	if flags != nil && flags.Changed("profile") {
		if v, err := flags.GetString("profile"); err == nil && v != "" {
			return strings.ToLower(v)
		}
	}
	if v := environ[sharedcfg.ProfileEnvVar]; v != "" {
		return strings.ToLower(v)
	}
	if v := dotenv[sharedcfg.ProfileEnvVar]; v != "" {
		return strings.ToLower(v)
	}
	if v := fileK.String("profile"); v != "" {
		return strings.ToLower(v)
	}
	return sharedcfg.DefaultProfile
}

// findConfigFile returns the settings file to read, or "" when none exists.
// An explicit path must exist.
func findConfigFile(explicit, dir string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicit, err)
		}
		return explicit, nil
	}
	for _, name := range []string{sharedcfg.ConfigFileName, sharedcfg.ConfigFileNameAlt} {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", nil
}

func readDotEnv(dir string) (map[string]string, error) {
	path := filepath.Join(dir, sharedcfg.DotEnvFileName)
	vals, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return vals, nil
}

func environMap(environ []string) map[string]string {
	m := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			m[k] = v
		}
	}
	return m
}

// envKeyFunc maps PREFIX_SOME__NESTED_KEY to some.nested_key. Names without
// the prefix map to "", which koanf skips.
func envKeyFunc(prefix string) func(string) string {
	return func(s string) string {
		if !strings.HasPrefix(s, prefix) {
			return ""
		}
		key := strings.ToLower(strings.TrimPrefix(s, prefix))
		return strings.ReplaceAll(key, "__", ".")
	}
}

func prefixed(vals map[string]string, keyOf func(string) string) map[string]any {
	out := make(map[string]any)
	for name, v := range vals {
		if key := keyOf(name); key != "" {
			out[key] = v
		}
	}
	return out
}

// flagKey maps a flag name to its settings key. Command-specific flags that
// are not settings map to "", which posflag skips.
func flagKey(name string) string {
	switch name {
	case "apps-file", "script", "shards":
		return "worker." + strings.ReplaceAll(name, "-", "_")
	case "ordering-coercion":
		return "compiler.ordering_coercion"
	case "dialect":
		return "compiler.dialect"
	case "profile", "host", "port", "user", "password", "driver-home", "impl", "verbose", "output":
		return strings.ReplaceAll(name, "-", "_")
	}
	return ""
}

// GetConfigFileUsed returns the path to the settings file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the last loaded settings.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
