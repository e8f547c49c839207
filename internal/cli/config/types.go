// Package config provides settings management for the gaussql CLI.
//
// Settings are layered with koanf on top of a built-in profile from
// internal/config. Lowest to highest: profile defaults, gaussql.yaml, .env,
// environment variables, explicit flags.
package config

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	sharedcfg "github.com/pangpang20/gaussdb-django/internal/config"
	"github.com/pangpang20/gaussdb-django/pkg/compiler"
	"github.com/pangpang20/gaussdb-django/pkg/core"
)

// Config holds all CLI settings.
type Config struct {
	Profile    string                    `koanf:"profile"`
	Host       string                    `koanf:"host"`
	Port       int                       `koanf:"port"`
	User       string                    `koanf:"user"`
	Password   string                    `koanf:"password"`
	DriverHome string                    `koanf:"driver_home"`
	Impl       string                    `koanf:"impl"`
	Databases  map[string]DatabaseConfig `koanf:"databases"`
	Compiler   CompilerConfig            `koanf:"compiler"`
	Worker     WorkerConfig              `koanf:"worker"`
	Verbose    bool                      `koanf:"verbose"`
	Output     string                    `koanf:"output"`
}

// DatabaseConfig is one named connection. Empty connection fields inherit
// the top-level host, port, user and password.
type DatabaseConfig struct {
	Engine   string            `koanf:"engine"`
	Name     string            `koanf:"name"`
	Host     string            `koanf:"host"`
	Port     int               `koanf:"port"`
	User     string            `koanf:"user"`
	Password string            `koanf:"password"`
	Schema   string            `koanf:"schema"`
	Options  map[string]string `koanf:"options"`
}

// CompilerConfig configures expression compilation.
type CompilerConfig struct {
	// Dialect overrides the dialect of the selected database's engine.
	Dialect string `koanf:"dialect"`
	// OrderingCoercion is numeric_first or ordering_text.
	OrderingCoercion string `koanf:"ordering_coercion"`
}

// WorkerConfig configures the test worker.
type WorkerConfig struct {
	AppsFile string `koanf:"apps_file"`
	Script   string `koanf:"script"`
	Shards   int    `koanf:"shards"`
}

// Default values not tied to a profile.
const (
	DefaultDatabase = "default"
	DefaultOutput   = "auto" // TTY=table, non-TTY=markdown
	DefaultAppsFile = "django_test_apps.txt"
	DefaultScript   = "./django_test_suite.sh"
	DefaultShards   = 1
)

// Database returns the named connection with inherited fields filled in.
func (c *Config) Database(alias string) (DatabaseConfig, error) {
	if alias == "" {
		alias = DefaultDatabase
	}
	db, ok := c.Databases[alias]
	if !ok {
		return DatabaseConfig{}, fmt.Errorf("unknown database %q (configured: %s)", alias, strings.Join(c.DatabaseAliases(), ", "))
	}
	if db.Host == "" {
		db.Host = c.Host
	}
	if db.Port == 0 {
		db.Port = c.Port
	}
	if db.User == "" {
		db.User = c.User
	}
	if db.Password == "" {
		db.Password = c.Password
	}
	return db, nil
}

// DatabaseAliases returns the configured connection aliases, sorted.
func (c *Config) DatabaseAliases() []string {
	return slices.Sorted(maps.Keys(c.Databases))
}

// AdapterConfig converts a named connection for adapter.Open.
func (c *Config) AdapterConfig(alias string) (core.AdapterConfig, error) {
	db, err := c.Database(alias)
	if err != nil {
		return core.AdapterConfig{}, err
	}
	return core.AdapterConfig{
		Type:     db.Engine,
		Host:     db.Host,
		Port:     db.Port,
		Database: db.Name,
		Username: db.User,
		Password: db.Password,
		Schema:   db.Schema,
		Options:  maps.Clone(db.Options),
	}, nil
}

// OrderingCoercion parses the configured ordering policy.
func (c *Config) OrderingCoercion() (compiler.OrderingCoercion, error) {
	return compiler.ParseOrderingCoercion(c.Compiler.OrderingCoercion)
}

// LibraryPath returns the native driver library directory, or "".
func (c *Config) LibraryPath() string {
	return sharedcfg.DriverLibDir(c.DriverHome)
}

// ChildEnv returns environ with the driver library directory prepended to
// LD_LIBRARY_PATH. environ is not modified.
func (c *Config) ChildEnv(environ []string) []string {
	lib := c.LibraryPath()
	out := slices.Clone(environ)
	if lib == "" {
		return out
	}
	const key = "LD_LIBRARY_PATH="
	for i, kv := range out {
		if strings.HasPrefix(kv, key) {
			out[i] = key + lib + string(os.PathListSeparator) + strings.TrimPrefix(kv, key)
			return out
		}
	}
	return append(out, key+lib+string(os.PathListSeparator))
}

// Masked returns a copy safe to print: passwords are replaced.
func (c *Config) Masked() *Config {
	m := *c
	m.Password = mask(c.Password)
	m.Databases = make(map[string]DatabaseConfig, len(c.Databases))
	for alias, db := range c.Databases {
		db.Password = mask(db.Password)
		db.Options = maps.Clone(db.Options)
		m.Databases[alias] = db
	}
	return &m
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}
