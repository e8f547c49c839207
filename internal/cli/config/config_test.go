package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pangpang20/gaussdb-django/pkg/compiler"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func testFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("profile", "", "")
	fs.String("host", "", "")
	fs.Int("port", 0, "")
	fs.String("ordering-coercion", "", "")
	fs.Int("shards", 1, "")
	fs.BoolP("verbose", "v", false, "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad_GaussDBDefaults(t *testing.T) {
	t.Cleanup(ResetConfig)

	cfg, err := Load(Options{Dir: t.TempDir(), Environ: []string{}})
	require.NoError(t, err)

	assert.Equal(t, "gaussdb", cfg.Profile)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "root", cfg.User)
	assert.Equal(t, "python", cfg.Impl)
	assert.Equal(t, []string{"default", "other"}, cfg.DatabaseAliases())
	assert.Equal(t, "django_tests01", cfg.Databases["default"].Name)
	assert.Equal(t, "django_tests02", cfg.Databases["other"].Name)
	assert.Equal(t, "gaussdb", cfg.Databases["default"].Engine)
	assert.Equal(t, DefaultAppsFile, cfg.Worker.AppsFile)
	assert.Equal(t, 1, cfg.Worker.Shards)
	assert.Equal(t, "auto", cfg.Output)

	policy, err := cfg.OrderingCoercion()
	require.NoError(t, err)
	assert.Equal(t, compiler.NumericFirst, policy)

	assert.Same(t, cfg, GetCurrentConfig())
	assert.Empty(t, GetConfigFileUsed())
}

func TestLoad_Precedence(t *testing.T) {
	t.Cleanup(ResetConfig)
	dir := t.TempDir()

	writeFile(t, dir, "gaussql.yaml", `
host: file-host
user: file-user
port: 7000
databases:
  default:
    schema: app
compiler:
  ordering_coercion: numeric_first
`)
	writeFile(t, dir, ".env", "GAUSSDB_USER=dotenv-user\nGAUSSDB_HOST=dotenv-host\n")

	cfg, err := Load(Options{
		Dir: dir,
		Environ: []string{
			"GAUSSDB_HOST=env-host",
			"GAUSSDB_PORT=9000",
			"GAUSSDB_COMPILER__ORDERING_COERCION=ordering_text",
			"TIDB_PORT=1",
		},
		Flags: testFlags(t, "--port", "9999"),
	})
	require.NoError(t, err)

	assert.Equal(t, "env-host", cfg.Host, "env beats .env and file")
	assert.Equal(t, "dotenv-user", cfg.User, ".env beats file")
	assert.Equal(t, 9999, cfg.Port, "flags beat env")
	assert.Equal(t, "app", cfg.Databases["default"].Schema)
	assert.Equal(t, "django_tests01", cfg.Databases["default"].Name, "file merges over profile defaults")
	assert.Equal(t, filepath.Join(dir, "gaussql.yaml"), GetConfigFileUsed())

	policy, err := cfg.OrderingCoercion()
	require.NoError(t, err)
	assert.Equal(t, compiler.OrderingText, policy)
}

func TestLoad_TiDBProfile(t *testing.T) {
	t.Cleanup(ResetConfig)

	cfg, err := Load(Options{
		Dir:     t.TempDir(),
		Environ: []string{"GAUSSQL_PROFILE=TiDB", "TIDB_USER=alice", "GAUSSDB_USER=ignored"},
	})
	require.NoError(t, err)

	assert.Equal(t, "tidb", cfg.Profile)
	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, "alice", cfg.User)
	db := cfg.Databases["other"]
	assert.Equal(t, "django_tests2", db.Name)
	assert.Equal(t, "tidb", db.Engine)
	assert.Equal(t, "utf8mb4", db.Options["charset"])
	assert.Equal(t, "SET @@tidb_allow_remove_auto_inc = ON", db.Options["init_command"])
}

func TestLoad_ProfileSources(t *testing.T) {
	t.Cleanup(ResetConfig)

	t.Run("flag beats env", func(t *testing.T) {
		cfg, err := Load(Options{
			Dir:     t.TempDir(),
			Environ: []string{"GAUSSQL_PROFILE=tidb"},
			Flags:   testFlags(t, "--profile", "gaussdb"),
		})
		require.NoError(t, err)
		assert.Equal(t, "gaussdb", cfg.Profile)
	})

	t.Run("settings file", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "gaussql.yml", "profile: tidb\n")
		cfg, err := Load(Options{Dir: dir, Environ: []string{}})
		require.NoError(t, err)
		assert.Equal(t, 4000, cfg.Port)
	})

	t.Run("unknown profile", func(t *testing.T) {
		_, err := Load(Options{Dir: t.TempDir(), Environ: []string{"GAUSSQL_PROFILE=mysql"}})
		var profileErr *UnknownProfileError
		require.ErrorAs(t, err, &profileErr)
		assert.Equal(t, "mysql", profileErr.Name)
		assert.Contains(t, profileErr.Available, "tidb")
	})
}

func TestLoad_Errors(t *testing.T) {
	t.Cleanup(ResetConfig)

	tests := []struct {
		name    string
		file    string
		environ []string
		errMsg  string
	}{
		{
			name:    "bad coercion",
			environ: []string{"GAUSSDB_COMPILER__ORDERING_COERCION=alphabetical"},
			errMsg:  "alphabetical",
		},
		{
			name:   "database without name",
			file:   "databases:\n  extra:\n    engine: gaussdb\n",
			errMsg: "database extra: name is required",
		},
		{
			name:    "bad output",
			environ: []string{"GAUSSDB_OUTPUT=xml"},
			errMsg:  "unknown output format",
		},
		{
			name:    "bad shards",
			environ: []string{"GAUSSDB_WORKER__SHARDS=0"},
			errMsg:  "shards must be at least 1",
		},
		{
			name:    "port is not a number",
			environ: []string{"GAUSSDB_PORT=eight"},
			errMsg:  "unable to decode config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.file != "" {
				writeFile(t, dir, "gaussql.yaml", tt.file)
			}
			environ := tt.environ
			if environ == nil {
				environ = []string{}
			}
			_, err := Load(Options{Dir: dir, Environ: environ})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	_, err := Load(Options{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml"), Environ: []string{}})
	require.Error(t, err)
}

func TestConfig_AdapterConfig(t *testing.T) {
	cfg := &Config{
		Host:     "h",
		Port:     8000,
		User:     "root",
		Password: "secret",
		Databases: map[string]DatabaseConfig{
			"default": {Engine: "gaussdb", Name: "db1"},
			"other":   {Engine: "gaussdb", Name: "db2", Host: "h2", Port: 8001, Options: map[string]string{"sslmode": "require"}},
		},
	}

	ac, err := cfg.AdapterConfig("")
	require.NoError(t, err)
	assert.Equal(t, "gaussdb", ac.Type)
	assert.Equal(t, "h", ac.Host)
	assert.Equal(t, 8000, ac.Port)
	assert.Equal(t, "db1", ac.Database)
	assert.Equal(t, "secret", ac.Password)

	ac, err = cfg.AdapterConfig("other")
	require.NoError(t, err)
	assert.Equal(t, "h2", ac.Host)
	assert.Equal(t, 8001, ac.Port)
	assert.Equal(t, "require", ac.Options["sslmode"])

	_, err = cfg.AdapterConfig("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "default, other")
}

func TestConfig_ChildEnv(t *testing.T) {
	cfg := &Config{DriverHome: "/opt/gaussdb_driver"}
	lib := filepath.Join("/opt/gaussdb_driver", "hce_driver", "lib")

	env := []string{"PATH=/bin", "LD_LIBRARY_PATH=/usr/lib"}
	got := cfg.ChildEnv(env)
	assert.Equal(t, []string{"PATH=/bin", "LD_LIBRARY_PATH=" + lib + ":/usr/lib"}, got)
	assert.Equal(t, "LD_LIBRARY_PATH=/usr/lib", env[1], "input is not modified")

	got = cfg.ChildEnv([]string{"PATH=/bin"})
	assert.Equal(t, []string{"PATH=/bin", "LD_LIBRARY_PATH=" + lib + ":"}, got)

	got = (&Config{}).ChildEnv([]string{"PATH=/bin"})
	assert.Equal(t, []string{"PATH=/bin"}, got)
}

func TestConfig_Masked(t *testing.T) {
	cfg := &Config{
		Password: "secret",
		Databases: map[string]DatabaseConfig{
			"default": {Name: "db", Password: "other-secret"},
			"nopw":    {Name: "db"},
		},
	}

	m := cfg.Masked()
	assert.Equal(t, "********", m.Password)
	assert.Equal(t, "********", m.Databases["default"].Password)
	assert.Empty(t, m.Databases["nopw"].Password)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, "other-secret", cfg.Databases["default"].Password)
}

func TestFlagKey(t *testing.T) {
	tests := []struct {
		flag string
		want string
	}{
		{"shards", "worker.shards"},
		{"apps-file", "worker.apps_file"},
		{"ordering-coercion", "compiler.ordering_coercion"},
		{"dialect", "compiler.dialect"},
		{"driver-home", "driver_home"},
		{"port", "port"},
		{"table", ""},
		{"dry-run", ""},
	}
	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			assert.Equal(t, tt.want, flagKey(tt.flag))
		})
	}
}

func TestLoad_IgnoresCommandFlags(t *testing.T) {
	t.Cleanup(ResetConfig)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("shards", 1, "")
	fs.String("table", "", "")
	require.NoError(t, fs.Parse([]string{"--shards", "3", "--table", "app_model"}))

	cfg, err := Load(Options{Dir: t.TempDir(), Environ: []string{}, Flags: fs})
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Worker.Shards)
}
