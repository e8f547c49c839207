// Package config holds the built-in settings profiles shared by the CLI
// and the test worker.
//
// A profile fixes the environment variable prefix and the connection
// defaults of one database family. Values set in gaussql.yaml, a .env file,
// the environment or flags override them.
package config

import (
	"path/filepath"
	"sort"
)

// Profile names.
const (
	ProfileGaussDB = "gaussdb"
	ProfileTiDB    = "tidb"
	DefaultProfile = ProfileGaussDB
)

// File names looked up in the working directory.
const (
	ConfigFileName    = "gaussql.yaml"
	ConfigFileNameAlt = "gaussql.yml"
	DotEnvFileName    = ".env"
)

// ProfileEnvVar selects the profile when --profile is not given.
const ProfileEnvVar = "GAUSSQL_PROFILE"

// Profile describes the connection defaults of a settings profile.
type Profile struct {
	Name      string
	EnvPrefix string // e.g. GAUSSDB_
	Engine    string // adapter registry name
	Host      string
	Port      int
	User      string
	Password  string

	// Databases maps a connection alias to a database name.
	Databases map[string]string
	// Options are driver options applied to every database.
	Options map[string]string

	DriverHome string
	Impl       string
}

var profiles = map[string]Profile{
	ProfileGaussDB: {
		Name:      ProfileGaussDB,
		EnvPrefix: "GAUSSDB_",
		Engine:    "gaussdb",
		Host:      "127.0.0.1",
		Port:      8000,
		User:      "root",
		Password:  "Audaque@123",
		Databases: map[string]string{
			"default": "django_tests01",
			"other":   "django_tests02",
		},
		DriverHome: "/opt/gaussdb_driver",
		Impl:       "python",
	},
	ProfileTiDB: {
		Name:      ProfileTiDB,
		EnvPrefix: "TIDB_",
		Engine:    "tidb",
		Host:      "127.0.0.1",
		Port:      4000,
		User:      "tidb",
		Password:  "Audaque@123",
		Databases: map[string]string{
			"default": "django_tests",
			"other":   "django_tests2",
		},
		Options: map[string]string{
			"charset":      "utf8mb4",
			"collation":    "utf8mb4_general_ci",
			"init_command": "SET @@tidb_allow_remove_auto_inc = ON",
		},
	},
}

// LookupProfile returns the named profile.
func LookupProfile(name string) (Profile, bool) {
	p, ok := profiles[name]
	return p, ok
}

// ProfileNames returns the known profile names, sorted.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Defaults returns the profile as a flat key map for the settings loader.
func (p Profile) Defaults() map[string]any {
	m := map[string]any{
		"profile":     p.Name,
		"host":        p.Host,
		"port":        p.Port,
		"user":        p.User,
		"password":    p.Password,
		"driver_home": p.DriverHome,
		"impl":        p.Impl,
	}
	for alias, name := range p.Databases {
		m["databases."+alias+".engine"] = p.Engine
		m["databases."+alias+".name"] = name
		for k, v := range p.Options {
			m["databases."+alias+".options."+k] = v
		}
	}
	return m
}

// DriverLibDir returns the directory holding the native driver libraries
// under a driver home, or "" when home is empty.
func DriverLibDir(home string) string {
	if home == "" {
		return ""
	}
	return filepath.Join(home, "hce_driver", "lib")
}
