package commands

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pangpang20/gaussdb-django/internal/cli/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewSettingsCommand creates the settings command.
func NewSettingsCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show the resolved settings",
		Long: `Print the settings after applying the profile, gaussql.yaml, .env,
environment variables and flags. Passwords are masked.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			masked := cc.Cfg.Masked()
			switch format {
			case "yaml":
				return writeSettingsYAML(cc, masked)
			case formatTable:
				return writeSettingsTable(cc, masked)
			}
			return fmt.Errorf("unknown format %q (want yaml or table)", format)
		},
	}

	cmd.Flags().StringVar(&format, "format", formatTable, "Output format: table, yaml")
	return cmd
}

// settingsDoc is the yaml shape of the settings.
type settingsDoc struct {
	Profile    string                        `yaml:"profile"`
	ConfigFile string                        `yaml:"config_file,omitempty"`
	DriverHome string                        `yaml:"driver_home,omitempty"`
	LibPath    string                        `yaml:"library_path,omitempty"`
	Impl       string                        `yaml:"impl,omitempty"`
	Databases  map[string]databaseSettingDoc `yaml:"databases"`
	Compiler   map[string]string             `yaml:"compiler"`
	Worker     map[string]any                `yaml:"worker"`
}

type databaseSettingDoc struct {
	Engine   string            `yaml:"engine"`
	Name     string            `yaml:"name"`
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	User     string            `yaml:"user"`
	Password string            `yaml:"password,omitempty"`
	Schema   string            `yaml:"schema,omitempty"`
	Options  map[string]string `yaml:"options,omitempty"`
}

func writeSettingsYAML(cc *CommandContext, cfg *config.Config) error {
	doc := settingsDoc{
		Profile:    cfg.Profile,
		ConfigFile: config.GetConfigFileUsed(),
		DriverHome: cfg.DriverHome,
		LibPath:    cfg.LibraryPath(),
		Impl:       cfg.Impl,
		Databases:  make(map[string]databaseSettingDoc, len(cfg.Databases)),
		Compiler: map[string]string{
			"dialect":           cfg.Compiler.Dialect,
			"ordering_coercion": cfg.Compiler.OrderingCoercion,
		},
		Worker: map[string]any{
			"apps_file": cfg.Worker.AppsFile,
			"script":    cfg.Worker.Script,
			"shards":    cfg.Worker.Shards,
		},
	}
	for _, alias := range cfg.DatabaseAliases() {
		db, err := cfg.Database(alias)
		if err != nil {
			return err
		}
		doc.Databases[alias] = databaseSettingDoc(db)
	}

	enc := yaml.NewEncoder(cc.Out)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func writeSettingsTable(cc *CommandContext, cfg *config.Config) error {
	_, _ = fmt.Fprintf(cc.Out, "Profile: %s\n", cfg.Profile)
	if f := config.GetConfigFileUsed(); f != "" {
		_, _ = fmt.Fprintf(cc.Out, "Config file: %s\n", f)
	}
	if lib := cfg.LibraryPath(); lib != "" {
		_, _ = fmt.Fprintf(cc.Out, "Driver library path: %s\n", lib)
	}

	t := table.NewWriter()
	t.SetOutputMirror(cc.Out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Alias", "Engine", "Name", "Host", "Port", "User", "Password", "Options"})
	for _, alias := range cfg.DatabaseAliases() {
		db, err := cfg.Database(alias)
		if err != nil {
			return err
		}
		t.AppendRow(table.Row{alias, db.Engine, db.Name, db.Host, db.Port, db.User, db.Password, formatOptions(db.Options)})
	}
	t.Render()
	return nil
}

func formatOptions(opts map[string]string) string {
	if len(opts) == 0 {
		return ""
	}
	parts := make([]string, 0, len(opts))
	for k, v := range opts {
		parts = append(parts, k+"="+v)
	}
	slices.Sort(parts)
	return strings.Join(parts, " ")
}
