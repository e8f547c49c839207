package config

import (
	"errors"
	"fmt"
	"strings"
)

// UnknownProfileError is returned when the selected profile does not exist.
type UnknownProfileError struct {
	Name      string
	Available []string
}

func (e *UnknownProfileError) Error() string {
	return fmt.Sprintf("unknown profile %q\nAvailable profiles: %s\nHint: use --profile or GAUSSQL_PROFILE", e.Name, strings.Join(e.Available, ", "))
}

// Output formats accepted by --output.
var validOutputs = map[string]bool{
	"auto": true, "table": true, "json": true, "csv": true, "markdown": true,
}

// Validate checks the resolved settings.
func (c *Config) Validate() error {
	var errs []error

	if _, err := c.OrderingCoercion(); err != nil {
		errs = append(errs, err)
	}
	if len(c.Databases) == 0 {
		errs = append(errs, errors.New("no databases configured"))
	}
	for _, alias := range c.DatabaseAliases() {
		db := c.Databases[alias]
		if db.Engine == "" {
			errs = append(errs, fmt.Errorf("database %s: engine is required", alias))
		}
		if db.Name == "" {
			errs = append(errs, fmt.Errorf("database %s: name is required", alias))
		}
		if db.Port < 0 || db.Port > 65535 {
			errs = append(errs, fmt.Errorf("database %s: port %d out of range", alias, db.Port))
		}
	}
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.Output != "" && !validOutputs[c.Output] {
		errs = append(errs, fmt.Errorf("unknown output format %q (expected auto, table, json, csv or markdown)", c.Output))
	}
	if c.Worker.Shards < 1 {
		errs = append(errs, fmt.Errorf("worker shards must be at least 1, got %d", c.Worker.Shards))
	}

	return errors.Join(errs...)
}
