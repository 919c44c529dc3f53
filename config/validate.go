package config

import (
	"text/template"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/golergka/pgtyped/errors"
)

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.SrcDir == "" {
		return errors.New("srcDir cannot be empty")
	}
	if len(c.Transforms) == 0 {
		return errors.WithHint(errors.New("transforms cannot be empty"),
			`add e.g. {"mode": "sql", "include": "**/*.sql"}`)
	}
	for i, t := range c.Transforms {
		if t.Mode != ModeSQL && t.Mode != ModeTS {
			return errors.Newf("transforms[%d].mode must be %q or %q, got %q", i, ModeSQL, ModeTS, t.Mode)
		}
		if t.Include == "" {
			return errors.Newf("transforms[%d].include cannot be empty", i)
		}
		if !doublestar.ValidatePattern(t.Include) {
			return errors.Newf("transforms[%d].include is not a valid glob: %q", i, t.Include)
		}
		if _, err := template.New("emit").Parse(t.Template()); err != nil {
			return errors.Wrapf(err, "transforms[%d].emitTemplate", i)
		}
	}

	if c.DB.URL == "" && c.DB.Host == "" {
		return errors.New("db.host or db.url must be set")
	}
	if c.DB.URL == "" && (c.DB.Port <= 0 || c.DB.Port > 65535) {
		return errors.Newf("db.port must be between 1 and 65535, got %d", c.DB.Port)
	}

	if c.Workers < 0 {
		return errors.Newf("workers must be >= 0, got %d", c.Workers)
	}
	if c.Watch.Debounce < 0 {
		return errors.Newf("watch.debounce must be >= 0, got %s", c.Watch.Debounce)
	}
	return nil
}
