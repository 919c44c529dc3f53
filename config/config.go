// Package config loads the generator configuration.
//
// The file is JSON, YAML or TOML (chosen by extension):
//
//	{
//	  "srcDir": "./src/",
//	  "failOnError": false,
//	  "camelCaseColumnNames": false,
//	  "transforms": [
//	    { "mode": "sql", "include": "**/*.sql", "emitTemplate": "{{.Dir}}/{{.Name}}.queries.ts" },
//	    { "mode": "ts", "include": "**/*.ts" }
//	  ],
//	  "db": { "host": "localhost", "user": "test", "dbName": "test", "password": "example" },
//	  "typesOverrides": { "money": "./money#Money" }
//	}
package config

import (
	"time"

	"github.com/golergka/pgtyped/query"
)

// Config is the parsed configuration file
type Config struct {
	SrcDir               string            `mapstructure:"srcDir"`
	FailOnError          bool              `mapstructure:"failOnError"`
	CamelCaseColumnNames bool              `mapstructure:"camelCaseColumnNames"`
	Transforms           []Transform       `mapstructure:"transforms"`
	DB                   DBConfig          `mapstructure:"db"`
	TypesOverrides       map[string]string `mapstructure:"typesOverrides"`
	Workers              int               `mapstructure:"workers"` // 0 = one per CPU
	Watch                WatchConfig       `mapstructure:"watch"`
}

// Transform binds an include glob to a processing mode and output path
type Transform struct {
	Mode    string `mapstructure:"mode"` // "sql" or "ts"
	Include string `mapstructure:"include"`
	// EmitTemplate is a text/template over {{.Dir}}, {{.Name}} and {{.Ext}}
	// of the source file. Empty uses the mode's default.
	EmitTemplate string `mapstructure:"emitTemplate"`
}

// Processing modes
const (
	ModeSQL = "sql"
	ModeTS  = "ts"
)

// Default output paths per mode
const (
	DefaultSQLEmitTemplate = "{{.Dir}}/{{.Name}}.ts"
	DefaultTSEmitTemplate  = "{{.Dir}}/{{.Name}}.types.ts"
)

// QueryMode maps the config mode onto the parser mode
func (t Transform) QueryMode() query.Mode {
	if t.Mode == ModeTS {
		return query.ModeTS
	}
	return query.ModeSQL
}

// Template returns EmitTemplate or the mode default
func (t Transform) Template() string {
	if t.EmitTemplate != "" {
		return t.EmitTemplate
	}
	if t.Mode == ModeTS {
		return DefaultTSEmitTemplate
	}
	return DefaultSQLEmitTemplate
}

// String identifies the transform in logs
func (t Transform) String() string {
	return t.Mode + ":" + t.Include
}

// WatchConfig tunes watch mode
type WatchConfig struct {
	// Debounce coalesces rapid events for one path. 0 disables it.
	Debounce time.Duration `mapstructure:"debounce"`
}

// Parallelism is the configured worker count, or numCPU when unset
func (c *Config) Parallelism(numCPU int) int {
	if c.Workers > 0 {
		return c.Workers
	}
	return numCPU
}
