package config

import (
	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("srcDir", ".")
	v.SetDefault("failOnError", false)
	v.SetDefault("camelCaseColumnNames", false)
	v.SetDefault("workers", 0) // one per CPU

	// Database defaults match a local postgres
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.dbName", "postgres")
	v.SetDefault("db.sslMode", "disable")
	v.SetDefault("db.url", "")
	v.SetDefault("db.password", "")

	v.SetDefault("watch.debounce", "50ms")
}

// BindEnvVars binds database settings to PGTYPED_* and the standard libpq
// variables. Explicit PGTYPED_* values take precedence.
func BindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("db.url", "PGTYPED_DB_URL", "DATABASE_URL")
	_ = v.BindEnv("db.host", "PGTYPED_DB_HOST", "PGHOST")
	_ = v.BindEnv("db.port", "PGTYPED_DB_PORT", "PGPORT")
	_ = v.BindEnv("db.user", "PGTYPED_DB_USER", "PGUSER")
	_ = v.BindEnv("db.password", "PGTYPED_DB_PASSWORD", "PGPASSWORD")
	_ = v.BindEnv("db.dbName", "PGTYPED_DB_NAME", "PGDATABASE")
}
