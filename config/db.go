package config

import (
	"net"
	"net/url"
	"strconv"
)

// DBConfig locates the database used for type resolution.
// URL wins over the individual fields when set.
type DBConfig struct {
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbName"`
	SSLMode  string `mapstructure:"sslMode"`
}

// DSN returns a postgres:// connection string
func (d DBConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:   "/" + d.DBName,
	}
	if d.User != "" {
		if d.Password != "" {
			u.User = url.UserPassword(d.User, d.Password)
		} else {
			u.User = url.User(d.User)
		}
	}
	if d.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": []string{d.SSLMode}}.Encode()
	}
	return u.String()
}

// Redacted returns the DSN with the password masked, for logging
func (d DBConfig) Redacted() string {
	u, err := url.Parse(d.DSN())
	if err != nil {
		return "<invalid db url>"
	}
	return u.Redacted()
}
