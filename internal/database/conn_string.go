package database

import (
	"fmt"
	"net/url"

	"github.com/pmercer/marketwire/internal/config"
)

// BuildConnString renders a DBConfig as the postgres:// URL pgxpool
// expects. The password is query-escaped; a blank ssl_mode falls back
// to "prefer".
func BuildConnString(cfg config.DBConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, url.QueryEscape(cfg.Password),
		cfg.Host, cfg.Port, cfg.Name, sslMode)
}
