package server

import (
	"net"
	"net/http"
	"time"

	"decor-gallery/internal/config"
)

// New creates the HTTP server for cfg. Timeouts fall back to conservative
// defaults when the server section is absent.
func New(cfg *config.Config, handler http.Handler) *http.Server {
	readTimeout := 15 * time.Second
	writeTimeout := 15 * time.Second
	idleTimeout := 60 * time.Second

	if cfg.Server != nil {
		readTimeout = cfg.Server.ReadTimeout
		writeTimeout = cfg.Server.WriteTimeout
		idleTimeout = cfg.Server.IdleTimeout
	}

	return &http.Server{
		Addr:              Addr(cfg),
		Handler:           handler,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}

// Addr returns the listen address. Outside development the server binds
// every interface.
func Addr(cfg *config.Config) string {
	host := ""
	if cfg.Environment == "development" || cfg.Environment == "test" {
		host = cfg.Host
	}
	return net.JoinHostPort(host, cfg.Port)
}
