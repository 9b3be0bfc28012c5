package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"decor-gallery/internal/config"
)

func TestNew(t *testing.T) {
	handler := http.NewServeMux()

	t.Run("configured timeouts", func(t *testing.T) {
		cfg := &config.Config{
			Environment: "production",
			Host:        "localhost",
			Port:        "9090",
			Server: &config.ServerConfig{
				ReadTimeout:  5 * time.Second,
				WriteTimeout: 20 * time.Second,
				IdleTimeout:  2 * time.Minute,
			},
		}

		srv := New(cfg, handler)
		assert.Equal(t, ":9090", srv.Addr)
		assert.Equal(t, 5*time.Second, srv.ReadTimeout)
		assert.Equal(t, 20*time.Second, srv.WriteTimeout)
		assert.Equal(t, 2*time.Minute, srv.IdleTimeout)
		assert.Equal(t, handler, srv.Handler)
	})

	t.Run("defaults without server section", func(t *testing.T) {
		cfg := &config.Config{Environment: "development", Host: "127.0.0.1", Port: "8080"}

		srv := New(cfg, handler)
		assert.Equal(t, "127.0.0.1:8080", srv.Addr)
		assert.Equal(t, 15*time.Second, srv.ReadTimeout)
		assert.Equal(t, 60*time.Second, srv.IdleTimeout)
	})
}
