package httpserver

import (
	"net/http"
	"time"

	"familyhub/internal/platform/config"
)

// readHeaderTimeout bounds slow-header clients regardless of configuration.
const readHeaderTimeout = 5 * time.Second

// New builds the API server from the configured address and timeouts.
func New(cfg config.Server, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}
