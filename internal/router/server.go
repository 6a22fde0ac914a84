package router

import (
	"fmt"
	"net/http"

	"github.com/medibook/booking-api/config"
)

// NewServer builds the http.Server shared by the binaries, applying the
// configured timeouts and request header cap.
func NewServer(handler http.Handler, cfg config.ServerConfig) *http.Server {
	return &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Port),
		Handler:        handler,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}
}
