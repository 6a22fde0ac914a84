package router

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/medibook/booking-api/config"
)

func TestNewServerAppliesServerConfig(t *testing.T) {
	cfg := config.ServerConfig{
		Port:           9000,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   20 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}

	srv := NewServer(http.NotFoundHandler(), cfg)

	assert.Equal(t, ":9000", srv.Addr)
	assert.Equal(t, 10*time.Second, srv.ReadTimeout)
	assert.Equal(t, 20*time.Second, srv.WriteTimeout)
	assert.Equal(t, 1<<16, srv.MaxHeaderBytes)
}
