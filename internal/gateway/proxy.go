package gateway

import (
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/medibook/booking-api/pkg/metrics"
)

// forwardTimeout bounds the whole downstream exchange.
const forwardTimeout = 30 * time.Second

// bodyMethods are the methods whose request body is read and forwarded.
var bodyMethods = map[string]bool{
	http.MethodPost:  true,
	http.MethodPut:   true,
	http.MethodPatch: true,
}

// Proxy forwards requests verbatim to a downstream base URL and relays the
// response unchanged. One hop, no retries, no load balancing.
type Proxy struct {
	client  *http.Client
	metrics *metrics.Metrics
}

func NewProxy(m *metrics.Metrics) *Proxy {
	return &Proxy{
		client:  &http.Client{Timeout: forwardTimeout},
		metrics: m,
	}
}

// Handler returns a gin handler forwarding the request to baseURL plus the
// wildcard remainder. Routes must be registered with a `*path` parameter;
// the root route (no remainder) forwards to baseURL itself.
func (p *Proxy) Handler(service, baseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		remainder := c.Param("path")
		if remainder == "/" {
			remainder = ""
		}
		p.Forward(c, service, baseURL+remainder)
	}
}

// Forward issues the downstream call and relays status, headers and body
// verbatim. Connection failures map to 503, anything else to 500.
func (p *Proxy) Forward(c *gin.Context, service, target string) {
	var body io.Reader
	if bodyMethods[c.Request.Method] {
		body = c.Request.Body
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, target, body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	req.URL.RawQuery = c.Request.URL.RawQuery

	copyRequestHeaders(req.Header, c.Request.Header)

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		p.fail(c, service, err)
		return
	}
	defer resp.Body.Close()

	p.observe(service, resp.StatusCode, time.Since(start))

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	copyResponseHeaders(c.Writer.Header(), resp.Header)
	c.Data(resp.StatusCode, resp.Header.Get("Content-Type"), payload)
}

// copyRequestHeaders forwards everything except host and content-length,
// which the outbound transport owns.
func copyRequestHeaders(dst, src http.Header) {
	for key, values := range src {
		lower := strings.ToLower(key)
		if lower == "host" || lower == "content-length" {
			continue
		}
		for _, v := range values {
			dst.Add(key, v)
		}
	}
}

func copyResponseHeaders(dst, src http.Header) {
	for key, values := range src {
		lower := strings.ToLower(key)
		if lower == "content-length" || lower == "transfer-encoding" || lower == "content-type" {
			continue
		}
		for _, v := range values {
			dst.Add(key, v)
		}
	}
}

func (p *Proxy) fail(c *gin.Context, service string, err error) {
	if isConnectionError(err) {
		log.Warn().Err(err).Str("service", service).Msg("downstream unreachable")
		p.countFailure(service, "unreachable")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"detail": "Service unavailable. Please ensure the microservice is running.",
		})
		return
	}

	log.Error().Err(err).Str("service", service).Msg("downstream request failed")
	p.countFailure(service, "error")
	c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
}

// isConnectionError reports whether err is a failure to reach the downstream
// at all, as opposed to a failure during the exchange.
func isConnectionError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

func (p *Proxy) observe(service string, status int, elapsed time.Duration) {
	if p.metrics == nil {
		return
	}
	p.metrics.ProxiedRequests.WithLabelValues(service, http.StatusText(status)).Inc()
	p.metrics.ProxyLatency.WithLabelValues(service).Observe(elapsed.Seconds())
}

func (p *Proxy) countFailure(service, reason string) {
	if p.metrics == nil {
		return
	}
	p.metrics.ProxyFailures.WithLabelValues(service, reason).Inc()
}
