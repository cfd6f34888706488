package executor

import (
	"net/http"
	"time"
)

const defaultSessionTimeout = 30 * time.Second

// newSession builds the HTTP client owned by one execution. It has its own transport so that
// closing it releases only that execution's connections.
func newSession() *http.Client {
	transport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return &http.Client{Timeout: defaultSessionTimeout}
	}

	return &http.Client{
		Transport: transport.Clone(),
		Timeout:   defaultSessionTimeout,
	}
}
