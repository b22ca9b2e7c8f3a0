package app

import (
	"net/http"
	"reflect"
	"testing"
	"time"
)

func TestNewHTTPClient_Config(t *testing.T) {
	c := newHTTPClient(10*time.Second, true)
	if c.Timeout != 10*time.Second {
		t.Fatalf("timeout = %v", c.Timeout)
	}
	tr, ok := c.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("expected http.Transport")
	}
	// Ensure we didn't return the default client's transport
	if reflect.ValueOf(http.DefaultTransport).Pointer() == reflect.ValueOf(tr).Pointer() {
		t.Fatalf("transport should not be default")
	}
	if tr.TLSClientConfig != nil && tr.TLSClientConfig.InsecureSkipVerify {
		t.Errorf("expected SSL verification to be enabled")
	}
}

// SSL verification can be disabled for self-signed certificates.
func TestNewHTTPClient_SSLVerifyDisabled(t *testing.T) {
	tr := newHTTPClient(0, false).Transport.(*http.Transport)
	if tr.TLSClientConfig == nil || !tr.TLSClientConfig.InsecureSkipVerify {
		t.Errorf("expected InsecureSkipVerify=true when SSL verification is disabled")
	}
}

func TestApplyEnvOverrides_SSLVerify(t *testing.T) {
	t.Setenv("SSL_VERIFY", "false")
	cfg := DefaultConfig()
	ApplyEnvOverrides(&cfg)
	if !cfg.SkipTLSVerify {
		t.Fatalf("SSL_VERIFY=false should skip verification")
	}
}
