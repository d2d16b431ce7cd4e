package httpclient

import (
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scan-io-git/retirescan/pkg/shared/config"
)

func TestApplyHttpClientConfig(t *testing.T) {
	tests := []struct {
		name     string
		input    *config.HttpClient
		retries  int
		timeout  time.Duration
		insecure bool
		proxy    string
	}{
		{
			name:    "nil uses defaults",
			input:   nil,
			retries: 3,
			timeout: 30 * time.Second,
		},
		{
			name:    "empty uses defaults",
			input:   &config.HttpClient{},
			retries: 3,
			timeout: 30 * time.Second,
		},
		{
			name: "overrides",
			input: &config.HttpClient{
				RetryCount:      5,
				Timeout:         10 * time.Second,
				TlsClientConfig: config.TlsClientConfig{Verify: config.BoolPtr(false)},
				Proxy:           config.Proxy{Host: "http://proxy.local", Port: "3128"},
			},
			retries:  5,
			timeout:  10 * time.Second,
			insecure: true,
			proxy:    "http://proxy.local:3128",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := applyHttpClientConfig(tt.input)
			assert.Equal(t, tt.retries, got.RetryCount)
			assert.Equal(t, tt.timeout, got.Timeout)
			require.NotNil(t, got.TLSClientConfig)
			assert.Equal(t, tt.insecure, got.TLSClientConfig.InsecureSkipVerify)
			assert.Equal(t, tt.proxy, got.Proxy)
		})
	}
}

func TestInitializeRestyClient(t *testing.T) {
	cfg := &config.Config{HttpClient: config.HttpClient{RetryCount: 2, Timeout: 5 * time.Second}}
	client := InitializeRestyClient(hclog.NewNullLogger(), cfg)
	assert.Equal(t, 2, client.RetryCount)
	assert.Equal(t, 5*time.Second, client.GetClient().Timeout)
}
