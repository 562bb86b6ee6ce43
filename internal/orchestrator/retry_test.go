package orchestrator

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"network error marker", errors.New("NETWORK_ERROR: connection refused"), true},
		{"timeout marker", errors.New("TIMEOUT: request exceeded deadline"), true},
		{"rate limit marker", errors.New("RATE_LIMIT: 429 from platform"), true},
		{"server error marker", errors.New("SERVER_ERROR: 502 bad gateway"), true},
		{"connection reset marker", errors.New("CONNECTION_RESET by peer"), true},
		{"lowercase marker", errors.New("timeout while waiting for response"), true},
		{"marker embedded in wrapped error", fmt.Errorf("publish failed: %w", errors.New("SERVER_ERROR: 500")), true},
		{"auth failure", errors.New("invalid credentials"), false},
		{"validation failure", errors.New("title too long"), false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, IsRetryableError(tt.err))
		})
	}
}
