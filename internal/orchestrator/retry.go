package orchestrator

import "strings"

// retryableMarkers are the transient-failure markers adapters surface in
// error text. Matching is a case-insensitive substring check.
var retryableMarkers = []string{
	"NETWORK_ERROR",
	"TIMEOUT",
	"RATE_LIMIT",
	"SERVER_ERROR",
	"CONNECTION_RESET",
}

// IsRetryableError reports whether an adapter error is worth a
// backoff-and-retry instead of failing the platform outright.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	return isRetryableMessage(err.Error())
}

func isRetryableMessage(msg string) bool {
	upper := strings.ToUpper(msg)
	for _, marker := range retryableMarkers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}
