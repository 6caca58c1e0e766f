package utils

import (
	"net/http"
	"time"
)

// GlobalHTTPClient is a shared HTTP client with connection pooling.
// Reused across feed polls instead of creating a client per request.
var GlobalHTTPClient = &http.Client{
	Timeout: 30 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	},
}

// GetHTTPClient returns the global HTTP client with connection pooling
func GetHTTPClient() *http.Client {
	return GlobalHTTPClient
}
