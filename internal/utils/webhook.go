package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"
)

// getWebhookURL gets the webhook URL from the environment
func getWebhookURL() string {
	return os.Getenv("DISCORD_WEBHOOK")
}

// SendWebhookLog sends a log message to the Discord webhook with rate limit
// handling. When no webhook is configured the message is skipped silently.
func SendWebhookLog(message string) error {
	webhookURL := getWebhookURL()
	if webhookURL == "" {
		return nil
	}

	payload := map[string]interface{}{
		"content": message,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	maxRetries := 3
	for attempt := 0; attempt < maxRetries; attempt++ {
		req, err := http.NewRequest("POST", webhookURL, bytes.NewBuffer(jsonData))
		if err != nil {
			return fmt.Errorf("failed to create webhook request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := GetHTTPClient().Do(req)
		if err != nil {
			GetLogger().Warnf("Failed to send webhook: %v", err)
			return fmt.Errorf("failed to send webhook request: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := resp.Header.Get("Retry-After")
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()

			wait := time.Second
			if secs, err := strconv.Atoi(retryAfter); err == nil && secs > 0 {
				wait = time.Duration(secs) * time.Second
			}
			GetLogger().Debugf("Webhook rate limited, retrying in %s", wait)
			time.Sleep(wait)
			continue
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 300 {
			return fmt.Errorf("webhook returned status %d", resp.StatusCode)
		}
		return nil
	}

	return fmt.Errorf("webhook rate limited after %d attempts", maxRetries)
}
