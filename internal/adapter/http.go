package adapter

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// defaultClient is used when a factory is handed no *http.Client. Model
// inference can be slow; the timeout covers the whole exchange.
func defaultClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Minute}
}

// httpError normalizes an unexpected model-server response: 429 and 5xx are
// retryable, every other status is a fault in the request and fatal.
func httpError(op string, resp *http.Response) *Error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	err := fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return Retryable(op, err)
	}
	return Fatal(op, err)
}
