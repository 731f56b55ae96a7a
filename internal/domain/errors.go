package domain

import (
	"fmt"
	"net/http"
)

// HTTPStatusError is returned when a server answers with a non-2xx status.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d (%s) for %s", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}

// CheckStatus returns an *HTTPStatusError unless code is 2xx.
func CheckStatus(url string, code int) error {
	if code < 200 || code > 299 {
		return &HTTPStatusError{URL: url, StatusCode: code}
	}
	return nil
}
