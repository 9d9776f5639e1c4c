package translator

import (
	"errors"
	"fmt"
)

// The four failure classes a call can surface. Configuration errors are
// detected before any network I/O; network errors are the transport's own,
// returned wrapped; the two below cover the provider side.
var (
	// ErrMissingAPIKey is a configuration error: the call is never attempted.
	ErrMissingAPIKey = errors.New("API key required")

	// ErrMalformedResponse is a format error: the provider answered but the
	// body could not be decoded or no prompt fields could be extracted.
	ErrMalformedResponse = errors.New("malformed response body")
)

// RemoteError is a non-success HTTP status from the provider.
type RemoteError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s returned status %d: %s", e.Service, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s returned status %d", e.Service, e.StatusCode)
}
