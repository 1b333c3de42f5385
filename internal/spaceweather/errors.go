package spaceweather

import (
	"errors"
	"fmt"
)

// ErrMalformedUpstream marks payloads that arrived but could not be parsed
// into the domain's typed records. Callers can distinguish it from network
// failures with errors.Is.
var ErrMalformedUpstream = errors.New("malformed upstream payload")

func malformed(feed string, cause error) error {
	return fmt.Errorf("%s: %w: %v", feed, ErrMalformedUpstream, cause)
}
