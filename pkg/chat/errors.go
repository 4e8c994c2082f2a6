package chat

import (
	"github.com/pkg/errors"
)

// ErrProfileNotFound means the authenticated user owns no child
// profile. Surfaced to the caller before any model call.
var ErrProfileNotFound = errors.New("child profile not found")

// UpstreamError wraps a model-provider failure on the primary reply
// call. The request fails; there is no retry, since a retry risks a
// duplicate generated (and billed) reply.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return "model provider failure: " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
