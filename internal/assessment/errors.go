package assessment

import "errors"

var (
	// ErrValidation means the input was rejected before any outbound call.
	ErrValidation = errors.New("validation error")
	// ErrConfig means credentials or settings for the model are missing.
	ErrConfig = errors.New("configuration error")
	// ErrUpstream covers transport faults, timeouts, empty replies and
	// replies that do not match the output schema.
	ErrUpstream = errors.New("upstream error")
	// ErrPersistence means a history write did not complete.
	ErrPersistence = errors.New("persistence error")
)
