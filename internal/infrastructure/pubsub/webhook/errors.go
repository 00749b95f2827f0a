package webhookpubsub

import "errors"

var (
	// ErrUnknownWebhookAction specifies that the given string does not represent
	// any known action.
	ErrUnknownWebhookAction = errors.New("action is unknown")
	// ErrInvalidEndpoint is returned when subscribing with an endpoint that is
	// not a valid URI.
	ErrInvalidEndpoint = errors.New("webhook endpoint must be a valid URI")
	// ErrInvalidRateLimit is returned when creating the service with a
	// non-positive number of requests per second.
	ErrInvalidRateLimit = errors.New("requests per second must be positive")
)
