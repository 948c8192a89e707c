package domain

type contextKey string

// Context keys under which the web layer stores request metadata.
// Defined here so core services can read them without depending on the
// web adapters.
const (
	// RequestIDKey carries the per-request correlation id.
	RequestIDKey contextKey = "request_id"

	// ClientAddrKey carries the remote client address.
	ClientAddrKey contextKey = "client_addr"
)
