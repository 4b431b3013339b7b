package guard

import (
	"fmt"
	"net/http"
)

// UnsupportedRequestTypeError indicates an execution context with a
// transport kind the resolver does not know. The failure is fatal to the
// call and never retried.
type UnsupportedRequestTypeError struct {
	// Kind is the unrecognized transport kind.
	Kind TransportKind
}

// Error implements the error interface.
func (e *UnsupportedRequestTypeError) Error() string {
	return fmt.Sprintf("unsupported request type %q", e.Kind)
}

// RequestResolver extracts the concrete underlying HTTP request from an
// opaque execution context. Resolution is polymorphic over the transport
// kind and has no side effects.
type RequestResolver struct{}

// NewRequestResolver creates a request resolver.
func NewRequestResolver() *RequestResolver {
	return &RequestResolver{}
}

// Resolve returns the underlying request for the given context.
//
// For the HTTP transport the framework's request object is returned
// unchanged. For the graph-query transport the request is not directly
// reachable: it is recovered by reaching through the query context to the
// connection's outgoing-message backreference. The reach-through is a
// deliberately fragile access path, kept because the graph-query layer does
// not expose the request directly; it is isolated here and covered by tests.
func (rr *RequestResolver) Resolve(ec *ExecutionContext) (*http.Request, error) {
	switch ec.Kind() {
	case TransportHTTP:
		return ec.request, nil

	case TransportGraphQL:
		conn := connectionFrom(ec.queryCtx)
		if conn == nil || conn.OutgoingMessage == nil || conn.OutgoingMessage.Request == nil {
			return nil, fmt.Errorf("graphql context does not carry the originating request")
		}
		return conn.OutgoingMessage.Request, nil

	default:
		return nil, &UnsupportedRequestTypeError{Kind: ec.Kind()}
	}
}
