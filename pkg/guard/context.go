package guard

import (
	"context"
	"net/http"
)

// TransportKind tags an execution context with the transport the protected
// operation is served over. The set is closed; new transports are added as
// new cases.
type TransportKind string

const (
	// TransportHTTP marks a directly served HTTP request.
	TransportHTTP TransportKind = "http"

	// TransportGraphQL marks a graph query served over HTTP. The underlying
	// request is not directly reachable and must be recovered structurally.
	TransportGraphQL TransportKind = "graphql"
)

// ExecutionContext is the opaque context a host framework hands to the
// guard. It exposes its transport kind and transport-specific access to the
// underlying request, plus the key under which per-operation overrides were
// registered.
type ExecutionContext struct {
	kind      TransportKind
	operation string
	request   *http.Request
	queryCtx  context.Context
}

// NewHTTPContext wraps a directly served HTTP request. The operation key is
// used to look up per-operation override options; empty means no overrides.
func NewHTTPContext(r *http.Request, operation string) *ExecutionContext {
	return &ExecutionContext{kind: TransportHTTP, operation: operation, request: r}
}

// NewGraphQLContext wraps a graph-query resolution context. The originating
// request is recovered from the connection backreference the HTTP adapter
// installed into the query context.
func NewGraphQLContext(ctx context.Context, operation string) *ExecutionContext {
	return &ExecutionContext{kind: TransportGraphQL, operation: operation, queryCtx: ctx}
}

// Kind returns the transport kind of this context.
func (ec *ExecutionContext) Kind() TransportKind {
	return ec.kind
}

// Operation returns the override lookup key for the protected operation.
func (ec *ExecutionContext) Operation() string {
	return ec.operation
}

// connectionKey is the context key the graph-query HTTP adapter uses to
// expose its connection state to resolvers.
type connectionKey struct{}

// Connection models the graph-query layer's connection state. The layer does
// not expose the originating request directly; it is only reachable through
// the outgoing message's backreference.
type Connection struct {
	// OutgoingMessage is the in-flight response being assembled for the
	// query.
	OutgoingMessage *OutgoingMessage
}

// OutgoingMessage is the response side of a graph-query connection. Request
// is the backreference to the HTTP request that carried the query.
type OutgoingMessage struct {
	Request *http.Request
}

// WithConnection installs the connection state into a query context. The
// graph-query HTTP adapter calls this once per request before handing the
// context to resolvers.
func WithConnection(ctx context.Context, conn *Connection) context.Context {
	return context.WithValue(ctx, connectionKey{}, conn)
}

// connectionFrom retrieves the connection state from a query context.
func connectionFrom(ctx context.Context) *Connection {
	conn, _ := ctx.Value(connectionKey{}).(*Connection)
	return conn
}
