// Package transport defines the wire-level contract the dispatcher reads
// requests from and writes responses to, plus a stdio implementation.
package transport

import (
	"github.com/mcpframework/core/pkg/protocol"
)

// Transport is the dispatcher's view of a connection: a stream of parsed
// requests in and marshaled responses out. A non-nil error from ReadRequest
// (io.EOF included) signals the stream ended; the caller stops serving.
type Transport interface {
	ReadRequest() (*protocol.JsonRpcRequest, error)
	WriteResponse(*protocol.JsonRpcResponse) error
}
