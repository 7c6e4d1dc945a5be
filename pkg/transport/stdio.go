package transport

import (
	"bufio"
	"encoding/json"
	"io"
	"os"

	"github.com/mcpframework/core/internal/logger"
	"github.com/mcpframework/core/pkg/protocol"
)

// StdioTransport reads newline- or whitespace-delimited JSON-RPC frames
// from stdin and writes responses to stdout. Unlike the brace-counting
// reader this replaces, json.Decoder already tracks string/escape state
// and object nesting internally, so it just consumes one JSON value per
// ReadRequest call.
type StdioTransport struct {
	decoder *json.Decoder
	writer  *bufio.Writer
}

// NewStdioTransport wires a transport to the process's stdin/stdout.
func NewStdioTransport() *StdioTransport {
	return &StdioTransport{
		decoder: json.NewDecoder(os.Stdin),
		writer:  bufio.NewWriter(os.Stdout),
	}
}

// ReadRequest decodes the next JSON-RPC request from stdin.
func (t *StdioTransport) ReadRequest() (*protocol.JsonRpcRequest, error) {
	var req protocol.JsonRpcRequest
	if err := t.decoder.Decode(&req); err != nil {
		if err == io.EOF {
			logger.Info("stdin closed, client disconnected")
		}
		return nil, err
	}
	if req.JsonRPC == "" {
		req.JsonRPC = protocol.JsonRpcVersion
	}
	return &req, nil
}

// WriteResponse marshals and flushes a JSON-RPC response to stdout,
// terminated by a newline so line-oriented readers on the other end can
// frame it.
func (t *StdioTransport) WriteResponse(resp *protocol.JsonRpcResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	if _, err := t.writer.Write(data); err != nil {
		return err
	}
	if err := t.writer.WriteByte('\n'); err != nil {
		return err
	}
	return t.writer.Flush()
}
