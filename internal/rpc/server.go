// Package rpc exposes the analytics engine over a line-delimited JSON-RPC
// loop on stdio, the transport dashboards and supervisors integrate with.
package rpc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"workpulse/internal/alerts"
	"workpulse/internal/capacity"
	"workpulse/internal/forecast"
	"workpulse/internal/performance"

	"github.com/rs/zerolog/log"
)

// JSONRPCRequest represents a standard JSON-RPC request.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// JSONRPCResponse represents a standard JSON-RPC response.
type JSONRPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

// Server routes JSON-RPC methods to the analytics components.
type Server struct {
	calc      *capacity.Calculator
	perf      *performance.Aggregator
	forecasts *forecast.Engine
	alerts    *alerts.Engine

	in  io.Reader
	out io.Writer
}

// NewServer creates a Server bound to the given transport streams.
func NewServer(calc *capacity.Calculator, perf *performance.Aggregator, fc *forecast.Engine, ae *alerts.Engine, in io.Reader, out io.Writer) *Server {
	return &Server{
		calc:      calc,
		perf:      perf,
		forecasts: fc,
		alerts:    ae,
		in:        in,
		out:       out,
	}
}

// Serve runs the JSON-RPC loop until the input stream closes.
func (s *Server) Serve(ctx context.Context) error {
	reader := bufio.NewReader(s.in)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if len(line) <= 1 {
			continue
		}

		var req JSONRPCRequest
		if err := json.Unmarshal(line, &req); err != nil {
			log.Error().Err(err).Msg("Failed to unmarshal request")
			continue
		}

		s.handleRequest(ctx, req)
	}
}

func (s *Server) handleRequest(ctx context.Context, req JSONRPCRequest) {
	result, err := s.dispatch(ctx, req.Method, req.Params)

	resp := JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
	}
	if err != nil {
		resp.Result = nil
		resp.Error = rpcError(err)
		log.Warn().Err(err).Str("method", req.Method).Msg("Request failed")
	}

	out, _ := json.Marshal(resp)
	fmt.Fprintf(s.out, "%s\n", out)
}

func rpcError(err error) map[string]interface{} {
	code := -32000
	if errors.Is(err, errMethodNotFound) {
		code = -32601
	}
	return map[string]interface{}{
		"code":    code,
		"message": err.Error(),
	}
}
