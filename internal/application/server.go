package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"atlassian-search-mcp/internal/domain"
)

// Server is the main MCP server implementation.
// It orchestrates the transport layer and request routing, and implements
// the MCP protocol methods: initialize, tools/list, and tools/call.
type Server struct {
	transport domain.Transport
	router    *RequestRouter
	config    *domain.Config
	logger    *logrus.Logger
}

// NewServer creates a new MCP server instance.
// It requires a transport, router, and configuration. A nil logger falls
// back to a default logrus logger writing to stderr.
func NewServer(
	transport domain.Transport,
	router *RequestRouter,
	config *domain.Config,
	logger *logrus.Logger,
) *Server {
	if logger == nil {
		logger = logrus.New()
	}

	return &Server{
		transport: transport,
		router:    router,
		config:    config,
		logger:    logger,
	}
}

// Start begins the server operation.
// It starts the transport layer and begins processing incoming requests.
func (s *Server) Start(ctx context.Context) error {
	// Start the transport layer
	if err := s.transport.Start(ctx); err != nil {
		s.logger.WithError(err).WithField("transport_type", s.config.Transport.Type).Error("failed to start transport")
		return fmt.Errorf("failed to start transport: %w", err)
	}

	s.logger.WithField("transport_type", s.config.Transport.Type).Info("server started")

	// Start processing requests
	go s.processRequests(ctx)

	return nil
}

// processRequests continuously processes incoming JSON-RPC requests.
func (s *Server) processRequests(ctx context.Context) {
	reqChan := s.transport.Receive()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("server shutting down")
			return
		case req, ok := <-reqChan:
			if !ok {
				// Channel closed, transport is shutting down
				return
			}

			// Process the request
			s.handleRequest(ctx, req)
		}
	}
}

// handleRequest processes a single JSON-RPC request.
// A failed request never takes the server down; the error is sent back to
// the caller and the loop moves on to the next request.
func (s *Server) handleRequest(ctx context.Context, req *domain.Request) {
	s.logger.WithFields(logrus.Fields{
		"method":     req.Method,
		"request_id": req.ID,
	}).Debug("received request")

	// Validate request structure
	if err := s.validateRequest(req); err != nil {
		s.sendErrorResponse(req.ID, domain.InvalidRequest, "Invalid Request", err.Error())
		return
	}

	// Route to appropriate handler based on method
	var response *domain.Response
	var err error

	switch req.Method {
	case "initialize":
		response, err = s.handleInitialize(req)
	case "notifications/initialized":
		// Notification only, nothing goes back
		return
	case "tools/list":
		response, err = s.handleToolsList(req)
	case "tools/call":
		response, err = s.handleToolsCall(ctx, req)
	default:
		s.sendErrorResponse(req.ID, domain.MethodNotFound, "Method not found", fmt.Sprintf("unknown method: %s", req.Method))
		return
	}

	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"method":     req.Method,
			"request_id": req.ID,
		}).Error("request processing failed")
		// Error response already sent by handler
		return
	}

	// Send the response
	if err := s.transport.Send(response); err != nil {
		s.logger.WithError(err).WithField("request_id", req.ID).Error("failed to send response")
	}
}

// validateRequest validates the basic structure of a JSON-RPC request.
func (s *Server) validateRequest(req *domain.Request) error {
	if req.JSONRPC != "2.0" {
		return fmt.Errorf("invalid jsonrpc version: %s", req.JSONRPC)
	}

	if req.Method == "" {
		return fmt.Errorf("method is required")
	}

	return nil
}

// handleInitialize handles the MCP initialize method.
// This is the initial handshake between client and server.
func (s *Server) handleInitialize(req *domain.Request) (*domain.Response, error) {
	result := map[string]interface{}{
		"protocolVersion": "2024-11-05",
		"capabilities": map[string]interface{}{
			"tools": map[string]interface{}{},
		},
		"serverInfo": map[string]interface{}{
			"name":    "atlassian-search-mcp",
			"version": "1.0.0",
		},
	}

	return &domain.Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
	}, nil
}

// handleToolsList handles the MCP tools/list method.
// Returns all available tools from registered handlers; the list is empty
// when no backend is configured.
func (s *Server) handleToolsList(req *domain.Request) (*domain.Response, error) {
	// Get all tools from the router
	tools := s.router.ListAllTools()

	result := map[string]interface{}{
		"tools": tools,
	}

	return &domain.Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
	}, nil
}

// handleToolsCall handles the MCP tools/call method.
// Executes a tool call by routing it to the appropriate handler.
func (s *Server) handleToolsCall(ctx context.Context, req *domain.Request) (*domain.Response, error) {
	// Parse the tool request from params
	toolReq, err := s.parseToolRequest(req.Params)
	if err != nil {
		s.sendErrorResponse(req.ID, domain.InvalidParams, "Invalid params", err.Error())
		return nil, err
	}

	// Route the request to the appropriate handler
	toolResp, err := s.router.Route(ctx, toolReq)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"tool":       toolReq.Name,
			"request_id": req.ID,
		}).Error("tool execution failed")

		// Map the error to an appropriate JSON-RPC error
		s.sendMappedError(req.ID, err)
		return nil, err
	}

	// Return successful response
	return &domain.Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  toolResp,
	}, nil
}

// parseToolRequest parses the params field into a ToolRequest.
func (s *Server) parseToolRequest(params interface{}) (*domain.ToolRequest, error) {
	if params == nil {
		return nil, fmt.Errorf("params is required for tools/call")
	}

	// Convert params to JSON and back to ToolRequest
	// This handles both map[string]interface{} and already-parsed structs
	jsonData, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %w", err)
	}

	var toolReq domain.ToolRequest
	if err := json.Unmarshal(jsonData, &toolReq); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tool request: %w", err)
	}

	// Validate required fields
	if toolReq.Name == "" {
		return nil, fmt.Errorf("tool name is required")
	}

	if toolReq.Arguments == nil {
		toolReq.Arguments = make(map[string]interface{})
	}

	return &toolReq, nil
}

// sendErrorResponse sends a JSON-RPC error response.
func (s *Server) sendErrorResponse(id interface{}, code int, message string, data interface{}) {
	response := &domain.Response{
		JSONRPC: "2.0",
		ID:      id,
		Error: &domain.Error{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}

	if err := s.transport.Send(response); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"request_id":    id,
			"error_code":    code,
			"error_message": message,
		}).Error("failed to send error response")
	}
}

// sendMappedError maps a tool execution failure to the matching JSON-RPC
// error and sends it. Unknown tools and unconfigured backends share one
// error code on the wire; the distinction survives only in the logs.
func (s *Server) sendMappedError(id interface{}, err error) {
	// A handler may hand back a ready-made protocol error
	var rpcErr *domain.Error
	if errors.As(err, &rpcErr) {
		s.sendErrorResponse(id, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}

	if errors.Is(err, domain.ErrUnknownTool) || errors.Is(err, domain.ErrBackendNotConfigured) {
		s.sendErrorResponse(id, domain.MethodNotFound, "Method not found", err.Error())
		return
	}

	// Backend failures carry the adapter's message verbatim
	var backendErr *domain.BackendError
	if errors.As(err, &backendErr) {
		s.sendErrorResponse(id, domain.InternalError, "Internal error", backendErr.Message)
		return
	}

	// Default to internal error
	s.sendErrorResponse(id, domain.InternalError, "Internal error", err.Error())
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	s.logger.Info("closing server")
	return s.transport.Close()
}
