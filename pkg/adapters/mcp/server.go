// Package mcp exposes the simulation service as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/epinet"
	"github.com/aretw0/epinet/internal/logging"
	"github.com/aretw0/epinet/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Simulator is the subset of *epinet.Service the tools need.
type Simulator interface {
	Generate(ctx context.Context, n int) (epinet.Status, error)
	Step(ctx context.Context, simID string, days int) (epinet.Status, error)
	Simulation(ctx context.Context, simID string) (*domain.Simulation, error)
	Simulations(ctx context.Context) ([]string, error)
	Timeseries(ctx context.Context, simID string, n int) ([]domain.Snapshot, error)
}

type GenerateArgs struct {
	N int `json:"n"`
}

type StepArgs struct {
	SimID string `json:"sim_id"`
	Days  int    `json:"days"`
}

type SimArgs struct {
	SimID string `json:"sim_id"`
	Last  int    `json:"last,omitempty"`
}

// TimeseriesResponse is the output of get_timeseries.
type TimeseriesResponse struct {
	SimID  string            `json:"sim_id" jsonschema_description:"The simulation ID"`
	Series []domain.Snapshot `json:"series" jsonschema_description:"Daily compartment counts, oldest first"`
}

// StateResponse is the output of get_state.
type StateResponse struct {
	SimID string `json:"sim_id" jsonschema_description:"The simulation ID"`
	Day   int    `json:"day" jsonschema_description:"Days simulated so far"`
	State []int  `json:"state" jsonschema_description:"Per-agent state code: 0=S 1=E 2=I 3=Q 4=R"`
}

// Server wraps the Service and exposes it as an MCP Server.
type Server struct {
	sim       Simulator
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(sim Simulator, opts ...Option) *Server {
	s := &Server{
		sim:       sim,
		mcpServer: server.NewMCPServer("epinet-mcp", epinet.Version),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the tools over SSE on addr until ctx is canceled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("generate_graph",
		mcp.WithDescription("Generate a contact graph of n agents over Islamabad and start a simulation on it."),
		mcp.WithNumber("n", mcp.Required(), mcp.Description("Population size (200..20000)")),
		mcp.WithOutputSchema[epinet.Status](),
	), mcp.NewStructuredToolHandler(s.handleGenerate))

	s.mcpServer.AddTool(mcp.NewTool("step_simulation",
		mcp.WithDescription("Advance a simulation by a number of days (1..30), stopping early if the epidemic ends."),
		mcp.WithString("sim_id", mcp.Required(), mcp.Description("Simulation ID returned by generate_graph")),
		mcp.WithNumber("days", mcp.Description("Days to simulate (default 1)")),
		mcp.WithOutputSchema[epinet.Status](),
	), mcp.NewStructuredToolHandler(s.handleStep))

	s.mcpServer.AddTool(mcp.NewTool("get_timeseries",
		mcp.WithDescription("Get the daily S/E/I/Q/R counts of a simulation."),
		mcp.WithString("sim_id", mcp.Required(), mcp.Description("Simulation ID")),
		mcp.WithNumber("last", mcp.Description("Only return the most recent days")),
		mcp.WithOutputSchema[TimeseriesResponse](),
	), mcp.NewStructuredToolHandler(s.handleTimeseries))

	s.mcpServer.AddTool(mcp.NewTool("get_state",
		mcp.WithDescription("Get the state code of every agent of a simulation."),
		mcp.WithString("sim_id", mcp.Required(), mcp.Description("Simulation ID")),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleState))
}

func (s *Server) handleGenerate(ctx context.Context, _ mcp.CallToolRequest, args GenerateArgs) (epinet.Status, error) {
	status, err := s.sim.Generate(ctx, args.N)
	if err != nil {
		return epinet.Status{}, fmt.Errorf("generate failed: %w", err)
	}
	return status, nil
}

func (s *Server) handleStep(ctx context.Context, _ mcp.CallToolRequest, args StepArgs) (epinet.Status, error) {
	if args.SimID == "" {
		return epinet.Status{}, errors.New("sim_id is required")
	}
	days := args.Days
	if days == 0 {
		days = 1
	}
	status, err := s.sim.Step(ctx, args.SimID, days)
	if err != nil {
		return epinet.Status{}, fmt.Errorf("step failed: %w", err)
	}
	return status, nil
}

func (s *Server) handleTimeseries(ctx context.Context, _ mcp.CallToolRequest, args SimArgs) (TimeseriesResponse, error) {
	series, err := s.sim.Timeseries(ctx, args.SimID, args.Last)
	if err != nil {
		return TimeseriesResponse{}, err
	}
	return TimeseriesResponse{SimID: args.SimID, Series: series}, nil
}

func (s *Server) handleState(ctx context.Context, _ mcp.CallToolRequest, args SimArgs) (StateResponse, error) {
	sim, err := s.sim.Simulation(ctx, args.SimID)
	if err != nil {
		return StateResponse{}, err
	}
	return StateResponse{SimID: sim.ID, Day: sim.Day, State: sim.StateCodes()}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("epinet://simulations", "Simulation IDs",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.sim.Simulations(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list simulations: %w", err)
		}
		jsonBytes, _ := json.Marshal(ids)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "epinet://simulations",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
