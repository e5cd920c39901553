// Package registry talks to the external tool registry over gRPC.
// Registration makes a generated tool callable by the rest of the
// platform; the recorder degrades gracefully when the registry is
// unreachable.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mymcpme/recorder/internal/domain"
	pb "github.com/mymcpme/recorder/internal/proto/registry"
	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
)

var (
	errConnectionShutdown       = errors.New("connection shutdown")
	errConnectionStateUnchanged = errors.New("connection state did not change")

	// ErrAlreadyRegistered is returned when a tool that already carries a
	// registry ID is submitted for registration again.
	ErrAlreadyRegistered = errors.New("tool already registered")
)

// Client provides a gRPC client to the tool registry service.
type Client struct {
	conn   *grpc.ClientConn
	client pb.ToolRegistryClient
	addr   string
	logger *slog.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}

	requestTimeout time.Duration
}

// ClientConfig holds configuration for the registry client.
type ClientConfig struct {
	Address          string
	ConnectTimeout   time.Duration
	RequestTimeout   time.Duration
	KeepaliveTime    time.Duration
	KeepaliveTimeout time.Duration
}

// DefaultClientConfig returns default configuration.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Address:          "localhost:50061",
		ConnectTimeout:   5 * time.Second,
		RequestTimeout:   15 * time.Second,
		KeepaliveTime:    2 * time.Minute,
		KeepaliveTimeout: 10 * time.Second,
	}
}

// NewClient creates a new gRPC client to the tool registry service.
func NewClient(addr string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cfg := DefaultClientConfig()
	if addr != "" {
		cfg.Address = addr
	}

	kacp := keepalive.ClientParameters{
		Time:                cfg.KeepaliveTime,
		Timeout:             cfg.KeepaliveTimeout,
		PermitWithoutStream: false,
	}

	// Build client connection (no network I/O yet).
	conn, err := grpc.NewClient(cfg.Address,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithKeepaliveParams(kacp),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to tool registry at %s: %w", cfg.Address, err)
	}

	// Force a connection attempt during startup so we fail fast on bad
	// registry endpoints.
	connectCtx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()
	if err := waitForReady(connectCtx, conn); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			logger.Warn("failed to close gRPC connection after readiness failure", "error", closeErr)
		}
		return nil, fmt.Errorf("tool registry at %s not ready: %w", cfg.Address, err)
	}

	logger.Info("Connected to tool registry", "address", cfg.Address)

	return &Client{
		conn:           conn,
		client:         pb.NewToolRegistryClient(conn),
		addr:           cfg.Address,
		logger:         logger,
		inFlight:       make(map[string]struct{}),
		requestTimeout: cfg.RequestTimeout,
	}, nil
}

func waitForReady(ctx context.Context, conn *grpc.ClientConn) error {
	for {
		state := conn.GetState()
		switch state {
		case connectivity.Ready:
			return nil
		case connectivity.Idle:
			conn.Connect()
		case connectivity.Shutdown:
			return errConnectionShutdown
		}

		if !conn.WaitForStateChange(ctx, state) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w from %s", errConnectionStateUnchanged, state)
		}
	}
}

// Close closes the gRPC connection.
func (c *Client) Close() {
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.logger.Warn("failed to close gRPC connection", "error", err)
		}
	}
}

// Register submits a generated tool to the registry and returns the
// registry-assigned tool ID. A tool that already carries a registry ID,
// or has a registration currently in flight, is rejected so the same
// save never produces two registry entries.
func (c *Client) Register(ctx context.Context, tool *domain.GeneratedTool) (string, error) {
	if tool.RegistryToolID != "" {
		return "", ErrAlreadyRegistered
	}

	c.mu.Lock()
	if _, dup := c.inFlight[tool.ID]; dup {
		c.mu.Unlock()
		return "", ErrAlreadyRegistered
	}
	c.inFlight[tool.ID] = struct{}{}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.inFlight, tool.ID)
		c.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	resp, err := c.client.RegisterTool(ctx, &pb.RegisterToolRequest{
		Tool: &pb.ToolDefinition{
			Name:            tool.Name,
			Description:     tool.Description,
			Code:            tool.Code,
			Parameters:      tool.Parameters,
			TenantId:        tool.TenantID,
			SourceSessionId: tool.SessionID,
		},
	})
	if err != nil {
		return "", fmt.Errorf("register tool %q: %w", tool.Name, err)
	}
	if resp.GetToolId() == "" {
		return "", fmt.Errorf("register tool %q: registry returned empty tool id", tool.Name)
	}

	c.logger.Info("tool registered", "tool", tool.Name, "registry_tool_id", resp.GetToolId())
	return resp.GetToolId(), nil
}

// Unregister removes a tool from the registry. Removing a tool the
// registry no longer knows about is not an error.
func (c *Client) Unregister(ctx context.Context, registryToolID string) error {
	if registryToolID == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	resp, err := c.client.UnregisterTool(ctx, &pb.UnregisterToolRequest{ToolId: registryToolID})
	if err != nil {
		return fmt.Errorf("unregister tool %s: %w", registryToolID, err)
	}
	if !resp.GetRemoved() {
		c.logger.Debug("registry had no entry for tool", "registry_tool_id", registryToolID)
	}
	return nil
}
