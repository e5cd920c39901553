package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mymcpme/recorder/internal/domain"
	pb "github.com/mymcpme/recorder/internal/proto/registry"
)

func guardOnlyClient() *Client {
	// No connection: these tests exercise the duplicate-registration guard,
	// which rejects before any RPC is attempted.
	return &Client{
		inFlight:       make(map[string]struct{}),
		requestTimeout: time.Second,
	}
}

func TestRegisterRejectsAlreadyRegisteredTool(t *testing.T) {
	c := guardOnlyClient()

	_, err := c.Register(context.Background(), &domain.GeneratedTool{
		ID:             "t1",
		Name:           "demo",
		RegistryToolID: "reg-1",
	})
	if !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("Expected ErrAlreadyRegistered, got %v", err)
	}
}

func TestRegisterRejectsInFlightDuplicate(t *testing.T) {
	c := guardOnlyClient()
	c.inFlight["t1"] = struct{}{}

	_, err := c.Register(context.Background(), &domain.GeneratedTool{ID: "t1", Name: "demo"})
	if !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("Expected ErrAlreadyRegistered for in-flight duplicate, got %v", err)
	}
}

func TestUnregisterEmptyIDIsNoop(t *testing.T) {
	c := guardOnlyClient()

	if err := c.Unregister(context.Background(), ""); err != nil {
		t.Errorf("Unregister with empty ID must be a no-op, got %v", err)
	}
}

func TestToolRegistryDescriptorBuilds(t *testing.T) {
	// Loading the generated file descriptor happens at package init; a
	// malformed descriptor would panic before any test runs. Pin the
	// service and message shapes on top of that.
	file := pb.File_registry_proto
	if file == nil {
		t.Fatal("Expected the registry file descriptor to be built")
	}

	svc := file.Services().ByName("ToolRegistry")
	if svc == nil {
		t.Fatal("Expected the ToolRegistry service in the descriptor")
	}
	if got := svc.Methods().Len(); got != 2 {
		t.Errorf("Expected 2 methods, got %d", got)
	}

	def := file.Messages().ByName("ToolDefinition")
	if def == nil {
		t.Fatal("Expected the ToolDefinition message in the descriptor")
	}
	if got := def.Fields().Len(); got != 6 {
		t.Errorf("Expected 6 fields, got %d", got)
	}
	params := def.Fields().ByName("parameters")
	if params == nil || !params.IsList() {
		t.Error("Expected parameters to be a repeated field")
	}
}
