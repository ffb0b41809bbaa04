package di

import (
	"testing"

	"github.com/goliatone/go-content-blocks/internal/logging/gologger"
	"github.com/goliatone/go-content-blocks/internal/runtimeconfig"
)

func TestConfigureLoggerProviderUsesGoLoggerAdapter(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "json"

	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}

	provider, ok := container.loggerProvider.(*gologger.Provider)
	if !ok {
		t.Fatalf("expected go-logger provider, got %T", container.loggerProvider)
	}

	logger := provider.GetLogger("contentblocks.test")
	if logger == nil {
		t.Fatal("expected logger from go-logger provider, got nil")
	}
}

func TestNoopLoggingLeavesProviderUnset(t *testing.T) {
	container, err := NewContainer(runtimeconfig.DefaultConfig())
	if err != nil {
		t.Fatalf("NewContainer returned error: %v", err)
	}
	if container.loggerProvider != nil {
		t.Fatalf("expected no provider for the noop logging config, got %T", container.loggerProvider)
	}
}
