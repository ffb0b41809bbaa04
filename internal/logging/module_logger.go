package logging

import (
	"context"

	"github.com/goliatone/go-content-blocks/pkg/interfaces"
)

const (
	rootModule      = "contentblocks"
	blocksModule    = "contentblocks.blocks"
	hydrationModule = "contentblocks.hydration"
	showcaseModule  = "contentblocks.showcase"
	mediaModule     = "contentblocks.media"
	catalogModule   = "contentblocks.catalog"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module identifier is
// attached as a structured field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// BlocksLogger returns the logger namespace reserved for the blocks service.
func BlocksLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, blocksModule)
}

// HydrationLogger returns the logger namespace reserved for the hydration engine.
func HydrationLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, hydrationModule)
}

// ShowcaseLogger returns the logger namespace reserved for the showcase generator.
func ShowcaseLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, showcaseModule)
}

// MediaLogger returns the logger namespace reserved for video resolution.
func MediaLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, mediaModule)
}

// CatalogLogger returns the logger namespace reserved for catalog loading.
func CatalogLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, catalogModule)
}

// NoOp returns a logger that drops every log entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
