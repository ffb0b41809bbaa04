package gologger

import (
	"context"
	"fmt"
	"strings"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-content-blocks/internal/logging"
	"github.com/goliatone/go-content-blocks/internal/runtimeconfig"
	"github.com/goliatone/go-content-blocks/pkg/interfaces"
)

// ServiceName is attached as the "service" field of every logger unless the
// config overrides it.
const ServiceName = "contentblocks"

// Config captures the options exposed by the go-logger adapter.
type Config struct {
	Level     string
	Format    string
	AddSource bool
	// Focus restricts output to the named loggers. Short module names such as
	// "hydration" expand to "contentblocks.hydration".
	Focus  []string
	Fields map[string]any
}

// FromRuntime maps the runtime logging section onto an adapter config.
func FromRuntime(cfg runtimeconfig.LoggingConfig) Config {
	return Config{
		Level:     cfg.Level,
		Format:    cfg.Format,
		AddSource: cfg.AddSource,
		Focus:     cfg.Focus,
	}
}

var levels = map[string]string{
	"trace":   glog.Trace,
	"debug":   glog.Debug,
	"info":    glog.Info,
	"warn":    glog.Warn,
	"warning": glog.Warn,
	"error":   glog.Error,
	"fatal":   glog.Fatal,
}

// Provider hands out go-logger child loggers named after content blocks modules.
type Provider struct {
	root   *glog.BaseLogger
	fields map[string]any
}

func NewProvider(cfg Config) (*Provider, error) {
	var options []glog.Option
	if level, ok := levels[strings.ToLower(strings.TrimSpace(cfg.Level))]; ok {
		options = append(options, glog.WithLevel(level))
	}

	format, err := formatOption(cfg.Format)
	if err != nil {
		return nil, err
	}
	options = append(options, format)
	if cfg.AddSource {
		options = append(options, glog.WithAddSource(true))
	}

	root := glog.NewLogger(options...)
	if focus := expandFocus(cfg.Focus); len(focus) > 0 {
		root.Focus(focus...)
	}

	fields := map[string]any{"service": ServiceName}
	for key, value := range cfg.Fields {
		fields[key] = value
	}
	return &Provider{root: root, fields: fields}, nil
}

func formatOption(format string) (glog.Option, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return glog.WithLoggerTypeJSON(), nil
	case "console":
		return glog.WithLoggerTypeConsole(), nil
	case "pretty":
		return glog.WithLoggerTypePretty(), nil
	default:
		return nil, fmt.Errorf("logging: unsupported go-logger format %q", format)
	}
}

// GetLogger returns the child logger for name, or the root logger when name
// is blank.
func (p *Provider) GetLogger(name string) interfaces.Logger {
	if p == nil {
		return logging.NoOp()
	}
	var inner glog.Logger = p.root
	if name = strings.TrimSpace(name); name != "" {
		inner = p.root.GetLogger(name)
	}
	return wrap(inner).WithFields(p.fields)
}

func wrap(inner glog.Logger) *adapter {
	return &adapter{inner: inner}
}

type adapter struct {
	inner glog.Logger
}

var _ interfaces.FieldsLogger = (*adapter)(nil)

func (l *adapter) Trace(msg string, args ...any) { l.inner.Trace(msg, args...) }
func (l *adapter) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l *adapter) Info(msg string, args ...any)  { l.inner.Info(msg, args...) }
func (l *adapter) Warn(msg string, args ...any)  { l.inner.Warn(msg, args...) }
func (l *adapter) Error(msg string, args ...any) { l.inner.Error(msg, args...) }
func (l *adapter) Fatal(msg string, args ...any) { l.inner.Fatal(msg, args...) }

// WithFields copies fields before handing them to go-logger. Loggers that
// cannot carry fields are returned unchanged.
func (l *adapter) WithFields(fields map[string]any) interfaces.Logger {
	with, ok := l.inner.(glog.FieldsLogger)
	if !ok || len(fields) == 0 {
		return l
	}
	copied := make(map[string]any, len(fields))
	for key, value := range fields {
		copied[key] = value
	}
	return wrap(with.WithFields(copied))
}

func (l *adapter) WithContext(ctx context.Context) interfaces.Logger {
	if ctx == nil {
		return l
	}
	return wrap(l.inner.WithContext(ctx))
}

func expandFocus(names []string) []string {
	var out []string
	for _, name := range names {
		name = strings.TrimSpace(name)
		switch {
		case name == "":
			continue
		case strings.Contains(name, "."):
			out = append(out, name)
		default:
			out = append(out, ServiceName+"."+name)
		}
	}
	return out
}
