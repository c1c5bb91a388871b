// Package converter turns uploaded documents into PDF.
//
// Each Engine handles a set of input formats. A Manager holds engines in
// priority order and hands a document to the first one that accepts its
// format.
package converter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"docconvert/internal/config"
	"docconvert/internal/logging"
)

// ErrNoEngine is returned when no registered engine accepts a format.
var ErrNoEngine = errors.New("no conversion engine for format")

// ErrEmptyInput is returned for a zero-byte document; no engine is run.
var ErrEmptyInput = errors.New("input document is empty")

// ErrEmptyOutput is returned when an engine reports success without bytes.
var ErrEmptyOutput = errors.New("conversion produced no output")

// Engine converts a whole document held in memory.
type Engine interface {
	Name() string
	// Accepts reports whether the engine can read the given format
	// (lower-case extension without dot, possibly empty).
	Accepts(format string) bool
	// Convert returns the document rendered as targetExt (".pdf").
	Convert(ctx context.Context, input []byte, format, targetExt string) ([]byte, error)
}

// Converter is what the conversion pipeline depends on.
type Converter interface {
	// Convert picks an engine for format and runs it. It returns the output
	// bytes and the name of the engine that produced them.
	Convert(ctx context.Context, format string, input []byte, targetExt string) ([]byte, string, error)
}

// Inspector validates a produced PDF and reports its page count.
type Inspector interface {
	Inspect(pdf []byte) (int, error)
}

// Manager selects an engine per document (strategy pattern).
type Manager struct {
	engines []Engine
	metrics *Metrics
}

// NewManager creates a manager trying engines in the given order.
func NewManager(engines ...Engine) *Manager {
	return &Manager{engines: engines}
}

// Register appends an engine with the lowest priority.
func (m *Manager) Register(e Engine) {
	m.engines = append(m.engines, e)
}

// WithMetrics records per-engine conversion counts and durations.
func (m *Manager) WithMetrics(mt *Metrics) *Manager {
	m.metrics = mt
	return m
}

// Engines lists registered engine names in priority order.
func (m *Manager) Engines() []string {
	names := make([]string, 0, len(m.engines))
	for _, e := range m.engines {
		names = append(names, e.Name())
	}
	return names
}

// Select returns the first engine accepting format.
func (m *Manager) Select(format string) (Engine, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	for _, e := range m.engines {
		if e.Accepts(format) {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNoEngine, format)
}

func (m *Manager) Convert(ctx context.Context, format string, input []byte, targetExt string) ([]byte, string, error) {
	if len(input) == 0 {
		return nil, "", ErrEmptyInput
	}
	engine, err := m.Select(format)
	if err != nil {
		return nil, "", err
	}

	start := time.Now()
	out, err := engine.Convert(ctx, input, strings.ToLower(strings.TrimPrefix(format, ".")), targetExt)
	if err == nil && len(out) == 0 {
		err = ErrEmptyOutput
	}
	elapsed := time.Since(start)

	if err != nil {
		m.metrics.observe(engine.Name(), "failed", elapsed)
		logging.Warn("engine failed", "engine", engine.Name(), "format", format, "error", err)
		return nil, engine.Name(), fmt.Errorf("%s: %w", engine.Name(), err)
	}
	m.metrics.observe(engine.Name(), "done", elapsed)
	logging.Debug("engine finished", "engine", engine.Name(), "format", format, "bytes", len(out), "ms", elapsed.Milliseconds())
	return out, engine.Name(), nil
}

// FromConfig builds the engine chain for the configured mode.
//
//	libreoffice: every format goes to soffice
//	remote:      every format goes to the remote service
//	auto:        html via Chrome, images and plain text via gofpdf, the rest
//	             via the remote service when configured, soffice otherwise
func FromConfig(cfg config.ConverterConfig) *Manager {
	lo := NewLibreOffice(cfg.SofficePath)
	switch cfg.Engine {
	case "libreoffice":
		return NewManager(lo)
	case "remote":
		return NewManager(NewRemote(cfg.RemoteURL, nil))
	}

	m := NewManager(
		NewChrome(ChromeOptions{ExecPath: cfg.ChromePath, NoSandbox: cfg.ChromeNoSandbox}),
		NewImage(),
		NewText(),
	)
	if cfg.RemoteURL != "" {
		m.Register(NewRemote(cfg.RemoteURL, nil))
	} else {
		m.Register(lo)
	}
	return m
}
