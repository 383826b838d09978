// Package scripting embeds a JavaScript engine for user-defined page hooks.
// A script declares an onPage(page, template) function; the compiled hook is
// handed to the layout driver and runs as each page begins.
package scripting

import (
	"context"
	"fmt"
	"sync"

	"github.com/dop251/goja"

	"github.com/wudi/flowkit/observability"
)

// Engine wraps a single goja runtime. Scripts executed through the engine
// share one global scope; the runtime is not safe for concurrent use, so the
// engine serializes calls with a mutex.
type Engine struct {
	mu     sync.Mutex
	vm     *goja.Runtime
	logger observability.Logger
}

// NewEngine returns an engine with an empty global scope.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		vm:     goja.New(),
		logger: observability.NopLogger{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger routes hook errors to the given logger.
func WithLogger(l observability.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// Set binds a value into the script's global scope.
func (e *Engine) Set(name string, value interface{}) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vm.Set(name, value)
}

// Execute runs a script and returns its exported result. A cancelled context
// interrupts a running script.
func (e *Engine) Execute(ctx context.Context, script string) (interface{}, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	done := make(chan struct{})
	defer close(done)
	defer e.vm.ClearInterrupt()

	go func() {
		select {
		case <-ctx.Done():
			e.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	val, err := e.vm.RunString(script)
	if err != nil {
		if interrupted, ok := err.(*goja.InterruptedError); ok {
			if cause := interrupted.Unwrap(); cause != nil {
				return nil, cause
			}
			return nil, context.Canceled
		}
		return nil, err
	}
	return val.Export(), nil
}

// PageHook executes the script and compiles its global onPage(page, template)
// function into a hook suitable for layout.WithPageHook. Errors raised by the
// hook at page time are logged, not propagated; pagination does not stop
// because a decoration script misfired.
func (e *Engine) PageHook(ctx context.Context, script string) (func(page int, template string), error) {
	if _, err := e.Execute(ctx, script); err != nil {
		return nil, fmt.Errorf("scripting: load page hook: %w", err)
	}

	e.mu.Lock()
	fn, ok := goja.AssertFunction(e.vm.Get("onPage"))
	e.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("scripting: script does not define onPage(page, template)")
	}

	return func(page int, template string) {
		e.mu.Lock()
		defer e.mu.Unlock()
		_, err := fn(goja.Undefined(), e.vm.ToValue(page), e.vm.ToValue(template))
		if err != nil {
			e.logger.Warn("page hook failed",
				observability.Int("page", page),
				observability.String("template", template),
				observability.Error("error", err),
			)
		}
	}, nil
}
