package toolexec

import (
	"context"
	"sync"
)

// FakeRunner records commands instead of running them. Handler, when set,
// decides the outcome of each call.
type FakeRunner struct {
	Handler func(cmd Command) (*Result, error)

	mu    sync.Mutex
	Calls []Command
}

// Run records cmd and delegates to Handler.
func (f *FakeRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.Calls = append(f.Calls, cmd)
	f.mu.Unlock()
	if f.Handler == nil {
		return &Result{}, nil
	}
	return f.Handler(cmd)
}

// Names lists the invoked program names in call order.
func (f *FakeRunner) Names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		names[i] = c.Name
	}
	return names
}
