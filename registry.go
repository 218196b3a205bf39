// SPDX-FileCopyrightText: Copyright 2026 The duplexrpc Authors
// SPDX-License-Identifier: BSD-3-Clause

package jrpc2

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps method names to their bound handlers.
//
// It is read concurrently by every dispatch invocation and mutated rarely,
// normally at startup. A Resolve never observes a partially constructed
// binding.
type Registry struct {
	mu      sync.RWMutex
	methods map[string]Handler
}

// NewRegistry returns an empty method registry.
func NewRegistry() *Registry {
	return &Registry{
		methods: make(map[string]Handler),
	}
}

// Bind registers handler under name.
//
// Binding a name that already has a handler fails with ErrDuplicateMethod;
// use Rebind to replace a binding on purpose.
func (r *Registry) Bind(name string, handler Handler) error {
	if name == "" {
		return fmt.Errorf("bind: method name must not be empty")
	}
	if handler == nil {
		return fmt.Errorf("bind %q: handler must not be nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.methods[name]; exists {
		return fmt.Errorf("bind %q: %w", name, ErrDuplicateMethod)
	}
	r.methods[name] = handler

	return nil
}

// Rebind registers handler under name, replacing any existing binding.
func (r *Registry) Rebind(name string, handler Handler) {
	r.mu.Lock()
	r.methods[name] = handler
	r.mu.Unlock()
}

// Unbind removes the binding for name. It is a no-op if the name is not
// bound.
func (r *Registry) Unbind(name string) {
	r.mu.Lock()
	delete(r.methods, name)
	r.mu.Unlock()
}

// Resolve looks up the handler bound to name.
func (r *Registry) Resolve(name string) (Handler, bool) {
	r.mu.RLock()
	handler, ok := r.methods[name]
	r.mu.RUnlock()

	return handler, ok
}

// Methods returns the bound method names in sorted order.
func (r *Registry) Methods() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.methods))
	for name := range r.methods {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)

	return names
}
