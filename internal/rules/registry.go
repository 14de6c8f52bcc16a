package rules

import (
	"fmt"
	"sort"
	"sync"

	"tenantgrid/pkg/platform/sentinel"
)

// Registry maps rule ids to implementations. It is populated once at startup
// from a fixed, closed set of rules and read concurrently afterwards.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]Rule
}

// NewRegistry returns an empty rule registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]Rule)}
}

// Register adds a rule under its own id. Registering the same id twice
// replaces the previous implementation.
func (r *Registry) Register(rule Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[rule.ID()] = rule
}

// Get returns the rule for id, or sentinel.ErrRuleNotFound.
func (r *Registry) Get(id string) (Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.rules[id]
	if !ok {
		return nil, fmt.Errorf("rule %q: %w", id, sentinel.ErrRuleNotFound)
	}
	return rule, nil
}

// Has reports whether a rule is registered under id.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rules[id]
	return ok
}

// IDs returns the sorted ids of all registered rules.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.rules))
	for id := range r.rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
