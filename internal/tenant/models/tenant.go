// Package models holds the in-memory tenant tree types. Nodes are created
// fresh on every rebuild and never mutated once a snapshot is published, so
// everything here is safe for concurrent readers without locks.
package models

import "tenantgrid/internal/rules"

// Tenant is one node of the hierarchy, identified by its backing database
// name. Parent and children are stored as database-name references so the
// tree stays a simple arena without live back-pointers.
type Tenant struct {
	DBName   string             `json:"dbName"`
	Parent   string             `json:"parent,omitempty"`
	Children map[string]*Tenant `json:"children,omitempty"`
	Profile  *Profile           `json:"profile,omitempty"`
	Rules    []rules.Definition `json:"rules,omitempty"`
}

// NewTenant creates an unlinked node for the given database.
func NewTenant(dbName string) *Tenant {
	return &Tenant{DBName: dbName, Children: make(map[string]*Tenant)}
}

// AddChild attaches a child node under this tenant.
func (t *Tenant) AddChild(child *Tenant) {
	if t.Children == nil {
		t.Children = make(map[string]*Tenant)
	}
	child.Parent = t.DBName
	t.Children[child.DBName] = child
}

// Find returns the node for dbName in the subtree rooted here, or nil.
func (t *Tenant) Find(dbName string) *Tenant {
	if t.DBName == dbName {
		return t
	}
	for _, child := range t.Children {
		if found := child.Find(dbName); found != nil {
			return found
		}
	}
	return nil
}

// Walk visits this node and every descendant. Order between siblings is
// unspecified.
func (t *Tenant) Walk(visit func(*Tenant)) {
	visit(t)
	for _, child := range t.Children {
		child.Walk(visit)
	}
}

// Count returns the number of nodes in the subtree rooted here.
func (t *Tenant) Count() int {
	n := 0
	t.Walk(func(*Tenant) { n++ })
	return n
}
