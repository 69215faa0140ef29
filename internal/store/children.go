package store

import (
	"sync"

	"scenarioplan.dev/engine/internal/domain"
)

// ChildrenIndex maps an epic id to the ordered list of its child feature
// ids. It is derived from the baseline at load time and never mutated by
// the engine — only BuildChildrenIndex (or a direct SetChildrenByEpic
// call) writes to it.
type ChildrenIndex struct {
	mu       sync.RWMutex
	children map[string][]string
}

// NewChildrenIndex returns an empty index.
func NewChildrenIndex() *ChildrenIndex {
	return &ChildrenIndex{children: make(map[string][]string)}
}

// BuildChildrenIndex scans the baseline feature list and returns the
// epicId -> childIds mapping in stable insertion order: for each feature
// with type=feature and a non-empty ParentEpic, its id is appended to the
// parent's list in baseline order.
func BuildChildrenIndex(features []domain.Feature) map[string][]string {
	out := make(map[string][]string)
	for _, f := range features {
		if f.Type != domain.FeatureTypeFeature || f.ParentEpic == "" {
			continue
		}
		out[f.ParentEpic] = append(out[f.ParentEpic], f.ID)
	}
	return out
}

// SetChildrenByEpic installs a precomputed epicId -> childIds mapping.
// The engine consumes this index read-only; it never calls back into it.
func (c *ChildrenIndex) SetChildrenByEpic(byEpic map[string][]string) {
	cloned := make(map[string][]string, len(byEpic))
	for epic, kids := range byEpic {
		copied := make([]string, len(kids))
		copy(copied, kids)
		cloned[epic] = copied
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.children = cloned
}

// ChildrenOf returns the child ids of an epic, in insertion order.
func (c *ChildrenIndex) ChildrenOf(epicID string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	kids := c.children[epicID]
	out := make([]string, len(kids))
	copy(out, kids)
	return out
}
