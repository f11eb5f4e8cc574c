package cache

import "sync"

// DirtySet tracks workspaces that received call events since the last drain
type DirtySet struct {
	workspaces map[string]struct{}
	mu         sync.Mutex
}

// NewDirtySet creates an empty dirty set
func NewDirtySet() *DirtySet {
	return &DirtySet{
		workspaces: make(map[string]struct{}),
	}
}

// Mark flags a workspace as changed
func (d *DirtySet) Mark(workspaceID string) {
	if workspaceID == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.workspaces[workspaceID] = struct{}{}
}

// GetAndClear returns all flagged workspaces and resets the set
func (d *DirtySet) GetAndClear() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	ids := make([]string, 0, len(d.workspaces))
	for id := range d.workspaces {
		ids = append(ids, id)
	}
	d.workspaces = make(map[string]struct{})
	return ids
}

// Size returns the number of flagged workspaces
func (d *DirtySet) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.workspaces)
}
