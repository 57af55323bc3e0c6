package tftmeta

import (
	"reflect"
	"slices"
	"sync"

	"github.com/agentstation/tftmeta/pkg/catalogs"
)

// Hook function types for snapshot events
type (
	// SnapshotBuiltHook is called after a rebuilt snapshot is cached.
	// previous is nil when the key was empty.
	SnapshotBuiltHook func(key string, previous, current *catalogs.Snapshot)

	// StaleServedHook is called when a failed rebuild falls back to a stale snapshot.
	StaleServedHook func(key string, stale *catalogs.Snapshot, cause error)

	// RecordAddedHook is called for a record present only in the new snapshot
	RecordAddedHook func(record catalogs.Record)

	// RecordUpdatedHook is called for a record that changed between snapshots
	RecordUpdatedHook func(old, new catalogs.Record)

	// RecordRemovedHook is called for a record absent from the new snapshot
	RecordRemovedHook func(record catalogs.Record)
)

// Hooks registers callbacks for snapshot events. Record hooks only fire
// when a snapshot replaces an earlier one under the same key.
type Hooks interface {
	OnSnapshotBuilt(fn SnapshotBuiltHook)
	OnStaleServed(fn StaleServedHook)
	OnRecordAdded(fn RecordAddedHook)
	OnRecordUpdated(fn RecordUpdatedHook)
	OnRecordRemoved(fn RecordRemovedHook)
}

// hookSet is one registration list per event.
type hookSet struct {
	onSnapshotBuilt []SnapshotBuiltHook
	onStaleServed   []StaleServedHook
	onRecordAdded   []RecordAddedHook
	onRecordUpdated []RecordUpdatedHook
	onRecordRemoved []RecordRemovedHook
}

// hooks manages event callbacks for snapshot changes. Callbacks run
// without the lock held, so a callback may register further hooks.
type hooks struct {
	mu  sync.RWMutex
	set hookSet
}

// registered copies the current registrations.
func (h *hooks) registered() hookSet {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return hookSet{
		onSnapshotBuilt: slices.Clone(h.set.onSnapshotBuilt),
		onStaleServed:   slices.Clone(h.set.onStaleServed),
		onRecordAdded:   slices.Clone(h.set.onRecordAdded),
		onRecordUpdated: slices.Clone(h.set.onRecordUpdated),
		onRecordRemoved: slices.Clone(h.set.onRecordRemoved),
	}
}

func newHooks() *hooks {
	return &hooks{}
}

// OnSnapshotBuilt registers a callback for rebuilt snapshots.
func (c *client) OnSnapshotBuilt(fn SnapshotBuiltHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.set.onSnapshotBuilt = append(c.hooks.set.onSnapshotBuilt, fn)
}

// OnStaleServed registers a callback for stale fallbacks.
func (c *client) OnStaleServed(fn StaleServedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.set.onStaleServed = append(c.hooks.set.onStaleServed, fn)
}

// OnRecordAdded registers a callback for added records.
func (c *client) OnRecordAdded(fn RecordAddedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.set.onRecordAdded = append(c.hooks.set.onRecordAdded, fn)
}

// OnRecordUpdated registers a callback for changed records.
func (c *client) OnRecordUpdated(fn RecordUpdatedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.set.onRecordUpdated = append(c.hooks.set.onRecordUpdated, fn)
}

// OnRecordRemoved registers a callback for removed records.
func (c *client) OnRecordRemoved(fn RecordRemovedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.set.onRecordRemoved = append(c.hooks.set.onRecordRemoved, fn)
}

func (h *hooks) triggerStale(key string, stale *catalogs.Snapshot, cause error) {
	for _, hook := range h.registered().onStaleServed {
		hook(key, stale, cause)
	}
}

// triggerSnapshotBuilt fires the snapshot hooks, then compares previous
// and current record by record.
func (h *hooks) triggerSnapshotBuilt(key string, previous, current *catalogs.Snapshot) {
	set := h.registered()
	for _, hook := range set.onSnapshotBuilt {
		hook(key, previous, current)
	}
	if previous == nil {
		return
	}

	for _, kind := range catalogs.Kinds() {
		oldRecords := previous.Records(kind)
		oldByKey := make(map[string]catalogs.Record, len(oldRecords))
		for _, r := range oldRecords {
			oldByKey[r.Key()] = r
		}

		newRecords := current.Records(kind)
		newByKey := make(map[string]struct{}, len(newRecords))
		for _, r := range newRecords {
			newByKey[r.Key()] = struct{}{}
			old, exists := oldByKey[r.Key()]
			switch {
			case !exists:
				for _, hook := range set.onRecordAdded {
					hook(r)
				}
			case !reflect.DeepEqual(old, r):
				for _, hook := range set.onRecordUpdated {
					hook(old, r)
				}
			}
		}

		for _, r := range oldRecords {
			if _, exists := newByKey[r.Key()]; !exists {
				for _, hook := range set.onRecordRemoved {
					hook(r)
				}
			}
		}
	}
}
