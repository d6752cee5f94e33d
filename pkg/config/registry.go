package config

import (
	"sort"
	"sync"

	"go.uber.org/atomic"

	"github.com/lc/plugkit/pkg/version"
)

// entry is one registered holder and its acceptance rule. A nil rule means
// the file is used as-is without a version check.
type entry struct {
	holder *Holder
	rule   version.Rule
	seq    uint64 // registration order
}

// registry maps holder keys to entries. One mutex covers every access and is
// never held across file I/O.
type registry struct {
	mu    sync.Mutex
	byKey map[string]*entry
	next  uint64
	count atomic.Int64
}

func newRegistry() *registry {
	return &registry{byKey: make(map[string]*entry)}
}

// put registers h. A holder with the same key replaces the previous holder
// and rule but keeps its position in the load order.
func (r *registry) put(h *Holder, rule version.Rule) (replaced bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.byKey[h.Key()]; ok {
		cur.holder = h
		cur.rule = rule
		return true
	}

	r.byKey[h.Key()] = &entry{holder: h, rule: rule, seq: r.next}
	r.next++
	r.count.Inc()
	return false
}

// remove deletes the entry for h's key.
func (r *registry) remove(h *Holder) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byKey[h.Key()]; !ok {
		return false
	}
	delete(r.byKey, h.Key())
	r.count.Dec()
	return true
}

// get returns the entry for h's key.
func (r *registry) get(h *Holder) (entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byKey[h.Key()]
	if !ok {
		return entry{}, false
	}
	return *e, true
}

// snapshot returns a copy of every entry in registration order.
func (r *registry) snapshot() []entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]entry, 0, len(r.byKey))
	for _, e := range r.byKey {
		out = append(out, *e) // value copy
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func (r *registry) size() int { return int(r.count.Load()) }
