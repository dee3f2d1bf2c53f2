// Package contextstore owns the bounded interaction window and the
// cross-agent metadata map that carry conversation state between queries.
package contextstore

import (
	"log"
	"sync"

	"github.com/tokensage/tokensage/pkg/models"
)

// DefaultCapacity is the window size used when none is configured.
const DefaultCapacity = 10

// metadataKeys maps well-known result data fields to the metadata keys
// other agents read during enrichment.
var metadataKeys = map[string]string{
	"symbol": "last_token",
	"price":  "last_price",
	"chain":  "last_chain",
}

// Snapshot is an immutable view of the store. The window is ordered
// oldest to newest. Mutating a snapshot never affects the store.
type Snapshot struct {
	Window   []models.Interaction
	Metadata map[string]string
}

// Last returns the most recent interaction in the snapshot, if any.
func (s Snapshot) Last() (models.Interaction, bool) {
	if len(s.Window) == 0 {
		return models.Interaction{}, false
	}
	return s.Window[len(s.Window)-1], true
}

// Store holds a bounded FIFO window of interactions plus a flat metadata
// map with last-write-wins merge semantics. All methods are safe for
// concurrent use; one store serves one session scope.
type Store struct {
	mu       sync.RWMutex
	capacity int
	window   []models.Interaction
	metadata map[string]string
}

// New creates a Store with the given window capacity.
// Non-positive capacities fall back to DefaultCapacity.
func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		capacity: capacity,
		window:   make([]models.Interaction, 0, capacity),
		metadata: make(map[string]string),
	}
}

// Append adds an interaction to the window, evicting the oldest entry
// when at capacity, and merges any metadata carried by the response
// payload (overwrite per key).
func (s *Store) Append(interaction models.Interaction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.window) >= s.capacity {
		evict := len(s.window) - s.capacity + 1
		s.window = append(s.window[:0], s.window[evict:]...)
	}
	s.window = append(s.window, interaction)
	s.mergeMetadataLocked(interaction.Response)

	// The eviction above makes an overflow impossible; if one is ever
	// observed the store is corrupt and continuity is sacrificed for
	// availability.
	if len(s.window) > s.capacity {
		log.Printf("[contextstore] window length %d exceeds capacity %d, resetting", len(s.window), s.capacity)
		s.resetLocked()
	}
}

// mergeMetadataLocked folds well-known fields of a result payload into
// the metadata map. Caller must hold the write lock.
func (s *Store) mergeMetadataLocked(result *models.Result) {
	if result == nil || result.Data == nil {
		return
	}
	for field, key := range metadataKeys {
		value, ok := result.Data[field].(string)
		if !ok || value == "" {
			continue
		}
		s.metadata[key] = value
	}
}

// Snapshot returns a copy of the current window and metadata.
// Two snapshots taken without an intervening Append are equal.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	window := make([]models.Interaction, len(s.window))
	copy(window, s.window)
	for i := range window {
		window[i].Response = cloneResult(window[i].Response)
	}
	metadata := make(map[string]string, len(s.metadata))
	for k, v := range s.metadata {
		metadata[k] = v
	}
	return Snapshot{Window: window, Metadata: metadata}
}

// cloneResult copies a result so snapshot holders cannot reach the
// store's window through the shared pointer. Data is copied one level;
// payload values are treated as immutable once appended.
func cloneResult(r *models.Result) *models.Result {
	if r == nil {
		return nil
	}
	out := *r
	if r.Data != nil {
		out.Data = make(map[string]any, len(r.Data))
		for k, v := range r.Data {
			out.Data[k] = v
		}
	}
	return &out
}

// Reset clears the window and metadata entirely, e.g. at session
// boundaries.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Store) resetLocked() {
	s.window = s.window[:0]
	s.metadata = make(map[string]string)
}

// Len returns the current number of interactions in the window.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.window)
}

// Capacity returns the configured window capacity.
func (s *Store) Capacity() int {
	return s.capacity
}
