package core

import (
	"sort"
	"sync"

	"github.com/Skryldev/snapweave/utils"
)

// ── Registry ──────────────────────────────────────────────────────────────────

// DefaultRegistry is a thread-safe implementation of Registry.  Extensions
// are normalised, so ".TIF", "tif" and ".tiff" share one entry.
type DefaultRegistry struct {
	mu       sync.RWMutex
	encoders map[string]Encoder
}

// NewRegistry returns an empty DefaultRegistry.
func NewRegistry() *DefaultRegistry {
	return &DefaultRegistry{encoders: make(map[string]Encoder)}
}

func (r *DefaultRegistry) RegisterEncoder(ext string, e Encoder) {
	r.mu.Lock()
	r.encoders[utils.NormalizeExt(ext)] = e
	r.mu.Unlock()
}

func (r *DefaultRegistry) EncoderFor(ext string) (Encoder, bool) {
	r.mu.RLock()
	e, ok := r.encoders[utils.NormalizeExt(ext)]
	r.mu.RUnlock()
	return e, ok
}

// Extensions lists the registered extensions in sorted order.
func (r *DefaultRegistry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.encoders))
	for ext := range r.encoders {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
