package guard

import (
	"sync"

	"mercator-hq/cerberus/pkg/recaptcha"
)

// Overrides are per-operation option overrides declared at route
// registration time. Each field, when set, takes precedence over the
// module-level default for that concern; everything else in the module
// configuration is fixed.
type Overrides struct {
	// Token overrides the module token provider.
	Token recaptcha.TokenProvider

	// RemoteIP overrides the module caller-IP provider.
	RemoteIP recaptcha.RemoteIPProvider

	// Score overrides the module score policy.
	Score recaptcha.ScoreValidator

	// Action is the expected action name for the operation.
	Action string
}

// OverrideRegistry is the explicit association table from operation keys to
// override options. The guard queries it with the key carried by the
// execution context; it never depends on any metadata or reflection
// mechanism of the host framework.
type OverrideRegistry struct {
	mu      sync.RWMutex
	entries map[string]Overrides
}

// NewOverrideRegistry creates an empty registry.
func NewOverrideRegistry() *OverrideRegistry {
	return &OverrideRegistry{entries: make(map[string]Overrides)}
}

// Register associates overrides with an operation key, replacing any
// previous entry.
func (r *OverrideRegistry) Register(operation string, o Overrides) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[operation] = o
}

// Lookup returns the overrides for an operation key. The zero value is
// returned when nothing was registered.
func (r *OverrideRegistry) Lookup(operation string) (Overrides, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.entries[operation]
	return o, ok
}
