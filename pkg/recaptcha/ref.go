package recaptcha

import "sync"

// ConfigRef is the shared mutable holder of module configuration. All
// validators and guards read the current Options through the same ref, so a
// mutation (secret rotation, standard/enterprise switch) is immediately
// visible to every consumer.
//
// Access is synchronized with a reader-writer lock. There is no transaction
// isolation across mutations: concurrent writers are last-writer-wins, an
// explicitly accepted trade-off since administrative reconfiguration is rare
// relative to per-request reads.
type ConfigRef struct {
	mu    sync.RWMutex
	value *Options
}

// NewConfigRef wraps options in a shared ref. The options are validated
// before wrapping; invalid pairings are rejected up front.
func NewConfigRef(opts *Options) (*ConfigRef, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &ConfigRef{value: opts}, nil
}

// ValueOf returns a snapshot of the current options. The snapshot is a
// shallow copy: callers must treat it as read-only and use the mutators for
// changes.
func (r *ConfigRef) ValueOf() Options {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return *r.value
}

// Replace swaps in a whole new options value after validating it. Used by
// configuration reload; per-field mutators remain for targeted changes.
func (r *ConfigRef) Replace(opts *Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.value = opts
	return nil
}

// SetSecretKey switches to the standard strategy. The enterprise credentials
// are cleared in the same critical section so the mutual-exclusion invariant
// holds at every observable point.
func (r *ConfigRef) SetSecretKey(secretKey string) *ConfigRef {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.value.SecretKey = secretKey
	r.value.Enterprise = nil
	return r
}

// SetEnterpriseOptions switches to the enterprise strategy, clearing the
// secret key transactionally.
func (r *ConfigRef) SetEnterpriseOptions(opts EnterpriseOptions) *ConfigRef {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.value.SecretKey = ""
	r.value.Enterprise = &opts
	return r
}

// SetScore replaces the default score policy. Independent of the credential
// setters; no cross-invalidation.
func (r *ConfigRef) SetScore(score ScoreValidator) *ConfigRef {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.value.Score = score
	return r
}

// SetSkipIf replaces the per-request skip predicate.
func (r *ConfigRef) SetSkipIf(skipIf SkipPredicate) *ConfigRef {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.value.SkipIf = skipIf
	return r
}
