package recaptcha

// ValidatorResolver selects the applicable verification strategy from the
// current configuration shape: a secret key selects the standard validator,
// non-empty enterprise options select the enterprise one. Resolution happens
// on every call so that runtime reconfiguration through the shared ref takes
// effect immediately.
type ValidatorResolver struct {
	config     *ConfigRef
	standard   *StandardValidator
	enterprise *EnterpriseValidator
}

// NewValidatorResolver creates a resolver over the two strategy instances.
func NewValidatorResolver(config *ConfigRef, standard *StandardValidator, enterprise *EnterpriseValidator) *ValidatorResolver {
	return &ValidatorResolver{
		config:     config,
		standard:   standard,
		enterprise: enterprise,
	}
}

// Resolve returns the validator matching the current configuration, or a
// *ValidatorResolutionError when neither credential set is configured.
func (r *ValidatorResolver) Resolve() (Validator, error) {
	cfg := r.config.ValueOf()

	if cfg.SecretKey != "" {
		return r.standard, nil
	}

	if cfg.Enterprise != nil && *cfg.Enterprise != (EnterpriseOptions{}) {
		return r.enterprise, nil
	}

	return nil, &ValidatorResolutionError{}
}
