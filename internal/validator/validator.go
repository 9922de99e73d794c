package validator

// Validator bundles struct-tag validation with the business rule validator
// and is shared by all services.
type Validator struct {
	business *BusinessValidator
}

// New creates the shared validator instance.
func New() *Validator {
	return &Validator{business: NewBusinessValidator()}
}

// Validate runs struct-tag validation and returns nil when the value passes.
func (v *Validator) Validate(s interface{}) error {
	if errors := v.business.Validate(s); len(errors) > 0 {
		return errors
	}
	return nil
}

// GetBusinessValidator exposes the business rule validator for request
// types that carry rules beyond struct tags.
func (v *Validator) GetBusinessValidator() *BusinessValidator {
	return v.business
}
