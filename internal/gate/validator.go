package gate

import (
	"fmt"

	"github.com/fundingforward/outreach/internal/domain"
)

// Validator checks records against the configured required-field schema.
// It reports every problem it finds rather than stopping at the first,
// so a single pass over bad source data surfaces the full cleanup list.
type Validator struct {
	rules Rules
}

// NewValidator returns a Validator for the given rules. Zero-valued rule
// sections fall back to DefaultRules.
func NewValidator(rules Rules) *Validator {
	return &Validator{rules: rules.normalized()}
}

// ValidateRecipient returns one message per missing or malformed field.
// An empty slice means the record is structurally valid.
func (v *Validator) ValidateRecipient(r *domain.Recipient) []string {
	var errs []string
	for _, field := range v.rules.RequiredRecipientFields {
		if !r.Has(field) {
			errs = append(errs, fmt.Sprintf("Missing recipient field: %s", field))
		}
	}
	if r.ListMalformed("topics") {
		errs = append(errs, "Malformed recipient field: topics must be a list of strings")
	}
	return errs
}

// ValidateEvent returns one message per missing or malformed field,
// including the required metadata sub-fields.
func (v *Validator) ValidateEvent(e *domain.Event) []string {
	var errs []string
	for _, field := range v.rules.RequiredEventFields {
		if !e.Has(field) {
			errs = append(errs, fmt.Sprintf("Missing event field: %s", field))
		}
	}
	if e.ListMalformed("tags") {
		errs = append(errs, "Malformed event field: tags must be a list of strings")
	}
	if e.Has("metadata") {
		for _, field := range v.rules.RequiredMetadataFields {
			if !e.Metadata.Has(field) {
				errs = append(errs, fmt.Sprintf("Missing event metadata field: %s", field))
			}
		}
	}
	return errs
}
