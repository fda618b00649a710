package gate

// Rules holds the required-field checklist and matching thresholds for
// eligibility evaluation. The checklist is configuration, not code, so
// deployments can tighten or relax the schema without touching the gate.
type Rules struct {
	RequiredRecipientFields []string `yaml:"required_recipient_fields"`
	RequiredEventFields     []string `yaml:"required_event_fields"`
	RequiredMetadataFields  []string `yaml:"required_metadata_fields"`

	// MinTopicOverlap is the number of distinct overlapping terms needed
	// for a pair to pass the topic check.
	MinTopicOverlap int `yaml:"min_topic_overlap"`
}

// DefaultRules returns the standard schema for recipient and event records.
func DefaultRules() Rules {
	return Rules{
		RequiredRecipientFields: []string{
			"recipient_id", "name", "email", "organization",
			"topics", "engagement_score", "opt_out",
		},
		RequiredEventFields: []string{
			"event_id", "title", "start_date", "tags", "organizer", "metadata",
		},
		RequiredMetadataFields: []string{
			"amount_range", "application_deadline",
		},
		MinTopicOverlap: 1,
	}
}

// normalized fills zero values with defaults so a partially specified
// config section behaves sensibly.
func (r Rules) normalized() Rules {
	def := DefaultRules()
	if len(r.RequiredRecipientFields) == 0 {
		r.RequiredRecipientFields = def.RequiredRecipientFields
	}
	if len(r.RequiredEventFields) == 0 {
		r.RequiredEventFields = def.RequiredEventFields
	}
	if len(r.RequiredMetadataFields) == 0 {
		r.RequiredMetadataFields = def.RequiredMetadataFields
	}
	if r.MinTopicOverlap <= 0 {
		r.MinTopicOverlap = def.MinTopicOverlap
	}
	return r
}
