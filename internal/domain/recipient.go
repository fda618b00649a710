package domain

import "encoding/json"

// Recipient is a single outreach target, loaded once per batch run and
// immutable for the duration of the run.
//
// Unmarshalling is lenient by design: missing keys and malformed topic
// lists never fail the decode. The Validator reports them instead, so a
// single bad record blocks its own pairs rather than the whole batch.
type Recipient struct {
	ID              string   `json:"recipient_id"`
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Organization    string   `json:"organization"`
	Topics          []string `json:"topics"`
	EngagementScore *float64 `json:"engagement_score,omitempty"`
	OptOut          bool     `json:"opt_out"`

	present   map[string]bool
	malformed map[string]bool
}

// Has reports whether the given JSON key was present in the source record.
// Records constructed in code (tests, fixtures) without UnmarshalJSON are
// treated as fully present.
func (r *Recipient) Has(key string) bool {
	if r.present == nil {
		return true
	}
	return r.present[key]
}

// ListMalformed reports whether the named list field was present but not a
// JSON array of strings.
func (r *Recipient) ListMalformed(key string) bool {
	return r.malformed[key]
}

func (r *Recipient) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.present = make(map[string]bool, len(raw))
	for k := range raw {
		r.present[k] = true
	}

	type alias Recipient
	var a alias
	a.Topics, r.malformed = lenientStringList(raw, "topics")
	delete(raw, "topics")

	rest, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(rest, &a); err != nil {
		return err
	}
	a.present = r.present
	a.malformed = r.malformed
	*r = Recipient(a)
	return nil
}

// lenientStringList decodes raw[key] as []string. A present value of any
// other shape is flagged rather than failing the decode.
func lenientStringList(raw map[string]json.RawMessage, key string) ([]string, map[string]bool) {
	malformed := make(map[string]bool)
	msg, ok := raw[key]
	if !ok {
		return nil, malformed
	}
	var list []string
	if err := json.Unmarshal(msg, &list); err != nil {
		malformed[key] = true
		return nil, malformed
	}
	return list, malformed
}
