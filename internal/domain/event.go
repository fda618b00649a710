package domain

import "encoding/json"

// EventMetadata holds the grant-specific details nested under an event's
// "metadata" key. Extra keys are preserved so AI prompts can surface
// whatever the event source provided.
type EventMetadata struct {
	AmountRange         string `json:"amount_range"`
	ApplicationDeadline string `json:"application_deadline"`

	Extra   map[string]json.RawMessage `json:"-"`
	present map[string]bool
}

// Has reports whether the given key was present in the source metadata.
func (m *EventMetadata) Has(key string) bool {
	if m.present == nil {
		return true
	}
	return m.present[key]
}

func (m *EventMetadata) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.present = make(map[string]bool, len(raw))
	for k := range raw {
		m.present[k] = true
	}
	if msg, ok := raw["amount_range"]; ok {
		_ = json.Unmarshal(msg, &m.AmountRange)
		delete(raw, "amount_range")
	}
	if msg, ok := raw["application_deadline"]; ok {
		_ = json.Unmarshal(msg, &m.ApplicationDeadline)
		delete(raw, "application_deadline")
	}
	m.Extra = raw
	return nil
}

func (m EventMetadata) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(m.Extra)+2)
	for k, v := range m.Extra {
		out[k] = v
	}
	if m.AmountRange != "" || m.Has("amount_range") {
		out["amount_range"] = m.AmountRange
	}
	if m.ApplicationDeadline != "" || m.Has("application_deadline") {
		out["application_deadline"] = m.ApplicationDeadline
	}
	return json.Marshal(out)
}

// Event is a grant-funding event, loaded once per batch run and immutable
// for the duration of the run. Decoding follows the same lenient rules as
// Recipient.
type Event struct {
	ID        string        `json:"event_id"`
	Title     string        `json:"title"`
	Organizer string        `json:"organizer"`
	StartDate string        `json:"start_date"`
	Tags      []string      `json:"tags"`
	Metadata  EventMetadata `json:"metadata"`

	present   map[string]bool
	malformed map[string]bool
}

// Has reports whether the given JSON key was present in the source record.
func (e *Event) Has(key string) bool {
	if e.present == nil {
		return true
	}
	return e.present[key]
}

// ListMalformed reports whether the named list field was present but not a
// JSON array of strings.
func (e *Event) ListMalformed(key string) bool {
	return e.malformed[key]
}

func (e *Event) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	e.present = make(map[string]bool, len(raw))
	for k := range raw {
		e.present[k] = true
	}

	type alias Event
	var a alias
	a.Tags, e.malformed = lenientStringList(raw, "tags")
	delete(raw, "tags")

	rest, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(rest, &a); err != nil {
		return err
	}
	a.present = e.present
	a.malformed = e.malformed
	*e = Event(a)
	return nil
}
