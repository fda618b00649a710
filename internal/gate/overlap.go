package gate

import (
	"sort"
	"strings"
)

// TopicOverlap returns the recipient topics that also appear in the event
// tags. Matching is case-insensitive and ignores surrounding whitespace;
// the returned values keep the recipient's original casing and are sorted
// for stable output. Duplicates on either side collapse to one match.
func TopicOverlap(topics, tags []string) []string {
	tagSet := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tagSet[strings.ToLower(strings.TrimSpace(tag))] = true
	}

	seen := make(map[string]bool, len(topics))
	var overlap []string
	for _, topic := range topics {
		key := strings.ToLower(strings.TrimSpace(topic))
		if key == "" || seen[key] || !tagSet[key] {
			continue
		}
		seen[key] = true
		overlap = append(overlap, strings.TrimSpace(topic))
	}
	sort.Strings(overlap)
	return overlap
}
