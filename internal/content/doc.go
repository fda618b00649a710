// Package content generates outreach email subject/body pairs for a
// (recipient, event, day) triple. The AI providers (Groq, Bedrock)
// degrade to the deterministic fallback renderer on any failure, so a
// Provider never leaves an approved pair without content.
package content
