// Package gate implements the eligibility decision for outreach sends.
//
// This is the single source of truth for whether a (recipient, event)
// pair may receive an email. The checks run in strict order (structural
// validation, opt-out, application deadline, topic overlap) and the
// first failing check decides the block reason. The opt-out check is the
// one hard compliance invariant of the whole system: no later layer may
// override it.
//
// The gate is pure given its inputs, its configured rules, and an
// injectable clock. It performs no I/O and never calls the content
// provider.
package gate
