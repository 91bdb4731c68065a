// Package triage is the business boundary for CareFlow's symptom triage
// policy engine. It defines the Service (the only caller-facing entry point,
// one serialized decision transaction per user), the pure decision components
// (fingerprinting, duplicate detection, severity matrix, provider filtering),
// the per-user policy trackers (OTC budget, abuse strikes, session quotas),
// the Store interface (persistence), and domain models.
package triage
