package triage

import (
	"sort"
	"strings"
)

// Fingerprint canonicalizes a set of normalized symptom terms into a stable
// signature: two term sets with the same members (order and case irrelevant)
// produce an identical fingerprint, and any differing set produces a
// different one. Matching is exact set equality only; a near-miss must not
// suppress re-triage.
func Fingerprint(terms []string) string {
	seen := make(map[string]struct{}, len(terms))
	canon := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		canon = append(canon, t)
	}
	sort.Strings(canon)
	return strings.Join(canon, "|")
}
