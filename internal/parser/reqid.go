package parser

import "regexp"

// Requirement identifiers are two or three uppercase letters, a dash,
// and digits: FR-001, PR-003, SR-12. Longer prefixes (document IDs like
// ABRD-...) do not match.
var reRequirementID = regexp.MustCompile(`\b[A-Z]{2,3}-\d+\b`)

// ExtractRequirementIDs scans normalised text for requirement
// identifiers and returns them in first-seen order with duplicates
// removed.
func ExtractRequirementIDs(text string) []string {
	matches := reRequirementID.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
