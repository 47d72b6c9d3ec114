package intake

import "strings"

// Validate enforces the one hard contract of the routing engine: the
// classification must be present. Everything else is defaulted.
func (s *StructuredSpec) Validate() error {
	if s == nil {
		return &InvalidSpecError{Reason: "is nil"}
	}
	if strings.TrimSpace(string(s.DataClassification)) == "" {
		return &InvalidSpecError{Field: "dataClassification", Reason: "is required"}
	}
	return nil
}

const maxUserCount = 1<<31 - 1

// ParseUserCount reads the leading integer of a free-text head count, so
// "50+" is 50 and "200 drivers" is 200. Answers without a leading number
// ("many", "about 12") count as zero.
func ParseUserCount(raw string) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	if s[0] == '+' {
		s = s[1:]
	}
	if s != "" && s[0] == '-' {
		return 0
	}

	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		if n > maxUserCount/10 {
			return maxUserCount
		}
		n = n*10 + int(r-'0')
		if n > maxUserCount {
			return maxUserCount
		}
	}
	return n
}
