package model

import "regexp"

// MaxSeatsPerBooking caps how many seats a single booking may reserve.
const MaxSeatsPerBooking = 5

// seatLabelRe matches a row letter A–J followed by a positive seat number.
// The ledger itself places no upper bound on the number; the UI renders
// nine seats per row.
var seatLabelRe = regexp.MustCompile(`^[A-J][1-9][0-9]*$`)

// ValidSeatLabel reports whether s is a well-formed seat label like "A1"
// or "J12".
func ValidSeatLabel(s string) bool {
	return seatLabelRe.MatchString(s)
}

// DedupSeatLabels returns the labels with duplicates removed, preserving
// the order of first occurrence.
func DedupSeatLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
