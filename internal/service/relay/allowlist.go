package relay

import "strings"

// AllowList is the set of senders permitted to trigger processing.
// The zero value allows everyone.
type AllowList struct {
	senders map[string]struct{}
}

// ParseAllowList builds an AllowList from a comma-separated list. Entries are
// trimmed and blanks ignored; a list with no entries allows everyone.
func ParseAllowList(raw string) AllowList {
	senders := make(map[string]struct{})
	for _, entry := range strings.Split(raw, ",") {
		if entry = strings.TrimSpace(entry); entry != "" {
			senders[entry] = struct{}{}
		}
	}
	if len(senders) == 0 {
		return AllowList{}
	}
	return AllowList{senders: senders}
}

// Allows reports whether sender may use the relay. Matching is exact.
func (a AllowList) Allows(sender string) bool {
	if len(a.senders) == 0 {
		return true
	}
	_, ok := a.senders[sender]
	return ok
}

// Len returns the number of configured senders; 0 means allow-all.
func (a AllowList) Len() int {
	return len(a.senders)
}
