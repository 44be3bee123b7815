package model

import "strings"

// Filter holds the two free-text filters of the students tab.
type Filter struct {
	Team  string
	Event string
}

// Empty reports whether no filter is set.
func (f Filter) Empty() bool {
	return f.Team == "" && f.Event == ""
}

// Match applies both predicates case-insensitively. An empty filter string matches everything.
func (f Filter) Match(s Student) bool {
	return f.teamMatch(s) && f.eventMatch(s)
}

func (f Filter) teamMatch(s Student) bool {
	if f.Team == "" {
		return true
	}
	return containsFold(s.TeamNo, f.Team)
}

func (f Filter) eventMatch(s Student) bool {
	if f.Event == "" {
		return true
	}
	for _, e := range s.Events {
		if containsFold(e, f.Event) {
			return true
		}
	}
	return false
}

// Apply returns the matching students in their original order. The input is not modified.
func (f Filter) Apply(students []Student) []Student {
	out := make([]Student, 0, len(students))
	for _, s := range students {
		if f.Match(s) {
			out = append(out, s)
		}
	}
	return out
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
