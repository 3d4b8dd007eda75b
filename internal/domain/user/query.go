package user

import (
	"math"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	TopSkillsMax = 10
)

// PageRequest is 1-based. Offset is derived, never sent by clients.
type PageRequest struct {
	Page  int
	Limit int
}

// Offset saturates at math.MaxInt so a huge page reads past the end instead
// of wrapping to a negative skip.
func (p PageRequest) Offset() int {
	if p.Page < 1 || p.Limit < 1 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

type Page struct {
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	TotalPages int    `json:"totalPages"`
	Count      int    `json:"count"`
	Items      []User `json:"items"`
}

// NewPage builds the envelope shared by every directory read. The requested
// page is echoed even when it is past the last one.
func NewPage(req PageRequest, items []User, total int) Page {
	out := make([]User, 0, len(items))
	for _, u := range items {
		out = append(out, u.Public())
	}

	totalPages := 0
	if total > 0 && req.Limit > 0 {
		totalPages = (total + req.Limit - 1) / req.Limit
	}

	return Page{
		Total:      total,
		Page:       req.Page,
		TotalPages: totalPages,
		Count:      len(out),
		Items:      out,
	}
}

// ParseSkillList splits a comma separated list. Tokens are kept verbatim,
// only empty ones are dropped.
func ParseSkillList(raw string) []string {
	if raw == "" {
		return nil
	}

	out := make([]string, 0, 4)
	for _, s := range strings.Split(raw, ",") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// MatchesAnySkill reports whether u has at least one of the wanted skills.
func (u User) MatchesAnySkill(wanted []string) bool {
	set := make(map[string]struct{}, len(wanted))
	for _, w := range wanted {
		set[w] = struct{}{}
	}
	for _, s := range u.Skills {
		if _, ok := set[s]; ok {
			return true
		}
	}
	return false
}

// MatchesText is a case-insensitive substring match over name, education,
// project titles and descriptions, and skills.
func (u User) MatchesText(query string) bool {
	q := strings.ToLower(query)
	if q == "" {
		return false
	}

	contains := func(s string) bool {
		return s != "" && strings.Contains(strings.ToLower(s), q)
	}

	if contains(u.Name) || contains(u.Education) {
		return true
	}
	for _, p := range u.Projects {
		if contains(p.Title) || contains(p.Desc) {
			return true
		}
	}
	for _, s := range u.Skills {
		if contains(s) {
			return true
		}
	}
	return false
}
