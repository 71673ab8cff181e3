package tier

import (
	"strings"

	"github.com/pkg/errors"
)

// Tier is a membership level, ordered by increasing privilege. Each tier
// maps to its own output only, there is no fallback from a higher tier to
// a lower tier's content.
type Tier int

const (
	Bronze Tier = iota
	Silver
	Gold
)

func (t Tier) String() string {
	switch t {
	case Bronze:
		return "bronze"
	case Silver:
		return "silver"
	case Gold:
		return "gold"
	}
	return "unknown"
}

// Tiers lists all tiers in privilege order.
var Tiers = []Tier{Bronze, Silver, Gold}

// titles maps Patreon tier titles to tiers. Matching is exact after
// trimming surrounding whitespace, no case-folding.
var titles = map[string]Tier{
	"Bronze membership":                        Bronze,
	"Bronze membership (old/unpublished tier)": Bronze,
	"Silver membership":                        Silver,
	"Gold membership":                          Gold,
}

// ErrNoMatch is returned when no membership entry matched the configured
// campaign.
var ErrNoMatch = errors.New("no membership found for campaign")

type UnknownTitleError struct {
	Title string
}

func (e *UnknownTitleError) Error() string {
	return "unknown tier title: " + e.Title
}

// ParseTitle maps a raw Patreon tier title to a Tier.
func ParseTitle(title string) (Tier, error) {
	trimmed := strings.TrimSpace(title)
	t, ok := titles[trimmed]
	if !ok {
		return 0, &UnknownTitleError{Title: trimmed}
	}
	return t, nil
}
