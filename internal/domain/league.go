package domain

import (
	"fmt"
	"strings"
)

// LeagueTier is the reward classification of a finished attempt.
// Values are ordered by qualification strictness.
type LeagueTier int

const (
	LeagueCopper LeagueTier = iota
	LeagueIron
	LeagueRuby
	LeagueDiamond
	LeagueEpic
	LeagueLegendary
	LeagueMythic
)

var leagueNames = [...]string{"Copper", "Iron", "Ruby", "Diamond", "Epic", "Legendary", "Mythic"}

func (l LeagueTier) String() string {
	if l < LeagueCopper || l > LeagueMythic {
		return fmt.Sprintf("LeagueTier(%d)", int(l))
	}
	return leagueNames[l]
}

// ParseLeague resolves a league name (case-insensitive).
func ParseLeague(name string) (LeagueTier, error) {
	for i, n := range leagueNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return LeagueTier(i), nil
		}
	}
	return LeagueCopper, fmt.Errorf("unknown league %q", name)
}

func (l LeagueTier) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *LeagueTier) UnmarshalText(text []byte) error {
	parsed, err := ParseLeague(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// HighestLeague returns the strictest tier in the list, Copper when empty.
func HighestLeague(tiers []LeagueTier) LeagueTier {
	best := LeagueCopper
	for _, t := range tiers {
		if t > best {
			best = t
		}
	}
	return best
}
