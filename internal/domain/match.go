package domain

import (
	"fmt"
	"strings"
)

// MatchState is the lifecycle state of the match controller.
type MatchState int

const (
	MatchUnconfigured MatchState = iota
	MatchConfigured
	MatchRunning
	MatchEnded
)

func (s MatchState) String() string {
	switch s {
	case MatchUnconfigured:
		return "UNCONFIGURED"
	case MatchConfigured:
		return "CONFIGURED"
	case MatchRunning:
		return "RUNNING"
	case MatchEnded:
		return "ENDED"
	}
	return "UNKNOWN"
}

// OperatingMode selects how the server authenticates and which operator
// endpoints are exposed. It is resolved once at startup; no string
// comparisons happen after that.
type OperatingMode int

const (
	ModeLab OperatingMode = iota
	ModeHome
	ModeMatch
)

func (m OperatingMode) String() string {
	switch m {
	case ModeHome:
		return "HOME"
	case ModeMatch:
		return "MATCH"
	default:
		return "LAB"
	}
}

// ParseOperatingMode resolves a config string to a mode.
func ParseOperatingMode(s string) (OperatingMode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "LAB":
		return ModeLab, nil
	case "HOME":
		return ModeHome, nil
	case "MATCH":
		return ModeMatch, nil
	}
	return ModeLab, fmt.Errorf("domain: unknown operating mode %q", s)
}

// MatchStatus is the polled status payload served to teams.
type MatchStatus struct {
	Mode       string  `json:"mode"`
	Match      int     `json:"match"`
	MatchStart bool    `json:"matchStart"`
	TimeRemain float64 `json:"timeRemain"`
	InMatch    bool    `json:"inMatch"`
	Team       int     `json:"team"`
}
