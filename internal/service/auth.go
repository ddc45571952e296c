package service

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/vpfs/backend/internal/domain"
)

// TeamUnauthenticated is the sentinel returned when a code cannot be
// resolved to a team number.
const TeamUnauthenticated = -1

// Authenticator resolves submitted auth codes to team numbers. In
// MATCH mode codes come from a fixed table; in LAB and HOME the code
// is simply the team number.
type Authenticator struct {
	mode  domain.OperatingMode
	codes map[string]int
}

// NewAuthenticator creates an authenticator for the given mode.
func NewAuthenticator(mode domain.OperatingMode, codes map[string]int) *Authenticator {
	if codes == nil {
		codes = make(map[string]int)
	}
	return &Authenticator{mode: mode, codes: codes}
}

// Authenticate resolves a code to a team number, or
// TeamUnauthenticated on failure. Failure is a value, not an error:
// callers report it in their response message.
func (a *Authenticator) Authenticate(code string) int {
	if a.mode == domain.ModeMatch {
		if team, ok := a.codes[code]; ok {
			return team
		}
		return TeamUnauthenticated
	}
	team, err := strconv.Atoi(code)
	if err != nil {
		log.Printf("auth: expected team number, not code %q", code)
		return TeamUnauthenticated
	}
	return team
}

// ParseAuthCodes parses the AUTH_CODES config format
// "code:team,code:team".
func ParseAuthCodes(s string) (map[string]int, error) {
	codes := make(map[string]int)
	if strings.TrimSpace(s) == "" {
		return codes, nil
	}
	for _, pair := range strings.Split(s, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("auth: malformed code entry %q", pair)
		}
		team, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("auth: bad team number in entry %q: %w", pair, err)
		}
		codes[parts[0]] = team
	}
	return codes, nil
}
