package engine

import (
	"fmt"
	"time"

	"liftlog/workout-app/internal/domain"
)

// SessionKey derives the stable identifier for one session occurrence.
// LEGACY mode keys by week/day ("W2D3"), DATE mode by the session date
// ("2026-03-14") rendered in the requested timezone. The mode is a plan/user
// setting, never engine state.
func SessionKey(mode domain.KeyMode, week, day int, sessionDate *time.Time, timezone string) (string, error) {
	if mode == domain.KeyModeDate {
		if sessionDate == nil {
			return "", &MissingContextError{Field: "sessionDate"}
		}
		loc := time.UTC
		if timezone != "" {
			if l, err := time.LoadLocation(timezone); err == nil {
				loc = l
			}
		}
		return sessionDate.In(loc).Format("2006-01-02"), nil
	}
	if week < 1 {
		return "", &MissingContextError{Field: "week"}
	}
	if day < 1 {
		return "", &MissingContextError{Field: "day"}
	}
	return fmt.Sprintf("W%dD%d", week, day), nil
}
