package engine

import "fmt"

// The engine never silently drops a generation failure: everything below is a
// typed error the API boundary translates to a status code. Non-fatal
// conditions (unknown patch ops, contested composite targets) are returned as
// warnings on the result instead.

// PlanResolutionError reports a plan whose program versions or modules cannot
// be resolved. This is a user/config error, surfaced as 4xx.
type PlanResolutionError struct {
	Reason string
}

func (e *PlanResolutionError) Error() string {
	return "plan resolution failed: " + e.Reason
}

// UnsupportedDefinitionKindError reports a definition kind the generator has
// no dispatch arm for.
type UnsupportedDefinitionKindError struct {
	Kind string
}

func (e *UnsupportedDefinitionKindError) Error() string {
	return fmt.Sprintf("unsupported program definition kind %q", e.Kind)
}

// MissingContextError reports a generation context field (week, day,
// sessionDate) required by the definition kind but absent from the request.
type MissingContextError struct {
	Field string
}

func (e *MissingContextError) Error() string {
	return fmt.Sprintf("generation context is missing required field %q", e.Field)
}

// MissingParamError reports an effective parameter (e.g. a per-lift training
// max) required by the definition kind but absent after the param merge.
type MissingParamError struct {
	Key string
}

func (e *MissingParamError) Error() string {
	return fmt.Sprintf("effective params are missing required key %q", e.Key)
}

// SessionNotDefinedError reports a manual definition with no session entry
// for the requested (week, day).
type SessionNotDefinedError struct {
	Week int
	Day  int
}

func (e *SessionNotDefinedError) Error() string {
	return fmt.Sprintf("definition has no session for week %d day %d", e.Week, e.Day)
}
