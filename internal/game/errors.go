package game

import (
	"errors"
	"fmt"
)

// ViolationCode classifies why an action was rejected.
type ViolationCode string

const (
	ViolationWrongPhase    ViolationCode = "WRONG_PHASE"
	ViolationNotYourTurn   ViolationCode = "NOT_YOUR_TURN"
	ViolationPendingFirst  ViolationCode = "PENDING_FIRST"
	ViolationNotOwner      ViolationCode = "NOT_OWNER"
	ViolationIllegalTarget ViolationCode = "ILLEGAL_TARGET"
	ViolationCannotPay     ViolationCode = "CANNOT_PAY"
	ViolationCannotAttack  ViolationCode = "CANNOT_ATTACK"
	ViolationCannotBlock   ViolationCode = "CANNOT_BLOCK"
	ViolationBadSelection  ViolationCode = "BAD_SELECTION"
	ViolationMatchOver     ViolationCode = "MATCH_OVER"
	ViolationUnknownAction ViolationCode = "UNKNOWN_ACTION"
)

// RuleViolation is a non-fatal rejection of a player action. State is left
// untouched; Expected tells the caller which decision is actually pending.
type RuleViolation struct {
	Code     ViolationCode
	Message  string
	Expected string // description of the decision currently outstanding
}

func (v *RuleViolation) Error() string {
	if v.Expected != "" {
		return fmt.Sprintf("%s: %s (expected: %s)", v.Code, v.Message, v.Expected)
	}
	return fmt.Sprintf("%s: %s", v.Code, v.Message)
}

func violation(code ViolationCode, format string, args ...interface{}) *RuleViolation {
	return &RuleViolation{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsRuleViolation reports whether err is a recoverable rule violation.
func IsRuleViolation(err error) bool {
	var v *RuleViolation
	return errors.As(err, &v)
}

// MalformedPayloadError marks action data that failed shape validation at
// the dispatcher boundary, before any rule logic ran.
type MalformedPayloadError struct {
	ActionType ActionType
	Reason     string
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("malformed %s payload: %s", e.ActionType, e.Reason)
}

func malformed(actionType ActionType, format string, args ...interface{}) *MalformedPayloadError {
	return &MalformedPayloadError{ActionType: actionType, Reason: fmt.Sprintf(format, args...)}
}

// IsMalformedPayload reports whether err is a payload shape failure.
func IsMalformedPayload(err error) bool {
	var m *MalformedPayloadError
	return errors.As(err, &m)
}

// StateCorruptionError marks an internal invariant violation. It is not
// recoverable in-engine: the host must abort and void the match.
type StateCorruptionError struct {
	Detail string
}

func (e *StateCorruptionError) Error() string {
	return fmt.Sprintf("state corruption: %s", e.Detail)
}

func corruption(format string, args ...interface{}) *StateCorruptionError {
	return &StateCorruptionError{Detail: fmt.Sprintf(format, args...)}
}

// IsStateCorruption reports whether err is fatal state corruption.
func IsStateCorruption(err error) bool {
	var c *StateCorruptionError
	return errors.As(err, &c)
}

// ErrMatchNotFound is returned for unknown match ids.
var ErrMatchNotFound = errors.New("match not found")

// ErrUnknownPlayer is returned when an action names a seat that is not in
// the match.
var ErrUnknownPlayer = errors.New("unknown player")
