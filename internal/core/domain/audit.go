package domain

import (
	"errors"
	"time"
)

// AuditAction represents a type-safe action identifier for the audit log.
type AuditAction string

// System Audit Actions
const (
	ActionLookup       AuditAction = "CVE_LOOKUP"
	ActionExport       AuditAction = "REPORT_EXPORT"
	ActionHistoryClear AuditAction = "HISTORY_CLEAR"
	ActionInfo         AuditAction = "INFO"
)

// Domain Errors
var (
	ErrInvalidAction = errors.New("invalid audit action")
)

// AuditLog represents a record of a user-visible system action.
// This is a pure domain entity, decoupled from persistence (GORM)
// constraints; JSON tags are kept for API compatibility.
type AuditLog struct {
	ID        uint        `json:"id"`
	RequestID string      `json:"request_id"`
	Action    AuditAction `json:"action"`
	Target    string      `json:"target"` // The resource affected (e.g., CVE id)
	Details   string      `json:"details"`
	IPAddress string      `json:"ip_address"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewAuditLog is the designated factory for creating valid AuditLog entities.
func NewAuditLog(requestID string, action AuditAction, target, details, ip string) (*AuditLog, error) {
	if !isValidAction(action) {
		return nil, ErrInvalidAction
	}

	return &AuditLog{
		RequestID: requestID,
		Action:    action,
		Target:    target,
		Details:   details,
		IPAddress: ip,
		Timestamp: time.Now().UTC(),
	}, nil
}

// isValidAction encapsulates the validation logic for audit actions.
func isValidAction(action AuditAction) bool {
	switch action {
	case ActionLookup, ActionExport, ActionHistoryClear, ActionInfo:
		return true
	}
	return false
}
