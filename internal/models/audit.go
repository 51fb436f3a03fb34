package models

import "time"

// AuditEntry represents one audit log row.
type AuditEntry struct {
	ID        int       `json:"id"`
	User      string    `json:"user"`
	Action    string    `json:"action"` // Login, Create Project, Create User, ...
	Timestamp time.Time `json:"timestamp"`
	Details   string    `json:"details"`
}
