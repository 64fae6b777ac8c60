package domain

import "time"

// Audit actions recorded by the gateway.
const (
	AuditLogin          = "login"
	AuditLoginFailed    = "login_failed"
	AuditLogout         = "logout"
	AuditSessionExpired = "session_expired"
	AuditCreate         = "create"
	AuditUpdate         = "update"
	AuditDelete         = "delete"
)

// AuditEntry is one line of the admin audit trail: who did what to which
// resource, as seen by the gateway.
type AuditEntry struct {
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	IP        string    `json:"ip,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
