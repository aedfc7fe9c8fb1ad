package domain

import "strings"

// Management permission names. The per-type editor permissions live in
// editorPermissions (editable.go).
const (
	PermEditingManager = "editing_manager"
)

// EventPrincipal grants a user management permissions on an event.
// FullAccess implies every permission, including full event management.
type EventPrincipal struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID     uint   `gorm:"index:idx_event_principal,unique;not null" json:"event_id"`
	UserID      uint   `gorm:"index:idx_event_principal,unique;not null" json:"user_id"`
	FullAccess  bool   `gorm:"not null;default:false" json:"full_access"`
	Permissions string `gorm:"size:512;not null;default:''" json:"permissions"`
}

// TableName returns the table name for EventPrincipal
func (EventPrincipal) TableName() string {
	return "event_principals"
}

// HasPermission reports whether the entry explicitly carries the permission
func (p *EventPrincipal) HasPermission(permission string) bool {
	if permission == "" {
		return false
	}
	for _, name := range strings.Split(p.Permissions, ",") {
		if strings.TrimSpace(name) == permission {
			return true
		}
	}
	return false
}

// PermissionList returns the explicit permissions as a slice
func (p *EventPrincipal) PermissionList() []string {
	if p.Permissions == "" {
		return nil
	}
	parts := strings.Split(p.Permissions, ",")
	out := make([]string, 0, len(parts))
	for _, name := range parts {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// SetPermissions replaces the explicit permission set
func (p *EventPrincipal) SetPermissions(names []string) {
	p.Permissions = strings.Join(names, ",")
}

// SessionPrincipal grants a user permissions on a single session.
// Same shape as EventPrincipal, scoped to the session instead.
type SessionPrincipal struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID   uint   `gorm:"index:idx_session_principal,unique;not null" json:"session_id"`
	UserID      uint   `gorm:"index:idx_session_principal,unique;not null" json:"user_id"`
	FullAccess  bool   `gorm:"not null;default:false" json:"full_access"`
	Permissions string `gorm:"size:512;not null;default:''" json:"permissions"`
}

// TableName returns the table name for SessionPrincipal
func (SessionPrincipal) TableName() string {
	return "session_principals"
}

// HasPermission reports whether the entry explicitly carries the permission
func (p *SessionPrincipal) HasPermission(permission string) bool {
	if permission == "" {
		return false
	}
	for _, name := range strings.Split(p.Permissions, ",") {
		if strings.TrimSpace(name) == permission {
			return true
		}
	}
	return false
}

// PermissionList returns the explicit permissions as a slice
func (p *SessionPrincipal) PermissionList() []string {
	if p.Permissions == "" {
		return nil
	}
	parts := strings.Split(p.Permissions, ",")
	out := make([]string, 0, len(parts))
	for _, name := range parts {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// SetPermissions replaces the explicit permission set
func (p *SessionPrincipal) SetPermissions(names []string) {
	p.Permissions = strings.Join(names, ",")
}
