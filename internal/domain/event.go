package domain

import "time"

// Event represents a conference event that owns contributions and sessions
type Event struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string    `gorm:"size:512;not null" json:"title"`
	CreatorID uint      `gorm:"index;not null" json:"creator_id"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	IsDeleted bool      `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the table name for Event
func (Event) TableName() string {
	return "events"
}

// Event log realms/kinds, mirrored in the management log UI
const (
	LogRealmManagement = "management"
	LogRealmReviewing  = "reviewing"

	LogKindPositive = "positive"
	LogKindNegative = "negative"
	LogKindNeutral  = "change"
)

// EventLogEntry records a management or reviewing action on an event
type EventLogEntry struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID   uint      `gorm:"index;not null" json:"event_id"`
	UserID    *uint     `gorm:"index" json:"user_id,omitempty"`
	Realm     string    `gorm:"size:32;not null" json:"realm"`
	Kind      string    `gorm:"size:32;not null" json:"kind"`
	Module    string    `gorm:"size:64;not null" json:"module"`
	Summary   string    `gorm:"size:512;not null" json:"summary"`
	Meta      string    `gorm:"type:text" json:"meta,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the table name for EventLogEntry
func (EventLogEntry) TableName() string {
	return "event_log_entries"
}

// Session represents a session block within an event
type Session struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID   uint      `gorm:"index;not null" json:"event_id"`
	Title     string    `gorm:"size:512;not null" json:"title"`
	Code      string    `gorm:"size:64" json:"code"`
	IsDeleted bool      `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the table name for Session
func (Session) TableName() string {
	return "sessions"
}
