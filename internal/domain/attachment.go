package domain

import "time"

// Attachment is a file attached to event material, shown through the
// preview endpoints
type Attachment struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID     uint      `gorm:"index;not null" json:"event_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	StorageID   string    `gorm:"size:36;not null" json:"storage_id"`
	Filename    string    `gorm:"size:255;not null" json:"filename"`
	ContentType string    `gorm:"size:255;not null" json:"content_type"`
	Size        int64     `gorm:"not null;default:0" json:"size"`
	IsDeleted   bool      `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName returns the table name for Attachment
func (Attachment) TableName() string {
	return "attachments"
}
