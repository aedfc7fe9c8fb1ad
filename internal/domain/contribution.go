package domain

import "time"

// Contribution person roles
const (
	PersonRoleAuthor    = "author"
	PersonRoleSpeaker   = "speaker"
	PersonRoleSubmitter = "submitter"
)

// Contribution represents a submitted contribution (talk/paper) in an event
type Contribution struct {
	ID        uint                 `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID   uint                 `gorm:"index;not null" json:"event_id"`
	SessionID *uint                `gorm:"index" json:"session_id,omitempty"`
	Title     string               `gorm:"size:512;not null" json:"title"`
	Code      string               `gorm:"size:64" json:"code"`
	IsDeleted bool                 `gorm:"not null;default:false" json:"is_deleted"`
	Persons   []ContributionPerson `gorm:"foreignKey:ContributionID" json:"persons,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}

// TableName returns the table name for Contribution
func (Contribution) TableName() string {
	return "contributions"
}

// ContributionPerson links a user to a contribution with a role.
// CanSubmitProceedings marks the people allowed to upload proceedings
// (the abstract submitter plus anyone granted submission access).
type ContributionPerson struct {
	ID                   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	ContributionID       uint   `gorm:"index:idx_contribution_person,unique;not null" json:"contribution_id"`
	UserID               uint   `gorm:"index:idx_contribution_person,unique;not null" json:"user_id"`
	Role                 string `gorm:"size:32;not null" json:"role"`
	CanSubmitProceedings bool   `gorm:"not null;default:false" json:"can_submit_proceedings"`
}

// TableName returns the table name for ContributionPerson
func (ContributionPerson) TableName() string {
	return "contribution_persons"
}

// IsUserAssociated reports whether the user appears on the contribution in
// any role (author, speaker or abstract submitter)
func (c *Contribution) IsUserAssociated(user *User) bool {
	if user == nil {
		return false
	}
	for _, p := range c.Persons {
		if p.UserID == user.ID {
			return true
		}
	}
	return false
}

// CanSubmitProceedings reports whether the user may upload proceedings for
// the contribution
func (c *Contribution) CanSubmitProceedings(user *User) bool {
	if user == nil {
		return false
	}
	for _, p := range c.Persons {
		if p.UserID == user.ID && p.CanSubmitProceedings {
			return true
		}
	}
	return false
}
