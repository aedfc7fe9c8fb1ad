package domain

import "time"

// RevisionType tags each entry of an editable's revision log
type RevisionType int

// Revision log entry types
const (
	RevisionTypeNew RevisionType = iota + 1
	RevisionTypeReadyForReview
	RevisionTypeNeedsSubmitterConfirmation
	RevisionTypeChangesAcceptance
	RevisionTypeChangesRejection
	RevisionTypeNeedsSubmitterChanges
	RevisionTypeAcceptance
	RevisionTypeRejection
	RevisionTypeReplacement
	RevisionTypeReset
)

var revisionTypeNames = map[RevisionType]string{
	RevisionTypeNew:                         "new",
	RevisionTypeReadyForReview:              "ready_for_review",
	RevisionTypeNeedsSubmitterConfirmation:  "needs_submitter_confirmation",
	RevisionTypeChangesAcceptance:           "changes_acceptance",
	RevisionTypeChangesRejection:            "changes_rejection",
	RevisionTypeNeedsSubmitterChanges:       "needs_submitter_changes",
	RevisionTypeAcceptance:                  "acceptance",
	RevisionTypeRejection:                   "rejection",
	RevisionTypeReplacement:                 "replacement",
	RevisionTypeReset:                       "reset",
}

// Name returns the wire name of the revision type
func (t RevisionType) Name() string {
	return revisionTypeNames[t]
}

// String implements fmt.Stringer
func (t RevisionType) String() string {
	return t.Name()
}

// Valid reports whether the value is a known revision type
func (t RevisionType) Valid() bool {
	_, ok := revisionTypeNames[t]
	return ok
}

// IsEditorReview reports whether the revision records an editor verdict,
// i.e. something that can be undone by the editor
func (t RevisionType) IsEditorReview() bool {
	switch t {
	case RevisionTypeAcceptance, RevisionTypeRejection,
		RevisionTypeNeedsSubmitterChanges, RevisionTypeNeedsSubmitterConfirmation:
		return true
	}
	return false
}

// ParseRevisionType resolves a wire name to a RevisionType
func ParseRevisionType(name string) (RevisionType, bool) {
	for t, n := range revisionTypeNames {
		if n == name {
			return t, true
		}
	}
	return 0, false
}

// Revision is one entry in an editable's history. Revisions are immutable
// once created except for IsUndone, which excludes the revision from all
// derived state while keeping the audit trail.
type Revision struct {
	ID         uint              `gorm:"primaryKey;autoIncrement" json:"id"`
	EditableID uint              `gorm:"index;not null" json:"editable_id"`
	UserID     uint              `gorm:"index;not null" json:"user_id"`
	User       *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Type       RevisionType      `gorm:"not null" json:"type"`
	IsUndone   bool              `gorm:"not null;default:false" json:"is_undone"`
	Comment    string            `gorm:"type:text" json:"comment"`
	Files      []RevisionFile    `gorm:"foreignKey:RevisionID" json:"files,omitempty"`
	Comments   []RevisionComment `gorm:"foreignKey:RevisionID" json:"comments,omitempty"`
	CreatedAt  time.Time         `gorm:"index" json:"created_at"`
}

// TableName returns the table name for Revision
func (Revision) TableName() string {
	return "revisions"
}

// HasFiles reports whether the revision carries at least one file
func (r *Revision) HasFiles() bool {
	return len(r.Files) > 0
}

// RevisionFile is a file attached to a revision, classified by file type
type RevisionFile struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	RevisionID  uint   `gorm:"index;not null" json:"revision_id"`
	FileTypeID  uint   `gorm:"index;not null" json:"file_type_id"`
	StorageID   string `gorm:"size:36;not null" json:"storage_id"`
	Filename    string `gorm:"size:255;not null" json:"filename"`
	ContentType string `gorm:"size:255;not null" json:"content_type"`
	Size        int64  `gorm:"not null;default:0" json:"size"`
}

// TableName returns the table name for RevisionFile
func (RevisionFile) TableName() string {
	return "revision_files"
}

// RevisionComment is a threaded comment on a revision. Internal comments
// are only visible to the editing team.
type RevisionComment struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	RevisionID uint      `gorm:"index;not null" json:"revision_id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	Internal   bool      `gorm:"not null;default:false" json:"internal"`
	IsDeleted  bool      `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName returns the table name for RevisionComment
func (RevisionComment) TableName() string {
	return "revision_comments"
}

// CanModify reports whether the user may edit or delete the comment
func (c *RevisionComment) CanModify(user *User, e *Editable, acc AccessChecker) bool {
	if user == nil {
		return false
	}
	if c.UserID == user.ID {
		return true
	}
	return acc.CanManage(user, PermEditingManager)
}
