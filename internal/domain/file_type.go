package domain

// FileType describes one kind of file an editable revision can carry
// (e.g. "PDF paper", "source archive"), scoped to an event and editable type
type FileType struct {
	ID            uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID       uint         `gorm:"index;not null" json:"event_id"`
	Type          EditableType `gorm:"not null" json:"type"`
	Name          string       `gorm:"size:128;not null" json:"name"`
	Extensions    string       `gorm:"size:255" json:"extensions"`
	AllowMultiple bool         `gorm:"not null;default:false" json:"allow_multiple_files"`
	Required      bool         `gorm:"not null;default:false" json:"required"`
	Publishable   bool         `gorm:"not null;default:false" json:"publishable"`
}

// TableName returns the table name for FileType
func (FileType) TableName() string {
	return "file_types"
}

// ReviewCondition is one required file-type combination. An editable is
// ready for review once the file types of its latest revision with files
// are a superset of at least one condition.
type ReviewCondition struct {
	ID        uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID   uint         `gorm:"index;not null" json:"event_id"`
	Type      EditableType `gorm:"not null" json:"type"`
	FileTypes []FileType   `gorm:"many2many:review_condition_file_types" json:"file_types,omitempty"`
}

// TableName returns the table name for ReviewCondition
func (ReviewCondition) TableName() string {
	return "review_conditions"
}

// FileTypeIDs returns the ids of the condition's required file types
func (c *ReviewCondition) FileTypeIDs() []uint {
	ids := make([]uint, len(c.FileTypes))
	for i, ft := range c.FileTypes {
		ids[i] = ft.ID
	}
	return ids
}
