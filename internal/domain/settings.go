package domain

// TypeSettings is the per (event, editable type) workflow configuration.
// All flags default to off; management actions flip them.
type TypeSettings struct {
	SubmissionEnabled bool `json:"submission_enabled"`
	EditingEnabled    bool `json:"editing_enabled"`
	SelfAssignAllowed bool `json:"self_assign_allowed"`
	AnonymousTeam     bool `json:"anonymous_team"`
}

// EditableTypeSettings is the stored row behind TypeSettings
type EditableTypeSettings struct {
	ID                uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID           uint         `gorm:"index:idx_event_type_settings,unique;not null" json:"event_id"`
	Type              EditableType `gorm:"index:idx_event_type_settings,unique;not null" json:"type"`
	SubmissionEnabled bool         `gorm:"not null;default:false" json:"submission_enabled"`
	EditingEnabled    bool         `gorm:"not null;default:false" json:"editing_enabled"`
	SelfAssignAllowed bool         `gorm:"not null;default:false" json:"self_assign_allowed"`
	AnonymousTeam     bool         `gorm:"not null;default:false" json:"anonymous_team"`
}

// TableName returns the table name for EditableTypeSettings
func (EditableTypeSettings) TableName() string {
	return "editable_type_settings"
}

// Settings returns the row as a plain TypeSettings value
func (s *EditableTypeSettings) Settings() TypeSettings {
	return TypeSettings{
		SubmissionEnabled: s.SubmissionEnabled,
		EditingEnabled:    s.EditingEnabled,
		SelfAssignAllowed: s.SelfAssignAllowed,
		AnonymousTeam:     s.AnonymousTeam,
	}
}

// EventSetting is a generic per-event key/value setting row. Values are
// stored as JSON; the owning module supplies defaults for missing keys.
type EventSetting struct {
	ID      uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID uint   `gorm:"index:idx_event_setting,unique;not null" json:"event_id"`
	Module  string `gorm:"index:idx_event_setting,unique;size:64;not null" json:"module"`
	Name    string `gorm:"index:idx_event_setting,unique;size:64;not null" json:"name"`
	Value   string `gorm:"type:text;not null" json:"value"`
}

// TableName returns the table name for EventSetting
func (EventSetting) TableName() string {
	return "event_settings"
}
