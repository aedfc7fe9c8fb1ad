package domain

import "time"

// EditableType identifies which kind of material an editable tracks
type EditableType int

// Editable types
const (
	EditableTypePaper EditableType = iota + 1
	EditableTypeSlides
	EditableTypePoster
)

var editableTypeNames = map[EditableType]string{
	EditableTypePaper:  "paper",
	EditableTypeSlides: "slides",
	EditableTypePoster: "poster",
}

var editableTypeTitles = map[EditableType]string{
	EditableTypePaper:  "Paper",
	EditableTypeSlides: "Slides",
	EditableTypePoster: "Poster",
}

var editorPermissions = map[EditableType]string{
	EditableTypePaper:  "paper_editing",
	EditableTypeSlides: "slides_editing",
	EditableTypePoster: "poster_editing",
}

// Name returns the wire name of the editable type
func (t EditableType) Name() string {
	return editableTypeNames[t]
}

// Title returns the display title of the editable type
func (t EditableType) Title() string {
	return editableTypeTitles[t]
}

// EditorPermission returns the event permission granting editor access to
// editables of this type
func (t EditableType) EditorPermission() string {
	return editorPermissions[t]
}

// String implements fmt.Stringer
func (t EditableType) String() string {
	return t.Name()
}

// Valid reports whether the value is a known editable type
func (t EditableType) Valid() bool {
	_, ok := editableTypeNames[t]
	return ok
}

// AllEditableTypes returns every editable type in declaration order
func AllEditableTypes() []EditableType {
	return []EditableType{EditableTypePaper, EditableTypeSlides, EditableTypePoster}
}

// ParseEditableType resolves a wire name to an EditableType
func ParseEditableType(name string) (EditableType, bool) {
	for t, n := range editableTypeNames {
		if n == name {
			return t, true
		}
	}
	return 0, false
}

// EditableState is the coarse status shown to users, derived from the
// latest valid revision's type
type EditableState int

// Editable states
const (
	EditableStateNew EditableState = iota + 1
	EditableStateReadyForReview
	EditableStateNeedsSubmitterConfirmation
	EditableStateNeedsSubmitterChanges
	EditableStateAccepted
	EditableStateRejected
	EditableStateAcceptedSubmitter
)

var editableStateNames = map[EditableState]string{
	EditableStateNew:                         "new",
	EditableStateReadyForReview:              "ready_for_review",
	EditableStateNeedsSubmitterConfirmation:  "needs_submitter_confirmation",
	EditableStateNeedsSubmitterChanges:       "needs_submitter_changes",
	EditableStateAccepted:                    "accepted",
	EditableStateRejected:                    "rejected",
	EditableStateAcceptedSubmitter:           "accepted_submitter",
}

var editableStateTitles = map[EditableState]string{
	EditableStateNew:                         "New",
	EditableStateReadyForReview:              "Ready for Review",
	EditableStateNeedsSubmitterConfirmation:  "Needs Confirmation",
	EditableStateNeedsSubmitterChanges:       "Needs Changes",
	EditableStateAccepted:                    "Accepted",
	EditableStateRejected:                    "Rejected",
	EditableStateAcceptedSubmitter:           "Accepted by Submitter",
}

var editableStateCSSClasses = map[EditableState]string{
	EditableStateNew:                         "highlight",
	EditableStateReadyForReview:              "ready",
	EditableStateNeedsSubmitterConfirmation:  "editing-make-changes",
	EditableStateNeedsSubmitterChanges:       "editing-request-changes",
	EditableStateAccepted:                    "success",
	EditableStateRejected:                    "editing-rejected",
	EditableStateAcceptedSubmitter:           "editing-accepted-submitter",
}

// Name returns the wire name of the state
func (s EditableState) Name() string {
	return editableStateNames[s]
}

// Title returns the display title of the state
func (s EditableState) Title() string {
	return editableStateTitles[s]
}

// CSSClass returns the frontend style class of the state
func (s EditableState) CSSClass() string {
	return editableStateCSSClasses[s]
}

// String implements fmt.Stringer
func (s EditableState) String() string {
	return s.Name()
}

// editableStateByRevision maps the latest valid revision's type to the
// user-visible state. This table is the single source of truth for the
// external status; note the deliberate collapses (replacement and reset
// both read as ready_for_review, changes_rejection reads the same as
// needs_submitter_changes).
var editableStateByRevision = map[RevisionType]EditableState{
	RevisionTypeNew:                        EditableStateNew,
	RevisionTypeReadyForReview:             EditableStateReadyForReview,
	RevisionTypeNeedsSubmitterConfirmation: EditableStateNeedsSubmitterConfirmation,
	RevisionTypeChangesAcceptance:          EditableStateAcceptedSubmitter,
	RevisionTypeChangesRejection:           EditableStateNeedsSubmitterChanges,
	RevisionTypeNeedsSubmitterChanges:      EditableStateNeedsSubmitterChanges,
	RevisionTypeAcceptance:                 EditableStateAccepted,
	RevisionTypeRejection:                  EditableStateRejected,
	RevisionTypeReplacement:                EditableStateReadyForReview,
	RevisionTypeReset:                      EditableStateReadyForReview,
}

// AccessChecker supplies the management-permission and contribution
// association lookups the permission checks depend on. Passing it in
// explicitly keeps the checks pure and testable.
type AccessChecker interface {
	// CanManageEvent reports full event-management access
	CanManageEvent(user *User) bool
	// CanManage reports management access for a specific permission
	CanManage(user *User, permission string) bool
	// CanSubmitProceedings reports submission rights on the contribution
	CanSubmitProceedings(user *User) bool
	// IsUserAssociated reports any association with the contribution
	IsUserAssociated(user *User) bool
}

// Editable tracks one contribution's paper/slides/poster through editorial
// review. At most one non-deleted editable exists per (contribution, type).
type Editable struct {
	ID                  uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	ContributionID      uint          `gorm:"index:idx_contribution_type,unique;not null" json:"contribution_id"`
	Type                EditableType  `gorm:"index:idx_contribution_type,unique;not null" json:"type"`
	EditorID            *uint         `gorm:"index" json:"editor_id,omitempty"`
	Editor              *User         `gorm:"foreignKey:EditorID" json:"editor,omitempty"`
	PublishedRevisionID *uint         `gorm:"index" json:"published_revision_id,omitempty"`
	IsDeleted           bool          `gorm:"not null;default:false" json:"is_deleted"`
	Revisions           []Revision    `gorm:"foreignKey:EditableID" json:"revisions,omitempty"`
	Contribution        *Contribution `gorm:"foreignKey:ContributionID" json:"contribution,omitempty"`
	CreatedAt           time.Time     `json:"created_at"`
}

// TableName returns the table name for Editable
func (Editable) TableName() string {
	return "editables"
}

// ValidRevisions returns the revisions that are not undone, oldest first.
// Revisions must be loaded in creation order.
func (e *Editable) ValidRevisions() []Revision {
	valid := make([]Revision, 0, len(e.Revisions))
	for _, r := range e.Revisions {
		if !r.IsUndone {
			valid = append(valid, r)
		}
	}
	return valid
}

// LatestRevision returns the newest valid revision, or nil if none exists
func (e *Editable) LatestRevision() *Revision {
	for i := len(e.Revisions) - 1; i >= 0; i-- {
		if !e.Revisions[i].IsUndone {
			return &e.Revisions[i]
		}
	}
	return nil
}

// LatestRevisionWithFiles returns the newest valid revision carrying at
// least one file, or nil if none exists
func (e *Editable) LatestRevisionWithFiles() *Revision {
	for i := len(e.Revisions) - 1; i >= 0; i-- {
		r := &e.Revisions[i]
		if !r.IsUndone && len(r.Files) > 0 {
			return r
		}
	}
	return nil
}

// RevisionCount returns the number of valid revisions carrying files
func (e *Editable) RevisionCount() int {
	count := 0
	for _, r := range e.Revisions {
		if !r.IsUndone && len(r.Files) > 0 {
			count++
		}
	}
	return count
}

// State derives the user-visible state from the latest valid revision.
// ok is false when no valid revision exists.
func (e *Editable) State() (EditableState, bool) {
	rev := e.LatestRevision()
	if rev == nil {
		return 0, false
	}
	state, known := editableStateByRevision[rev.Type]
	return state, known
}

// LastUpdate returns the creation time of the latest valid revision
func (e *Editable) LastUpdate() (time.Time, bool) {
	rev := e.LatestRevision()
	if rev == nil {
		return time.Time{}, false
	}
	return rev.CreatedAt, true
}

// ReviewConditionsValid reports whether the editable satisfies at least one
// of the configured review conditions. With no conditions configured the
// check is vacuously true. Each condition requires the latest revision with
// files to carry all of its file types; conditions combine as OR.
func (e *Editable) ReviewConditionsValid(conditions []ReviewCondition) bool {
	if len(conditions) == 0 {
		return true
	}
	attached := make(map[uint]struct{})
	if rev := e.LatestRevisionWithFiles(); rev != nil {
		for _, f := range rev.Files {
			attached[f.FileTypeID] = struct{}{}
		}
	}
	for _, cond := range conditions {
		if coversAll(attached, cond.FileTypeIDs()) {
			return true
		}
	}
	return false
}

func coversAll(attached map[uint]struct{}, required []uint) bool {
	for _, id := range required {
		if _, ok := attached[id]; !ok {
			return false
		}
	}
	return true
}

// isEditor reports whether the user is the assigned editor
func (e *Editable) isEditor(user *User) bool {
	return user != nil && e.EditorID != nil && *e.EditorID == user.ID
}

// hasGeneralEditorPermissions reports whether the user has editor
// permissions for the editable's type without needing to be the assigned
// editor. Editing (and event) managers always have editor-like access.
func (e *Editable) hasGeneralEditorPermissions(user *User, acc AccessChecker) bool {
	return acc.CanManage(user, PermEditingManager) ||
		acc.CanManage(user, e.Type.EditorPermission())
}

// CanSeeTimeline reports pure read access to the editable's timeline.
// Anyone with editor access to the editable's type can see it, as can
// users associated with the contribution.
func (e *Editable) CanSeeTimeline(user *User, acc AccessChecker) bool {
	return e.hasGeneralEditorPermissions(user, acc) ||
		acc.CanSubmitProceedings(user) ||
		acc.IsUserAssociated(user)
}

// CanPerformSubmitterActions reports whether the user can act as the
// submitter, e.g. upload a new revision or approve/reject editor changes
func (e *Editable) CanPerformSubmitterActions(user *User, acc AccessChecker) bool {
	// Without timeline access we never allow modifications
	if !e.CanSeeTimeline(user, acc) {
		return false
	}
	return acc.CanSubmitProceedings(user)
}

// CanPerformEditorActions reports whether the user can act as the editor,
// e.g. request changes or accept/reject the editable
func (e *Editable) CanPerformEditorActions(user *User, acc AccessChecker, settings TypeSettings) bool {
	// Without timeline access we never allow modifications
	if !e.CanSeeTimeline(user, acc) {
		return false
	}
	// Editing managers who are the assigned editor may act even while
	// editing is disabled in the settings
	if e.isEditor(user) && acc.CanManage(user, PermEditingManager) {
		return true
	}
	if !settings.EditingEnabled {
		return false
	}
	// Editors need the permission on the editable type and must be the
	// assigned editor
	if e.isEditor(user) && acc.CanManage(user, e.Type.EditorPermission()) {
		return true
	}
	return false
}

// CanUseInternalComments reports whether the user can create/see internal
// comments
func (e *Editable) CanUseInternalComments(user *User, acc AccessChecker) bool {
	return e.hasGeneralEditorPermissions(user, acc)
}

// CanSeeRestrictedRevisions reports whether the user can see restricted
// revisions
func (e *Editable) CanSeeRestrictedRevisions(user *User, acc AccessChecker) bool {
	return e.hasGeneralEditorPermissions(user, acc)
}

// CanSeeEditorNames reports whether the user may see the names of editing
// team members. Always true while team anonymity is off; otherwise only
// editing team members see names. With an actor set, the check applies to
// whether that particular user's name can be revealed: an actor who cannot
// see editor names themself is not hidden from anyone. The actor lookup
// recurses exactly one hop (the inner call passes no actor).
func (e *Editable) CanSeeEditorNames(user, actor *User, acc AccessChecker, settings TypeSettings) bool {
	return !settings.AnonymousTeam ||
		(actor != nil && !e.CanSeeEditorNames(actor, nil, acc, settings)) ||
		e.hasGeneralEditorPermissions(user, acc)
}

// CanComment reports whether the user can comment on the editable. Any
// user associated with the contribution may comment, even without rights
// to perform submitter actions.
func (e *Editable) CanComment(user *User, acc AccessChecker) bool {
	return acc.CanManage(user, e.Type.EditorPermission()) ||
		acc.CanManage(user, PermEditingManager) ||
		acc.IsUserAssociated(user)
}

// CanAssignSelf reports whether the user can assign themselves as editor
func (e *Editable) CanAssignSelf(user *User, acc AccessChecker, settings TypeSettings) bool {
	if e.EditorID != nil && (e.isEditor(user) || !e.CanUnassign(user, acc, settings)) {
		return false
	}
	return (acc.CanManage(user, e.Type.EditorPermission()) &&
		settings.EditingEnabled && settings.SelfAssignAllowed) ||
		acc.CanManage(user, PermEditingManager)
}

// CanUnassign reports whether the user can unassign the current editor
func (e *Editable) CanUnassign(user *User, acc AccessChecker, settings TypeSettings) bool {
	return acc.CanManage(user, PermEditingManager) ||
		(e.isEditor(user) &&
			acc.CanManage(user, e.Type.EditorPermission()) &&
			settings.EditingEnabled && settings.SelfAssignAllowed)
}

// CanDelete reports whether the user can delete the editable
func (e *Editable) CanDelete(user *User, acc AccessChecker) bool {
	return acc.CanManageEvent(user)
}

// LogTitle returns the display title used in event log entries
func (e *Editable) LogTitle() string {
	if e.Contribution != nil {
		return "\"" + e.Contribution.Title + "\" (" + e.Type.Title() + ")"
	}
	return e.Type.Title()
}
