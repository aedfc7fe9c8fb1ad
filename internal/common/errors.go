package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound = errors.New("resource not found")

	// Editable errors
	ErrEditableNotFound  = errors.New("editable not found")
	ErrEditableExists    = errors.New("editable already exists")
	ErrEditorAssigned    = errors.New("editable already has an editor assigned")
	ErrNotLatestRevision = errors.New("revision is not the latest revision")
	ErrRevisionNotFound  = errors.New("revision not found")
	ErrNoFiles           = errors.New("revision requires at least one file")

	// File type errors
	ErrFileTypeNotFound   = errors.New("file type not found")
	ErrFileTypeInUse      = errors.New("file type already has files")
	ErrFileTypeInCondition = errors.New("file type is used in a review condition")
	ErrLastPublishableType = errors.New("cannot delete the only publishable file type")

	// Comment errors
	ErrCommentNotFound = errors.New("comment not found")

	// Auth errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidToken = errors.New("invalid token")
)
