package service

import (
	"errors"

	"github.com/openconf/editorial-backend/internal/domain"
	"github.com/openconf/editorial-backend/internal/repository"
	"gorm.io/gorm"
)

// PrincipalService manages event and session ACL entries
type PrincipalService interface {
	ListEventPrincipals(eventID uint) ([]*domain.EventPrincipal, error)
	// SetEditors replaces the holders of the type's editor permission with
	// the given users, leaving unrelated permissions untouched
	SetEditors(eventID uint, typ domain.EditableType, userIDs []uint) error
	GrantPermission(eventID, userID uint, permission string) error
	RevokePermission(eventID, userID uint, permission string) error

	ListSessionPrincipals(sessionID uint) ([]*domain.SessionPrincipal, error)
	SetSessionPrincipal(sessionID, userID uint, fullAccess bool, permissions []string) (*domain.SessionPrincipal, error)
	DeleteSessionPrincipal(id uint) error
}

type principalService struct {
	principalRepo repository.PrincipalRepository
	access        AccessService
}

// NewPrincipalService creates a new PrincipalService
func NewPrincipalService(principalRepo repository.PrincipalRepository, access AccessService) PrincipalService {
	return &principalService{principalRepo: principalRepo, access: access}
}

func (s *principalService) ListEventPrincipals(eventID uint) ([]*domain.EventPrincipal, error) {
	return s.principalRepo.FindByEvent(eventID)
}

func (s *principalService) GrantPermission(eventID, userID uint, permission string) error {
	principal, err := s.principalRepo.FindByEventAndUser(eventID, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		principal = &domain.EventPrincipal{EventID: eventID, UserID: userID}
	}
	if principal.HasPermission(permission) {
		return nil
	}
	principal.SetPermissions(append(principal.PermissionList(), permission))
	if err := s.principalRepo.Save(principal); err != nil {
		return err
	}
	s.access.InvalidatePrincipal(eventID, userID)
	return nil
}

func (s *principalService) RevokePermission(eventID, userID uint, permission string) error {
	principal, err := s.principalRepo.FindByEventAndUser(eventID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if !principal.HasPermission(permission) {
		return nil
	}
	kept := make([]string, 0)
	for _, p := range principal.PermissionList() {
		if p != permission {
			kept = append(kept, p)
		}
	}
	principal.SetPermissions(kept)

	// drop the row entirely once nothing is left on it
	if len(kept) == 0 && !principal.FullAccess {
		if err := s.principalRepo.Delete(principal.ID); err != nil {
			return err
		}
	} else if err := s.principalRepo.Save(principal); err != nil {
		return err
	}
	s.access.InvalidatePrincipal(eventID, userID)
	return nil
}

// SetEditors diffs the current permission holders against the wanted set and
// grants or revokes accordingly
func (s *principalService) SetEditors(eventID uint, typ domain.EditableType, userIDs []uint) error {
	permission := typ.EditorPermission()
	current, err := s.principalRepo.FindByEventAndPermission(eventID, permission)
	if err != nil {
		return err
	}

	wanted := make(map[uint]bool, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = true
	}
	have := make(map[uint]bool, len(current))
	for _, p := range current {
		have[p.UserID] = true
		if !wanted[p.UserID] {
			if err := s.RevokePermission(eventID, p.UserID, permission); err != nil {
				return err
			}
		}
	}
	for id := range wanted {
		if !have[id] {
			if err := s.GrantPermission(eventID, id, permission); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *principalService) ListSessionPrincipals(sessionID uint) ([]*domain.SessionPrincipal, error) {
	return s.principalRepo.FindBySession(sessionID)
}

// SetSessionPrincipal creates or updates the ACL entry for the user on the
// session
func (s *principalService) SetSessionPrincipal(sessionID, userID uint, fullAccess bool, permissions []string) (*domain.SessionPrincipal, error) {
	principal, err := s.principalRepo.FindBySessionAndUser(sessionID, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		principal = &domain.SessionPrincipal{SessionID: sessionID, UserID: userID}
	}
	principal.FullAccess = fullAccess
	principal.SetPermissions(permissions)
	if err := s.principalRepo.SaveSessionPrincipal(principal); err != nil {
		return nil, err
	}
	return principal, nil
}

func (s *principalService) DeleteSessionPrincipal(id uint) error {
	return s.principalRepo.DeleteSessionPrincipal(id)
}
