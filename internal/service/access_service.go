package service

import (
	"context"
	"fmt"

	"github.com/openconf/editorial-backend/internal/domain"
	"github.com/openconf/editorial-backend/internal/repository"
	"github.com/openconf/editorial-backend/pkg/cache"
	"gorm.io/gorm"
)

// AccessService resolves management permissions from ACL principals.
// It backs the domain.AccessChecker the permission checks consume.
type AccessService interface {
	// CanManage reports whether the user holds the permission on the event.
	// An empty permission means full event management.
	CanManage(eventID uint, user *domain.User, permission string) bool
	// ForContribution builds an AccessChecker scoped to one contribution
	ForContribution(eventID uint, contribution *domain.Contribution) domain.AccessChecker
	// InvalidatePrincipal drops the cached ACL entry for a user
	InvalidatePrincipal(eventID, userID uint)
}

type accessService struct {
	principalRepo repository.PrincipalRepository
	cache         cache.Service
}

// NewAccessService creates a new AccessService
func NewAccessService(principalRepo repository.PrincipalRepository, cacheService cache.Service) AccessService {
	return &accessService{principalRepo: principalRepo, cache: cacheService}
}

func principalCacheKey(eventID, userID uint) string {
	return fmt.Sprintf("%s%d:%d", cache.PrefixPrincipals, eventID, userID)
}

func (s *accessService) lookupPrincipal(eventID, userID uint) *domain.EventPrincipal {
	ctx := context.Background()
	key := principalCacheKey(eventID, userID)

	if s.cache != nil && s.cache.IsAvailable() {
		var cached domain.EventPrincipal
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached
		}
	}

	principal, err := s.principalRepo.FindByEventAndUser(eventID, userID)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return nil
		}
		// negative entries are cached as an empty principal
		principal = &domain.EventPrincipal{EventID: eventID, UserID: userID}
	}

	if s.cache != nil && s.cache.IsAvailable() {
		_ = s.cache.Set(ctx, key, principal, cache.TTLPrincipals)
	}
	return principal
}

func (s *accessService) CanManage(eventID uint, user *domain.User, permission string) bool {
	if user == nil {
		return false
	}
	// site admins manage everything
	if user.IsAdmin {
		return true
	}
	principal := s.lookupPrincipal(eventID, user.ID)
	if principal == nil || principal.ID == 0 {
		return false
	}
	if principal.FullAccess {
		return true
	}
	if permission == "" {
		return false
	}
	return principal.HasPermission(permission)
}

func (s *accessService) InvalidatePrincipal(eventID, userID uint) {
	if s.cache != nil && s.cache.IsAvailable() {
		_ = s.cache.Delete(context.Background(), principalCacheKey(eventID, userID))
	}
}

func (s *accessService) ForContribution(eventID uint, contribution *domain.Contribution) domain.AccessChecker {
	return &contributionAccess{svc: s, eventID: eventID, contribution: contribution}
}

// contributionAccess adapts AccessService to a single contribution
type contributionAccess struct {
	svc          *accessService
	eventID      uint
	contribution *domain.Contribution
}

func (a *contributionAccess) CanManageEvent(user *domain.User) bool {
	return a.svc.CanManage(a.eventID, user, "")
}

func (a *contributionAccess) CanManage(user *domain.User, permission string) bool {
	return a.svc.CanManage(a.eventID, user, permission)
}

func (a *contributionAccess) CanSubmitProceedings(user *domain.User) bool {
	if a.contribution == nil {
		return false
	}
	return a.contribution.CanSubmitProceedings(user)
}

func (a *contributionAccess) IsUserAssociated(user *domain.User) bool {
	if a.contribution == nil {
		return false
	}
	return a.contribution.IsUserAssociated(user)
}
