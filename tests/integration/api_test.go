package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openconf/editorial-backend/internal/domain"
	"github.com/openconf/editorial-backend/internal/handler"
	"github.com/openconf/editorial-backend/internal/migration"
	"github.com/openconf/editorial-backend/internal/repository"
	"github.com/openconf/editorial-backend/internal/routes"
	"github.com/openconf/editorial-backend/internal/service"
	"github.com/openconf/editorial-backend/pkg/jwt"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// EditingAPISuite drives the editorial workflow end to end over HTTP
type EditingAPISuite struct {
	suite.Suite
	db         *gorm.DB
	router     *gin.Engine
	jwtManager *jwt.Manager

	event        *domain.Event
	contribution *domain.Contribution
	submitter    *domain.User
	editor       *domain.User
	manager      *domain.User
	fileType     *domain.FileType
}

func TestEditingAPISuite(t *testing.T) {
	suite.Run(t, new(EditingAPISuite))
}

func (s *EditingAPISuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	s.Require().NoError(err)
	s.db = db
	s.Require().NoError(migration.Run(db))

	s.jwtManager = jwt.NewManager("test-secret-key-for-integration-tests", time.Hour, 24*time.Hour)

	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewEventRepository(db)
	principalRepo := repository.NewPrincipalRepository(db)
	contributionRepo := repository.NewContributionRepository(db)
	editableRepo := repository.NewEditableRepository(db)
	revisionRepo := repository.NewRevisionRepository(db)
	fileTypeRepo := repository.NewFileTypeRepository(db)
	conditionRepo := repository.NewReviewConditionRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)

	authService := service.NewAuthService(userRepo, s.jwtManager)
	accessService := service.NewAccessService(principalRepo, nil)
	settingsService := service.NewSettingsService(settingsRepo, nil)
	layoutService := service.NewLayoutService(settingsRepo)
	previewService := service.NewPreviewService()
	editableService := service.NewEditableService(editableRepo, revisionRepo, fileTypeRepo, conditionRepo, contributionRepo, eventRepo)
	managementService := service.NewManagementService(fileTypeRepo, conditionRepo, editableRepo, principalRepo, userRepo, eventRepo, settingsService)
	principalService := service.NewPrincipalService(principalRepo, accessService)
	attachmentService := service.NewAttachmentService(attachmentRepo, nil, previewService)

	router := gin.New()
	routes.Setup(router,
		handler.NewAuthHandler(authService),
		handler.NewEditableHandler(editableService, accessService, settingsService, authService),
		handler.NewManagementHandler(managementService, principalService, settingsService, layoutService, accessService, authService),
		handler.NewAttachmentHandler(attachmentService, accessService, authService),
		s.jwtManager,
	)
	s.router = router

	s.seed()
}

func (s *EditingAPISuite) seed() {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	s.Require().NoError(err)

	s.submitter = &domain.User{Username: "alice", Email: "alice@example.com", FullName: "Alice", PasswordHash: string(hash)}
	s.editor = &domain.User{Username: "bob", Email: "bob@example.com", FullName: "Bob", PasswordHash: string(hash)}
	s.manager = &domain.User{Username: "carol", Email: "carol@example.com", FullName: "Carol", PasswordHash: string(hash)}
	for _, u := range []*domain.User{s.submitter, s.editor, s.manager} {
		s.Require().NoError(s.db.Create(u).Error)
	}

	s.event = &domain.Event{Title: "Test Conference"}
	s.Require().NoError(s.db.Create(s.event).Error)

	s.Require().NoError(s.db.Create(&domain.EventPrincipal{
		EventID:    s.event.ID,
		UserID:     s.manager.ID,
		FullAccess: true,
	}).Error)
	editorPrincipal := &domain.EventPrincipal{EventID: s.event.ID, UserID: s.editor.ID}
	editorPrincipal.SetPermissions([]string{"paper_editing"})
	s.Require().NoError(s.db.Create(editorPrincipal).Error)

	s.contribution = &domain.Contribution{
		EventID: s.event.ID,
		Title:   "A Paper",
		Persons: []domain.ContributionPerson{{
			UserID:               s.submitter.ID,
			Role:                 domain.PersonRoleSubmitter,
			CanSubmitProceedings: true,
		}},
	}
	s.Require().NoError(s.db.Create(s.contribution).Error)

	s.fileType = &domain.FileType{
		EventID:     s.event.ID,
		Type:        domain.EditableTypePaper,
		Name:        "PDF",
		Extensions:  "pdf",
		Required:    true,
		Publishable: true,
	}
	s.Require().NoError(s.db.Create(s.fileType).Error)
}

func (s *EditingAPISuite) token(user *domain.User) string {
	token, err := s.jwtManager.GenerateToken(user.ID, user.FullName, user.Email, user.IsAdmin)
	s.Require().NoError(err)
	return token
}

func (s *EditingAPISuite) request(method, path string, body interface{}, user *domain.User) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req.Header.Set("Authorization", "Bearer "+s.token(user))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *EditingAPISuite) editingPath(suffix string) string {
	return fmt.Sprintf("/api/v1/events/%d/contributions/%d/editing/paper%s", s.event.ID, s.contribution.ID, suffix)
}

func (s *EditingAPISuite) managementPath(suffix string) string {
	return fmt.Sprintf("/api/v1/events/%d/editing/paper%s", s.event.ID, suffix)
}

// latestRevisionID reads the newest live revision straight from the DB
func (s *EditingAPISuite) latestRevisionID() uint {
	var rev domain.Revision
	s.Require().NoError(s.db.Order("id DESC").First(&rev).Error)
	return rev.ID
}

func (s *EditingAPISuite) TestWorkflow() {
	// submission is closed by default
	files := []map[string]interface{}{
		{"file_type_id": s.fileType.ID, "filename": "paper.pdf", "content_type": "application/pdf", "size": 1024},
	}
	w := s.request(http.MethodPost, s.editingPath(""), gin.H{"files": files}, s.submitter)
	s.Equal(http.StatusForbidden, w.Code)

	// the manager opens submission
	w = s.request(http.MethodPatch, s.managementPath("/settings"),
		gin.H{"name": "submission_enabled", "value": true}, s.manager)
	s.Equal(http.StatusNoContent, w.Code)
	w = s.request(http.MethodPatch, s.managementPath("/settings"),
		gin.H{"name": "editing_enabled", "value": true}, s.manager)
	s.Equal(http.StatusNoContent, w.Code)

	// submitter creates the editable
	w = s.request(http.MethodPost, s.editingPath(""), gin.H{"files": files}, s.submitter)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	// timeline visible to the submitter, state derived from the first revision
	w = s.request(http.MethodGet, s.editingPath(""), nil, s.submitter)
	s.Require().Equal(http.StatusOK, w.Code)
	var timeline struct {
		Data struct {
			State               string `json:"state"`
			CanPerformSubmitter bool   `json:"can_perform_submitter_actions"`
			CanPerformEditor    bool   `json:"can_perform_editor_actions"`
		} `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &timeline))
	s.Equal("ready_for_review", timeline.Data.State)
	s.True(timeline.Data.CanPerformSubmitter)
	s.False(timeline.Data.CanPerformEditor)

	// reviewing needs an assigned editor; the manager assigns one
	w = s.request(http.MethodPost, s.editingPath("/review"),
		gin.H{"revision_id": s.latestRevisionID(), "action": "accept"}, s.editor)
	s.Equal(http.StatusForbidden, w.Code)
	w = s.request(http.MethodPut, s.editingPath("/editor"),
		gin.H{"editor_id": s.editor.ID}, s.manager)
	s.Require().Equal(http.StatusNoContent, w.Code, w.Body.String())

	// an outsider cannot see the timeline
	outsider := &domain.User{Username: "mallory", Email: "mallory@example.com"}
	s.Require().NoError(s.db.Create(outsider).Error)
	w = s.request(http.MethodGet, s.editingPath(""), nil, outsider)
	s.Equal(http.StatusForbidden, w.Code)

	// the editor requests changes
	w = s.request(http.MethodPost, s.editingPath("/review"),
		gin.H{"revision_id": s.latestRevisionID(), "action": "request_update", "comment": "fix figure 2"}, s.editor)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.request(http.MethodGet, s.editingPath(""), nil, s.submitter)
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &timeline))
	s.Equal("needs_submitter_changes", timeline.Data.State)

	// the submitter uploads a replacement
	w = s.request(http.MethodPost, s.editingPath("/revisions"),
		gin.H{"revision_id": s.latestRevisionID(), "files": files}, s.submitter)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	// a stale revision id is rejected
	w = s.request(http.MethodPost, s.editingPath("/review"),
		gin.H{"revision_id": s.latestRevisionID() - 1, "action": "accept"}, s.editor)
	s.Equal(http.StatusConflict, w.Code)

	// the editor accepts
	w = s.request(http.MethodPost, s.editingPath("/review"),
		gin.H{"revision_id": s.latestRevisionID(), "action": "accept", "comment": "ship it"}, s.editor)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.request(http.MethodGet, s.editingPath(""), nil, s.submitter)
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &timeline))
	s.Equal("accepted", timeline.Data.State)

	// the submitter cannot undo a review
	w = s.request(http.MethodPost, s.editingPath("/undo"),
		gin.H{"revision_id": s.latestRevisionID()}, s.submitter)
	s.Equal(http.StatusForbidden, w.Code)

	// the editor can
	w = s.request(http.MethodPost, s.editingPath("/undo"),
		gin.H{"revision_id": s.latestRevisionID()}, s.editor)
	s.Require().Equal(http.StatusNoContent, w.Code, w.Body.String())

	w = s.request(http.MethodGet, s.editingPath(""), nil, s.submitter)
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &timeline))
	s.Equal("ready_for_review", timeline.Data.State)
}

func (s *EditingAPISuite) TestManagementEndpoints() {
	// non-managers are rejected
	w := s.request(http.MethodGet, s.managementPath("/file-types"), nil, s.submitter)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.request(http.MethodGet, s.managementPath("/file-types"), nil, s.manager)
	s.Require().Equal(http.StatusOK, w.Code)

	// editor roster
	w = s.request(http.MethodGet, s.managementPath("/editors"), nil, s.manager)
	s.Require().Equal(http.StatusOK, w.Code)
	var editors struct {
		Data []struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &editors))
	s.Require().Len(editors.Data, 1)
	s.Equal(s.editor.ID, editors.Data[0].ID)

	// layout settings round trip
	w = s.request(http.MethodPatch,
		fmt.Sprintf("/api/v1/events/%d/layout", s.event.ID),
		gin.H{"name": "show_nav_bar", "value": false}, s.manager)
	s.Require().Equal(http.StatusNoContent, w.Code)

	w = s.request(http.MethodGet, fmt.Sprintf("/api/v1/events/%d/layout", s.event.ID), nil, s.manager)
	s.Require().Equal(http.StatusOK, w.Code)
	var layout struct {
		Data map[string]interface{} `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &layout))
	s.Equal(false, layout.Data["show_nav_bar"])
}

func (s *EditingAPISuite) TestAuthEndpoints() {
	w := s.request(http.MethodPost, "/api/v1/auth/login",
		gin.H{"username": "alice", "password": "secret123"}, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.request(http.MethodPost, "/api/v1/auth/login",
		gin.H{"username": "alice", "password": "wrong"}, nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.request(http.MethodGet, "/api/v1/auth/me", nil, s.submitter)
	s.Require().Equal(http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusUnauthorized, rec.Code)
}
