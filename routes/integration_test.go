package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"portal-cms/cache"
	"portal-cms/config"
	"portal-cms/handlers"
	"portal-cms/helper"
	"portal-cms/middleware"
	"portal-cms/models"
	"portal-cms/repositories"
	"portal-cms/scheduler"
	"portal-cms/services"
	"portal-cms/testutil"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/suite"
)

type envelope struct {
	Code        int             `json:"code"`
	CodeType    string          `json:"code_type"`
	CodeMessage json.RawMessage `json:"code_message"`
	Data        json.RawMessage `json:"data"`
}

type IntegrationTestSuite struct {
	suite.Suite
	router    *gin.Engine
	clock     *testutil.Clock
	contents  services.ContentService
	writer    string
	otherUser string
	admin     string
}

func TestIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(IntegrationTestSuite))
}

func (suite *IntegrationTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	config.SetJWT(config.JWTConfig{Secret: "test-secret"})
}

func (suite *IntegrationTestSuite) SetupTest() {
	db := testutil.NewDB(suite.T())
	suite.clock = testutil.NewClock(time.Date(2024, 9, 10, 14, 0, 0, 0, time.UTC))

	contentRepo := repositories.NewContentRepository(db)
	versionRepo := repositories.NewContentVersionRepository(db)
	suite.contents = services.NewContentService(contentRepo, versionRepo, services.WithClock(suite.clock.Now))
	historyService := services.NewHistoryService(contentRepo, versionRepo)
	autosaveService := services.NewAutosaveService(suite.contents, cache.NewMemoryDraftCache(time.Hour))

	httpHelper := helper.NewHTTPHelper()
	suite.router = SetupRouter(Handlers{
		Content:  handlers.NewContentHandler(suite.contents, httpHelper),
		History:  handlers.NewHistoryHandler(historyService, httpHelper),
		Autosave: handlers.NewAutosaveHandler(autosaveService, httpHelper),
		Health:   handlers.NewHealthHandler(db, httpHelper),
	}, []string{"*"})

	suite.writer = suite.token(10, models.RoleWriter)
	suite.otherUser = suite.token(11, models.RoleWriter)
	suite.admin = suite.token(1, models.RoleAdmin)
}

func (suite *IntegrationTestSuite) token(userID uint, role models.UserRole) string {
	claims := middleware.Claims{
		UserID: userID,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(config.JWTSecret)
	suite.Require().NoError(err)
	return signed
}

func (suite *IntegrationTestSuite) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") != "" && w.Body.Len() > 0 && bytes.HasPrefix(w.Body.Bytes(), []byte("{")) {
		suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (suite *IntegrationTestSuite) createContent(token, title string) models.ContentItem {
	w, env := suite.do(http.MethodPost, "/api/v1/contents", token, map[string]interface{}{
		"title": title,
		"body":  "<p>" + title + "</p>",
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var item models.ContentItem
	suite.Require().NoError(json.Unmarshal(env.Data, &item))
	return item
}

func (suite *IntegrationTestSuite) TestCreateContent() {
	item := suite.createContent(suite.writer, "Abertura de inscrições")

	suite.Equal("abertura-de-inscricoes", item.Slug)
	suite.Equal(models.StatusDraft, item.Status)
	suite.EqualValues(10, item.AuthorID)
}

func (suite *IntegrationTestSuite) TestCreateAndPublish() {
	w, env := suite.do(http.MethodPost, "/api/v1/contents", suite.writer, map[string]interface{}{
		"title":  "Comunicado",
		"body":   "texto",
		"status": "published",
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var item models.ContentItem
	suite.Require().NoError(json.Unmarshal(env.Data, &item))
	suite.Equal(models.StatusPublished, item.Status)
	suite.NotNil(item.PublishedAt)

	w, _ = suite.do(http.MethodGet, "/api/v1/public/contents/comunicado", "", nil)
	suite.Equal(http.StatusOK, w.Code)

	w, env = suite.do(http.MethodGet, fmt.Sprintf("/api/v1/contents/%d/versions", item.ID), suite.writer, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var versions []models.ContentVersion
	suite.Require().NoError(json.Unmarshal(env.Data, &versions))
	suite.Require().Len(versions, 1)
	suite.Equal(models.StatusPublished, versions[0].Status)
	suite.Equal("created and published", versions[0].ChangeDescription)
}

func (suite *IntegrationTestSuite) TestCreateValidationErrors() {
	w, env := suite.do(http.MethodPost, "/api/v1/contents", suite.writer, map[string]interface{}{
		"body": "no title",
		"type": "banner",
	})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("validationError", env.CodeType)

	var fields map[string][]string
	suite.Require().NoError(json.Unmarshal(env.CodeMessage, &fields))
	suite.Contains(fields, "title")
	suite.Contains(fields, "type")

	suite.createContent(suite.writer, "Duplicado")
	w, env = suite.do(http.MethodPost, "/api/v1/contents", suite.otherUser, map[string]interface{}{
		"title": "Duplicado",
		"body":  "again",
	})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("badRequest", env.CodeType)
}

func (suite *IntegrationTestSuite) TestAuthentication() {
	w, _ := suite.do(http.MethodGet, "/api/v1/contents", "", nil)
	suite.Equal(http.StatusUnauthorized, w.Code)

	w, _ = suite.do(http.MethodGet, "/api/v1/contents", "not-a-jwt", nil)
	suite.Equal(http.StatusUnauthorized, w.Code)

	w, _ = suite.do(http.MethodGet, "/api/v1/contents", suite.token(5, "guest"), nil)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *IntegrationTestSuite) TestOwnership() {
	item := suite.createContent(suite.writer, "Minha página")
	path := fmt.Sprintf("/api/v1/contents/%d", item.ID)

	w, _ := suite.do(http.MethodPut, path, suite.otherUser, map[string]interface{}{"title": "Hijacked"})
	suite.Equal(http.StatusForbidden, w.Code)

	w, _ = suite.do(http.MethodGet, path+"/versions", suite.otherUser, nil)
	suite.Equal(http.StatusForbidden, w.Code)

	w, _ = suite.do(http.MethodPut, path, suite.admin, map[string]interface{}{"title": "Revisado", "change_description": "copy edit"})
	suite.Equal(http.StatusOK, w.Code, w.Body.String())

	w, _ = suite.do(http.MethodPut, "/api/v1/contents/9999", suite.admin, map[string]interface{}{"title": "x"})
	suite.Equal(http.StatusNotFound, w.Code)

	w, _ = suite.do(http.MethodPut, "/api/v1/contents/abc", suite.admin, map[string]interface{}{"title": "x"})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *IntegrationTestSuite) TestScheduleLifecycle() {
	item := suite.createContent(suite.writer, "Evento")
	path := fmt.Sprintf("/api/v1/contents/%d", item.ID)

	w, _ := suite.do(http.MethodPost, path+"/schedule", suite.writer, map[string]interface{}{
		"scheduled_at": suite.clock.Now().Add(-time.Minute).Format(time.RFC3339),
	})
	suite.Equal(http.StatusBadRequest, w.Code)

	w, _ = suite.do(http.MethodPost, path+"/schedule", suite.writer, map[string]interface{}{})
	suite.Equal(http.StatusBadRequest, w.Code)

	w, env := suite.do(http.MethodPost, path+"/schedule", suite.writer, map[string]interface{}{
		"scheduled_at": suite.clock.Now().Add(time.Hour).Format(time.RFC3339),
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var scheduled models.ContentItem
	suite.Require().NoError(json.Unmarshal(env.Data, &scheduled))
	suite.Equal(models.StatusScheduled, scheduled.Status)

	w, _ = suite.do(http.MethodDelete, path+"/schedule", suite.writer, nil)
	suite.Equal(http.StatusOK, w.Code)

	w, env = suite.do(http.MethodDelete, path+"/schedule", suite.writer, nil)
	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal("conflict", env.CodeType)

	w, _ = suite.do(http.MethodPost, path+"/schedule", suite.writer, map[string]interface{}{
		"scheduled_at": suite.clock.Now().Add(time.Hour).Format(time.RFC3339),
	})
	suite.Require().Equal(http.StatusOK, w.Code)

	suite.clock.Advance(2 * time.Hour)
	summary := scheduler.New(suite.contents).Tick(context.Background(), suite.clock.Now())
	suite.Equal(scheduler.TickSummary{Published: 1}, summary)

	w, _ = suite.do(http.MethodGet, "/api/v1/public/contents/evento", "", nil)
	suite.Equal(http.StatusOK, w.Code)

	w, _ = suite.do(http.MethodPost, path+"/archive", suite.writer, nil)
	suite.Equal(http.StatusOK, w.Code)

	w, _ = suite.do(http.MethodGet, "/api/v1/public/contents/evento", "", nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *IntegrationTestSuite) TestHistoryAndRevert() {
	item := suite.createContent(suite.writer, "Primeiro título")
	path := fmt.Sprintf("/api/v1/contents/%d", item.ID)

	for _, title := range []string{"Segundo título", "Terceiro título"} {
		w, _ := suite.do(http.MethodPut, path, suite.writer, map[string]interface{}{"title": title})
		suite.Require().Equal(http.StatusOK, w.Code)
	}

	w, env := suite.do(http.MethodGet, path+"/versions", suite.writer, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var versions []models.ContentVersion
	suite.Require().NoError(json.Unmarshal(env.Data, &versions))
	suite.Require().Len(versions, 3)
	first := versions[2]
	suite.Equal("Primeiro título", first.Title)

	w, env = suite.do(http.MethodGet, fmt.Sprintf("%s/versions/%d", path, first.ID), suite.writer, nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	w, env = suite.do(http.MethodPost, path+"/revert", suite.writer, map[string]interface{}{"snapshot_id": first.ID})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var reverted models.ContentItem
	suite.Require().NoError(json.Unmarshal(env.Data, &reverted))
	suite.Equal("Primeiro título", reverted.Title)

	w, env = suite.do(http.MethodGet, path+"/versions", suite.writer, nil)
	suite.Require().NoError(json.Unmarshal(env.Data, &versions))
	suite.Len(versions, 4)
	suite.Equal("reverted to version #1", versions[0].ChangeDescription)

	w, _ = suite.do(http.MethodPost, path+"/revert", suite.writer, map[string]interface{}{"snapshot_id": 9999})
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *IntegrationTestSuite) TestDeleteRequiresAdmin() {
	item := suite.createContent(suite.writer, "Apagar")
	path := fmt.Sprintf("/api/v1/contents/%d", item.ID)

	w, _ := suite.do(http.MethodDelete, path, suite.writer, nil)
	suite.Equal(http.StatusForbidden, w.Code)

	w, _ = suite.do(http.MethodDelete, path, suite.admin, nil)
	suite.Equal(http.StatusOK, w.Code)

	w, _ = suite.do(http.MethodGet, path, suite.admin, nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *IntegrationTestSuite) TestListContents() {
	for _, title := range []string{"Um", "Dois", "Três"} {
		suite.createContent(suite.writer, title)
	}

	w, env := suite.do(http.MethodGet, "/api/v1/contents?limit=2&status=draft", suite.writer, nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	var data struct {
		Contents   []models.ContentItem   `json:"contents"`
		Pagination map[string]interface{} `json:"pagination"`
	}
	suite.Require().NoError(json.Unmarshal(env.Data, &data))
	suite.Len(data.Contents, 2)
	suite.EqualValues(3, data.Pagination["total_records"])
	suite.EqualValues(2, data.Pagination["total_pages"])
}

func (suite *IntegrationTestSuite) TestPublicListShowsPublishedOnly() {
	suite.createContent(suite.writer, "Rascunho")
	for _, title := range []string{"Aviso", "Edital"} {
		item := suite.createContent(suite.writer, title)
		w, _ := suite.do(http.MethodPost, fmt.Sprintf("/api/v1/contents/%d/publish", item.ID), suite.writer, nil)
		suite.Require().Equal(http.StatusOK, w.Code)
	}

	w, env := suite.do(http.MethodGet, "/api/v1/public/contents?status=draft", "", nil)
	suite.Require().Equal(http.StatusOK, w.Code)

	var data struct {
		Contents   []models.ContentItem   `json:"contents"`
		Pagination map[string]interface{} `json:"pagination"`
	}
	suite.Require().NoError(json.Unmarshal(env.Data, &data))
	suite.Len(data.Contents, 2)
	for _, item := range data.Contents {
		suite.Equal(models.StatusPublished, item.Status)
	}
	suite.EqualValues(2, data.Pagination["total_records"])
}

func (suite *IntegrationTestSuite) TestAutosave() {
	w, env := suite.do(http.MethodPost, "/api/v1/autosave", suite.writer, map[string]interface{}{
		"draft_key": "editor-tab",
		"title":     "Rascunho",
		"body":      "começando",
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var result models.AutosaveResult
	suite.Require().NoError(json.Unmarshal(env.Data, &result))
	suite.True(result.Saved)
	suite.Require().NotNil(result.ContentID)

	w, env = suite.do(http.MethodPost, "/api/v1/autosave", suite.otherUser, map[string]interface{}{
		"draft_key":  "stolen",
		"content_id": *result.ContentID,
		"title":      "Rascunho",
		"body":       "sobrescrito",
	})
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Require().NoError(json.Unmarshal(env.Data, &result))
	suite.False(result.Saved)
	suite.NotEmpty(result.Notice)

	w, _ = suite.do(http.MethodGet, "/api/v1/autosave/editor-tab", suite.writer, nil)
	suite.Equal(http.StatusOK, w.Code)

	w, _ = suite.do(http.MethodDelete, "/api/v1/autosave/editor-tab", suite.writer, nil)
	suite.Equal(http.StatusOK, w.Code)

	w, _ = suite.do(http.MethodGet, "/api/v1/autosave/editor-tab", suite.writer, nil)
	suite.Equal(http.StatusNotFound, w.Code)

	w, _ = suite.do(http.MethodPost, "/api/v1/autosave", suite.writer, map[string]interface{}{"title": "no key"})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *IntegrationTestSuite) TestHealthAndMetrics() {
	w, _ := suite.do(http.MethodGet, "/health", "", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.NotEmpty(w.Header().Get("X-Request-ID"))

	w, _ = suite.do(http.MethodGet, "/metrics", "", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "cms_http_requests_total")
}
