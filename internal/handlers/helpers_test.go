package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/atwlabs/novel-workspace/internal/config"
	"github.com/atwlabs/novel-workspace/internal/middleware"
	"github.com/atwlabs/novel-workspace/internal/models"
	"github.com/atwlabs/novel-workspace/internal/services"
	"github.com/atwlabs/novel-workspace/internal/session"
	"github.com/atwlabs/novel-workspace/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("handlers-test-secret")
}

type stubTranslator struct {
	out string
	err error
}

func (s *stubTranslator) Translate(context.Context, string, string) (string, error) {
	return s.out, s.err
}

type testServer struct {
	router     *gin.Engine
	db         *gorm.DB
	translator *stubTranslator
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := models.Open(&config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	}, "silent")
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))

	tr := &stubTranslator{out: "translated"}
	usage := services.NewTranslationUsageService(db)
	chapters := services.NewChapterService(db, tr, usage, "Burmese")
	reviews := services.NewReviewService(db, session.NewStoreResolver(true))
	catalog := services.NewCatalogService(db, chapters, reviews)
	dashboard := services.NewDashboardService(db, catalog, usage)

	novelHandler := NewNovelHandler(catalog)
	chapterHandler := NewChapterHandler(chapters)
	reviewHandler := NewReviewHandler(reviews)
	adminHandler := NewAdminHandler(db, chapters)

	r := gin.New()
	r.GET("/health", NewHealthHandler(db).CheckHealth)
	api := r.Group("/api")
	api.Use(middleware.Identify(session.TokenResolver{}))
	{
		api.GET("/novels", novelHandler.List)
		api.GET("/novels/:id", novelHandler.TableOfContents)
		api.GET("/read/:chapterId", novelHandler.Read)
		api.GET("/dashboard", NewDashboardHandler(dashboard).GetDashboard)
		api.GET("/chapters/:id", chapterHandler.GetByID)
		api.PUT("/chapters/:id/draft", chapterHandler.SaveDraft)
		api.POST("/chapters/:id/mark-reviewed", chapterHandler.MarkReviewed)
		api.POST("/chapters/:id/translate", chapterHandler.Translate)
		api.GET("/chapters/:id/reviews", reviewHandler.List)
		api.POST("/chapters/:id/reviews", reviewHandler.Submit)

		admin := api.Group("/admin")
		admin.Use(middleware.AdminRequired())
		admin.POST("/setup", adminHandler.Setup)
		admin.POST("/chapters/:id/publish", adminHandler.Publish)
		admin.POST("/chapters/:id/verify", adminHandler.Verify)
	}

	return &testServer{router: r, db: db, translator: tr}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type actionData struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Result  json.RawMessage `json:"result"`
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func action(t *testing.T, env envelope) actionData {
	t.Helper()
	var a actionData
	require.NoError(t, json.Unmarshal(env.Data, &a))
	return a
}

func (s *testServer) seed(t *testing.T) (*models.Novel, *models.Chapter) {
	t.Helper()
	novel, err := models.SeedSampleData(s.db)
	require.NoError(t, err)
	require.NotNil(t, novel)
	return novel, &novel.Chapters[0]
}

func (s *testServer) token(t *testing.T, email, role string) string {
	t.Helper()
	user := models.User{Email: email, Role: role}
	require.NoError(t, s.db.Create(&user).Error)
	token, err := utils.GenerateToken(user.ID, user.Email, user.Role, 1)
	require.NoError(t, err)
	return token
}
