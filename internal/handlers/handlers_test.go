package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/atwlabs/novel-workspace/internal/models"
	"github.com/atwlabs/novel-workspace/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w, _ := s.do(t, "GET", "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNovels_ListAndTableOfContents(t *testing.T) {
	s := newTestServer(t)
	novel, _ := s.seed(t)

	w, env := s.do(t, "GET", "/api/novels", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var novels []models.Novel
	require.NoError(t, json.Unmarshal(env.Data, &novels))
	require.Len(t, novels, 1)
	assert.Len(t, novels[0].Chapters, 1)

	w, env = s.do(t, "GET", "/api/novels/"+novel.ID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var toc models.Novel
	require.NoError(t, json.Unmarshal(env.Data, &toc))
	assert.Equal(t, "The Silent Stars", toc.Title)

	w, env = s.do(t, "GET", "/api/novels/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "novel not found", env.Message)
}

func TestRead(t *testing.T) {
	s := newTestServer(t)
	_, chapter := s.seed(t)

	w, env := s.do(t, "GET", "/api/read/"+chapter.ID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var view services.ReadingView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, *chapter.ContentTranslated, view.Content)
	assert.Nil(t, view.Prev)
	assert.Nil(t, view.Next)
	assert.Empty(t, view.Reviews)

	w, _ = s.do(t, "GET", "/api/read/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChapterEditorFlow(t *testing.T) {
	s := newTestServer(t)
	_, chapter := s.seed(t)
	path := "/api/chapters/" + chapter.ID

	w, env := s.do(t, "PUT", path+"/draft", ContentRequest{Content: "my draft"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, action(t, env).Success)

	w, env = s.do(t, "POST", path+"/mark-reviewed", ContentRequest{Content: "  "}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, action(t, env).Success)

	w, env = s.do(t, "POST", path+"/mark-reviewed", ContentRequest{Content: "golden"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, action(t, env).Success)

	w, env = s.do(t, "GET", path, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got models.Chapter
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, models.StatusHumanReviewing, got.Status)
	assert.Equal(t, "golden", *got.ContentEdited)
	assert.Equal(t, "my draft", *got.ContentTranslated)

	// AI translation is refused once a human has reviewed
	w, env = s.do(t, "POST", path+"/translate", nil, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, action(t, env).Success)
}

func TestChapter_NotFound(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, "GET", "/api/chapters/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env := s.do(t, "PUT", "/api/chapters/missing/draft", ContentRequest{Content: "x"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	a := action(t, env)
	assert.False(t, a.Success)
	assert.Equal(t, "chapter not found", a.Error)
}

func TestTranslate(t *testing.T) {
	s := newTestServer(t)
	_, chapter := s.seed(t)
	path := "/api/chapters/" + chapter.ID + "/translate"

	s.translator.out = "ဘာသာပြန်ချက်"
	w, env := s.do(t, "POST", path, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	a := action(t, env)
	assert.True(t, a.Success)
	assert.JSONEq(t, `{"translation":"ဘာသာပြန်ချက်"}`, string(a.Result))

	s.translator.err = fmt.Errorf("%w: quota exceeded", services.ErrTranslationFailed)
	w, env = s.do(t, "POST", path, nil, "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	a = action(t, env)
	assert.False(t, a.Success)
	assert.Equal(t, "translation failed", a.Error)

	s.translator.err = errors.Join(services.ErrTranslatorNotConfigured)
	w, _ = s.do(t, "POST", path, nil, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestReviews(t *testing.T) {
	s := newTestServer(t)
	_, chapter := s.seed(t)
	path := "/api/chapters/" + chapter.ID + "/reviews"

	w, env := s.do(t, "POST", path, SubmitReviewRequest{Rating: 9}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, action(t, env).Success)

	w, _ = s.do(t, "POST", path, map[string]string{"comment": "no rating"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// anonymous review is attributed to the seeded editor
	w, env = s.do(t, "POST", path, SubmitReviewRequest{Rating: 5, Comment: "Beautiful"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var anon models.Review
	require.NoError(t, json.Unmarshal(action(t, env).Result, &anon))
	var editor models.User
	require.NoError(t, s.db.First(&editor, "email = ?", "editor@example.com").Error)
	assert.Equal(t, editor.ID, anon.UserID)

	token := s.token(t, "reader@example.com", models.RoleReader)
	w, env = s.do(t, "POST", path, SubmitReviewRequest{Rating: 3}, token)
	require.Equal(t, http.StatusOK, w.Code)
	var signed models.Review
	require.NoError(t, json.Unmarshal(action(t, env).Result, &signed))
	assert.NotEqual(t, editor.ID, signed.UserID)

	w, env = s.do(t, "GET", path, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var reviews []models.Review
	require.NoError(t, json.Unmarshal(env.Data, &reviews))
	require.Len(t, reviews, 2)
	assert.Equal(t, signed.ID, reviews[0].ID, "newest first")

	w, _ = s.do(t, "POST", "/api/chapters/missing/reviews", SubmitReviewRequest{Rating: 4}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(t, "POST", path, SubmitReviewRequest{Rating: 4}, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t)
	s.seed(t)

	w, env := s.do(t, "GET", "/api/dashboard", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var dash services.DashboardResponse
	require.NoError(t, json.Unmarshal(env.Data, &dash))
	assert.EqualValues(t, 1, dash.Stats.Novels)
	assert.EqualValues(t, 1, dash.Stats.Chapters)
}

func TestAdmin_RequiresAdmin(t *testing.T) {
	s := newTestServer(t)
	_, chapter := s.seed(t)

	w, _ := s.do(t, "POST", "/api/admin/setup", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	editor := s.token(t, "editor2@example.com", models.RoleEditor)
	w, _ = s.do(t, "POST", "/api/admin/chapters/"+chapter.ID+"/publish", nil, editor)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdmin_PublishVerify(t *testing.T) {
	s := newTestServer(t)
	_, chapter := s.seed(t)
	admin := s.token(t, "admin@example.com", models.RoleAdmin)
	base := "/api/admin/chapters/" + chapter.ID

	// ai_translated cannot be published directly
	w, _ := s.do(t, "POST", base+"/publish", nil, admin)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = s.do(t, "POST", "/api/chapters/"+chapter.ID+"/mark-reviewed", ContentRequest{Content: "golden"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, "POST", base+"/publish", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(t, "POST", base+"/verify", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.Chapter
	require.NoError(t, s.db.First(&got, "id = ?", chapter.ID).Error)
	assert.Equal(t, models.StatusVerifiedForTraining, got.Status)
}

func TestAdmin_Setup(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(t, "admin@example.com", models.RoleAdmin)

	w, env := s.do(t, "POST", "/api/admin/setup", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, action(t, env).Success)

	var novels, users int64
	s.db.Model(&models.Novel{}).Count(&novels)
	s.db.Model(&models.User{}).Count(&users)
	assert.EqualValues(t, 1, novels)
	// the admin row was dropped with the rest of the schema
	assert.EqualValues(t, 1, users)
}

func TestHandTranslationFlow(t *testing.T) {
	s := newTestServer(t)
	novel, _ := s.seed(t)
	pending := models.Chapter{
		NovelID:         novel.ID,
		Title:           "Chapter 2: The Road",
		ContentOriginal: "The road stretched on forever.",
		Status:          models.StatusPending,
		Order:           2,
	}
	require.NoError(t, s.db.Create(&pending).Error)
	path := "/api/chapters/" + pending.ID

	// nothing to review yet
	w, env := s.do(t, "POST", path+"/mark-reviewed", ContentRequest{Content: "golden"}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, action(t, env).Success)

	w, _ = s.do(t, "PUT", path+"/draft", ContentRequest{Content: "hand draft"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(t, "POST", path+"/mark-reviewed", ContentRequest{Content: "hand draft, reviewed"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, action(t, env).Success)

	var got models.Chapter
	require.NoError(t, s.db.First(&got, "id = ?", pending.ID).Error)
	assert.Equal(t, models.StatusHumanReviewing, got.Status)
	assert.Equal(t, "hand draft, reviewed", *got.ContentEdited)
	assert.NotNil(t, got.PublishedAt)
}
