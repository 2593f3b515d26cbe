package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comment-service/controllers"
	"comment-service/routes"
	"comment-service/services"
	"comment-service/storage"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	gin.SetMode(gin.TestMode)
	store := storage.NewMemoryStorage()
	service := services.NewCommentService(store, store, services.NoopNotifier{})

	router := gin.New()
	routes.AuthRoutes(router, controllers.NewAuthController(store))
	routes.CommentRoutes(router, controllers.NewCommentController(service))
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	response := map[string]interface{}{}
	if recorder.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	}
	return recorder, response
}

func registerUser(t *testing.T, router *gin.Engine, name, email string) string {
	t.Helper()

	recorder, response := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     name,
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, recorder.Code, response["message"])

	data, ok := response["data"].(map[string]interface{})
	require.True(t, ok)
	token, ok := data["access_token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)
	return token
}

func TestRegisterLoginAndProfile(t *testing.T) {
	router := newTestRouter(t)

	token := registerUser(t, router, "Alice", "alice@example.com")

	recorder, response := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, true, response["success"])
	assert.NotEmpty(t, response["data"].(map[string]interface{})["access_token"])

	recorder, response = doJSON(t, router, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	user := response["data"].(map[string]interface{})
	assert.Equal(t, "alice@example.com", user["email"])
	// The password hash never leaves the server.
	_, exposed := user["password"]
	assert.False(t, exposed)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "Alice", "alice@example.com")

	recorder, response := doJSON(t, router, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Alice Again",
		"email":    "alice@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.Equal(t, "Email already exists!", response["message"])
}

func TestLogin_WrongPassword(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "Alice", "alice@example.com")

	recorder, response := doJSON(t, router, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "Invalid credentials", response["message"])
}

func TestCreateComment_RequiresAuth(t *testing.T) {
	router := newTestRouter(t)

	recorder, _ := doJSON(t, router, http.MethodPost, "/api/comments", "", gin.H{
		"content": "anonymous",
	})
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestCommentLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "Alice", "alice@example.com")

	// Create.
	recorder, response := doJSON(t, router, http.MethodPost, "/api/comments", token, gin.H{
		"content": "hello world",
	})
	require.Equal(t, http.StatusCreated, recorder.Code, response["message"])
	commentID := response["data"].(map[string]interface{})["id"].(string)

	// List: one top-level comment, viewer flags present for the author.
	recorder, response = doJSON(t, router, http.MethodGet, "/api/comments", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, float64(1), response["count"])
	assert.Equal(t, float64(1), response["total"])
	listed := response["data"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, true, listed["is_author"])
	assert.Equal(t, false, listed["is_liked_by_user"])

	// Anonymous listing carries no viewer flags.
	_, response = doJSON(t, router, http.MethodGet, "/api/comments", "", nil)
	listed = response["data"].([]interface{})[0].(map[string]interface{})
	_, present := listed["is_author"]
	assert.False(t, present)

	// Like toggle.
	recorder, response = doJSON(t, router, http.MethodPost, "/api/comments/"+commentID+"/like", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "Comment liked", response["message"])
	assert.Equal(t, float64(1), response["data"].(map[string]interface{})["like_count"])

	recorder, response = doJSON(t, router, http.MethodPost, "/api/comments/"+commentID+"/like", token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "Like removed", response["message"])

	// Reply.
	recorder, response = doJSON(t, router, http.MethodPost, "/api/comments/"+commentID+"/reply", token, gin.H{
		"content": "a reply",
	})
	require.Equal(t, http.StatusCreated, recorder.Code, response["message"])
	replyID := response["data"].(map[string]interface{})["id"].(string)

	// The reply shows up embedded in the parent.
	recorder, response = doJSON(t, router, http.MethodGet, "/api/comments/"+commentID, "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	parent := response["data"].(map[string]interface{})
	assert.Equal(t, float64(1), parent["reply_count"])
	replies := parent["replies"].([]interface{})
	require.Len(t, replies, 1)
	assert.Equal(t, replyID, replies[0].(map[string]interface{})["id"])

	// Update own comment.
	recorder, response = doJSON(t, router, http.MethodPut, "/api/comments/"+commentID, token, gin.H{
		"content": "edited",
	})
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, true, response["data"].(map[string]interface{})["is_edited"])

	// Delete cascades over the reply.
	recorder, _ = doJSON(t, router, http.MethodDelete, "/api/comments/"+commentID, token, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder, _ = doJSON(t, router, http.MethodGet, "/api/comments/"+replyID, "", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestUpdateComment_ForbiddenForOtherUser(t *testing.T) {
	router := newTestRouter(t)
	aliceToken := registerUser(t, router, "Alice", "alice@example.com")
	bobToken := registerUser(t, router, "Bob", "bob@example.com")

	_, response := doJSON(t, router, http.MethodPost, "/api/comments", aliceToken, gin.H{
		"content": "mine",
	})
	commentID := response["data"].(map[string]interface{})["id"].(string)

	recorder, _ := doJSON(t, router, http.MethodPut, "/api/comments/"+commentID, bobToken, gin.H{
		"content": "hijacked",
	})
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestReplyToReply_Rejected(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "Alice", "alice@example.com")

	_, response := doJSON(t, router, http.MethodPost, "/api/comments", token, gin.H{
		"content": "thread",
	})
	parentID := response["data"].(map[string]interface{})["id"].(string)

	_, response = doJSON(t, router, http.MethodPost, "/api/comments/"+parentID+"/reply", token, gin.H{
		"content": "first level",
	})
	replyID := response["data"].(map[string]interface{})["id"].(string)

	recorder, response := doJSON(t, router, http.MethodPost, "/api/comments/"+replyID+"/reply", token, gin.H{
		"content": "second level",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "cannot reply to a reply", response["message"])
}

func TestGetComments_QueryValidation(t *testing.T) {
	router := newTestRouter(t)

	cases := []struct {
		query   string
		message string
	}{
		{"page=0", "Page must be a positive integer"},
		{"page=abc", "Page must be a positive integer"},
		{"limit=0", "Limit must be between 1 and 100"},
		{"limit=101", "Limit must be between 1 and 100"},
		{"sortBy=random", "Invalid sort option"},
		{"filter=loved", "Invalid filter option"},
		{"parentId=not-hex", "Invalid parent comment ID"},
	}
	for _, tc := range cases {
		recorder, response := doJSON(t, router, http.MethodGet, "/api/comments?"+tc.query, "", nil)
		assert.Equal(t, http.StatusBadRequest, recorder.Code, tc.query)
		assert.Equal(t, tc.message, response["message"], tc.query)
	}
}

func TestGetComments_SortImpliesFilterOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "Alice", "alice@example.com")

	var ids []string
	for i := 0; i < 3; i++ {
		_, response := doJSON(t, router, http.MethodPost, "/api/comments", token, gin.H{
			"content": fmt.Sprintf("comment %d", i),
		})
		ids = append(ids, response["data"].(map[string]interface{})["id"].(string))
	}
	_, _ = doJSON(t, router, http.MethodPost, "/api/comments/"+ids[0]+"/like", token, nil)

	// mostLiked restricts to comments with likes.
	recorder, response := doJSON(t, router, http.MethodGet, "/api/comments?sortBy=mostLiked", "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, float64(1), response["total"])

	// newest returns everything.
	_, response = doJSON(t, router, http.MethodGet, "/api/comments?sortBy=newest", "", nil)
	assert.Equal(t, float64(3), response["total"])
}

func TestGetComment_InvalidID(t *testing.T) {
	router := newTestRouter(t)

	recorder, response := doJSON(t, router, http.MethodGet, "/api/comments/not-an-id", "", nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "Invalid Comment ID", response["message"])
}
