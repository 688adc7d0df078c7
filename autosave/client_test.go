package autosave

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"portal-cms/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSaveDraft(t *testing.T) {
	var received models.AutosaveRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/autosave", r.URL.Path)
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"code":         200,
			"code_type":    "success",
			"code_message": "success",
			"data":         map[string]interface{}{"draft_key": received.DraftKey, "saved": true, "content_id": 12},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", "token-123")
	result, err := client.SaveDraft(context.Background(), models.AutosaveRequest{DraftKey: "k", Title: "T", Body: "B"})
	require.NoError(t, err)

	assert.Equal(t, "T", received.Title)
	assert.True(t, result.Saved)
	require.NotNil(t, result.ContentID)
	assert.EqualValues(t, 12, *result.ContentID)
}

func TestClientSaveDraftRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"code":         401,
			"code_type":    "unAuthorized",
			"code_message": "Invalid token",
			"data":         map[string]interface{}{},
		})
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "bad").SaveDraft(context.Background(), models.AutosaveRequest{DraftKey: "k"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "Invalid token")
}
