package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"starlit/starlit/types"
	"starlit/starlit/utils/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logging.InitTestLogger()
}

func TestInferSuccess(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/query", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]string{"response": "4"})
	}))
	defer srv.Close()

	answer, err := NewClient(srv.URL).Infer(context.Background(), "2+2?", "m1", "corr-1")

	require.NoError(t, err)
	assert.Equal(t, "4", answer)
	assert.Equal(t, "2+2?", got["query"])
	assert.Equal(t, "m1", got["model_name"])
	assert.Equal(t, "corr-1", got["thread_id"])
}

func TestInferRejectedOnErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Infer(context.Background(), "2+2?", "m1", "corr-1")

	assert.ErrorIs(t, err, types.ErrInferenceRejected)
}

func TestInferRejectedOnEmptyAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"response": ""})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Infer(context.Background(), "2+2?", "m1", "corr-1")

	assert.ErrorIs(t, err, types.ErrInferenceRejected)
}

func TestInferUnavailableOnDeadService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := NewClient(srv.URL).Infer(context.Background(), "2+2?", "m1", "corr-1")

	assert.ErrorIs(t, err, types.ErrInferenceUnavailable)
}
