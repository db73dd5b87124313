package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uniedit/genbridge/internal/model"
)

// hostOnly strips the https:// scheme the client always prepends itself.
func hostOnly(url string) string {
	return strings.TrimPrefix(url, "https://")
}

func TestClient_GetUploadToken_HappyPath(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mweb/v1/get_upload_token", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"access_key_id":     "ak",
				"secret_access_key": "sk",
				"session_token":     "sts",
				"service_id":        "svc",
			},
		})
	}))
	defer srv.Close()

	region := model.RegionInfo{ImagexHost: hostOnly(srv.URL), Origin: srv.URL, Referer: srv.URL + "/"}
	client := New(Config{}, nil)
	client.httpClient = srv.Client()

	uc, err := client.GetUploadToken(context.Background(), region, "tok")
	require.NoError(t, err)
	assert.Equal(t, "ak", uc.AccessKeyID)
	assert.Equal(t, "svc", uc.ServiceID)
}

func TestClient_PutObject_NonSuccessStatusIsError(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := New(Config{}, nil)
	client.uploadClient = srv.Client()

	err := client.PutObject(context.Background(), hostOnly(srv.URL), "store/1", "auth", []byte("data"), 0)
	require.Error(t, err)
}

func TestClient_CircuitBreaker_OpensAfterRepeatedFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(Config{FailureThreshold: 2, FailureRatio: 0.5}, nil)
	client.httpClient = srv.Client()

	region := model.RegionInfo{ImagexHost: hostOnly(srv.URL), Origin: srv.URL, Referer: srv.URL + "/"}

	for i := 0; i < 5; i++ {
		_, _ = client.GetUploadToken(context.Background(), region, "tok")
	}

	// Once the breaker opens, it short-circuits without reaching the server,
	// so the observed call count must be lower than the attempt count.
	assert.Less(t, int(atomic.LoadInt32(&calls)), 5)
}
