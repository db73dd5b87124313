package upload

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uniedit/genbridge/internal/model"
)

func TestNormalize_Bytes(t *testing.T) {
	data, err := Normalize(context.Background(), model.ImageBytes{Bytes: []byte("raw")})
	require.NoError(t, err)
	assert.Equal(t, []byte("raw"), data)
}

func TestNormalize_Base64(t *testing.T) {
	t.Run("bare base64", func(t *testing.T) {
		encoded := base64.StdEncoding.EncodeToString([]byte("hello world"))
		data, err := Normalize(context.Background(), model.ImageBase64{Data: encoded})
		require.NoError(t, err)
		assert.Equal(t, []byte("hello world"), data)
	})

	t.Run("data URI header is stripped", func(t *testing.T) {
		encoded := base64.StdEncoding.EncodeToString([]byte("payload"))
		data, err := Normalize(context.Background(), model.ImageBase64{Data: "data:image/png;base64," + encoded})
		require.NoError(t, err)
		assert.Equal(t, []byte("payload"), data)
	})

	t.Run("invalid base64 is a validation error", func(t *testing.T) {
		_, err := Normalize(context.Background(), model.ImageBase64{Data: "not-base64!!!"})
		require.Error(t, err)
	})
}

func TestNormalize_Path(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "img.bin")
	require.NoError(t, os.WriteFile(path, []byte("file-contents"), 0o600))

	t.Run("absolute path", func(t *testing.T) {
		data, err := Normalize(context.Background(), model.ImagePath{Path: path})
		require.NoError(t, err)
		assert.Equal(t, []byte("file-contents"), data)
	})

	t.Run("file:// prefix is stripped", func(t *testing.T) {
		data, err := Normalize(context.Background(), model.ImagePath{Path: "file://" + path})
		require.NoError(t, err)
		assert.Equal(t, []byte("file-contents"), data)
	})

	t.Run("missing file is a validation error", func(t *testing.T) {
		_, err := Normalize(context.Background(), model.ImagePath{Path: filepath.Join(dir, "missing.bin")})
		require.Error(t, err)
	})
}

func TestNormalize_URL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("remote-bytes"))
	}))
	defer server.Close()

	data, err := Normalize(context.Background(), model.ImageURL{URL: server.URL})
	require.NoError(t, err)
	assert.Equal(t, []byte("remote-bytes"), data)
}

func TestNormalize_URL_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := Normalize(context.Background(), model.ImageURL{URL: server.URL})
	require.Error(t, err)
}
