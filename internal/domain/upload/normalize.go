package upload

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/uniedit/genbridge/internal/model"
	apperrors "github.com/uniedit/genbridge/internal/shared/errors"
)

// httpClient is package-level so tests can swap it; production wiring
// leaves it at the default transport with a bounded timeout.
var httpClient = &http.Client{Timeout: 30 * time.Second}

// Normalize reduces any model.Image variant to raw bytes. This is the only
// point where an Image's polymorphism is resolved; every caller downstream
// of it works with []byte.
func Normalize(ctx context.Context, img model.Image) ([]byte, error) {
	switch v := img.(type) {
	case model.ImageBytes:
		return v.Bytes, nil
	case model.ImageBase64:
		return normalizeBase64(v.Data)
	case model.ImagePath:
		return normalizePath(v.Path)
	case model.ImageURL:
		return normalizeURL(ctx, v.URL)
	default:
		return nil, apperrors.New(apperrors.KindValidation, fmt.Sprintf("unsupported image input type %T", img), nil)
	}
}

func normalizeBase64(data string) ([]byte, error) {
	if idx := strings.Index(data, ","); idx >= 0 && strings.HasPrefix(data, "data:") {
		data = data[idx+1:]
	}
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.RawStdEncoding.DecodeString(data)
		if err != nil {
			return nil, apperrors.New(apperrors.KindValidation, "invalid base64 image data", err)
		}
	}
	return decoded, nil
}

// normalizePath canonicalizes file://, ~, absolute, and relative forms
// before reading.
func normalizePath(path string) ([]byte, error) {
	path = strings.TrimPrefix(path, "file://")

	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, apperrors.New(apperrors.KindValidation, "cannot resolve home directory for path", err)
		}
		path = home + strings.TrimPrefix(path, "~")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.New(apperrors.KindValidation, "cannot read local image path", err)
	}
	return data, nil
}

// FetchURL retrieves a remote image's raw bytes over HTTP(S). Exported for
// callers that already have a URL and need the bytes behind it, e.g. the
// HTTP layer's response_format=b64_json handling.
func FetchURL(ctx context.Context, rawURL string) ([]byte, error) {
	return normalizeURL(ctx, rawURL)
}

func normalizeURL(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, apperrors.New(apperrors.KindValidation, "invalid image url", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, apperrors.New(apperrors.KindTransport, "fetch image url", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.New(apperrors.KindTransport, fmt.Sprintf("fetch image url: status %d", resp.StatusCode), nil)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.New(apperrors.KindTransport, "read image url body", err)
	}
	return data, nil
}
