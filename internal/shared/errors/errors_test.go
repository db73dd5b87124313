package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	t.Run("includes wrapped cause", func(t *testing.T) {
		cause := stderrors.New("dial tcp: timeout")
		err := New(KindTransport, "upstream unreachable", cause)
		assert.Contains(t, err.Error(), "upstream unreachable")
		assert.Contains(t, err.Error(), "dial tcp: timeout")
	})

	t.Run("falls back to kind when message empty and no cause", func(t *testing.T) {
		err := New(KindValidation, "", nil)
		assert.Equal(t, "validation", err.Message)
	})
}

func TestAppError_StatusCode(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:       http.StatusBadRequest,
		KindAuth:             http.StatusUnauthorized,
		KindPollTimeout:      http.StatusGatewayTimeout,
		KindPollStall:        http.StatusGatewayTimeout,
		KindUploadCommit:     http.StatusBadGateway,
		Kind("unknown-kind"): http.StatusInternalServerError,
	}
	for kind, want := range cases {
		err := New(kind, "x", nil)
		assert.Equal(t, want, err.StatusCode(), "kind=%s", kind)
	}
}

func TestKindOf(t *testing.T) {
	t.Run("unwraps AppError through errors.Join", func(t *testing.T) {
		base := New(KindUploadApply, "apply failed", stderrors.New("500"))
		wrapped := stderrors.Join(stderrors.New("context"), base)
		assert.Equal(t, KindUploadApply, KindOf(wrapped))
	})

	t.Run("plain error is KindServer", func(t *testing.T) {
		assert.Equal(t, KindServer, KindOf(stderrors.New("boom")))
	})
}

func TestIs(t *testing.T) {
	err := New(KindPollStall, "no progress", nil)
	assert.True(t, Is(err, KindPollStall))
	assert.False(t, Is(err, KindPollTimeout))
	assert.False(t, Is(stderrors.New("plain"), KindPollStall))
}
