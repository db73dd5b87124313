package generation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uniedit/genbridge/internal/domain/poll"
	"github.com/uniedit/genbridge/internal/model"
	apperrors "github.com/uniedit/genbridge/internal/shared/errors"
)

type mockUpstream struct {
	mock.Mock
}

func (m *mockUpstream) GetUploadToken(ctx context.Context, region model.RegionInfo, sessionToken string) (*model.UploadContext, error) {
	args := m.Called(ctx, region, sessionToken)
	uc, _ := args.Get(0).(*model.UploadContext)
	return uc, args.Error(1)
}

func (m *mockUpstream) ApplyImageUpload(ctx context.Context, region model.RegionInfo, upload *model.UploadContext, fileSize int64) (*model.UploadAddress, error) {
	args := m.Called(ctx, region, upload, fileSize)
	addr, _ := args.Get(0).(*model.UploadAddress)
	return addr, args.Error(1)
}

func (m *mockUpstream) PutObject(ctx context.Context, uploadHost, storeURI, auth string, body []byte, crc32 uint32) error {
	args := m.Called(ctx, uploadHost, storeURI, auth, body, crc32)
	return args.Error(0)
}

func (m *mockUpstream) CommitImageUpload(ctx context.Context, region model.RegionInfo, upload *model.UploadContext, sessionKey string) (*model.UploadedImageReference, error) {
	args := m.Called(ctx, region, upload, sessionKey)
	ref, _ := args.Get(0).(*model.UploadedImageReference)
	return ref, args.Error(1)
}

func (m *mockUpstream) SubmitDraft(ctx context.Context, region model.RegionInfo, sessionToken string, draft *model.DraftDocument, expectedItemCount int) (string, error) {
	args := m.Called(ctx, region, sessionToken, draft, expectedItemCount)
	return args.String(0), args.Error(1)
}

func (m *mockUpstream) PollHistory(ctx context.Context, region model.RegionInfo, sessionToken, historyID string) (*model.HistoryRecord, error) {
	args := m.Called(ctx, region, sessionToken, historyID)
	rec, _ := args.Get(0).(*model.HistoryRecord)
	return rec, args.Error(1)
}

func (m *mockUpstream) GetCreditBalance(ctx context.Context, region model.RegionInfo, sessionToken string) (*model.CreditBalance, error) {
	args := m.Called(ctx, region, sessionToken)
	bal, _ := args.Get(0).(*model.CreditBalance)
	return bal, args.Error(1)
}

func (m *mockUpstream) ReceiveCredit(ctx context.Context, region model.RegionInfo, sessionToken string) error {
	args := m.Called(ctx, region, sessionToken)
	return args.Error(0)
}

type mockPool struct {
	mock.Mock
}

func (m *mockPool) Acquire(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockPool) Size() int {
	args := m.Called()
	return args.Int(0)
}

type mockSessionProvider struct {
	mock.Mock
}

func (m *mockSessionProvider) NewSessionToken(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type mockCreditCache struct {
	mock.Mock
}

func (m *mockCreditCache) GetCreditBalance(ctx context.Context, sessionToken string) (*model.CreditBalance, error) {
	args := m.Called(ctx, sessionToken)
	bal, _ := args.Get(0).(*model.CreditBalance)
	return bal, args.Error(1)
}

func (m *mockCreditCache) SetCreditBalance(ctx context.Context, sessionToken string, balance *model.CreditBalance) error {
	args := m.Called(ctx, sessionToken, balance)
	return args.Error(0)
}

// fastPollConfig collapses the poller's pacing so orchestrator tests don't
// sleep real wall-clock time.
func fastPollConfig(historyID string, expectedItemCount int) poll.Config {
	cfg := poll.DefaultConfig(historyID, expectedItemCount)
	cfg.InitialInterval = 0
	cfg.MaxInterval = 0
	cfg.IntervalStep = 0
	cfg.Clock = instantClock{}
	return cfg
}

// instantClock never actually sleeps, so poll-backed orchestrator tests run
// without real delay.
type instantClock struct{}

func (instantClock) Now() time.Time        { return time.Unix(0, 0) }
func (instantClock) Sleep(d time.Duration) {}

func TestOrchestrator_GenerateImages_HappyPath(t *testing.T) {
	up := new(mockUpstream)
	cache := new(mockCreditCache)
	token := "plain-session-token"

	cache.On("GetCreditBalance", mock.Anything, token).Return(&model.CreditBalance{TotalCredit: 10}, nil)
	up.On("SubmitDraft", mock.Anything, mock.Anything, token, mock.Anything, mock.Anything).Return("hist-1", nil)
	up.On("PollHistory", mock.Anything, mock.Anything, token, "hist-1").Return(&model.HistoryRecord{
		HistoryID:  "hist-1",
		Status:     50,
		ItemList:   []model.HistoryItem{{URL: "https://example.com/a.png"}},
		FinishTime: 123,
	}, nil)

	orch := New(up, nil, nil, cache, Config{StrictInternationalModels: true, PollConfig: fastPollConfig})
	result, err := orch.GenerateImages(context.Background(), model.ImageGenerationRequest{
		SessionToken: token,
		Prompt:       "a cat on a rooftop",
		Resolution:   model.Resolution1K,
		Ratio:        model.Ratio1x1,
	})

	require.NoError(t, err)
	assert.Equal(t, "hist-1", result.HistoryID)
	assert.Len(t, result.Items, 1)
	up.AssertExpectations(t)
}

func TestOrchestrator_GenerateImages_EmptyPromptIsValidationError(t *testing.T) {
	orch := New(new(mockUpstream), nil, nil, new(mockCreditCache), DefaultConfig())
	_, err := orch.GenerateImages(context.Background(), model.ImageGenerationRequest{SessionToken: "tok"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestOrchestrator_GenerateImages_PoolExhaustedWhenNoCallerToken(t *testing.T) {
	pool := new(mockPool)
	pool.On("Size").Return(0)

	orch := New(new(mockUpstream), pool, nil, new(mockCreditCache), DefaultConfig())
	_, err := orch.GenerateImages(context.Background(), model.ImageGenerationRequest{Prompt: "x"})

	require.Error(t, err)
	assert.Equal(t, apperrors.KindProvisioning, apperrors.KindOf(err))
}

func TestOrchestrator_GenerateImages_DraftSubmitFailureIsDraftSubmitKind(t *testing.T) {
	up := new(mockUpstream)
	cache := new(mockCreditCache)
	token := "plain-session-token"

	cache.On("GetCreditBalance", mock.Anything, token).Return(&model.CreditBalance{TotalCredit: 10}, nil)
	up.On("SubmitDraft", mock.Anything, mock.Anything, token, mock.Anything, mock.Anything).
		Return("", apperrors.New(apperrors.KindTransport, "network blip", nil))

	orch := New(up, nil, nil, cache, Config{PollConfig: fastPollConfig})
	_, err := orch.GenerateImages(context.Background(), model.ImageGenerationRequest{SessionToken: token, Prompt: "x"})

	require.Error(t, err)
	assert.Equal(t, apperrors.KindDraftSubmit, apperrors.KindOf(err))
}

func TestOrchestrator_GenerateImageComposition_RejectsTooManyImages(t *testing.T) {
	orch := New(new(mockUpstream), nil, nil, new(mockCreditCache), DefaultConfig())

	images := make([]model.Image, 11)
	for i := range images {
		images[i] = model.ImageBytes{Bytes: []byte("x")}
	}

	_, err := orch.GenerateImageComposition(context.Background(), model.ImageCompositionRequest{
		SessionToken: "tok", Prompt: "combine", Images: images,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestOrchestrator_GenerateImageComposition_UploadsThenBuildsBlendDraft(t *testing.T) {
	up := new(mockUpstream)
	cache := new(mockCreditCache)
	token := "plain-session-token"

	cache.On("GetCreditBalance", mock.Anything, token).Return(&model.CreditBalance{TotalCredit: 10}, nil)

	uploadCtx := &model.UploadContext{}
	address := &model.UploadAddress{
		StoreInfos:  []model.StoreInfo{{StoreURI: "store/1", Auth: "auth"}},
		UploadHosts: []string{"host"},
		SessionKey:  "key",
	}
	ref := &model.UploadedImageReference{URI: "tos-uri-1", URIStatus: model.UploadCommitSuccessStatus}

	up.On("GetUploadToken", mock.Anything, mock.Anything, token).Return(uploadCtx, nil)
	up.On("ApplyImageUpload", mock.Anything, mock.Anything, uploadCtx, mock.Anything).Return(address, nil)
	up.On("PutObject", mock.Anything, "host", "store/1", "auth", mock.Anything, mock.Anything).Return(nil)
	up.On("CommitImageUpload", mock.Anything, mock.Anything, uploadCtx, "key").Return(ref, nil)
	up.On("SubmitDraft", mock.Anything, mock.Anything, token, mock.Anything, mock.Anything).Return("hist-2", nil)
	up.On("PollHistory", mock.Anything, mock.Anything, token, "hist-2").Return(&model.HistoryRecord{
		HistoryID: "hist-2", Status: 50, FinishTime: 1,
	}, nil)

	orch := New(up, nil, nil, cache, Config{PollConfig: fastPollConfig})
	result, err := orch.GenerateImageComposition(context.Background(), model.ImageCompositionRequest{
		SessionToken: token,
		Prompt:       "combine these",
		Images:       []model.Image{model.ImageBytes{Bytes: []byte("hello")}},
	})

	require.NoError(t, err)
	assert.Equal(t, "hist-2", result.HistoryID)
	up.AssertExpectations(t)
}

func TestOrchestrator_GenerateVideo_RejectsBadDuration(t *testing.T) {
	orch := New(new(mockUpstream), nil, nil, new(mockCreditCache), DefaultConfig())
	_, err := orch.GenerateVideo(context.Background(), model.VideoGenerationRequest{SessionToken: "tok", Prompt: "x", Duration: 2})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestOrchestrator_GenerateSession_DelegatesToProvider(t *testing.T) {
	sessions := new(mockSessionProvider)
	sessions.On("NewSessionToken", mock.Anything).Return("fresh-token", nil)

	orch := New(new(mockUpstream), nil, sessions, new(mockCreditCache), DefaultConfig())
	token, err := orch.GenerateSession(context.Background(), model.SessionGenerationRequest{})

	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
}

func TestOrchestrator_GenerateSession_ProviderFailureIsProvisioningKind(t *testing.T) {
	sessions := new(mockSessionProvider)
	sessions.On("NewSessionToken", mock.Anything).Return("", apperrors.New(apperrors.KindTransport, "automation timed out", nil))

	orch := New(new(mockUpstream), nil, sessions, new(mockCreditCache), DefaultConfig())
	_, err := orch.GenerateSession(context.Background(), model.SessionGenerationRequest{})

	require.Error(t, err)
	assert.Equal(t, apperrors.KindProvisioning, apperrors.KindOf(err))
}

func TestOrchestrator_ChatStream_TextOnlyRunsImageGeneration(t *testing.T) {
	up := new(mockUpstream)
	cache := new(mockCreditCache)
	token := "plain-session-token"

	cache.On("GetCreditBalance", mock.Anything, token).Return(&model.CreditBalance{TotalCredit: 10}, nil)
	up.On("SubmitDraft", mock.Anything, mock.Anything, token, mock.Anything, mock.Anything).Return("hist-3", nil)
	up.On("PollHistory", mock.Anything, mock.Anything, token, "hist-3").Return(&model.HistoryRecord{
		HistoryID: "hist-3", Status: 50, FinishTime: 1,
		ItemList: []model.HistoryItem{{URL: "https://example.com/b.png"}},
	}, nil)

	orch := New(up, nil, nil, cache, Config{PollConfig: fastPollConfig})
	chunks, errs := orch.ChatStream(context.Background(), ChatCompletionRequest{SessionToken: token, Content: "draw me a cat"})

	var seen []StreamChunk
	for c := range chunks {
		seen = append(seen, c)
	}
	require.NoError(t, <-errs)
	require.Len(t, seen, 2)
	assert.Contains(t, seen[0].Content, "https://example.com/b.png")
	assert.True(t, seen[1].Done)
}

func TestOrchestrator_ChatStream_EmptyContentIsError(t *testing.T) {
	orch := New(new(mockUpstream), nil, nil, new(mockCreditCache), DefaultConfig())
	chunks, errs := orch.ChatStream(context.Background(), ChatCompletionRequest{Content: ""})

	for range chunks {
		t.Fatal("no chunks expected on empty content")
	}
	err := <-errs
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}
