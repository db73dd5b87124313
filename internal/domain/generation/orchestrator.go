// Package generation implements the Generation Orchestrator: the public
// operations that compose the Region Resolver, Message Parser, Uploader,
// Draft Builder, and Smart Poller into a single client call.
package generation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/uniedit/genbridge/internal/domain/draft"
	"github.com/uniedit/genbridge/internal/domain/message"
	"github.com/uniedit/genbridge/internal/domain/poll"
	"github.com/uniedit/genbridge/internal/domain/region"
	"github.com/uniedit/genbridge/internal/domain/upload"
	"github.com/uniedit/genbridge/internal/model"
	"github.com/uniedit/genbridge/internal/port/outbound"
	apperrors "github.com/uniedit/genbridge/internal/shared/errors"
	"github.com/uniedit/genbridge/internal/shared/logger"
)

// Config tunes the orchestrator's draft/poll behavior.
type Config struct {
	StrictInternationalModels bool
	PollConfig                func(historyID string, expectedItemCount int) poll.Config
}

// DefaultConfig returns an orchestrator Config using the poller's defaults.
func DefaultConfig() Config {
	return Config{
		StrictInternationalModels: true,
		PollConfig:                poll.DefaultConfig,
	}
}

// Orchestrator composes the generation pipeline's components behind the
// five public operations the HTTP layer calls.
type Orchestrator struct {
	upstream    outbound.UpstreamPort
	uploader    *upload.Uploader
	pool        outbound.TokenPoolPort
	sessions    outbound.SessionProviderPort
	creditCache outbound.CreditCachePort
	cfg         Config
}

// New wires an Orchestrator from its collaborators.
func New(upstream outbound.UpstreamPort, pool outbound.TokenPoolPort, sessions outbound.SessionProviderPort, creditCache outbound.CreditCachePort, cfg Config) *Orchestrator {
	return &Orchestrator{
		upstream:    upstream,
		uploader:    upload.New(upstream),
		pool:        pool,
		sessions:    sessions,
		creditCache: creditCache,
		cfg:         cfg,
	}
}

// GenerateImages is the text-to-image public operation.
func (o *Orchestrator) GenerateImages(ctx context.Context, req model.ImageGenerationRequest) (*model.GenerationResult, error) {
	if req.Prompt == "" {
		return nil, apperrors.New(apperrors.KindValidation, "prompt is required", nil)
	}

	sessionToken, err := o.acquireToken(ctx, req.SessionToken)
	if err != nil {
		return nil, err
	}

	info, err := region.Resolve(sessionToken)
	if err != nil {
		return nil, apperrors.New(apperrors.KindValidation, "invalid session token", err)
	}

	o.checkCreditBestEffort(ctx, info, sessionToken)

	result, err := draft.Build(draft.Params{
		Mode:                draft.ModeGenerate,
		Prompt:              req.Prompt,
		NegativePrompt:      req.NegativePrompt,
		SampleStrength:      req.SampleStrength,
		PublicModel:         req.Model,
		Resolution:          req.Resolution,
		Ratio:               req.Ratio,
		International:       info.IsInternational,
		RegionCode:          string(info.Region),
		StrictInternational: o.cfg.StrictInternationalModels,
	})
	if err != nil {
		return nil, apperrors.New(apperrors.KindValidation, "build draft", err)
	}

	return o.submitAndCollect(ctx, info, sessionToken, result)
}

// GenerateImageComposition is the image(s)-to-image public operation,
// accepting 1..10 input images.
func (o *Orchestrator) GenerateImageComposition(ctx context.Context, req model.ImageCompositionRequest) (*model.GenerationResult, error) {
	if len(req.Images) == 0 {
		return nil, apperrors.New(apperrors.KindValidation, "at least one input image is required", nil)
	}
	if len(req.Images) > 10 {
		return nil, apperrors.New(apperrors.KindValidation, "at most 10 input images are supported", nil)
	}

	sessionToken, err := o.acquireToken(ctx, req.SessionToken)
	if err != nil {
		return nil, err
	}

	info, err := region.Resolve(sessionToken)
	if err != nil {
		return nil, apperrors.New(apperrors.KindValidation, "invalid session token", err)
	}

	o.checkCreditBestEffort(ctx, info, sessionToken)

	refs, err := o.uploader.UploadAll(ctx, info, sessionToken, req.Images)
	if err != nil {
		return nil, err
	}

	result, err := draft.Build(draft.Params{
		Mode:                draft.ModeBlend,
		Prompt:              req.Prompt,
		NegativePrompt:      req.NegativePrompt,
		SampleStrength:      req.SampleStrength,
		PublicModel:         req.Model,
		Resolution:          req.Resolution,
		Ratio:               req.Ratio,
		International:       info.IsInternational,
		RegionCode:          string(info.Region),
		StrictInternational: o.cfg.StrictInternationalModels,
		UploadedImages:      refs,
	})
	if err != nil {
		return nil, apperrors.New(apperrors.KindValidation, "build draft", err)
	}

	return o.submitAndCollect(ctx, info, sessionToken, result)
}

// GenerateVideo is the text/image-to-video public operation. Duration must
// be 4..15 seconds; at most two reference images (first/last frame).
func (o *Orchestrator) GenerateVideo(ctx context.Context, req model.VideoGenerationRequest) (*model.GenerationResult, error) {
	if req.Duration < 4 || req.Duration > 15 {
		return nil, apperrors.New(apperrors.KindValidation, "duration must be between 4 and 15 seconds", nil)
	}

	sessionToken, err := o.acquireToken(ctx, req.SessionToken)
	if err != nil {
		return nil, err
	}

	info, err := region.Resolve(sessionToken)
	if err != nil {
		return nil, apperrors.New(apperrors.KindValidation, "invalid session token", err)
	}

	o.checkCreditBestEffort(ctx, info, sessionToken)

	var firstRef, lastRef *model.UploadedImageReference
	if req.FirstFrame != nil {
		firstRef, err = o.uploader.UploadOne(ctx, info, sessionToken, req.FirstFrame)
		if err != nil {
			return nil, err
		}
	}
	if req.LastFrame != nil {
		lastRef, err = o.uploader.UploadOne(ctx, info, sessionToken, req.LastFrame)
		if err != nil {
			return nil, err
		}
	}

	result, err := draft.Build(draft.Params{
		Mode:        draft.ModeVideo,
		Prompt:      req.Prompt,
		PublicModel: req.Model,
		RegionCode:  string(info.Region),
		Duration:    req.Duration,
		FirstFrame:  firstRef,
		LastFrame:   lastRef,
	})
	if err != nil {
		return nil, apperrors.New(apperrors.KindValidation, "build draft", err)
	}

	return o.submitAndCollect(ctx, info, sessionToken, result)
}

// GenerateSession delegates to the Session Provider and rotates the
// caller's token.
func (o *Orchestrator) GenerateSession(ctx context.Context, req model.SessionGenerationRequest) (string, error) {
	token, err := o.sessions.NewSessionToken(ctx)
	if err != nil {
		return "", apperrors.New(apperrors.KindProvisioning, "mint session token", err)
	}
	return token, nil
}

// submitAndCollect posts the draft and drives the Smart Poller to
// completion, returning the collected artifacts.
func (o *Orchestrator) submitAndCollect(ctx context.Context, info model.RegionInfo, sessionToken string, built *draft.Result) (*model.GenerationResult, error) {
	historyID, err := o.upstream.SubmitDraft(ctx, info, sessionToken, built.Document, built.ExpectedItemCount)
	if err != nil {
		return nil, apperrors.New(apperrors.KindDraftSubmit, "submit draft", err)
	}

	cfg := poll.DefaultConfig(historyID, built.ExpectedItemCount)
	if o.cfg.PollConfig != nil {
		cfg = o.cfg.PollConfig(historyID, built.ExpectedItemCount)
	}

	tick := func(ctx context.Context) (model.PollingStatus, error) {
		record, err := o.upstream.PollHistory(ctx, info, sessionToken, historyID)
		if err != nil {
			return model.PollingStatus{}, apperrors.New(apperrors.KindTransport, "poll history", err)
		}
		return model.PollingStatus{
			HistoryID:  record.HistoryID,
			Status:     record.Status,
			FailCode:   record.FailCode,
			ItemCount:  len(record.ItemList),
			FinishTime: record.FinishTime,
		}, nil
	}

	pollResult, err := poll.Poll(ctx, cfg, tick)
	if err != nil {
		return nil, err
	}

	record, err := o.upstream.PollHistory(ctx, info, sessionToken, historyID)
	if err != nil {
		return nil, apperrors.New(apperrors.KindTransport, "fetch final history record", err)
	}
	_ = pollResult

	return &model.GenerationResult{
		HistoryID: historyID,
		Items:     record.ItemList,
	}, nil
}

// checkCreditBestEffort never fails the caller: a cache miss falls back to
// the upstream balance query, and if that query fails too the call proceeds
// assuming nonzero credit.
func (o *Orchestrator) checkCreditBestEffort(ctx context.Context, info model.RegionInfo, sessionToken string) {
	log := logger.FromContext(ctx)

	balance, err := o.creditCache.GetCreditBalance(ctx, sessionToken)
	if err != nil {
		balance, err = o.upstream.GetCreditBalance(ctx, info, sessionToken)
		if err != nil {
			log.WarnContext(ctx, "credit balance check failed, assuming nonzero", logger.Err(err))
			return
		}
		if cacheErr := o.creditCache.SetCreditBalance(ctx, sessionToken, balance); cacheErr != nil {
			log.WarnContext(ctx, "credit cache write failed", logger.Err(cacheErr))
		}
	}

	if balance.IsZero() {
		if err := o.upstream.ReceiveCredit(ctx, info, sessionToken); err != nil {
			log.WarnContext(ctx, "receive-credit top-up failed, continuing anyway", logger.Err(err))
		}
	}
}

// acquireToken uses the caller-supplied session token when present;
// otherwise selects one at random from the pool. Pool exhaustion is a
// distinct error class.
func (o *Orchestrator) acquireToken(ctx context.Context, callerToken string) (string, error) {
	if callerToken != "" {
		return callerToken, nil
	}
	if o.pool == nil || o.pool.Size() == 0 {
		return "", apperrors.New(apperrors.KindProvisioning, "token pool exhausted", nil)
	}
	return o.pool.Acquire(ctx)
}

// parseChatMessage exposes the Message Parser to the HTTP layer without an
// extra import, and tags every call with a request id for logging.
func parseChatMessage(content any) (model.ParsedMessage, string) {
	return message.Parse(content), uuid.NewString()
}

// ChatCompletionRequest is chatStream's input: the OpenAI chat-completions
// shape, reduced to what this gateway actually consumes.
type ChatCompletionRequest struct {
	SessionToken string
	Model        string
	Content      any // last user message's content, any OpenAI-shaped form
}

// StreamChunk is one SSE-delivered piece of a chat-completions response.
type StreamChunk struct {
	ID           string
	Content      string
	FinishReason string
	Done         bool
}

// ChatStream parses the incoming message, runs the appropriate generation
// (blend if images are present, otherwise text-to-image), and streams the
// resulting artifact links back as OpenAI-style chat deltas. The returned
// channel is closed after the terminal chunk (Done == true) or an error.
func (o *Orchestrator) ChatStream(ctx context.Context, req ChatCompletionRequest) (<-chan StreamChunk, <-chan error) {
	chunks := make(chan StreamChunk, 4)
	errs := make(chan error, 1)

	go func() {
		defer close(chunks)
		defer close(errs)

		parsed, chatID := parseChatMessage(req.Content)
		if parsed.Text == "" && !parsed.HasImages {
			errs <- apperrors.New(apperrors.KindValidation, "chat message has no text or images", nil)
			return
		}

		var result *model.GenerationResult
		var err error
		if parsed.HasImages {
			result, err = o.GenerateImageComposition(ctx, model.ImageCompositionRequest{
				SessionToken: req.SessionToken,
				Prompt:       parsed.Text,
				Model:        req.Model,
				Images:       parsed.Images,
			})
		} else {
			result, err = o.GenerateImages(ctx, model.ImageGenerationRequest{
				SessionToken: req.SessionToken,
				Prompt:       parsed.Text,
				Model:        req.Model,
			})
		}
		if err != nil {
			errs <- err
			return
		}

		for _, item := range result.Items {
			select {
			case chunks <- StreamChunk{ID: chatID, Content: fmt.Sprintf("![generated](%s)\n", item.URL)}:
			case <-ctx.Done():
				return
			}
		}
		select {
		case chunks <- StreamChunk{ID: chatID, FinishReason: "stop", Done: true}:
		case <-ctx.Done():
		}
	}()

	return chunks, errs
}
