package outbound

import (
	"context"

	"github.com/uniedit/genbridge/internal/model"
)

// UpstreamPort is the generative media backend's HTTP surface, consumed by
// the Uploader, Draft Builder, and Smart Poller. Each method corresponds to
// one endpoint class and is individually circuit-broken by the adapter.
type UpstreamPort interface {
	// GetUploadToken requests fresh upload credentials (scene:2).
	GetUploadToken(ctx context.Context, region model.RegionInfo, sessionToken string) (*model.UploadContext, error)

	// ApplyImageUpload signs and issues ApplyImageUpload, returning where to
	// PUT the blob.
	ApplyImageUpload(ctx context.Context, region model.RegionInfo, upload *model.UploadContext, fileSize int64) (*model.UploadAddress, error)

	// PutObject performs the direct, pre-signed object PUT.
	PutObject(ctx context.Context, uploadHost, storeURI, auth string, body []byte, crc32 uint32) error

	// CommitImageUpload signs and issues CommitImageUpload, returning the
	// opaque Uri reference.
	CommitImageUpload(ctx context.Context, region model.RegionInfo, upload *model.UploadContext, sessionKey string) (*model.UploadedImageReference, error)

	// SubmitDraft posts the constructed draft document, returning the
	// historyId to poll.
	SubmitDraft(ctx context.Context, region model.RegionInfo, sessionToken string, draft *model.DraftDocument, expectedItemCount int) (string, error)

	// PollHistory fetches the current state of one historyId.
	PollHistory(ctx context.Context, region model.RegionInfo, sessionToken, historyID string) (*model.HistoryRecord, error)

	// GetCreditBalance fetches the session's current credit balance.
	GetCreditBalance(ctx context.Context, region model.RegionInfo, sessionToken string) (*model.CreditBalance, error)

	// ReceiveCredit attempts a best-effort top-up; callers must treat
	// failures as non-fatal.
	ReceiveCredit(ctx context.Context, region model.RegionInfo, sessionToken string) error
}
