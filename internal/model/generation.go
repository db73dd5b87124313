package model

// CreditBalance mirrors /token/points' first list entry.
type CreditBalance struct {
	GiftCredit     int64
	PurchaseCredit int64
	VipCredit      int64
	TotalCredit    int64
}

// IsZero reports whether the account has no spendable credit, the condition
// that triggers a best-effort receive-credit top-up attempt.
func (c CreditBalance) IsZero() bool {
	return c.TotalCredit <= 0
}

// ImageGenerationRequest is generateImages' input: text-to-image.
type ImageGenerationRequest struct {
	SessionToken   string
	Prompt         string
	NegativePrompt string
	SampleStrength float64
	Model          string
	Resolution     Resolution
	Ratio          Ratio
	N              int
}

// ImageCompositionRequest is generateImageComposition's input:
// image(s)-to-image, 1..10 input images.
type ImageCompositionRequest struct {
	SessionToken   string
	Prompt         string
	NegativePrompt string
	SampleStrength float64
	Model          string
	Resolution     Resolution
	Ratio          Ratio
	Images         []Image
}

// VideoGenerationRequest is generateVideo's input: text/image-to-video.
type VideoGenerationRequest struct {
	SessionToken string
	Prompt       string
	Model        string
	Duration     int // 4..15 seconds
	FirstFrame   Image
	LastFrame    Image
}

// SessionGenerationRequest delegates to the Session Provider and rotates
// the caller's token.
type SessionGenerationRequest struct {
	CallerToken string
}

// GenerationResult is the orchestrator's unified output: one or more
// produced artifact URLs plus the historyId they were collected under.
type GenerationResult struct {
	HistoryID string
	Items     []HistoryItem
}
