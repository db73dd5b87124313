package draft

import "errors"

// ErrUnknownModel is returned when an international-site request names a
// model absent from the stricter international mapping table.
var ErrUnknownModel = errors.New("draft: unknown model for international site")

// ErrTooManyImages is returned when a composition request exceeds the
// upstream's 10-image blend limit.
var ErrTooManyImages = errors.New("draft: at most 10 images are supported")

// ErrInvalidDuration is returned when a video request's duration falls
// outside the supported 4..15 second range.
var ErrInvalidDuration = errors.New("draft: video duration must be between 4 and 15 seconds")
