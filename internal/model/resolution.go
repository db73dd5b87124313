package model

// Resolution is the closed set of output sizes the draft builder accepts.
type Resolution string

const (
	Resolution1K Resolution = "1k"
	Resolution2K Resolution = "2k"
	Resolution4K Resolution = "4k"
)

// Ratio is the closed set of aspect ratios the draft builder accepts.
type Ratio string

const (
	Ratio1x1   Ratio = "1:1"
	Ratio4x3   Ratio = "4:3"
	Ratio3x4   Ratio = "3:4"
	Ratio16x9  Ratio = "16:9"
	Ratio9x16  Ratio = "9:16"
	Ratio21x9  Ratio = "21:9"
	Ratio9x21  Ratio = "9:21"
	Ratio3x2   Ratio = "3:2"
	Ratio2x3   Ratio = "2:3"
)

// ResolutionDescriptor is one entry of the (resolution, ratio) lookup table:
// the pixel dimensions and upstream enum codes the draft builder must echo
// into every core parameter block.
type ResolutionDescriptor struct {
	Width          int
	Height         int
	ImageRatioCode int
	ResolutionType string
}
