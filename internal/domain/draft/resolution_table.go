package draft

import "github.com/uniedit/genbridge/internal/model"

// resolutionTable is the (resolution, ratio) -> {width, height,
// imageRatioCode, resolutionType} lookup, grounded on the upstream's
// observed ResolutionOptions table. 9:21 is not directly observed; its
// dimensions are the 21:9 entry's swapped, and it shares 21:9's ratio code
// since the upstream does not expose a distinct one (Open Question, see
// the project's design notes).
var resolutionTable = map[model.Resolution]map[model.Ratio]model.ResolutionDescriptor{
	model.Resolution1K: {
		model.Ratio1x1:  {Width: 1328, Height: 1328, ImageRatioCode: 1, ResolutionType: "1k"},
		model.Ratio4x3:  {Width: 1472, Height: 1104, ImageRatioCode: 4, ResolutionType: "1k"},
		model.Ratio3x4:  {Width: 1104, Height: 1472, ImageRatioCode: 2, ResolutionType: "1k"},
		model.Ratio16x9: {Width: 1664, Height: 936, ImageRatioCode: 3, ResolutionType: "1k"},
		model.Ratio9x16: {Width: 936, Height: 1664, ImageRatioCode: 5, ResolutionType: "1k"},
		model.Ratio3x2:  {Width: 1584, Height: 1056, ImageRatioCode: 7, ResolutionType: "1k"},
		model.Ratio2x3:  {Width: 1056, Height: 1584, ImageRatioCode: 6, ResolutionType: "1k"},
		model.Ratio21x9: {Width: 2016, Height: 864, ImageRatioCode: 8, ResolutionType: "1k"},
		model.Ratio9x21: {Width: 864, Height: 2016, ImageRatioCode: 8, ResolutionType: "1k"},
	},
	model.Resolution2K: {
		model.Ratio1x1:  {Width: 2048, Height: 2048, ImageRatioCode: 1, ResolutionType: "2k"},
		model.Ratio4x3:  {Width: 2304, Height: 1728, ImageRatioCode: 4, ResolutionType: "2k"},
		model.Ratio3x4:  {Width: 1728, Height: 2304, ImageRatioCode: 2, ResolutionType: "2k"},
		model.Ratio16x9: {Width: 2560, Height: 1440, ImageRatioCode: 3, ResolutionType: "2k"},
		model.Ratio9x16: {Width: 1440, Height: 2560, ImageRatioCode: 5, ResolutionType: "2k"},
		model.Ratio3x2:  {Width: 2496, Height: 1664, ImageRatioCode: 7, ResolutionType: "2k"},
		model.Ratio2x3:  {Width: 1664, Height: 2496, ImageRatioCode: 6, ResolutionType: "2k"},
		model.Ratio21x9: {Width: 3024, Height: 1296, ImageRatioCode: 8, ResolutionType: "2k"},
		model.Ratio9x21: {Width: 1296, Height: 3024, ImageRatioCode: 8, ResolutionType: "2k"},
	},
	model.Resolution4K: {
		model.Ratio1x1:  {Width: 4096, Height: 4096, ImageRatioCode: 1, ResolutionType: "4k"},
		model.Ratio4x3:  {Width: 4693, Height: 3520, ImageRatioCode: 4, ResolutionType: "4k"},
		model.Ratio3x4:  {Width: 3520, Height: 4693, ImageRatioCode: 2, ResolutionType: "4k"},
		model.Ratio16x9: {Width: 5404, Height: 3040, ImageRatioCode: 3, ResolutionType: "4k"},
		model.Ratio9x16: {Width: 3040, Height: 5404, ImageRatioCode: 5, ResolutionType: "4k"},
		model.Ratio3x2:  {Width: 4992, Height: 3328, ImageRatioCode: 7, ResolutionType: "4k"},
		model.Ratio2x3:  {Width: 3328, Height: 4992, ImageRatioCode: 6, ResolutionType: "4k"},
		model.Ratio21x9: {Width: 6197, Height: 2656, ImageRatioCode: 8, ResolutionType: "4k"},
		model.Ratio9x21: {Width: 2656, Height: 6197, ImageRatioCode: 8, ResolutionType: "4k"},
	},
}

// nanobananaOverride is forced whenever the resolved model maps to the
// nanobanana family: the upstream only accepts a fixed square frame for it.
var nanobananaOverride = model.ResolutionDescriptor{
	Width: 1024, Height: 1024, ImageRatioCode: 1, ResolutionType: "2k",
}

// LookupResolution returns the descriptor for (resolution, ratio), or false
// if the pair is unsupported.
func LookupResolution(resolution model.Resolution, ratio model.Ratio) (model.ResolutionDescriptor, bool) {
	byRatio, ok := resolutionTable[resolution]
	if !ok {
		return model.ResolutionDescriptor{}, false
	}
	d, ok := byRatio[ratio]
	return d, ok
}
