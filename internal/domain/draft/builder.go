// Package draft constructs the nested draft_content document the upstream's
// draft/generate endpoint expects, one table-driven entry per generation
// mode (text-to-image, image-to-image, text/image-to-video, and the
// jimeng-4.0 multi-image variant, which reuses the text-to-image core).
package draft

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"regexp"
	"strconv"

	"github.com/google/uuid"
	"github.com/uniedit/genbridge/internal/model"
)

// seedFloor/seedSpan bound the per-call seed newCoreAbility mints for every
// text-to-image and blend draft: [2.5e9, 2.6e9).
const (
	seedFloor = 2_500_000_000
	seedSpan  = 100_000_000
)

// multiImagePattern detects jimeng-4.0 prompts asking for a sequence of N
// images ("连续", "绘本", "故事", or an explicit "\d+张" count).
var multiImagePattern = regexp.MustCompile(`连续|绘本|故事|(\d+)张`)

const defaultMultiImageCount = 4

// blendStrength is the byte_edit ability_list entry's per-image strength.
// Spec gives the entry shape but not a specific value; 0.5 matches the
// upstream's own default for an unweighted blend.
const blendStrength = 0.5

// Params is the builder's mode-agnostic input. Exactly the fields relevant
// to the requested mode need be set; unused fields are ignored.
type Params struct {
	Mode                GenerationMode
	Prompt              string
	NegativePrompt      string
	SampleStrength      float64
	PublicModel         string
	Resolution          model.Resolution
	Ratio               model.Ratio
	International       bool
	RegionCode          string
	StrictInternational bool
	// Uploaded image references, in call order, for blend/video modes.
	UploadedImages []*model.UploadedImageReference
	// Duration in seconds, video mode only.
	Duration int
	// FirstFrame/LastFrame references, video mode only.
	FirstFrame *model.UploadedImageReference
	LastFrame  *model.UploadedImageReference
}

// GenerationMode re-exports model.GenerationMode so callers only need this
// package's import.
type GenerationMode = model.GenerationMode

const (
	ModeGenerate = model.ModeGenerate
	ModeBlend    = model.ModeBlend
	ModeVideo    = model.ModeVideo
)

// Result is what Build returns: the document plus the item count the
// Smart Poller must wait for before declaring success.
type Result struct {
	Document          *model.DraftDocument
	ExpectedItemCount int
}

// Build dispatches to the mode-specific constructor.
func Build(p Params) (*Result, error) {
	switch p.Mode {
	case ModeGenerate:
		return buildGenerate(p)
	case ModeBlend:
		return buildBlend(p)
	case ModeVideo:
		return buildVideo(p)
	default:
		return nil, fmt.Errorf("draft: unknown generation mode %q", p.Mode)
	}
}

func buildGenerate(p Params) (*Result, error) {
	resolved, err := resolveModelAndResolution(p)
	if err != nil {
		return nil, err
	}

	expectedItemCount := 1
	effectiveModel := p.PublicModel
	if effectiveModel == "" {
		effectiveModel = DefaultImageModel
	}
	if effectiveModel == DefaultImageModel {
		if n, ok := matchMultiImage(p.Prompt); ok {
			expectedItemCount = n
		}
	}

	componentID := uuid.NewString()
	ability := newCoreAbility(p.Prompt, p.NegativePrompt, p.SampleStrength, resolved)

	doc := &model.DraftDocument{
		Type:            "draft",
		ID:              uuid.NewString(),
		MinVersion:      DraftMinVersion,
		Version:         DraftVersion,
		MainComponentID: componentID,
		ComponentList: []*model.DraftComponent{
			{
				ID:           componentID,
				MinVersion:   DraftMinVersion,
				GenerateType: "generate",
				AigcMode:     "workbench",
				Abilities: map[string]*model.DraftAbility{
					"generate": ability,
				},
			},
		},
	}

	return &Result{Document: doc, ExpectedItemCount: expectedItemCount}, nil
}

func buildBlend(p Params) (*Result, error) {
	if len(p.UploadedImages) == 0 {
		return nil, fmt.Errorf("draft: blend mode requires at least one uploaded image")
	}
	if len(p.UploadedImages) > 10 {
		return nil, ErrTooManyImages
	}

	resolved, err := resolveModelAndResolution(p)
	if err != nil {
		return nil, err
	}

	ability := newCoreAbility("##"+p.Prompt, p.NegativePrompt, p.SampleStrength, resolved)
	ability.GenerateType = "blend"
	ability.Type = "ability"

	for i, ref := range p.UploadedImages {
		ability.AbilityList = append(ability.AbilityList, &model.DraftBlendAbilityEntry{
			Name:         "byte_edit",
			ImageURIList: []string{ref.URI},
			ImageList: []*model.DraftBlendImage{
				{
					SourceFrom:   "upload",
					PlatformType: 1,
					ImageURI:     ref.URI,
					URI:          ref.URI,
				},
			},
			Strength: blendStrength,
		})
		ability.PromptPlaceholderInfoList = append(ability.PromptPlaceholderInfoList, &model.PromptPlaceholderInfo{
			ID:            uuid.NewString(),
			Type:          "image",
			PlaceholderID: uuid.NewString(),
			AbilityIndex:  i,
		})
	}

	componentID := uuid.NewString()
	doc := &model.DraftDocument{
		Type:            "draft",
		ID:              uuid.NewString(),
		MinVersion:      DraftMinVersion,
		Version:         DraftVersion,
		MainComponentID: componentID,
		ComponentList: []*model.DraftComponent{
			{
				ID:           componentID,
				MinVersion:   DraftMinVersion,
				GenerateType: "blend",
				AigcMode:     "workbench",
				Abilities: map[string]*model.DraftAbility{
					"blend": ability,
				},
			},
		},
	}

	return &Result{Document: doc, ExpectedItemCount: 1}, nil
}

func buildVideo(p Params) (*Result, error) {
	if p.Duration < 4 || p.Duration > 15 {
		return nil, ErrInvalidDuration
	}

	upstreamModel, err := ResolveVideoModel(p.PublicModel, p.RegionCode)
	if err != nil {
		return nil, err
	}

	desc, ok := LookupResolution(nonEmptyResolution(p.Resolution), nonEmptyRatio(p.Ratio))
	if !ok {
		desc = resolutionTable[model.Resolution1K][model.Ratio16x9]
	}

	coreID := uuid.NewString()
	ability := &model.DraftAbility{
		ID:           uuid.NewString(),
		Type:         "ability",
		GenerateType: "video",
		CoreParam: &model.DraftCoreParam{
			Type:             "core_param",
			ID:               coreID,
			Model:            upstreamModel,
			Prompt:           p.Prompt,
			ImageRatio:       desc.ImageRatioCode,
			IntelligentRatio: false, // reserved: always false until upstream honors the public flag
			LargeImageInfo: &model.LargeImageInfo{
				Type:           "large_image_info",
				ID:             uuid.NewString(),
				Width:          desc.Width,
				Height:         desc.Height,
				ResolutionType: desc.ResolutionType,
			},
		},
		VideoParam: &model.DraftVideoParam{
			Type:     "video_param",
			ID:       uuid.NewString(),
			Duration: p.Duration,
		},
	}

	if p.FirstFrame != nil {
		ability.VideoParam.FirstFrame = frameReference(p.FirstFrame, "first_frame")
	}
	if p.LastFrame != nil {
		ability.VideoParam.LastFrame = frameReference(p.LastFrame, "last_frame")
	}

	componentID := uuid.NewString()
	doc := &model.DraftDocument{
		Type:            "draft",
		ID:              uuid.NewString(),
		MinVersion:      DraftMinVersion,
		Version:         DraftVersion,
		MainComponentID: componentID,
		ComponentList: []*model.DraftComponent{
			{
				ID:           componentID,
				MinVersion:   DraftMinVersion,
				GenerateType: "video",
				AigcMode:     "workbench",
				Abilities: map[string]*model.DraftAbility{
					"video": ability,
				},
			},
		},
	}

	return &Result{Document: doc, ExpectedItemCount: 1}, nil
}

func frameReference(ref *model.UploadedImageReference, name string) *model.DraftImageReference {
	return &model.DraftImageReference{
		ID:   uuid.NewString(),
		Type: "image",
		Name: name,
		Image: &model.DraftImage{
			ID:       uuid.NewString(),
			URI:      ref.URI,
			ImageURI: ref.URI,
		},
	}
}

type resolvedParams struct {
	upstreamModel string
	descriptor    model.ResolutionDescriptor
}

func resolveModelAndResolution(p Params) (resolvedParams, error) {
	upstreamModel, err := ResolveImageModel(p.PublicModel, p.International, p.StrictInternational)
	if err != nil {
		return resolvedParams{}, err
	}

	var desc model.ResolutionDescriptor
	if IsNanobanana(p.PublicModel) {
		desc = nanobananaOverride
		slog.Info("nanobanana resolution override applied",
			"model", p.PublicModel, "requested_resolution", p.Resolution, "requested_ratio", p.Ratio)
	} else {
		var ok bool
		desc, ok = LookupResolution(nonEmptyResolution(p.Resolution), nonEmptyRatio(p.Ratio))
		if !ok {
			desc = resolutionTable[model.Resolution1K][model.Ratio1x1]
		}
	}

	return resolvedParams{upstreamModel: upstreamModel, descriptor: desc}, nil
}

func newCoreAbility(prompt, negativePrompt string, sampleStrength float64, resolved resolvedParams) *model.DraftAbility {
	return &model.DraftAbility{
		ID:   uuid.NewString(),
		Type: "ability",
		CoreParam: &model.DraftCoreParam{
			Type:             "core_param",
			ID:               uuid.NewString(),
			Model:            resolved.upstreamModel,
			Prompt:           prompt,
			NegativePrompt:   negativePrompt,
			Seed:             seedFloor + rand.Int64N(seedSpan),
			SampleStrength:   sampleStrength,
			ImageRatio:       resolved.descriptor.ImageRatioCode,
			IntelligentRatio: false,
			LargeImageInfo: &model.LargeImageInfo{
				Type:           "large_image_info",
				ID:             uuid.NewString(),
				Width:          resolved.descriptor.Width,
				Height:         resolved.descriptor.Height,
				ResolutionType: resolved.descriptor.ResolutionType,
			},
		},
	}
}

// matchMultiImage extracts the requested image count from a jimeng-4.0
// prompt, defaulting to 4 when the pattern matches without an explicit
// count (e.g. "连续" or "绘本" without a number).
func matchMultiImage(prompt string) (int, bool) {
	m := multiImagePattern.FindStringSubmatch(prompt)
	if m == nil {
		return 0, false
	}
	if m[1] == "" {
		return defaultMultiImageCount, true
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return defaultMultiImageCount, true
	}
	return n, true
}

func nonEmptyResolution(r model.Resolution) model.Resolution {
	if r == "" {
		return model.Resolution1K
	}
	return r
}

func nonEmptyRatio(r model.Ratio) model.Ratio {
	if r == "" {
		return model.Ratio1x1
	}
	return r
}
