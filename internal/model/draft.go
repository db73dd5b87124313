package model

// GenerationMode selects which ability key and draft shape the Draft
// Builder emits.
type GenerationMode string

const (
	ModeGenerate GenerationMode = "generate" // text -> image
	ModeBlend    GenerationMode = "blend"    // image(s) -> image
	ModeVideo    GenerationMode = "video"    // text/image -> video
)

// DraftDocument is the deeply nested, versioned JSON tree the upstream's
// draft/generate endpoint expects.
type DraftDocument struct {
	Type            string           `json:"type"`
	ID              string           `json:"id"`
	MinVersion      string           `json:"min_version"`
	Version         string           `json:"version"`
	MainComponentID string           `json:"main_component_id"`
	ComponentList   []*DraftComponent `json:"component_list"`
}

// DraftComponent is the sole component of a DraftDocument, keyed by
// generation mode under Abilities.
type DraftComponent struct {
	ID            string                    `json:"id"`
	MinVersion    string                    `json:"min_version"`
	GenerateType  string                    `json:"generate_type"`
	AigcMode      string                    `json:"aigc_mode"`
	Abilities     map[string]*DraftAbility  `json:"abilities"`
}

// DraftAbility carries the core generation parameters plus one ability
// entry per uploaded image.
type DraftAbility struct {
	Type                      string                    `json:"type,omitempty"`
	ID                        string                    `json:"id"`
	GenerateType              string                    `json:"generate_type,omitempty"`
	AbilityList               []*DraftBlendAbilityEntry `json:"ability_list,omitempty"`
	PromptPlaceholderInfoList []*PromptPlaceholderInfo  `json:"prompt_placeholder_info_list,omitempty"`
	CoreParam                 *DraftCoreParam           `json:"core_param"`
	HistoryOption             *DraftHistoryOption       `json:"history_option,omitempty"`
	VideoParam                *DraftVideoParam          `json:"video_param,omitempty"`
}

// DraftBlendAbilityEntry is one blend-mode ability_list entry: a
// byte_edit reference to a single already-uploaded image.
type DraftBlendAbilityEntry struct {
	Name         string             `json:"name"`
	ImageURIList []string           `json:"image_uri_list"`
	ImageList    []*DraftBlendImage `json:"image_list"`
	Strength     float64            `json:"strength"`
}

// DraftBlendImage is one entry of a DraftBlendAbilityEntry's image_list.
type DraftBlendImage struct {
	SourceFrom   string `json:"source_from"`
	PlatformType int    `json:"platform_type"`
	ImageURI     string `json:"image_uri"`
	URI          string `json:"uri"`
}

// DraftImageReference points a video ability's frame parameter at an
// already-uploaded image by its opaque Uri.
type DraftImageReference struct {
	ID    string      `json:"id"`
	Type  string      `json:"type"`
	Name  string      `json:"name"`
	Image *DraftImage `json:"image"`
}

// DraftImage wraps an uploaded image's Uri for inline reference.
type DraftImage struct {
	ID       string `json:"id"`
	URI      string `json:"uri"`
	ImageURI string `json:"image_uri"`
}

// PromptPlaceholderInfo maps a "##"-prefixed placeholder in the prompt back
// to the ability it stands for, one per uploaded image in blend mode.
// AbilityIndex is the entry's position in AbilityList, 0-based.
type PromptPlaceholderInfo struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	PlaceholderID string `json:"placeholder_id"`
	AbilityIndex  int    `json:"ability_index"`
}

// DraftCoreParam carries the model, prompt, resolution, and ratio
// parameters common to every generation mode.
type DraftCoreParam struct {
	Type             string `json:"type"`
	ID               string `json:"id"`
	Model            string `json:"model"`
	Prompt           string `json:"prompt"`
	NegativePrompt   string `json:"negative_prompt,omitempty"`
	Seed             int64  `json:"seed"`
	SampleStrength   float64 `json:"sample_strength,omitempty"`
	ImageRatio       int    `json:"image_ratio"`
	IntelligentRatio bool   `json:"intelligent_ratio"`
	LargeImageInfo   *LargeImageInfo `json:"large_image_info"`
}

// LargeImageInfo is the width/height/ratio echoed alongside every
// DraftCoreParam for a given resolution/ratio pair.
type LargeImageInfo struct {
	Type           string `json:"type"`
	ID             string `json:"id"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	ResolutionType string `json:"resolution_type"`
}

// DraftHistoryOption toggles whether a generation is recorded on the
// upstream's own history surface (always enabled by this gateway).
type DraftHistoryOption struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// DraftVideoParam carries video-mode-specific parameters: duration and
// optional first/last-frame image references.
type DraftVideoParam struct {
	Type         string               `json:"type"`
	ID           string               `json:"id"`
	Duration     int                  `json:"duration"`
	FirstFrame   *DraftImageReference `json:"first_frame_image,omitempty"`
	LastFrame    *DraftImageReference `json:"last_frame_image,omitempty"`
}
