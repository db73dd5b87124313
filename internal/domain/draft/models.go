package draft

import "sort"

// Default model identifiers, grounded on the upstream's observed defaults.
const (
	DefaultImageModel = "jimeng-4.0"
	DefaultVideoModel = "jimeng-video-3.5-pro"
)

// DraftVersion/DraftMinVersion are the draft document's required version
// fields.
const (
	DraftVersion    = "3.3.8"
	DraftMinVersion = "3.0.2"
)

// nanobananaModel maps to an external third-party model the upstream
// proxies to, triggering the fixed-resolution override in §4.5.
const nanobananaModel = "nanobanana"

// imageModelMapDomestic is the CN-site image model name -> upstream model
// key mapping. Unknown models fall back to DefaultImageModel.
var imageModelMapDomestic = map[string]string{
	"jimeng-4.5": "high_aes_general_v40l",
	"jimeng-4.1": "high_aes_general_v41",
	"jimeng-4.0": "high_aes_general_v40",
	"jimeng-3.1": "high_aes_general_v30l_art_fangzhou:general_v3.0_18b",
	"jimeng-3.0": "high_aes_general_v30l:general_v3.0_18b",
	"jimeng-2.1": "high_aes_general_v21_L:general_v2.1_L",
	"jimeng-2.0-pro": "high_aes_general_v20_L:general_v2.0_L",
	"jimeng-2.0": "high_aes_general_v20:general_v2.0",
	"jimeng-1.4": "high_aes_general_v14:general_v1.4",
	"jimeng-xl-pro": "text2img_xl_sft",
}

// imageModelMapInternational is the US-site image model mapping. Unlike
// the domestic table, an unknown model here is a hard error (Open Question
// ii, kept explicit behind generation.Config.StrictInternationalModels).
var imageModelMapInternational = map[string]string{
	"jimeng-4.5":    "high_aes_general_v40l",
	"jimeng-4.1":    "high_aes_general_v41",
	"jimeng-4.0":    "high_aes_general_v40",
	"jimeng-3.0":    "high_aes_general_v30l:general_v3.0_18b",
	nanobananaModel: "external_model_gemini_flash_image_v25",
	"nanobananapro": "dreamina_image_lib_1",
}

// videoModelMapDomestic is the CN-site video model mapping.
var videoModelMapDomestic = map[string]string{
	"jimeng-video-4.0-pro":  "dreamina_seedance_40_pro",
	"jimeng-video-4.0":      "dreamina_seedance_40",
	"jimeng-video-3.5-pro":  "dreamina_ic_generate_video_model_vgfm_3.5_pro",
	"jimeng-video-3.0-pro":  "dreamina_ic_generate_video_model_vgfm_3.0_pro",
	"jimeng-video-3.0":      "dreamina_ic_generate_video_model_vgfm_3.0",
	"jimeng-video-3.0-fast": "dreamina_ic_generate_video_model_vgfm_3.0_fast",
	"jimeng-video-2.0":      "dreamina_ic_generate_video_model_vgfm_lite",
	"jimeng-video-2.0-pro":  "dreamina_ic_generate_video_model_vgfm1.0",
}

// videoModelMapUS is the narrower US-site video model mapping.
var videoModelMapUS = map[string]string{
	"jimeng-video-3.5-pro": "dreamina_ic_generate_video_model_vgfm_3.5_pro",
	"jimeng-video-3.0":     "dreamina_ic_generate_video_model_vgfm_3.0",
}

// videoModelMapAsia covers the HK/JP/SG international sites.
var videoModelMapAsia = map[string]string{
	"jimeng-video-veo3":     "dreamina_veo3_generate_video",
	"jimeng-video-veo3.1":   "dreamina_veo3.1_generate_video",
	"jimeng-video-sora2":    "dreamina_sora2_generate_video",
	"jimeng-video-3.5-pro":  "dreamina_ic_generate_video_model_vgfm_3.5_pro",
	"jimeng-video-3.0-pro":  "dreamina_ic_generate_video_model_vgfm_3.0_pro",
	"jimeng-video-3.0":      "dreamina_ic_generate_video_model_vgfm_3.0",
	"jimeng-video-3.0-fast": "dreamina_ic_generate_video_model_vgfm_3.0_fast",
	"jimeng-video-2.0":      "dreamina_ic_generate_video_model_vgfm_lite",
	"jimeng-video-2.0-pro":  "dreamina_ic_generate_video_model_vgfm1.0",
}

// ResolveImageModel maps a public model name to the upstream's internal
// model key. international selects the US mapping table and its stricter
// unknown-model behavior.
func ResolveImageModel(publicName string, international, strictInternational bool) (string, error) {
	if international {
		if v, ok := imageModelMapInternational[publicName]; ok {
			return v, nil
		}
		if strictInternational {
			return "", ErrUnknownModel
		}
		publicName = DefaultImageModel
	}
	if v, ok := imageModelMapDomestic[publicName]; ok {
		return v, nil
	}
	return imageModelMapDomestic[DefaultImageModel], nil
}

// ResolveVideoModel maps a public video model name, selecting among the
// three regional tables.
func ResolveVideoModel(publicName string, region string) (string, error) {
	table := videoModelMapDomestic
	switch region {
	case "us":
		table = videoModelMapUS
	case "hk", "jp", "sg":
		table = videoModelMapAsia
	}
	if v, ok := table[publicName]; ok {
		return v, nil
	}
	if v, ok := table[DefaultVideoModel]; ok {
		return v, nil
	}
	return videoModelMapDomestic[DefaultVideoModel], nil
}

// IsNanobanana reports whether the given public model name is one of the
// nanobanana family, which forces the fixed-resolution override.
func IsNanobanana(publicName string) bool {
	return publicName == nanobananaModel || publicName == "nanobananapro"
}

// ListImageModels returns the sorted union of public image model names
// across both regional tables, for the public model catalog endpoint.
func ListImageModels() []string {
	return sortedKeys(imageModelMapDomestic, imageModelMapInternational)
}

// ListVideoModels returns the sorted union of public video model names
// across all three regional tables.
func ListVideoModels() []string {
	return sortedKeys(videoModelMapDomestic, videoModelMapUS, videoModelMapAsia)
}

func sortedKeys(tables ...map[string]string) []string {
	seen := make(map[string]struct{})
	for _, table := range tables {
		for k := range table {
			seen[k] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
