package draft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uniedit/genbridge/internal/model"
)

func TestBuildGenerate(t *testing.T) {
	t.Run("main_component_id equals the sole component id", func(t *testing.T) {
		res, err := Build(Params{
			Mode:       ModeGenerate,
			Prompt:     "a cat on a rooftop",
			Resolution: model.Resolution1K,
			Ratio:      model.Ratio1x1,
		})
		require.NoError(t, err)
		require.Len(t, res.Document.ComponentList, 1)
		assert.Equal(t, res.Document.MainComponentID, res.Document.ComponentList[0].ID)
	})

	t.Run("every node carries a distinct identifier", func(t *testing.T) {
		res, err := Build(Params{Mode: ModeGenerate, Prompt: "x", Resolution: model.Resolution1K, Ratio: model.Ratio1x1})
		require.NoError(t, err)

		comp := res.Document.ComponentList[0]
		ability := comp.Abilities["generate"]
		ids := []string{res.Document.ID, comp.ID, ability.ID, ability.CoreParam.ID, ability.CoreParam.LargeImageInfo.ID}
		seen := map[string]bool{}
		for _, id := range ids {
			assert.False(t, seen[id], "duplicate id %s", id)
			seen[id] = true
		}
	})

	t.Run("imageRatio and largeImageInfo are consistent with the resolution table", func(t *testing.T) {
		res, err := Build(Params{Mode: ModeGenerate, Prompt: "x", Resolution: model.Resolution2K, Ratio: model.Ratio16x9})
		require.NoError(t, err)
		core := res.Document.ComponentList[0].Abilities["generate"].CoreParam
		assert.Equal(t, 2560, core.LargeImageInfo.Width)
		assert.Equal(t, 1440, core.LargeImageInfo.Height)
		assert.Equal(t, 3, core.ImageRatio)
	})

	t.Run("jimeng-4.0 multi-image prompt sets expectedItemCount", func(t *testing.T) {
		res, err := Build(Params{Mode: ModeGenerate, Prompt: "画一个连续的绘本故事", PublicModel: "jimeng-4.0", Resolution: model.Resolution1K, Ratio: model.Ratio1x1})
		require.NoError(t, err)
		assert.Equal(t, 4, res.ExpectedItemCount)
	})

	t.Run("jimeng-4.0 explicit count prompt", func(t *testing.T) {
		res, err := Build(Params{Mode: ModeGenerate, Prompt: "生成6张图", PublicModel: "jimeng-4.0", Resolution: model.Resolution1K, Ratio: model.Ratio1x1})
		require.NoError(t, err)
		assert.Equal(t, 6, res.ExpectedItemCount)
	})

	t.Run("unknown model on international site is a hard error", func(t *testing.T) {
		_, err := Build(Params{
			Mode: ModeGenerate, Prompt: "x", PublicModel: "does-not-exist",
			International: true, StrictInternational: true,
			Resolution: model.Resolution1K, Ratio: model.Ratio1x1,
		})
		assert.ErrorIs(t, err, ErrUnknownModel)
	})

	t.Run("unknown model on domestic site falls back to default", func(t *testing.T) {
		res, err := Build(Params{Mode: ModeGenerate, Prompt: "x", PublicModel: "does-not-exist", Resolution: model.Resolution1K, Ratio: model.Ratio1x1})
		require.NoError(t, err)
		assert.Equal(t, imageModelMapDomestic[DefaultImageModel], res.Document.ComponentList[0].Abilities["generate"].CoreParam.Model)
	})

	t.Run("seed is randomized within the 2.5e9-2.6e9 range", func(t *testing.T) {
		res, err := Build(Params{Mode: ModeGenerate, Prompt: "x", Resolution: model.Resolution1K, Ratio: model.Ratio1x1})
		require.NoError(t, err)
		seed := res.Document.ComponentList[0].Abilities["generate"].CoreParam.Seed
		assert.GreaterOrEqual(t, seed, int64(2_500_000_000))
		assert.Less(t, seed, int64(2_600_000_000))
	})

	t.Run("negative_prompt and sample_strength are threaded through", func(t *testing.T) {
		res, err := Build(Params{Mode: ModeGenerate, Prompt: "x", NegativePrompt: "blurry", SampleStrength: 0.7, Resolution: model.Resolution1K, Ratio: model.Ratio1x1})
		require.NoError(t, err)
		core := res.Document.ComponentList[0].Abilities["generate"].CoreParam
		assert.Equal(t, "blurry", core.NegativePrompt)
		assert.Equal(t, 0.7, core.SampleStrength)
	})

	t.Run("nanobanana forces the fixed resolution override", func(t *testing.T) {
		res, err := Build(Params{Mode: ModeGenerate, Prompt: "x", PublicModel: "nanobanana", International: true, Resolution: model.Resolution4K, Ratio: model.Ratio16x9})
		require.NoError(t, err)
		core := res.Document.ComponentList[0].Abilities["generate"].CoreParam
		assert.Equal(t, 1024, core.LargeImageInfo.Width)
		assert.Equal(t, 1024, core.LargeImageInfo.Height)
		assert.Equal(t, "2k", core.LargeImageInfo.ResolutionType)
	})
}

func TestBuildBlend(t *testing.T) {
	refs := []*model.UploadedImageReference{
		{URI: "tos-uri-1", URIStatus: model.UploadCommitSuccessStatus},
		{URI: "tos-uri-2", URIStatus: model.UploadCommitSuccessStatus},
	}

	t.Run("one ability_list entry per uploaded image, parallel placeholders", func(t *testing.T) {
		res, err := Build(Params{Mode: ModeBlend, Prompt: "combine these", UploadedImages: refs, Resolution: model.Resolution1K, Ratio: model.Ratio1x1})
		require.NoError(t, err)
		ability := res.Document.ComponentList[0].Abilities["blend"]
		assert.Len(t, ability.AbilityList, 2)
		assert.Len(t, ability.PromptPlaceholderInfoList, 2)

		for i, entry := range ability.AbilityList {
			assert.Equal(t, "byte_edit", entry.Name)
			require.Len(t, entry.ImageList, 1)
			assert.Equal(t, "upload", entry.ImageList[0].SourceFrom)
			assert.Equal(t, 1, entry.ImageList[0].PlatformType)
			assert.Equal(t, ability.PromptPlaceholderInfoList[i].AbilityIndex, i)
		}
		assert.Equal(t, "tos-uri-1", ability.AbilityList[0].ImageList[0].URI)
		assert.Equal(t, "tos-uri-2", ability.AbilityList[1].ImageList[0].URI)
		assert.Equal(t, []string{"tos-uri-1"}, ability.AbilityList[0].ImageURIList)
	})

	t.Run("ability_index is 0-based and parallels ability_list position", func(t *testing.T) {
		res, err := Build(Params{Mode: ModeBlend, Prompt: "combine these", UploadedImages: refs, Resolution: model.Resolution1K, Ratio: model.Ratio1x1})
		require.NoError(t, err)
		ability := res.Document.ComponentList[0].Abilities["blend"]
		for i, info := range ability.PromptPlaceholderInfoList {
			assert.GreaterOrEqual(t, info.AbilityIndex, 0)
			assert.Less(t, info.AbilityIndex, len(ability.AbilityList))
			assert.Equal(t, i, info.AbilityIndex)
		}
	})

	t.Run("prompt is prefixed with ##", func(t *testing.T) {
		res, err := Build(Params{Mode: ModeBlend, Prompt: "combine these", UploadedImages: refs, Resolution: model.Resolution1K, Ratio: model.Ratio1x1})
		require.NoError(t, err)
		assert.Equal(t, "##combine these", res.Document.ComponentList[0].Abilities["blend"].CoreParam.Prompt)
	})

	t.Run("more than 10 images is rejected", func(t *testing.T) {
		many := make([]*model.UploadedImageReference, 11)
		for i := range many {
			many[i] = &model.UploadedImageReference{URI: "x", URIStatus: model.UploadCommitSuccessStatus}
		}
		_, err := Build(Params{Mode: ModeBlend, Prompt: "x", UploadedImages: many})
		assert.ErrorIs(t, err, ErrTooManyImages)
	})

	t.Run("no images is rejected", func(t *testing.T) {
		_, err := Build(Params{Mode: ModeBlend, Prompt: "x"})
		assert.Error(t, err)
	})
}

func TestBuildVideo(t *testing.T) {
	t.Run("duration within range", func(t *testing.T) {
		res, err := Build(Params{Mode: ModeVideo, Prompt: "a dog running", Duration: 8, RegionCode: "cn"})
		require.NoError(t, err)
		assert.Equal(t, 8, res.Document.ComponentList[0].Abilities["video"].VideoParam.Duration)
	})

	t.Run("duration below 4 is rejected", func(t *testing.T) {
		_, err := Build(Params{Mode: ModeVideo, Prompt: "x", Duration: 2})
		assert.ErrorIs(t, err, ErrInvalidDuration)
	})

	t.Run("duration above 15 is rejected", func(t *testing.T) {
		_, err := Build(Params{Mode: ModeVideo, Prompt: "x", Duration: 20})
		assert.ErrorIs(t, err, ErrInvalidDuration)
	})

	t.Run("first and last frame references are attached", func(t *testing.T) {
		first := &model.UploadedImageReference{URI: "first-uri", URIStatus: model.UploadCommitSuccessStatus}
		last := &model.UploadedImageReference{URI: "last-uri", URIStatus: model.UploadCommitSuccessStatus}
		res, err := Build(Params{Mode: ModeVideo, Prompt: "x", Duration: 5, FirstFrame: first, LastFrame: last, RegionCode: "cn"})
		require.NoError(t, err)
		vp := res.Document.ComponentList[0].Abilities["video"].VideoParam
		require.NotNil(t, vp.FirstFrame)
		require.NotNil(t, vp.LastFrame)
		assert.Equal(t, "first-uri", vp.FirstFrame.Image.URI)
		assert.Equal(t, "last-uri", vp.LastFrame.Image.URI)
	})
}

func TestLookupResolution(t *testing.T) {
	t.Run("every supported pair is present", func(t *testing.T) {
		resolutions := []model.Resolution{model.Resolution1K, model.Resolution2K, model.Resolution4K}
		ratios := []model.Ratio{model.Ratio1x1, model.Ratio4x3, model.Ratio3x4, model.Ratio16x9, model.Ratio9x16, model.Ratio3x2, model.Ratio2x3, model.Ratio21x9}
		for _, r := range resolutions {
			for _, ra := range ratios {
				d, ok := LookupResolution(r, ra)
				assert.True(t, ok, "missing %s/%s", r, ra)
				assert.Greater(t, d.Width, 0)
				assert.Greater(t, d.Height, 0)
			}
		}
	})

	t.Run("unsupported pair reports false", func(t *testing.T) {
		_, ok := LookupResolution(model.Resolution("8k"), model.Ratio1x1)
		assert.False(t, ok)
	})
}
