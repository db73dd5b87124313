// Package message normalizes the heterogeneous client payload shapes the
// OpenAI-compatible surface accepts into a single {text, images[]} value.
package message

import (
	"encoding/base64"
	"strings"

	"github.com/uniedit/genbridge/internal/model"
)

// openAI part type tags this parser recognizes.
const (
	typeText       = "text"
	typeInputText  = "input_text"
	typeImageURL   = "image_url"
	typeInputImage = "input_image"
	typeImage      = "image"
)

// Parse accepts any of: a bare string, a []any of parts, a single part
// object, or already-typed model.Image values, and produces a
// model.ParsedMessage.
func Parse(content any) model.ParsedMessage {
	switch v := content.(type) {
	case string:
		return model.ParsedMessage{Text: v}
	case []any:
		return parseParts(v)
	case map[string]any:
		return parseParts([]any{v})
	case model.Image:
		return model.ParsedMessage{Images: []model.Image{v}, HasImages: true}
	case []model.Image:
		return model.ParsedMessage{Images: v, HasImages: len(v) > 0}
	default:
		return model.ParsedMessage{}
	}
}

func parseParts(parts []any) model.ParsedMessage {
	var textParts []string
	var images []model.Image

	for _, p := range parts {
		part, ok := p.(map[string]any)
		if !ok {
			if s, ok := p.(string); ok {
				textParts = append(textParts, s)
			}
			continue
		}

		partType, _ := part["type"].(string)
		switch partType {
		case typeText, typeInputText, "":
			if s, ok := part["text"].(string); ok && s != "" {
				textParts = append(textParts, s)
			}
		case typeImageURL:
			if img, ok := extractImageURLField(part["image_url"]); ok {
				images = append(images, img)
			}
		case typeInputImage, typeImage:
			if img, ok := extractDirectImageField(part); ok {
				images = append(images, img)
			}
		}
	}

	return model.ParsedMessage{
		Text:      strings.Join(textParts, "\n"),
		Images:    images,
		HasImages: len(images) > 0,
	}
}

// extractImageURLField handles the OpenAI-style nested `image_url.url`
// shape, and a bare-string variant of the same field.
func extractImageURLField(v any) (model.Image, bool) {
	switch val := v.(type) {
	case string:
		return ClassifyImage(val)
	case map[string]any:
		if u, ok := val["url"].(string); ok && u != "" {
			return ClassifyImage(u)
		}
	}
	return nil, false
}

// extractDirectImageField handles input_image/image parts that carry one
// of url, b64_json, base64, or image_base64 directly.
func extractDirectImageField(part map[string]any) (model.Image, bool) {
	for _, key := range []string{"image_url", "url", "b64_json", "base64", "image_base64"} {
		if s, ok := part[key].(string); ok && s != "" {
			return ClassifyImage(s)
		}
	}
	if raw, ok := part["image_bytes"].([]byte); ok && len(raw) > 0 {
		return model.ImageBytes{Bytes: raw}, true
	}
	return nil, false
}

// ClassifyImage decides which Image variant a raw string value represents.
// Data-URI form is checked before the bare-base64 heuristic so a
// "data:image/png;base64,..." string is never misclassified as a URL.
func ClassifyImage(value string) (model.Image, bool) {
	if value == "" {
		return nil, false
	}
	if strings.HasPrefix(value, "data:") {
		if idx := strings.Index(value, ","); idx >= 0 {
			return model.ImageBase64{Data: value[idx+1:]}, true
		}
		return model.ImageBase64{Data: value}, true
	}
	if isURL(value) {
		return model.ImageURL{URL: value}, true
	}
	if looksLikeBase64(value) {
		return model.ImageBase64{Data: value}, true
	}
	return model.ImagePath{Path: value}, true
}

func isURL(v string) bool {
	return strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://") || strings.HasPrefix(v, "//")
}

// looksLikeBase64 is a best-effort heuristic for bare (non data-URI)
// base64: valid alphabet, length a multiple of 4, and long enough that a
// short ordinary string isn't misclassified.
func looksLikeBase64(v string) bool {
	if len(v) < 16 || len(v)%4 != 0 {
		return false
	}
	if strings.ContainsAny(v, "\\: ") {
		return false
	}
	_, err := base64.StdEncoding.DecodeString(v)
	return err == nil
}
