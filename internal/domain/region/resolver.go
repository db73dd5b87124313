// Package region resolves a session token's region prefix into the
// per-region endpoints, identity, and signing metadata every downstream
// component needs. Pure and deterministic: no I/O, no shared state.
package region

import (
	"errors"
	"strings"

	"github.com/uniedit/genbridge/internal/model"
)

// ErrEmptyToken is returned when the token (or its remainder after
// stripping a region prefix) is empty.
var ErrEmptyToken = errors.New("region: empty session token")

const (
	prefixUS = "us"
	prefixHK = "hk"
	prefixJP = "jp"
	prefixSG = "sg"
)

type regionTable struct {
	imagexHost  string
	origin      string
	referer     string
	awsRegion   string
	assistantID string
}

var tables = map[model.Region]regionTable{
	model.RegionCN: {
		imagexHost:  "imagex.bytedanceapi.com",
		origin:      "https://jimeng.jianying.com",
		referer:     "https://jimeng.jianying.com/",
		awsRegion:   "cn-north-1",
		assistantID: "513695",
	},
	model.RegionUS: {
		imagexHost:  "imagex-us.byteplusapi.com",
		origin:      "https://commerce.us.capcut.com",
		referer:     "https://commerce.us.capcut.com/",
		awsRegion:   "us-east-1",
		assistantID: "513641",
	},
	model.RegionHK: {
		imagexHost:  "imagex-sg.byteplusapi.com",
		origin:      "https://commerce-api-sg.capcut.com",
		referer:     "https://mweb-api-sg.capcut.com/",
		awsRegion:   "ap-southeast-1",
		assistantID: "513641",
	},
	model.RegionJP: {
		imagexHost:  "imagex-sg.byteplusapi.com",
		origin:      "https://mweb-api-sg.capcut.com",
		referer:     "https://mweb-api-sg.capcut.com/",
		awsRegion:   "ap-southeast-1",
		assistantID: "513641",
	},
	model.RegionSG: {
		imagexHost:  "imagex-sg.byteplusapi.com",
		origin:      "https://mweb-api-sg.capcut.com",
		referer:     "https://mweb-api-sg.capcut.com/",
		awsRegion:   "ap-southeast-1",
		assistantID: "513641",
	},
}

var internationalPrefixes = map[string]model.Region{
	prefixUS: model.RegionUS,
	prefixHK: model.RegionHK,
	prefixJP: model.RegionJP,
	prefixSG: model.RegionSG,
}

// Resolve splits a session token on its first "-". If the prefix names one
// of the international regions, it is stripped and RegionInfo marks the
// token international; otherwise the whole token is the credential and the
// region is cn.
func Resolve(token string) (model.RegionInfo, error) {
	if token == "" {
		return model.RegionInfo{}, ErrEmptyToken
	}

	reg := model.RegionCN
	raw := token
	international := false

	if idx := strings.IndexByte(token, '-'); idx > 0 {
		prefix := strings.ToLower(token[:idx])
		if r, ok := internationalPrefixes[prefix]; ok {
			reg = r
			raw = token[idx+1:]
			international = true
		}
	}

	if raw == "" {
		return model.RegionInfo{}, ErrEmptyToken
	}

	t := tables[reg]
	return model.RegionInfo{
		Region:          reg,
		IsInternational: international,
		ImagexHost:      t.imagexHost,
		Origin:          t.origin,
		Referer:         t.referer,
		AWSRegion:       t.awsRegion,
		AssistantID:     t.assistantID,
		RawToken:        raw,
	}, nil
}
