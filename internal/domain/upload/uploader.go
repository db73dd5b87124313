// Package upload implements the three-phase authenticated upload of an
// in-memory blob: request token -> apply -> PUT -> commit. Uploads within
// one generation call are strictly sequential.
package upload

import (
	"context"
	"hash/crc32"

	"github.com/uniedit/genbridge/internal/domain/signer"
	"github.com/uniedit/genbridge/internal/model"
	"github.com/uniedit/genbridge/internal/port/outbound"
	apperrors "github.com/uniedit/genbridge/internal/shared/errors"
)

// Uploader drives one generation call's sequence of image uploads against
// the upstream object store.
type Uploader struct {
	upstream outbound.UpstreamPort
}

// New constructs an Uploader bound to the given upstream adapter.
func New(upstream outbound.UpstreamPort) *Uploader {
	return &Uploader{upstream: upstream}
}

// UploadAll normalizes and uploads images in order, returning one
// UploadedImageReference per input, positionally aligned. A failure on any
// image aborts the remaining uploads — there is no partial result.
func (u *Uploader) UploadAll(ctx context.Context, region model.RegionInfo, sessionToken string, images []model.Image) ([]*model.UploadedImageReference, error) {
	refs := make([]*model.UploadedImageReference, 0, len(images))
	for _, img := range images {
		ref, err := u.UploadOne(ctx, region, sessionToken, img)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// UploadOne runs the full start -> GET-TOKEN -> APPLY -> PUT -> COMMIT ->
// done(uri) sequence for a single image.
func (u *Uploader) UploadOne(ctx context.Context, region model.RegionInfo, sessionToken string, img model.Image) (*model.UploadedImageReference, error) {
	data, err := Normalize(ctx, img)
	if err != nil {
		return nil, err
	}

	uploadCtx, err := u.upstream.GetUploadToken(ctx, region, sessionToken)
	if err != nil {
		return nil, apperrors.New(apperrors.KindUploadToken, "request upload token", err)
	}

	address, err := u.upstream.ApplyImageUpload(ctx, region, uploadCtx, int64(len(data)))
	if err != nil {
		return nil, apperrors.New(apperrors.KindUploadApply, "apply image upload", err)
	}
	if len(address.StoreInfos) == 0 || len(address.UploadHosts) == 0 {
		return nil, apperrors.New(apperrors.KindUploadApply, "apply image upload: no store info returned", nil)
	}

	store := address.StoreInfos[0]
	host := address.UploadHosts[0]
	checksum := crc32.ChecksumIEEE(data)

	if err := u.upstream.PutObject(ctx, host, store.StoreURI, store.Auth, data, checksum); err != nil {
		return nil, apperrors.New(apperrors.KindUploadPut, "put object", err)
	}

	ref, err := u.upstream.CommitImageUpload(ctx, region, uploadCtx, address.SessionKey)
	if err != nil {
		return nil, apperrors.New(apperrors.KindUploadCommit, "commit image upload", err)
	}
	if ref.URIStatus != model.UploadCommitSuccessStatus {
		return nil, apperrors.New(apperrors.KindUploadCommit, "commit image upload: non-success UriStatus", nil)
	}

	return ref, nil
}

// VerifyCommitBody checks that the given JSON body's SHA-256 digest
// matches the previously signed x-amz-content-sha256 header, the
// invariant the commit phase depends on.
func VerifyCommitBody(body []byte, expectedHash string) bool {
	return signer.HashPayload(body) == expectedHash
}
