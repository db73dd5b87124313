package model

// UploadContext is the transient, per-upload credential set minted by the
// token-issuance phase. Never persisted beyond a single upload.
type UploadContext struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	ServiceID       string
	SpaceName       string
}

// UploadAddress is ApplyImageUpload's response: where to PUT the blob and
// what session key to reference on commit.
type UploadAddress struct {
	StoreInfos  []StoreInfo
	UploadHosts []string
	SessionKey  string
}

// StoreInfo names one candidate object-store URI and the auth token the
// direct PUT must carry.
type StoreInfo struct {
	StoreURI string
	Auth     string
}

// UploadedImageReference is the opaque Uri returned by the commit step. Only
// valid when UriStatus == UploadCommitSuccessStatus.
type UploadedImageReference struct {
	URI       string
	URIStatus int
}

// UploadCommitSuccessStatus is the only UriStatus value the commit step
// accepts as a successful upload.
const UploadCommitSuccessStatus = 2000
