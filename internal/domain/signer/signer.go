// Package signer computes AWS Signature Version 4 authorization headers for
// the upstream object-store API (service name "imagex", not real S3). It
// wraps aws-sdk-go-v2's SigV4 signer for the actual signing call, and keeps
// the canonical-request and signing-key derivation available as separately
// testable pure functions.
package signer

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	sigv4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
)

// ServiceName is the signing service identifier the upstream expects in
// place of a real AWS service.
const ServiceName = "imagex"

const emptyPayloadHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

// Request describes one call to sign.
type Request struct {
	Method          string
	URL             string
	Headers         http.Header
	Payload         []byte
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Region          string
	SigningTime     time.Time
}

// Sign computes the Authorization header for req and returns the full set
// of headers (including Authorization and, if present, the security token)
// that must be sent with the request.
func Sign(ctx context.Context, req Request) (http.Header, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, nil)
	if err != nil {
		return nil, err
	}
	for k, vs := range req.Headers {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	payloadHash := emptyPayloadHash
	if len(req.Payload) > 0 {
		payloadHash = hashPayload(req.Payload)
	}

	creds := aws.Credentials{
		AccessKeyID:     req.AccessKeyID,
		SecretAccessKey: req.SecretAccessKey,
		SessionToken:    req.SessionToken,
	}

	signingTime := req.SigningTime
	if signingTime.IsZero() {
		signingTime = time.Now().UTC()
	}

	signer := sigv4.NewSigner()
	if err := signer.SignHTTP(ctx, creds, httpReq, payloadHash, ServiceName, req.Region, signingTime); err != nil {
		return nil, err
	}

	return httpReq.Header, nil
}

// hashPayload returns the lowercase hex SHA-256 digest of body, used both
// as the signed payload hash and the commit step's x-amz-content-sha256
// invariant check.
func hashPayload(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// HashPayload is the exported form of hashPayload for callers (the
// Uploader) that must independently verify a commit body's digest.
func HashPayload(body []byte) string {
	return hashPayload(body)
}

// CanonicalRequest builds the SigV4 canonical request string: method,
// uri-encoded path, sorted canonical query string, sorted
// signed headers (name:value, one per line), the signed-header list, and
// the payload hash. Kept separate from Sign so §8's invariants can be
// asserted directly.
func CanonicalRequest(method, rawURL string, headers map[string]string, payloadHash string) (canonical string, signedHeaders string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", err
	}

	canonicalPath := canonicalURIPath(u.Path)
	canonicalQuery := canonicalQueryString(u.RawQuery)

	names := make([]string, 0, len(headers))
	normalized := make(map[string]string, len(headers))
	for k, v := range headers {
		lk := strings.ToLower(k)
		normalized[lk] = strings.TrimSpace(v)
		names = append(names, lk)
	}
	sort.Strings(names)

	var headerLines strings.Builder
	for _, name := range names {
		headerLines.WriteString(name)
		headerLines.WriteByte(':')
		headerLines.WriteString(normalized[name])
		headerLines.WriteByte('\n')
	}
	signedHeaders = strings.Join(names, ";")

	canonical = strings.Join([]string{
		strings.ToUpper(method),
		canonicalPath,
		canonicalQuery,
		headerLines.String(),
		signedHeaders,
		payloadHash,
	}, "\n")

	return canonical, signedHeaders, nil
}

// canonicalURIPath uri-encodes each path segment once, per SigV4's rules.
func canonicalURIPath(path string) string {
	if path == "" {
		return "/"
	}
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// canonicalQueryString sorts query parameters by key and re-encodes them,
// each key/value encoded exactly once.
func canonicalQueryString(rawQuery string) string {
	values, err := url.ParseQuery(rawQuery)
	if err != nil || len(values) == 0 {
		return ""
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		vs := values[k]
		sort.Strings(vs)
		for _, v := range vs {
			parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(v))
		}
	}
	return strings.Join(parts, "&")
}

// CredentialScope builds "{date}/{region}/imagex/aws4_request".
func CredentialScope(date, region string) string {
	return strings.Join([]string{date, region, ServiceName, "aws4_request"}, "/")
}

// StringToSign builds "AWS4-HMAC-SHA256\n{amzDate}\n{credentialScope}\n{canonicalHash}".
func StringToSign(amzDate, credentialScope, canonicalRequest string) string {
	hash := hashPayload([]byte(canonicalRequest))
	return strings.Join([]string{"AWS4-HMAC-SHA256", amzDate, credentialScope, hash}, "\n")
}

// DeriveSigningKey computes the SigV4 signing key:
// HMAC(HMAC(HMAC(HMAC("AWS4"+secret, date), region), "imagex"), "aws4_request").
func DeriveSigningKey(secretKey, date, region string) []byte {
	kDate := hmacSHA256([]byte("AWS4"+secretKey), date)
	kRegion := hmacSHA256(kDate, region)
	kService := hmacSHA256(kRegion, ServiceName)
	return hmacSHA256(kService, "aws4_request")
}

func hmacSHA256(key []byte, data string) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(data))
	return h.Sum(nil)
}
