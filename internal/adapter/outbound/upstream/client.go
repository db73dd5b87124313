// Package upstream implements outbound.UpstreamPort against the real
// generative media backend's HTTP surface. Every endpoint class is wrapped
// in its own circuit breaker so one failing class (say, PUT to the object
// store) never starves the others.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/uniedit/genbridge/internal/domain/signer"
	"github.com/uniedit/genbridge/internal/model"
	"github.com/uniedit/genbridge/internal/port/outbound"
	apperrors "github.com/uniedit/genbridge/internal/shared/errors"
	"github.com/uniedit/genbridge/internal/shared/logger"
	"github.com/uniedit/genbridge/internal/shared/metrics"
)

// endpoint class names, one circuit breaker per class.
const (
	classUploadToken   = "upload-token"
	classApplyUpload   = "apply-upload"
	classPutObject     = "put-object"
	classCommitUpload  = "commit-upload"
	classSubmitDraft   = "submit-draft"
	classPollHistory   = "poll-history"
	classCreditBalance = "credit-balance"
	classReceiveCredit = "receive-credit"
)

// Config holds the adapter's credentials and breaker tuning.
type Config struct {
	AccessKeyID      string
	SecretAccessKey  string
	RequestTimeout   time.Duration
	UploadTimeout    time.Duration
	FailureThreshold uint32
	FailureRatio     float64
	OpenTimeout      time.Duration
	HalfOpenMaxCalls uint32
}

// Client implements outbound.UpstreamPort over HTTP.
type Client struct {
	httpClient    *http.Client
	uploadClient  *http.Client
	cfg           Config
	metrics       *metrics.Metrics

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[any]
}

// New constructs a Client. metrics may be nil in tests.
func New(cfg Config, m *metrics.Metrics) *Client {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}
	if cfg.UploadTimeout <= 0 {
		cfg.UploadTimeout = 60 * time.Second
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.FailureRatio == 0 {
		cfg.FailureRatio = 0.6
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if cfg.HalfOpenMaxCalls == 0 {
		cfg.HalfOpenMaxCalls = 3
	}

	return &Client{
		httpClient:   &http.Client{Timeout: cfg.RequestTimeout},
		uploadClient: &http.Client{Timeout: cfg.UploadTimeout},
		cfg:          cfg,
		metrics:      m,
		breakers:     make(map[string]*gobreaker.CircuitBreaker[any]),
	}
}

var _ outbound.UpstreamPort = (*Client)(nil)

func (c *Client) getOrCreateBreaker(class string) *gobreaker.CircuitBreaker[any] {
	c.mu.Lock()
	defer c.mu.Unlock()

	if b, ok := c.breakers[class]; ok {
		return b
	}

	settings := gobreaker.Settings{
		Name:        class,
		MaxRequests: c.cfg.HalfOpenMaxCalls,
		Interval:    60 * time.Second,
		Timeout:     c.cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= c.cfg.FailureThreshold &&
				float64(counts.TotalFailures)/float64(counts.Requests) >= c.cfg.FailureRatio
		},
	}

	b := gobreaker.NewCircuitBreaker[any](settings)
	c.breakers[class] = b
	return b
}

// execute runs fn through the named class's breaker, type-asserting the
// result back to T.
func execute[T any](ctx context.Context, c *Client, class string, fn func() (T, error)) (T, error) {
	breaker := c.getOrCreateBreaker(class)

	result, err := breaker.Execute(func() (any, error) {
		return fn()
	})

	log := logger.FromContext(ctx)
	if err != nil {
		log.WarnContext(ctx, "upstream call failed", logger.String("class", class), logger.Err(err))
		var zero T
		return zero, err
	}

	v, _ := result.(T)
	return v, nil
}

// GetUploadToken requests fresh upload credentials.
func (c *Client) GetUploadToken(ctx context.Context, region model.RegionInfo, sessionToken string) (*model.UploadContext, error) {
	return execute(ctx, c, classUploadToken, func() (*model.UploadContext, error) {
		var resp struct {
			Data struct {
				AccessKeyID     string `json:"access_key_id"`
				SecretAccessKey string `json:"secret_access_key"`
				SessionToken    string `json:"session_token"`
				ServiceID       string `json:"service_id"`
				SpaceName       string `json:"space_name"`
			} `json:"data"`
		}
		url := region.Origin + "/mweb/v1/get_upload_token"
		if err := c.doJSON(ctx, region, sessionToken, http.MethodPost, url, []byte(`{"scene":2}`), &resp); err != nil {
			return nil, err
		}
		serviceID := resp.Data.ServiceID
		if region.IsInternational && resp.Data.SpaceName != "" {
			serviceID = resp.Data.SpaceName
		}
		return &model.UploadContext{
			AccessKeyID:     resp.Data.AccessKeyID,
			SecretAccessKey: resp.Data.SecretAccessKey,
			SessionToken:    resp.Data.SessionToken,
			ServiceID:       serviceID,
			SpaceName:       resp.Data.SpaceName,
		}, nil
	})
}

// ApplyImageUpload signs and issues ApplyImageUpload.
func (c *Client) ApplyImageUpload(ctx context.Context, region model.RegionInfo, upload *model.UploadContext, fileSize int64) (*model.UploadAddress, error) {
	return execute(ctx, c, classApplyUpload, func() (*model.UploadAddress, error) {
		url := fmt.Sprintf("https://%s/?Action=ApplyImageUpload&Version=2018-08-01&ServiceId=%s&FileSize=%d", region.ImagexHost, upload.ServiceID, fileSize)

		var resp struct {
			Result struct {
				UploadAddress struct {
					StoreInfos []struct {
						StoreURI string `json:"StoreUri"`
						Auth     string `json:"Auth"`
					} `json:"StoreInfos"`
					UploadHosts []string `json:"UploadHosts"`
					SessionKey  string   `json:"SessionKey"`
				} `json:"UploadAddress"`
			} `json:"Result"`
		}

		if err := c.doSigned(ctx, region, upload, http.MethodGet, url, nil, &resp); err != nil {
			return nil, err
		}

		addr := &model.UploadAddress{SessionKey: resp.Result.UploadAddress.SessionKey}
		for _, s := range resp.Result.UploadAddress.StoreInfos {
			addr.StoreInfos = append(addr.StoreInfos, model.StoreInfo{StoreURI: s.StoreURI, Auth: s.Auth})
		}
		addr.UploadHosts = resp.Result.UploadAddress.UploadHosts
		return addr, nil
	})
}

// PutObject performs the upload's PUT phase: a direct, pre-signed POST of
// the raw bytes to the store URI.
func (c *Client) PutObject(ctx context.Context, uploadHost, storeURI, auth string, body []byte, crc32 uint32) error {
	_, err := execute(ctx, c, classPutObject, func() (struct{}, error) {
		url := fmt.Sprintf("https://%s/upload/v1/%s", uploadHost, storeURI)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return struct{}{}, err
		}
		req.Header.Set("Authorization", auth)
		req.Header.Set("Content-CRC32", fmt.Sprintf("%08x", crc32))
		req.Header.Set("Content-Type", "application/octet-stream")

		resp, err := c.uploadClient.Do(req)
		if err != nil {
			return struct{}{}, apperrors.New(apperrors.KindTransport, "put object", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			respBody, _ := io.ReadAll(resp.Body)
			return struct{}{}, fmt.Errorf("put object: status %d: %s", resp.StatusCode, string(respBody))
		}
		return struct{}{}, nil
	})
	return err
}

// CommitImageUpload signs and issues CommitImageUpload.
func (c *Client) CommitImageUpload(ctx context.Context, region model.RegionInfo, upload *model.UploadContext, sessionKey string) (*model.UploadedImageReference, error) {
	return execute(ctx, c, classCommitUpload, func() (*model.UploadedImageReference, error) {
		url := fmt.Sprintf("https://%s/?Action=CommitImageUpload&Version=2018-08-01&ServiceId=%s", region.ImagexHost, upload.ServiceID)
		payload, _ := json.Marshal(map[string]any{"SessionKey": sessionKey})

		var resp struct {
			Result struct {
				Results []struct {
					URI       string `json:"Uri"`
					URIStatus int    `json:"UriStatus"`
				} `json:"Results"`
			} `json:"Result"`
		}

		if err := c.doSigned(ctx, region, upload, http.MethodPost, url, payload, &resp); err != nil {
			return nil, err
		}
		if len(resp.Result.Results) == 0 {
			return nil, fmt.Errorf("commit image upload: empty result")
		}
		return &model.UploadedImageReference{
			URI:       resp.Result.Results[0].URI,
			URIStatus: resp.Result.Results[0].URIStatus,
		}, nil
	})
}

// SubmitDraft posts the constructed draft document.
func (c *Client) SubmitDraft(ctx context.Context, region model.RegionInfo, sessionToken string, draft *model.DraftDocument, expectedItemCount int) (string, error) {
	return execute(ctx, c, classSubmitDraft, func() (string, error) {
		content, err := json.Marshal(draft)
		if err != nil {
			return "", err
		}
		payload, err := json.Marshal(map[string]any{
			"draft_content": string(content),
			"count":         expectedItemCount,
		})
		if err != nil {
			return "", err
		}

		url := region.Origin + "/mweb/v1/aigc_draft/generate"
		var resp struct {
			Data struct {
				AigcData struct {
					HistoryRecordID string `json:"history_record_id"`
				} `json:"aigc_data"`
			} `json:"data"`
		}
		if err := c.doJSON(ctx, region, sessionToken, http.MethodPost, url, payload, &resp); err != nil {
			return "", err
		}
		if resp.Data.AigcData.HistoryRecordID == "" {
			return "", fmt.Errorf("submit draft: response lacks history_record_id")
		}
		return resp.Data.AigcData.HistoryRecordID, nil
	})
}

// PollHistory fetches the current state of one historyId.
func (c *Client) PollHistory(ctx context.Context, region model.RegionInfo, sessionToken, historyID string) (*model.HistoryRecord, error) {
	return execute(ctx, c, classPollHistory, func() (*model.HistoryRecord, error) {
		payload, _ := json.Marshal(map[string]any{"history_ids": []string{historyID}})
		url := region.Origin + "/mweb/v1/get_history_by_ids"

		var resp struct {
			Data map[string]struct {
				Status   int    `json:"status"`
				FailCode string `json:"fail_code"`
				ItemList []struct {
					Image struct {
						LargeImages []struct {
							ImageURL string `json:"image_url"`
							Width    int    `json:"width"`
							Height   int    `json:"height"`
						} `json:"large_images"`
					} `json:"image"`
				} `json:"item_list"`
				Task struct {
					FinishTime int64 `json:"finish_time"`
				} `json:"task"`
			} `json:"data"`
		}
		if err := c.doJSON(ctx, region, sessionToken, http.MethodPost, url, payload, &resp); err != nil {
			return nil, err
		}

		entry, ok := resp.Data[historyID]
		if !ok {
			return nil, fmt.Errorf("poll history: unknown history id %q", historyID)
		}

		record := &model.HistoryRecord{
			HistoryID:  historyID,
			Status:     entry.Status,
			FailCode:   entry.FailCode,
			FinishTime: entry.Task.FinishTime,
		}
		for _, item := range entry.ItemList {
			if len(item.Image.LargeImages) == 0 {
				continue
			}
			img := item.Image.LargeImages[0]
			record.ItemList = append(record.ItemList, model.HistoryItem{URL: img.ImageURL, Width: img.Width, Height: img.Height})
		}
		return record, nil
	})
}

// GetCreditBalance fetches the session's current credit balance.
func (c *Client) GetCreditBalance(ctx context.Context, region model.RegionInfo, sessionToken string) (*model.CreditBalance, error) {
	return execute(ctx, c, classCreditBalance, func() (*model.CreditBalance, error) {
		url := region.Origin + "/commerce/v1/benefits/user_credit"
		var resp struct {
			Data struct {
				CreditInfo struct {
					GiftCredit     int64 `json:"gift_credit"`
					PurchaseCredit int64 `json:"purchase_credit"`
					VipCredit      int64 `json:"vip_credit"`
				} `json:"credit_info"`
			} `json:"data"`
		}
		if err := c.doJSON(ctx, region, sessionToken, http.MethodPost, url, []byte("{}"), &resp); err != nil {
			return nil, err
		}
		info := resp.Data.CreditInfo
		return &model.CreditBalance{
			GiftCredit:     info.GiftCredit,
			PurchaseCredit: info.PurchaseCredit,
			VipCredit:      info.VipCredit,
			TotalCredit:    info.GiftCredit + info.PurchaseCredit + info.VipCredit,
		}, nil
	})
}

// ReceiveCredit attempts a best-effort daily top-up.
func (c *Client) ReceiveCredit(ctx context.Context, region model.RegionInfo, sessionToken string) error {
	_, err := execute(ctx, c, classReceiveCredit, func() (struct{}, error) {
		url := region.Origin + "/commerce/v1/benefits/credit_receive"
		var resp map[string]any
		err := c.doJSON(ctx, region, sessionToken, http.MethodPost, url, []byte(`{"time_zone":"Asia/Shanghai"}`), &resp)
		return struct{}{}, err
	})
	return err
}

// doJSON issues a bearer-authenticated JSON request against the origin
// host, decoding the JSON response body into out.
func (c *Client) doJSON(ctx context.Context, region model.RegionInfo, sessionToken, method, url string, payload []byte, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return apperrors.New(apperrors.KindTransport, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", region.Origin)
	req.Header.Set("Referer", region.Referer)
	req.Header.Set("Authorization", "Bearer "+sessionToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.New(apperrors.KindTransport, "do request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return apperrors.New(apperrors.KindTransport, fmt.Sprintf("upstream returned %d", resp.StatusCode), nil)
	}
	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upstream error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// doSigned issues an AWS SigV4-signed request against the imagex host,
// using the upload-scoped credentials rather than the session bearer token.
func (c *Client) doSigned(ctx context.Context, region model.RegionInfo, upload *model.UploadContext, method, url string, payload []byte, out any) error {
	headers := http.Header{}
	headers.Set("Host", region.ImagexHost)

	signed, err := signer.Sign(ctx, signer.Request{
		Method:          method,
		URL:             url,
		Headers:         headers,
		Payload:         payload,
		AccessKeyID:     upload.AccessKeyID,
		SecretAccessKey: upload.SecretAccessKey,
		SessionToken:    upload.SessionToken,
		Region:          region.AWSRegion,
		SigningTime:     time.Now(),
	})
	if err != nil {
		return apperrors.New(apperrors.KindAuth, "sign request", err)
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return apperrors.New(apperrors.KindTransport, "build request", err)
	}
	req.Header = signed

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.New(apperrors.KindTransport, "do request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return apperrors.New(apperrors.KindTransport, fmt.Sprintf("upstream returned %d", resp.StatusCode), nil)
	}
	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upstream error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
