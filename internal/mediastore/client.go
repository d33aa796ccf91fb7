package mediastore

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"compressx/internal/domain"
	"compressx/internal/infra"
)

// ErrMissingCredentials indicates that the client was configured without a
// cloud name or API key pair.
var ErrMissingCredentials = errors.New("mediastore: cloud name, api key and api secret are required")

// Options configures the media store client.
type Options struct {
	CloudName      string
	APIKey         string
	APISecret      string
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls against a Cloudinary-compatible media hosting
// API: raw uploads in, secure delivery URLs out.
type Client struct {
	cloudName  string
	apiKey     string
	apiSecret  string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
	now        func() time.Time
}

type uploadResponse struct {
	PublicID     string `json:"public_id"`
	SecureURL    string `json:"secure_url"`
	Bytes        int64  `json:"bytes"`
	Format       string `json:"format"`
	ResourceType string `json:"resource_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	if opts.CloudName == "" || opts.APIKey == "" || opts.APISecret == "" {
		return nil, ErrMissingCredentials
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.cloudinary.com/v1_1"
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		cloudName:  opts.CloudName,
		apiKey:     opts.APIKey,
		apiSecret:  opts.APISecret,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// Upload sends the asset's raw bytes to the provider under the given folder
// and returns the provider's upload result.
func (c *Client) Upload(ctx context.Context, asset domain.Asset, folder string) (*domain.UploadResult, error) {
	if err := asset.Validate(); err != nil {
		return nil, err
	}

	params := map[string]string{
		"timestamp":       strconv.FormatInt(c.now().Unix(), 10),
		"use_filename":    "true",
		"unique_filename": "false",
		"overwrite":       "true",
	}
	if folder != "" {
		params["folder"] = folder
	}

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for key, value := range params {
		if err := mw.WriteField(key, value); err != nil {
			return nil, domain.NewUploadError("encode request", err)
		}
	}
	if err := mw.WriteField("api_key", c.apiKey); err != nil {
		return nil, domain.NewUploadError("encode request", err)
	}
	if err := mw.WriteField("signature", signParams(params, c.apiSecret)); err != nil {
		return nil, domain.NewUploadError("encode request", err)
	}
	fw, err := mw.CreateFormFile("file", asset.Name)
	if err != nil {
		return nil, domain.NewUploadError("encode request", err)
	}
	if _, err := fw.Write(asset.Data); err != nil {
		return nil, domain.NewUploadError("encode request", err)
	}
	if err := mw.Close(); err != nil {
		return nil, domain.NewUploadError("encode request", err)
	}

	endpoint := fmt.Sprintf("%s/%s/%s/upload", c.baseURL, c.cloudName, string(asset.Kind))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, domain.NewUploadError("build request", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewUploadError("upload request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewUploadError("read upload response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var detail errorResponse
		if err := json.Unmarshal(raw, &detail); err == nil && detail.Error.Message != "" {
			return nil, domain.NewUploadError(detail.Error.Message, nil)
		}
		return nil, domain.NewUploadError(
			fmt.Sprintf("provider status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))), nil)
	}

	var decoded uploadResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, domain.NewUploadError("decode upload response", err)
	}
	if decoded.SecureURL == "" {
		return nil, domain.NewUploadError("provider returned no delivery url", nil)
	}

	c.logger.Debug().
		Str("public_id", decoded.PublicID).
		Int64("bytes", decoded.Bytes).
		Str("resource_type", decoded.ResourceType).
		Msg("asset uploaded")

	return &domain.UploadResult{
		PublicID:     decoded.PublicID,
		SecureURL:    decoded.SecureURL,
		Bytes:        decoded.Bytes,
		Format:       decoded.Format,
		ResourceType: decoded.ResourceType,
		Width:        decoded.Width,
		Height:       decoded.Height,
	}, nil
}

// Fetch issues a read against a delivery URL and returns the payload.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, domain.NewFetchError("build request", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewFetchError("fetch request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.NewFetchError(fmt.Sprintf("provider status %d for %s", resp.StatusCode, url), nil)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewFetchError("read fetch response", err)
	}
	return data, nil
}

// signParams produces the provider request signature: parameters sorted by
// name, joined as key=value pairs, secret appended, SHA-1 hex digest.
func signParams(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+params[key])
	}
	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(sum[:])
}
