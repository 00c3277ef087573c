package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/airenas/viva/internal/pkg/api"
	"github.com/cenkalti/backoff/v4"
)

// Client sends recordings to the gateway service
type Client struct {
	httpclient    *http.Client
	url           string
	uploadTimeout time.Duration
	backoff       func() backoff.BackOff
}

// NewClient creates a gateway client
func NewClient(url string) (*Client, error) {
	res := Client{}
	if url == "" {
		return nil, fmt.Errorf("no url")
	}
	if !strings.HasPrefix(url, "http") {
		return nil, fmt.Errorf("no http in url")
	}
	res.url = strings.TrimSuffix(url, "/")
	res.uploadTimeout = time.Minute * 10
	res.httpclient = &http.Client{Transport: newTransport()}
	res.backoff = newSimpleBackoff
	return &res, nil
}

type uploadResponse struct {
	Path string `json:"path"`
}

// SaveFile uploads the recording and returns the stored artifact path
func (sp *Client) SaveFile(ctx context.Context, name string, r io.Reader, fileSize int64) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(api.PrmFile, name)
	if err != nil {
		return "", fmt.Errorf("can't add file to request: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("can't add file content to request: %w", err)
	}
	writer.Close()
	bodyBytes := body.Bytes()

	return goapp.InvokeWithBackoff(ctx, func() (string, bool, error) {
		var respData uploadResponse
		req, err := http.NewRequest(http.MethodPost, sp.url+"/upload", bytes.NewReader(bodyBytes))
		if err != nil {
			return "", false, err
		}
		req.Header.Set("Content-Type", writer.FormDataContentType())

		ctx, cancelF := context.WithTimeout(ctx, sp.uploadTimeout)
		defer cancelF()
		req = req.WithContext(ctx)
		goapp.Log.Info().Str("url", req.URL.String()).Str("method", req.Method).Msg("call")
		resp, err := sp.httpclient.Do(req)
		if err != nil {
			return "", goapp.IsRetryableErr(err), fmt.Errorf("can't call: %w", err)
		}
		defer func() {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 10000))
			_ = resp.Body.Close()
		}()
		if err := goapp.ValidateHTTPResp(resp, 100); err != nil {
			err = fmt.Errorf("can't invoke '%s': %w", req.URL.String(), err)
			return "", goapp.IsRetryableCode(resp.StatusCode), err
		}
		br, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", goapp.IsRetryableErr(err), fmt.Errorf("can't read body: %w", err)
		}
		err = json.Unmarshal(br, &respData)
		if err != nil {
			return "", true, fmt.Errorf("can't decode response: %w", err)
		}
		if respData.Path == "" {
			return "", false, fmt.Errorf("can't get path from response")
		}
		return respData.Path, false, nil
	}, sp.backoff())
}

func newTransport() http.RoundTripper {
	res := http.DefaultTransport.(*http.Transport).Clone()
	res.MaxConnsPerHost = 10
	res.MaxIdleConns = 5
	res.MaxIdleConnsPerHost = 2
	res.IdleConnTimeout = time.Second * 90
	return res
}

func newSimpleBackoff() backoff.BackOff {
	return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3)
}
