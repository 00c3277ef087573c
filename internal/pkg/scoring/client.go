package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/airenas/viva/internal/pkg/api"
	"github.com/cenkalti/backoff/v4"
)

// ErrNotFound indicates unknown interview ID
var ErrNotFound = errors.New("interview not found")

// Client comunicates with the question/scoring service
type Client struct {
	httpclient *http.Client
	url        string
	timeout    time.Duration
	backoff    func() backoff.BackOff
}

// NewClient creates a scoring service client
func NewClient(url string) (*Client, error) {
	res := Client{}
	if url == "" {
		return nil, fmt.Errorf("no url")
	}
	if !strings.HasPrefix(url, "http") {
		return nil, fmt.Errorf("no http in url")
	}
	res.url = strings.TrimSuffix(url, "/")
	res.timeout = time.Second * 50
	res.httpclient = scoringHTTPClient()
	res.backoff = newSimpleBackoff
	return &res, nil
}

type statusResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// CheckLive tests if the service is reachable, used as a precondition
// before starting a session
func (sp *Client) CheckLive(ctx context.Context) error {
	_, err := goapp.InvokeWithBackoff(ctx, func() (interface{}, bool, error) {
		ctx, cancelF := context.WithTimeout(ctx, sp.timeout)
		defer cancelF()
		req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/health", sp.url), nil)
		if err != nil {
			return nil, false, err
		}
		req = req.WithContext(ctx)
		resp, err := sp.httpclient.Do(req)
		if err != nil {
			return nil, goapp.IsRetryableErr(err), fmt.Errorf("can't call: %w", err)
		}
		defer closeRest(resp)
		if err := goapp.ValidateHTTPResp(resp, 100); err != nil {
			err = fmt.Errorf("can't invoke '%s': %w", req.URL.String(), err)
			return nil, goapp.IsRetryableCode(resp.StatusCode), err
		}
		return nil, false, nil
	}, sp.backoff())
	return err
}

// StartInterview requests a new interview for a role. Returns the interview
// ID, greeting and the ordered question list
func (sp *Client) StartInterview(ctx context.Context, role api.Role) (*api.InterviewStart, error) {
	body, err := json.Marshal(role)
	if err != nil {
		return nil, fmt.Errorf("can't marshal role: %w", err)
	}
	return goapp.InvokeWithBackoff(ctx, func() (*api.InterviewStart, bool, error) {
		var respData struct {
			statusResponse
			api.InterviewStart
		}
		if retry, err := sp.invokeJSON(ctx, http.MethodPost,
			fmt.Sprintf("%s/api/start-interview", sp.url), body, &respData); err != nil {
			return nil, retry, err
		}
		if respData.Status != "success" {
			return nil, false, fmt.Errorf("service error: %s", goapp.Sanitize(respData.Error))
		}
		if respData.InterviewID == "" {
			return nil, false, fmt.Errorf("can't get interview ID from response")
		}
		if len(respData.Questions) == 0 {
			return nil, false, fmt.Errorf("no questions in response")
		}
		return &respData.InterviewStart, false, nil
	}, sp.backoff())
}

// SubmitAnswer sends the uploaded answer reference for one question
func (sp *Client) SubmitAnswer(ctx context.Context, ID string, index int, videoPath string) error {
	body, err := json.Marshal(map[string]string{"video_path": videoPath})
	if err != nil {
		return fmt.Errorf("can't marshal answer: %w", err)
	}
	_, err = goapp.InvokeWithBackoff(ctx, func() (interface{}, bool, error) {
		var respData statusResponse
		if retry, err := sp.invokeJSON(ctx, http.MethodPost,
			fmt.Sprintf("%s/api/submit-answer/%s/%d", sp.url, ID, index), body, &respData); err != nil {
			return nil, retry, err
		}
		if respData.Status != "success" {
			return nil, false, fmt.Errorf("service error: %s", goapp.Sanitize(respData.Error))
		}
		return nil, false, nil
	}, sp.backoff())
	return err
}

// GenerateSummary triggers asynchronous overall evaluation for the interview.
// The evaluation itself arrives later through the report
func (sp *Client) GenerateSummary(ctx context.Context, ID string) error {
	_, err := goapp.InvokeWithBackoff(ctx, func() (interface{}, bool, error) {
		var respData statusResponse
		if retry, err := sp.invokeJSON(ctx, http.MethodPost,
			fmt.Sprintf("%s/api/generate-overall-summary/%s", sp.url, ID), nil, &respData); err != nil {
			return nil, retry, err
		}
		return nil, false, nil
	}, sp.backoff())
	return err
}

// GetReport returns the report by interview ID
func (sp *Client) GetReport(ctx context.Context, ID string) (*api.Report, error) {
	if ID == "" {
		return nil, fmt.Errorf("no ID")
	}
	return goapp.InvokeWithBackoff(ctx, func() (*api.Report, bool, error) {
		res := &api.Report{}
		if retry, err := sp.invokeJSON(ctx, http.MethodGet,
			fmt.Sprintf("%s/api/get-report/%s", sp.url, ID), nil, res); err != nil {
			return nil, retry, err
		}
		return res, false, nil
	}, sp.backoff())
}

// GetRoles returns the role catalog provided by the service
func (sp *Client) GetRoles(ctx context.Context) ([]api.Role, error) {
	return goapp.InvokeWithBackoff(ctx, func() ([]api.Role, bool, error) {
		var respData api.RolesData
		if retry, err := sp.invokeJSON(ctx, http.MethodGet,
			fmt.Sprintf("%s/api/roles", sp.url), nil, &respData); err != nil {
			return nil, retry, err
		}
		res := make([]api.Role, 0, len(respData.Roles))
		for _, r := range respData.Roles {
			res = append(res, api.Role{Title: r, Description: respData.RoleDescriptions[r]})
		}
		return res, false, nil
	}, sp.backoff())
}

func (sp *Client) invokeJSON(ctx context.Context, method, urlStr string, body []byte, out interface{}) (bool /*retry*/, error) {
	ctx, cancelF := context.WithTimeout(ctx, sp.timeout)
	defer cancelF()
	var br io.Reader
	if body != nil {
		br = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, urlStr, br)
	if err != nil {
		return false, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req = req.WithContext(ctx)
	goapp.Log.Debug().Str("url", req.URL.String()).Str("method", req.Method).Msg("call")
	resp, err := sp.httpclient.Do(req)
	if err != nil {
		return goapp.IsRetryableErr(err), fmt.Errorf("can't call: %w", err)
	}
	defer closeRest(resp)
	if resp.StatusCode == http.StatusNotFound {
		return false, fmt.Errorf("%w: '%s'", ErrNotFound, req.URL.String())
	}
	if err := goapp.ValidateHTTPResp(resp, 100); err != nil {
		err = fmt.Errorf("can't invoke '%s': %w", req.URL.String(), err)
		return goapp.IsRetryableCode(resp.StatusCode), err
	}
	if out == nil {
		return false, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return goapp.IsRetryableErr(err), fmt.Errorf("can't unmarshal: %w", err)
	}
	return false, nil
}

func closeRest(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 10000))
	_ = resp.Body.Close()
}

func scoringHTTPClient() *http.Client {
	return &http.Client{Transport: newTransport()}
}

func newTransport() http.RoundTripper {
	// default roundripper is not well suited for our case
	// it has just 2 idle connections per host, so try to tune a bit
	res := http.DefaultTransport.(*http.Transport).Clone()
	res.MaxConnsPerHost = 100
	res.MaxIdleConns = 50
	res.MaxIdleConnsPerHost = 50
	res.IdleConnTimeout = 90 * time.Second
	return res
}

func newSimpleBackoff() backoff.BackOff {
	res := backoff.NewExponentialBackOff()
	return backoff.WithMaxRetries(res, 3)
}
