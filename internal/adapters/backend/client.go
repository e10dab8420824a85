package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/emiliopalmerini/modelcraft/internal/ports"
)

// Config holds backend client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the dataset, training and prediction endpoints over HTTP/JSON.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ ports.ModelBackend = (*Client)(nil)

// NewClient creates a new backend client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("backend URL not configured")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type uploadResponse struct {
	Columns []string `json:"columns"`
	Message string   `json:"message,omitempty"`
	Error   any      `json:"error,omitempty"`
}

type trainRequest struct {
	TargetColumn string `json:"target_column"`
	Algorithm    string `json:"algorithm"`
	Task         string `json:"task"`
}

type trainResponse struct {
	Metric     any    `json:"metric"`
	Accuracy   any    `json:"accuracy"`
	R2         any    `json:"r2"`
	MetricName string `json:"metric_name"`
	Features   any    `json:"features"`
	Message    any    `json:"message"`
	Error      any    `json:"error"`
}

type predictRequest struct {
	Values []*float64 `json:"values"`
}

type predictResponse struct {
	Prediction json.RawMessage `json:"prediction"`
	Error      any             `json:"error"`
}

// errorBody is the shape of failure responses.
type errorBody struct {
	Detail any `json:"detail"`
	Error  any `json:"error"`
}

// UploadDataset posts the file as multipart form field "file".
func (c *Client) UploadDataset(ctx context.Context, file ports.DatasetFile) ([]string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	name := file.Name
	if name == "" {
		name = "dataset.csv"
	}
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(file.Content); err != nil {
		return nil, fmt.Errorf("writing form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart writer: %w", err)
	}

	var resp uploadResponse
	if err := c.do(ctx, http.MethodPost, "/upload", mw.FormDataContentType(), &body, &resp); err != nil {
		return nil, err
	}
	if msg, failed := errorText(resp.Error); failed {
		return nil, &ports.ServiceError{StatusCode: http.StatusOK, Message: msg}
	}
	if resp.Columns == nil {
		return nil, fmt.Errorf("upload response has no columns")
	}
	return resp.Columns, nil
}

// Train posts a training request.
func (c *Client) Train(ctx context.Context, req ports.TrainingRequest) (*ports.TrainingResponse, error) {
	payload, err := json.Marshal(trainRequest{
		TargetColumn: req.TargetColumn,
		Algorithm:    req.Algorithm,
		Task:         req.Task,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var resp trainResponse
	if err := c.do(ctx, http.MethodPost, "/train", "application/json", bytes.NewReader(payload), &resp); err != nil {
		return nil, err
	}

	msg, failed := errorText(resp.Error)
	return &ports.TrainingResponse{
		Failed:     failed,
		Error:      msg,
		Metric:     resp.Metric,
		Accuracy:   resp.Accuracy,
		R2:         resp.R2,
		MetricName: resp.MetricName,
		Features:   stringList(resp.Features),
		Message:    stringValue(resp.Message),
	}, nil
}

// Predict posts one feature vector. NaN and infinite values are sent as null.
func (c *Client) Predict(ctx context.Context, values []float64) (*ports.PredictionResponse, error) {
	wire := make([]*float64, len(values))
	for i := range values {
		if math.IsNaN(values[i]) || math.IsInf(values[i], 0) {
			continue
		}
		v := values[i]
		wire[i] = &v
	}

	payload, err := json.Marshal(predictRequest{Values: wire})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var resp predictResponse
	if err := c.do(ctx, http.MethodPost, "/predict", "application/json", bytes.NewReader(payload), &resp); err != nil {
		return nil, err
	}

	out := &ports.PredictionResponse{}
	out.Error, out.Failed = errorText(resp.Error)
	if len(resp.Prediction) > 0 {
		var v any
		if err := json.Unmarshal(resp.Prediction, &v); err != nil {
			return nil, fmt.Errorf("decoding prediction: %w", err)
		}
		out.Prediction = v
		out.HasValue = true
	}
	return out, nil
}

// Ping checks the backend root endpoint.
func (c *Client) Ping(ctx context.Context) error {
	var resp struct {
		Message string `json:"message"`
	}
	return c.do(ctx, http.MethodGet, "/", "", nil, &resp)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ports.ServiceError{StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// errorMessage extracts a user-facing message from a failure body,
// preferring "detail" over "error". Non-string values are ignored.
func errorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	if msg := stringValue(eb.Detail); msg != "" {
		return msg
	}
	return stringValue(eb.Error)
}

// errorText reads an "error" field the way a truthiness check would: null,
// false, 0 and "" mean no error. Objects report their "message", "msg" or
// "detail" string when they carry one.
func errorText(v any) (msg string, failed bool) {
	switch e := v.(type) {
	case nil:
		return "", false
	case string:
		return e, e != ""
	case bool:
		return "", e
	case float64:
		return "", e != 0 && !math.IsNaN(e)
	case map[string]any:
		for _, key := range []string{"message", "msg", "detail"} {
			if s := stringValue(e[key]); s != "" {
				return s, true
			}
		}
		return "", true
	default:
		return "", true
	}
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

// stringList returns nil unless v is a JSON array; non-string items are skipped.
func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
