package semantic

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Sentinel transport failures. Every one of them degrades to the
// deterministic baseline; the kind only feeds the meta reported to the
// caller.
var (
	ErrTimeout     = errors.New("semantic: deadline exceeded")
	ErrCancelled   = errors.New("semantic: cancelled")
	ErrNetwork     = errors.New("semantic: network failure")
	ErrBadResponse = errors.New("semantic: bad response")
)

// Meta describes how a patch round went, mirrored from the endpoint's
// response envelope.
type Meta struct {
	Mode         string `json:"mode"`
	Model        string `json:"model,omitempty"`
	LatencyMs    int64  `json:"latencyMs,omitempty"`
	InputTokens  int    `json:"inputTokens,omitempty"`
	OutputTokens int    `json:"outputTokens,omitempty"`
	OutputSize   int    `json:"outputSize,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

// Client is the capability the pipeline holds for semantic patching.
type Client interface {
	Patch(ctx context.Context, req *Request, model string) (*Response, *Meta, error)
}

// envelope is the endpoint's wire format.
type requestEnvelope struct {
	Request *Request `json:"request"`
	Model   string   `json:"model,omitempty"`
}

type responseEnvelope struct {
	OK       bool           `json:"ok"`
	Response jsontext.Value `json:"response,omitempty"`
	Meta     Meta           `json:"meta"`
}

// DefaultTimeout bounds one patch round end to end.
const DefaultTimeout = 30 * time.Second

// maxResponseBody caps how much of the endpoint's reply is read.
const maxResponseBody = 4 << 20

// HTTPClient posts patch requests to the semantic endpoint.
type HTTPClient struct {
	Endpoint string
	Timeout  time.Duration
	HTTP     *http.Client
	Logger   *zap.Logger
}

// NewHTTPClient returns a client for the given endpoint URL.
func NewHTTPClient(endpoint string, log *zap.Logger) *HTTPClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTPClient{
		Endpoint: endpoint,
		Timeout:  DefaultTimeout,
		HTTP:     &http.Client{},
		Logger:   log.Named("semantic"),
	}
}

// Patch sends one request and validates the reply against the closed schema.
func (c *HTTPClient) Patch(ctx context.Context, req *Request, model string) (*Response, *Meta, error) {
	timeout := c.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(requestEnvelope{Request: req, Model: model})
	if err != nil {
		return nil, nil, errors.Wrap(err, "semantic: encode request")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, nil, errors.Wrap(err, "semantic: build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	httpResp, err := c.HTTP.Do(httpReq)
	if err != nil {
		switch {
		case ctx.Err() == context.DeadlineExceeded:
			return nil, nil, ErrTimeout
		case ctx.Err() == context.Canceled:
			return nil, nil, ErrCancelled
		default:
			return nil, nil, errors.Wrap(ErrNetwork, err.Error())
		}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, nil, errors.Wrapf(ErrNetwork, "semantic: endpoint returned %d", httpResp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		return nil, nil, errors.Wrap(ErrNetwork, err.Error())
	}

	var env responseEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, nil, errors.Wrap(ErrBadResponse, err.Error())
	}
	if !env.OK || len(env.Response) == 0 {
		return nil, &env.Meta, errors.Wrapf(ErrBadResponse, "semantic: endpoint not ok (%s)", env.Meta.Reason)
	}
	resp, err := DecodeResponse(env.Response)
	if err != nil {
		return nil, &env.Meta, errors.Wrap(ErrBadResponse, err.Error())
	}

	meta := env.Meta
	if meta.LatencyMs == 0 {
		meta.LatencyMs = time.Since(start).Milliseconds()
	}
	c.Logger.Debug("semantic patch round complete",
		zap.String("mode", meta.Mode),
		zap.Int64("latencyMs", meta.LatencyMs),
		zap.Int("renames", len(resp.ComponentRenames)),
		zap.Int("htmlPatches", len(resp.HTMLPatches)))
	return resp, &meta, nil
}
