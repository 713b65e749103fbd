package api

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/go-resty/resty/v2"
	json "github.com/json-iterator/go"

	"github.com/blogdeck/blogdeck/cli/pkg/client"
	clierrors "github.com/blogdeck/blogdeck/cli/pkg/errors"
	"github.com/blogdeck/blogdeck/cli/pkg/logger"
)

// Client calls the blog backend's REST endpoints
type Client struct {
	http *resty.Client
}

// New wraps a configured HTTP client
func New(httpClient *resty.Client) *Client {
	return &Client{http: httpClient}
}

// call describes one request against the backend
type call struct {
	method   string
	path     string
	token    string
	body     interface{}
	query    url.Values
	fallback string
}

// do sends the request and unwraps the response envelope into out. Failures
// come back as *errors.CLIError: transport problems get the generic network
// message, rejected requests carry the server's message verbatim.
func (c *Client) do(ctx context.Context, req call, out interface{}) (*Envelope, error) {
	r := client.WithToken(c.http.R().SetContext(ctx), req.token)

	if req.body != nil {
		reqBody, err := json.Marshal(req.body)
		if err != nil {
			return nil, err
		}
		r.SetHeader("Content-Type", "application/json").SetBody(reqBody)
	}
	if len(req.query) > 0 {
		r.SetQueryParamsFromValues(req.query)
	}

	resp, err := r.Execute(req.method, req.path)
	if err != nil {
		logger.Debug("Request failed", "method", req.method, "path", req.path, "error", err)
		return nil, clierrors.FromTransport(err)
	}

	env, decodeErr := decodeEnvelope(resp.Body())

	if !resp.IsSuccess() || (env.Success != nil && !*env.Success) {
		logger.Debug("Request rejected", "method", req.method, "path", req.path,
			"status", resp.StatusCode(), "message", env.Message)
		return env, clierrors.FromStatus(resp.StatusCode(), env.Message, req.fallback, env.fieldErrors())
	}

	if decodeErr != nil {
		return nil, invalidResponse(decodeErr)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, invalidResponse(err)
		}
	}
	return env, nil
}

func invalidResponse(err error) error {
	return clierrors.NewCLIError(clierrors.ErrorTypeServer,
		"Unexpected response from server", fmt.Errorf("decode response: %w", err))
}

// Envelope is the uniform response wrapper used by every endpoint
type Envelope struct {
	Success    *bool            `json:"success"`
	Message    string           `json:"message"`
	Data       json.RawMessage  `json:"data"`
	Errors     []WireFieldError `json:"errors"`
	PreviewURL string           `json:"previewUrl"`
}

// decodeEnvelope never returns a nil envelope so callers can always read the
// message, even from an empty or non-JSON body.
func decodeEnvelope(body []byte) (*Envelope, error) {
	env := &Envelope{}
	if len(bytes.TrimSpace(body)) == 0 {
		return env, nil
	}
	if err := json.Unmarshal(body, env); err != nil {
		return &Envelope{}, err
	}
	return env, nil
}

func (e *Envelope) fieldErrors() []clierrors.FieldError {
	if len(e.Errors) == 0 {
		return nil
	}
	fields := make([]clierrors.FieldError, 0, len(e.Errors))
	for _, fe := range e.Errors {
		fields = append(fields, clierrors.FieldError{Field: fe.Field, Message: fe.Message})
	}
	return fields
}

// WireFieldError is one entry of an envelope's errors list. Servers send
// either plain strings or validator objects.
type WireFieldError struct {
	Field   string
	Message string
}

type wireFieldErrorObject struct {
	Field   string `json:"field"`
	Path    string `json:"path"`
	Param   string `json:"param"`
	Message string `json:"message"`
	Msg     string `json:"msg"`
}

func (w *WireFieldError) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &w.Message)
	}
	var obj wireFieldErrorObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	w.Field = firstNonEmpty(obj.Field, obj.Path, obj.Param)
	w.Message = firstNonEmpty(obj.Message, obj.Msg)
	return nil
}
