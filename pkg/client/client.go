package client

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/blogdeck/blogdeck/cli/pkg/config"
	"github.com/blogdeck/blogdeck/cli/pkg/logger"
)

// UserAgent is sent with every request
const UserAgent = "Blogdeck-CLI/0.1.0"

// RequestIDHeader carries a fresh id per request so server logs can be matched
// against the client log.
const RequestIDHeader = "X-Request-ID"

// Options configures a new HTTP client
type Options struct {
	BaseURL string
	Timeout time.Duration

	// OnUnauthorized runs when a request that carried a bearer token gets a
	// 401 back. Requests without a token (login, register) never trigger it.
	OnUnauthorized func()
}

// OptionsFromConfig reads the base URL and timeout from the loaded config
func OptionsFromConfig() Options {
	return Options{
		BaseURL: config.GetString("api.base_url"),
		Timeout: time.Duration(config.GetInt("api.timeout")) * time.Second,
	}
}

// New creates an HTTP client with logging and request ids
func New(opts Options) *resty.Client {
	httpClient := resty.New()

	httpClient.SetBaseURL(strings.TrimRight(opts.BaseURL, "/"))
	if opts.Timeout > 0 {
		httpClient.SetTimeout(opts.Timeout)
	}
	httpClient.SetHeader("User-Agent", UserAgent)
	httpClient.SetHeader("Accept", "application/json")

	httpClient.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		requestID := uuid.NewString()
		req.SetHeader(RequestIDHeader, requestID)
		logger.Debug("HTTP Request", "method", req.Method, "url", req.URL, "request_id", requestID)
		return nil
	})

	httpClient.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logger.Debug("HTTP Response",
			"status", resp.StatusCode(),
			"request_id", resp.Request.Header.Get(RequestIDHeader),
			"duration", resp.Time())

		if resp.StatusCode() == http.StatusUnauthorized &&
			carriedToken(resp.Request) &&
			opts.OnUnauthorized != nil {
			logger.Warn("Authorized request rejected, ending session", "url", resp.Request.URL)
			opts.OnUnauthorized()
		}
		return nil
	})

	return httpClient
}

func carriedToken(req *resty.Request) bool {
	if req.Token != "" {
		return true
	}
	if req.RawRequest != nil {
		return req.RawRequest.Header.Get("Authorization") != ""
	}
	return req.Header.Get("Authorization") != ""
}

// WithToken attaches the bearer credential to a request. An empty token leaves
// the request anonymous.
func WithToken(req *resty.Request, token string) *resty.Request {
	if token != "" {
		req.SetAuthToken(token)
	}
	return req
}
