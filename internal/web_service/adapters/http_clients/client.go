package http_clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/messageinabottle/golang_services/internal/web_service/domain"
)

// HTTPDoer is satisfied by *http.Client; tests and middlewares can wrap it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// envelope is the success wrapper every microservice uses.
type envelope struct {
	Body json.RawMessage `json:"body"`
}

// serviceClient performs single-attempt JSON calls against one microservice.
type serviceClient struct {
	service string
	baseURL string
	doer    HTTPDoer
	logger  *slog.Logger
}

func newServiceClient(service, baseURL string, timeout time.Duration, doer HTTPDoer, logger *slog.Logger) serviceClient {
	if doer == nil {
		doer = &http.Client{Timeout: timeout}
	}
	return serviceClient{
		service: service,
		baseURL: strings.TrimRight(baseURL, "/"),
		doer:    doer,
		logger:  logger.With("client", service),
	}
}

type response struct {
	status int
	body   []byte
}

// route is a request path together with the template used for metric labels.
type route struct {
	template string
	path     string
}

func newRoute(template string, args ...any) route {
	return route{template: template, path: fmt.Sprintf(pathFormat(template), escapeArgs(args)...)}
}

// pathFormat turns "/user/{id}" into "/user/%s".
func pathFormat(template string) string {
	var b strings.Builder
	inVar := false
	for _, r := range template {
		switch {
		case r == '{':
			inVar = true
			b.WriteString("%s")
		case r == '}':
			inVar = false
		case !inVar:
			if r == '%' {
				b.WriteString("%%")
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

func escapeArgs(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = url.PathEscape(fmt.Sprint(a))
	}
	return out
}

// do sends one request. Transport failures are wrapped in domain.ErrServiceUnavailable.
func (c serviceClient) do(ctx context.Context, method string, rt route, payload any) (*response, error) {
	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s service: marshal request for %s %s: %w", c.service, method, rt.template, err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+rt.path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("%s service: build request: %w", c.service, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.doer.Do(req)
	if err != nil {
		observeCall(c.service, method, rt.template, "error", time.Since(start))
		c.logger.ErrorContext(ctx, "Request to microservice failed", "method", method, "path", rt.template, "error", err)
		return nil, fmt.Errorf("%s service: %s %s: %w: %v", c.service, method, rt.template, domain.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	observeCall(c.service, method, rt.template, strconv.Itoa(resp.StatusCode), time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("%s service: %s %s: %w: reading body: %v", c.service, method, rt.template, domain.ErrServiceUnavailable, err)
	}
	c.logger.DebugContext(ctx, "Microservice responded", "method", method, "path", rt.template, "status_code", resp.StatusCode)
	return &response{status: resp.StatusCode, body: body}, nil
}

func (c serviceClient) unexpected(method string, rt route, status int) error {
	return &domain.UnexpectedStatusError{Service: c.service, Method: method, Path: rt.template, StatusCode: status}
}

// decode unwraps the {"body": ...} envelope into out.
func (c serviceClient) decode(method string, rt route, resp *response, out any) error {
	var env envelope
	if err := json.Unmarshal(resp.body, &env); err != nil {
		return fmt.Errorf("%s service: %s %s: decoding response: %w", c.service, method, rt.template, err)
	}
	if len(env.Body) == 0 || string(env.Body) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Body, out); err != nil {
		return fmt.Errorf("%s service: %s %s: decoding body: %w", c.service, method, rt.template, err)
	}
	return nil
}
