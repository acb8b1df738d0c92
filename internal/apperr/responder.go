package apperr

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/getsentry/sentry-go"
	"github.com/m1z23r/drift/pkg/drift"
)

const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
	HeaderRetryAfter         = "Retry-After"
)

type ErrorBody struct {
	Message string         `json:"message"`
	Type    string         `json:"type"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitzero"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Response is the transport-neutral rendering of an error.
type Response struct {
	Status  int
	Headers map[string]string
	Body    ErrorResponse
}

// named lets unclassified errors choose the type reported on the wire.
type named interface {
	Name() string
}

// Classify maps any error onto a Response. It is pure and never panics.
func Classify(err error) Response {
	if err == nil {
		err = Internal("unknown error", nil)
	}

	e, ok := As(err)
	if !ok {
		typ := "Error"
		if n, ok := err.(named); ok && n.Name() != "" {
			typ = n.Name()
		}
		return Response{
			Status:  http.StatusInternalServerError,
			Headers: map[string]string{},
			Body:    ErrorResponse{Error: ErrorBody{Message: err.Error(), Type: typ}},
		}
	}

	details := e.Details
	if details == nil {
		details = map[string]any{}
	}

	resp := Response{
		Status:  e.StatusCode,
		Headers: map[string]string{},
		Body: ErrorResponse{Error: ErrorBody{
			Message: e.Message,
			Type:    e.Kind.String(),
			Code:    e.Code,
			Details: details,
		}},
	}
	if resp.Status == 0 {
		resp.Status = e.Kind.Status()
	}

	if e.Kind == KindGitHub {
		setHeader(resp.Headers, HeaderRateLimitLimit, details["limit"])
		setHeader(resp.Headers, HeaderRateLimitRemaining, details["remaining"])
		setHeader(resp.Headers, HeaderRateLimitReset, details["reset"])
		setHeader(resp.Headers, HeaderRetryAfter, details["retryAfter"])
	}

	return resp
}

func setHeader(h map[string]string, key string, v any) {
	if s, ok := numeric(v); ok {
		h[key] = s
	}
}

func numeric(v any) (string, bool) {
	switch n := v.(type) {
	case int:
		return strconv.Itoa(n), true
	case int32:
		return strconv.FormatInt(int64(n), 10), true
	case int64:
		return strconv.FormatInt(n, 10), true
	case uint:
		return strconv.FormatUint(uint64(n), 10), true
	case uint32:
		return strconv.FormatUint(uint64(n), 10), true
	case uint64:
		return strconv.FormatUint(n, 10), true
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), true
	case json.Number:
		if _, err := n.Float64(); err == nil {
			return n.String(), true
		}
	}
	return "", false
}

// Respond logs err against the request target and writes its classified
// response. Server-side failures are also reported to Sentry.
func Respond(c *drift.Context, err error) {
	resp := Classify(err)
	report(c, err, resp.Status)

	for k, v := range resp.Headers {
		c.Response.Header().Set(k, v)
	}
	_ = c.JSON(resp.Status, resp.Body)
	c.Abort()
}

func report(c *drift.Context, err error, status int) {
	defer func() {
		// a broken log sink must not change the response
		_ = recover()
	}()

	target := ""
	ctx := c.Request.Context()
	if c.Request.URL != nil {
		target = c.Request.URL.String()
	}

	slog.ErrorContext(ctx, "Error handling request",
		"method", c.Request.Method,
		"target", target,
		"status", status,
		"error", err,
	)

	if status < http.StatusInternalServerError {
		return
	}
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}
	sentry.CaptureException(err)
}
