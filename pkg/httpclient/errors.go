package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/iflis7/iyuc-store/pkg/errors"
)

// errorBody covers the two error shapes seen from downstream APIs: the
// commerce backend's flat {"type","message"} object and the {"error":{...}}
// envelope written by pkg/httputil.
type errorBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ErrorMessage extracts the message of an error body, or "HTTP <status>" when
// the body carries none.
func ErrorMessage(status int, body []byte) string {
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil {
		if eb.Message != "" {
			return eb.Message
		}
		if eb.Error != nil && eb.Error.Message != "" {
			return eb.Error.Message
		}
	}
	return fmt.Sprintf("HTTP %d", status)
}

// ParseResponseError consumes and closes the body of a non-2xx response and
// translates it into an AppError.
func ParseResponseError(resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("status %d (read body: %w)", resp.StatusCode, err)
	}
	return StatusError(resp.StatusCode, body)
}

// StatusError maps a downstream status and body to an AppError carrying the
// downstream message.
func StatusError(status int, body []byte) error {
	msg := ErrorMessage(status, body)

	code := ""
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil {
		switch {
		case eb.Error != nil && eb.Error.Code != "":
			code = eb.Error.Code
		case eb.Type != "":
			code = strings.ToUpper(eb.Type)
		}
	}

	switch {
	case status == http.StatusNotFound:
		return &apperrors.AppError{Code: "NOT_FOUND", Message: msg, Status: status, Err: apperrors.ErrNotFound}
	case status == http.StatusBadRequest:
		return apperrors.InvalidInput(msg)
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(msg)
	case status == http.StatusForbidden:
		return apperrors.Forbidden(msg)
	case status == http.StatusConflict:
		return apperrors.Conflict(msg)
	case status == http.StatusServiceUnavailable:
		return apperrors.ServiceUnavailable(msg)
	case status >= 500:
		return apperrors.Upstream(msg)
	default:
		if code == "" {
			code = "UPSTREAM_ERROR"
		}
		return &apperrors.AppError{Code: code, Message: msg, Status: status, Err: apperrors.ErrUpstream}
	}
}

// TranslateError converts transport-level failures returned by a Doer into
// AppErrors: an open circuit becomes 503 and a *ServerError is parsed like any
// other error response. Other errors are returned unchanged.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}
	var serverErr *ServerError
	switch {
	case errors.As(err, &serverErr):
		return StatusError(serverErr.StatusCode, serverErr.Body)
	case errors.Is(err, ErrCircuitOpen):
		return &apperrors.AppError{
			Code:    "SERVICE_UNAVAILABLE",
			Message: "commerce backend temporarily unavailable",
			Status:  http.StatusServiceUnavailable,
			Err:     fmt.Errorf("%w: %w", apperrors.ErrServiceUnavail, err),
		}
	}
	return err
}

// IsClientError reports whether status is a 4xx code.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
