package clients

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrNotFound matches any *APIError carrying a 404.
var ErrNotFound = errors.New("not found")

// maxErrorBody bounds how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// envelope is the {code, message, result} wrapper every marketplace service
// responds with.
type envelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Result  *T     `json:"result"`
}

// APIError is a non-2xx response, or a 2xx response whose envelope carried no
// result.
type APIError struct {
	Service    string
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Service, e.StatusCode, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

func decodeResult[T any](service string, resp *http.Response) (T, error) {
	var zero T
	if err := checkStatus(service, resp); err != nil {
		return zero, err
	}

	var env envelope[T]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return zero, fmt.Errorf("%s: decode response: %w", service, err)
	}
	if env.Result == nil {
		return zero, &APIError{
			Service:    service,
			StatusCode: resp.StatusCode,
			Code:       env.Code,
			Message:    firstNonEmpty(env.Message, "response has no result"),
		}
	}
	return *env.Result, nil
}

func checkStatus(service string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	apiErr := &APIError{Service: service, StatusCode: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var env envelope[json.RawMessage]
	if json.Unmarshal(raw, &env) == nil {
		apiErr.Code = env.Code
		apiErr.Message = env.Message
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
