package testrail

import (
	"encoding/json"
	"fmt"
)

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Method     string
	Endpoint   string
	Message    string
}

// Error formats the failing request and the remote message.
func (err *APIError) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("testrail %s %s: http %d", err.Method, err.Endpoint, err.StatusCode)
	}
	return fmt.Sprintf("testrail %s %s: http %d: %s", err.Method, err.Endpoint, err.StatusCode, err.Message)
}

type errorResponse struct {
	Error string `json:"error"`
}

func decodeHTTPError(method, endpoint string, status int, body []byte) error {
	apiErr := &APIError{StatusCode: status, Method: method, Endpoint: endpoint}
	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err == nil {
		apiErr.Message = resp.Error
	}
	return apiErr
}
