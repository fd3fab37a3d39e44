package openai

import (
	"errors"
	"fmt"
	"strconv"
)

// ConfigurationError means a required credential or setting is absent.
type ConfigurationError struct {
	Setting string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing %s", e.Setting)
}

// ServiceError covers transport failures and non-2xx responses.
type ServiceError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *ServiceError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("completion http %d: %v", e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("completion http %d: %s", e.StatusCode, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("completion request: %v", e.Err)
	default:
		return "completion request failed"
	}
}

func (e *ServiceError) Unwrap() error { return e.Err }

func (e *ServiceError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

// errorStatus labels a failed request for metrics: the HTTP code when there is one.
func errorStatus(err error) string {
	var se *ServiceError
	if errors.As(err, &se) && se.StatusCode != 0 {
		return strconv.Itoa(se.StatusCode)
	}
	return "error"
}
