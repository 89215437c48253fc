package ollama

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/docqa-ai/docqa/internal/core/domain"
	"github.com/docqa-ai/docqa/internal/infrastructure/resilience"
)

type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "ollama status error"
	}
	if e.Body == "" {
		return fmt.Sprintf("ollama %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("ollama %s status: %s: %s", e.Operation, e.Status, e.Body)
}

func classifyError(err error) resilience.Outcome {
	if err == nil {
		return resilience.Outcome{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.Outcome{Retry: false, CountFailure: false}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.Outcome{Retry: true, CountFailure: true}
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusRequestTimeout, http.StatusTooManyRequests,
			http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return resilience.Outcome{Retry: true, CountFailure: true}
		default:
			return resilience.Outcome{Retry: false, CountFailure: false}
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.Outcome{Retry: true, CountFailure: true}
	}

	return resilience.Outcome{Retry: false, CountFailure: true}
}

// mapModelError folds transport failures into the model-unavailable kind so
// callers can map them to a 503 without knowing about HTTP or breakers.
func mapModelError(operation string, err error) error {
	if err == nil {
		return nil
	}
	if domain.IsKind(err, domain.ErrModelUnavailable) {
		return err
	}
	if resilience.IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrModelUnavailable, operation, err)
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		if statusErr.StatusCode == http.StatusNotFound || statusErr.StatusCode >= 500 {
			return domain.WrapError(domain.ErrModelUnavailable, operation, err)
		}
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return domain.WrapError(domain.ErrModelUnavailable, operation, err)
	}
	if strings.Contains(err.Error(), "connection refused") {
		return domain.WrapError(domain.ErrModelUnavailable, operation, err)
	}
	return err
}
