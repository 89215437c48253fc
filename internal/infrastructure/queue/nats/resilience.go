package nats

import (
	"context"
	"errors"

	"github.com/nats-io/nats.go"

	"github.com/docqa-ai/docqa/internal/core/domain"
	"github.com/docqa-ai/docqa/internal/infrastructure/resilience"
)

func classifyQueueError(err error) resilience.Outcome {
	if err == nil {
		return resilience.Outcome{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.Outcome{Retry: false, CountFailure: false}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.Outcome{Retry: true, CountFailure: true}
	}
	if errors.Is(err, nats.ErrNoServers) ||
		errors.Is(err, nats.ErrTimeout) ||
		errors.Is(err, nats.ErrConnectionClosed) ||
		errors.Is(err, nats.ErrDisconnected) {
		return resilience.Outcome{Retry: true, CountFailure: true}
	}
	return resilience.Outcome{Retry: false, CountFailure: true}
}

func wrapTemporary(err error) error {
	if err == nil || domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classifyQueueError(err).Retry {
		return domain.WrapError(domain.ErrTemporary, "nats publish", err)
	}
	return err
}
