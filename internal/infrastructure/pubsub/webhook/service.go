package webhookpubsub

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
	"go.uber.org/ratelimit"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultRequestTimeout    = 15 * time.Second
	DefaultRequestsPerSecond = 10
)

type webhookService struct {
	store    *webhookStore
	notifier *notifier
	cb       *gobreaker.CircuitBreaker
	limiter  ratelimit.Limiter
}

// NewWebhookPubSubService returns a pubsub that notifies subscribers by
// POSTing the published messages to their endpoints. Outgoing requests are
// throttled to requestsPerSecond.
func NewWebhookPubSubService(
	requestTimeout time.Duration, requestsPerSecond int,
) (ports.PubSub, error) {
	if requestsPerSecond <= 0 {
		return nil, ErrInvalidRateLimit
	}
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}

	return &webhookService{
		store:    newWebhookStore(),
		notifier: newNotifier(requestTimeout),
		cb:       newCircuitBreaker(),
		limiter:  ratelimit.New(requestsPerSecond),
	}, nil
}

func (ws *webhookService) Subscribe(topic, endpoint, secret string) (string, error) {
	actionType, ok := WebhookActionFromString(topic)
	if !ok {
		return "", ErrUnknownWebhookAction
	}

	hook, err := NewWebhook(actionType, endpoint, secret)
	if err != nil {
		return "", err
	}

	ws.store.add(hook)
	log.WithFields(log.Fields{
		"topic":    topic,
		"endpoint": endpoint,
	}).Debug("pubsub: added webhook")
	return hook.ID, nil
}

func (ws *webhookService) Unsubscribe(_, id string) error {
	ws.store.remove(id)
	return nil
}

func (ws *webhookService) ListSubscriptionsForTopic(topic string) []ports.Subscription {
	actionType, ok := WebhookActionFromString(topic)
	if !ok {
		return nil
	}
	hooks := ws.hooksForAction(actionType)
	subs := make([]ports.Subscription, len(hooks))
	for i, h := range hooks {
		subs[i] = h
	}
	return subs
}

// Publish makes a POST request to every webhook endpoint registered for the
// given topic or for all topics.
func (ws *webhookService) Publish(topic string, message string) error {
	actionType, ok := WebhookActionFromString(topic)
	if !ok {
		return ErrUnknownWebhookAction
	}

	ctx := context.Background()
	hooks := ws.hooksForAction(actionType)
	eg := &errgroup.Group{}
	for i := range hooks {
		hook := hooks[i]
		eg.Go(func() error { return ws.doRequest(ctx, hook, topic, message) })
	}
	return eg.Wait()
}

func (ws *webhookService) hooksForAction(actionType WebhookAction) []*Webhook {
	hooks := ws.store.getByAction(actionType)
	if actionType != AllActions {
		hooks = append(hooks, ws.store.getByAction(AllActions)...)
	}
	return hooks
}

func (ws *webhookService) doRequest(
	ctx context.Context, hook *Webhook, topic, payload string,
) error {
	ws.limiter.Take()

	_, err := ws.cb.Execute(func() (interface{}, error) {
		return nil, ws.notifier.notify(ctx, hook, topic, payload)
	})
	return err
}

func newCircuitBreaker() *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "webhook",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests > 20 && failureRatio >= 0.7
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				log.Warn("webhooks keep failing, stop allowing requests")
			}
			if from == gobreaker.StateOpen && to == gobreaker.StateHalfOpen {
				log.Info("checking webhooks status")
			}
			if from == gobreaker.StateHalfOpen && to == gobreaker.StateClosed {
				log.Info("webhooks seem ok, restart allowing requests")
			}
		},
	})
}
