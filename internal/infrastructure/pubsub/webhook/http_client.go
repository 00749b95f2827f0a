package webhookpubsub

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
)

// TopicHeader carries the topic of the event posted to a webhook.
const TopicHeader = "X-Escrow-Topic"

// notifier posts position events to webhook endpoints.
type notifier struct {
	client  *http.Client
	timeout time.Duration
}

func newNotifier(requestTimeout time.Duration) *notifier {
	return &notifier{&http.Client{}, requestTimeout}
}

// notify posts the event to the hook's endpoint. Requests to secured hooks
// carry a bearer token signed with the hook's secret that expires with the
// request.
func (n *notifier) notify(
	ctx context.Context, hook *Webhook, topic, payload string,
) error {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, hook.Endpoint, strings.NewReader(payload),
	)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(TopicHeader, topic)
	if hook.IsSecured() {
		token, err := n.signToken(hook, topic, time.Now())
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	rs, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer rs.Body.Close()

	if rs.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(rs.Body, 512))
		return fmt.Errorf(
			"webhook %s: status %d: %s", hook.ID, rs.StatusCode, body,
		)
	}
	return nil
}

func (n *notifier) signToken(
	hook *Webhook, topic string, now time.Time,
) (string, error) {
	claims := jwt.StandardClaims{
		Id:        hook.ID,
		Subject:   topic,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(n.timeout).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(hook.Secret))
}
