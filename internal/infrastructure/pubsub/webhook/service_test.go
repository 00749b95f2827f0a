package webhookpubsub_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-escrow/internal/core/ports"
	webhookpubsub "github.com/tdex-network/tdex-escrow/internal/infrastructure/pubsub/webhook"
)

const (
	secret      = "secret"
	testMessage = `{"outpoint":"0000000000000000000000000000000000000000000000000000000000000000:0","status":"OPEN","amount":10000}`
)

type recorder struct {
	lock     sync.Mutex
	requests map[string][]*http.Request
	bodies   map[string][]string
}

func newTestServer(t *testing.T) (*httptest.Server, *recorder) {
	rec := &recorder{
		requests: make(map[string][]*http.Request),
		bodies:   make(map[string][]string),
	}
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			rec.lock.Lock()
			rec.requests[r.URL.Path] = append(rec.requests[r.URL.Path], r)
			rec.bodies[r.URL.Path] = append(rec.bodies[r.URL.Path], string(body))
			rec.lock.Unlock()

			if r.URL.Path == "/slow" {
				time.Sleep(500 * time.Millisecond)
			}
			if r.URL.Path == "/failing" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusOK)
		},
	))
	t.Cleanup(server.Close)
	return server, rec
}

func (r *recorder) count(path string) int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.requests[path])
}

func TestWebhookPubSubService(t *testing.T) {
	server, rec := newTestServer(t)
	pubsub, err := webhookpubsub.NewWebhookPubSubService(time.Second, 100)
	require.NoError(t, err)

	openedID, err := pubsub.Subscribe(
		webhookpubsub.PositionOpened.String(), server.URL+"/opened", secret,
	)
	require.NoError(t, err)
	require.NotEmpty(t, openedID)

	allID, err := pubsub.Subscribe(ports.AnyTopic, server.URL+"/all", "")
	require.NoError(t, err)

	_, err = pubsub.Subscribe(
		webhookpubsub.PositionClaimed.String(), server.URL+"/claimed", "",
	)
	require.NoError(t, err)

	subs := pubsub.ListSubscriptionsForTopic(webhookpubsub.PositionOpened.String())
	require.Len(t, subs, 2)
	endpoints := []string{subs[0].NotifyAt(), subs[1].NotifyAt()}
	require.ElementsMatch(t, []string{server.URL + "/opened", server.URL + "/all"}, endpoints)

	err = pubsub.Publish(webhookpubsub.PositionOpened.String(), testMessage)
	require.NoError(t, err)

	require.Equal(t, 1, rec.count("/opened"))
	require.Equal(t, 1, rec.count("/all"))
	require.Zero(t, rec.count("/claimed"))
	require.Equal(t, testMessage, rec.bodies["/opened"][0])

	req := rec.requests["/opened"][0]
	require.Equal(t, "application/json", req.Header.Get("Content-Type"))
	auth := req.Header.Get("Authorization")
	require.True(t, strings.HasPrefix(auth, "Bearer "))
	require.Equal(
		t, webhookpubsub.PositionOpened.String(),
		req.Header.Get(webhookpubsub.TopicHeader),
	)
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(
		strings.TrimPrefix(auth, "Bearer "), claims,
		func(*jwt.Token) (interface{}, error) { return []byte(secret), nil },
	)
	require.NoError(t, err)
	require.True(t, token.Valid)
	require.Equal(t, openedID, claims.Id)
	require.Equal(t, webhookpubsub.PositionOpened.String(), claims.Subject)
	require.Greater(t, claims.ExpiresAt, claims.IssuedAt)
	require.Empty(t, rec.requests["/all"][0].Header.Get("Authorization"))

	require.NoError(t, pubsub.Unsubscribe("", allID))
	require.NoError(t, pubsub.Unsubscribe("", allID))

	err = pubsub.Publish(webhookpubsub.PositionCancelled.String(), testMessage)
	require.NoError(t, err)
	require.Equal(t, 1, rec.count("/all"))

	err = pubsub.Publish(webhookpubsub.PositionClaimed.String(), testMessage)
	require.NoError(t, err)
	require.Equal(t, 1, rec.count("/claimed"))
}

func TestWebhookPubSubServiceFailures(t *testing.T) {
	server, rec := newTestServer(t)
	pubsub, err := webhookpubsub.NewWebhookPubSubService(time.Second, 100)
	require.NoError(t, err)

	_, err = webhookpubsub.NewWebhookPubSubService(time.Second, 0)
	require.ErrorIs(t, err, webhookpubsub.ErrInvalidRateLimit)

	_, err = pubsub.Subscribe("UNKNOWN", server.URL, "")
	require.ErrorIs(t, err, webhookpubsub.ErrUnknownWebhookAction)

	_, err = pubsub.Subscribe(ports.AnyTopic, "not a url", "")
	require.ErrorIs(t, err, webhookpubsub.ErrInvalidEndpoint)

	err = pubsub.Publish("UNKNOWN", testMessage)
	require.ErrorIs(t, err, webhookpubsub.ErrUnknownWebhookAction)
	require.Nil(t, pubsub.ListSubscriptionsForTopic("UNKNOWN"))

	_, err = pubsub.Subscribe(
		webhookpubsub.PositionOpened.String(), server.URL+"/failing", "",
	)
	require.NoError(t, err)

	err = pubsub.Publish(webhookpubsub.PositionOpened.String(), testMessage)
	require.Error(t, err)
	require.Equal(t, 1, rec.count("/failing"))
}

func TestWebhookPubSubServiceTimeout(t *testing.T) {
	server, rec := newTestServer(t)
	pubsub, err := webhookpubsub.NewWebhookPubSubService(
		50*time.Millisecond, 100,
	)
	require.NoError(t, err)

	_, err = pubsub.Subscribe(ports.AnyTopic, server.URL+"/slow", secret)
	require.NoError(t, err)

	err = pubsub.Publish(webhookpubsub.PositionClaimed.String(), testMessage)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Eventually(t, func() bool {
		return rec.count("/slow") == 1
	}, time.Second, 10*time.Millisecond)
}
