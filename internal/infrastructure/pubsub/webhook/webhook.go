package webhookpubsub

import (
	"net/url"

	"github.com/google/uuid"
)

type Webhook struct {
	ID         string        `json:"id"`
	ActionType WebhookAction `json:"action_type"`
	Endpoint   string        `json:"endpoint"`
	Secret     string        `json:"secret"`
}

func NewWebhook(actionType WebhookAction, endpoint, secret string) (*Webhook, error) {
	if _, ok := actionToString[actionType]; !ok {
		return nil, ErrUnknownWebhookAction
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, ErrInvalidEndpoint
	}
	id := uuid.New().String()
	return &Webhook{id, actionType, endpoint, secret}, nil
}

func (h *Webhook) Topic() string {
	return h.ActionType.String()
}

func (h *Webhook) Id() string {
	return h.ID
}

func (h *Webhook) NotifyAt() string {
	return h.Endpoint
}

func (h *Webhook) IsSecured() bool {
	return len(h.Secret) > 0
}
