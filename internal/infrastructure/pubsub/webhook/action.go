package webhookpubsub

import "github.com/tdex-network/tdex-escrow/internal/core/ports"

// webhook action types
const (
	PositionOpened WebhookAction = iota
	PositionCancelled
	PositionClaimed
	AllActions
)

var (
	actionToString = map[WebhookAction]string{
		PositionOpened:    "POSITION_OPENED",
		PositionCancelled: "POSITION_CANCELLED",
		PositionClaimed:   "POSITION_CLAIMED",
		AllActions:        ports.AnyTopic,
	}
	stringToAction = map[string]WebhookAction{
		"POSITION_OPENED":    PositionOpened,
		"POSITION_CANCELLED": PositionCancelled,
		"POSITION_CLAIMED":   PositionClaimed,
		ports.AnyTopic:       AllActions,
	}
)

type WebhookAction int

func WebhookActionFromString(actionStr string) (WebhookAction, bool) {
	action, ok := stringToAction[actionStr]
	return action, ok
}

func (wa WebhookAction) String() string {
	actionStr, ok := actionToString[wa]
	if !ok {
		actionStr = "UNKNOWN"
	}
	return actionStr
}
