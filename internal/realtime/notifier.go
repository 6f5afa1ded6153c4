package realtime

import (
	"github.com/Kripa621/swapit-io/internal/trades"
)

// TradeNotifier adapts the hub to the trade service's notifier hook.
type TradeNotifier struct {
	hub *Hub
}

// NewTradeNotifier creates a notifier backed by the hub.
func NewTradeNotifier(hub *Hub) *TradeNotifier {
	return &TradeNotifier{hub: hub}
}

// NotifyTrade broadcasts a trade lifecycle event to subscribed clients.
func (n *TradeNotifier) NotifyTrade(eventType string, t *trades.Trade) {
	n.hub.BroadcastTradeEvent(EventType(eventType), map[string]interface{}{
		"tradeId":     t.ID,
		"requesterId": t.RequesterID,
		"receiverId":  t.ReceiverID,
		"status":      t.Status,
		"escrowHeld":  t.EscrowHeld,
	})
}
