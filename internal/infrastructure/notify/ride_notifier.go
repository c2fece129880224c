package notify

import (
	"context"
	"fmt"
	"log"

	"ride-hail-client/internal/domain/auth"
	"ride-hail-client/internal/domain/ride"
)

// Sender 任何能推送文字訊息的通道。
type Sender interface {
	SendMessage(ctx context.Context, text string) error
}

// RideNotifier 觀察進行中的行程，狀態改變時推送一則訊息。
type RideNotifier struct {
	sender Sender
	role   auth.Role

	seen   bool
	lastID int64
	last   ride.Status
}

func NewRideNotifier(sender Sender, role auth.Role) *RideNotifier {
	return &RideNotifier{sender: sender, role: role}
}

// Observe 比對上一次看到的行程；有變化才送出。r 為 nil 表示目前沒有進行中的行程。
func (n *RideNotifier) Observe(ctx context.Context, r *ride.Ride) error {
	if r == nil {
		if !n.seen || n.lastID == 0 {
			n.seen = true
			return nil
		}
		id := n.lastID
		n.lastID, n.last = 0, ""
		return n.sender.SendMessage(ctx, fmt.Sprintf("Cursa #%d nu mai este activă.", id))
	}
	if n.seen && n.lastID == r.ID && n.last == r.Status {
		return nil
	}
	n.seen, n.lastID, n.last = true, r.ID, r.Status
	return n.sender.SendMessage(ctx, Format(*r, n.role))
}

// Run 消費輪詢結果直到 channel 關閉或 ctx 結束；送出失敗只記錄。
func (n *RideNotifier) Run(ctx context.Context, updates <-chan *ride.Ride) {
	for {
		select {
		case <-ctx.Done():
			return
		case r, ok := <-updates:
			if !ok {
				return
			}
			if err := n.Observe(ctx, r); err != nil {
				log.Printf("[Notify] send ride update failed: %v", err)
			}
		}
	}
}

// Format 組出單一行程的通知文字。
func Format(r ride.Ride, role auth.Role) string {
	p := ride.Describe(r.Status, role)
	msg := fmt.Sprintf("Cursa #%d: %s (%s → %s, %s lei)", r.ID, p.Label, r.PickupLocation, r.DropoffLocation, r.Price)
	if p.Hint != "" {
		msg += "\n" + p.Hint
	}
	if r.Driver != nil && role == auth.RoleClient {
		msg += fmt.Sprintf("\nȘofer: %s, %s %s", r.Driver.User.DisplayName(), r.Driver.CarModel, r.Driver.CarPlate)
	}
	return msg
}
