package service

import (
	"context"
	"log"

	"github.com/cx-tal-miterani/rental-booking-system/internal/checkout"
	"github.com/cx-tal-miterani/rental-booking-system/internal/events"
	"github.com/cx-tal-miterani/rental-booking-system/internal/journal"
	"github.com/cx-tal-miterani/rental-booking-system/internal/models"
	"github.com/cx-tal-miterani/rental-booking-system/internal/websocket"
)

// Broadcaster pushes a message to the pages watching a flow
type Broadcaster interface {
	Publish(msg *websocket.Message)
}

// NewCheckoutObserver fans checkout state changes out to the watching
// pages, the payment journal and the event stream. Any of them may be nil.
func NewCheckoutObserver(hub Broadcaster, j journal.Journal, pub events.Publisher) checkout.Observer {
	return func(ctx context.Context, e checkout.Event) {
		if hub != nil {
			if msg := checkoutMessage(e); msg != nil {
				hub.Publish(msg)
			}
		}

		if j != nil && e.ReservationID != "" {
			err := j.Record(ctx, &journal.Entry{
				ReservationID: e.ReservationID,
				FlowID:        e.FlowID,
				OrderID:       e.OrderID,
				State:         string(e.State),
				Detail:        e.Detail,
				CreatedAt:     e.At,
			})
			if err != nil {
				log.Printf("Failed to journal checkout of reservation %s: %v", e.ReservationID, err)
			}
		}

		if pub != nil && e.ReservationID != "" {
			publishCheckoutEvent(ctx, pub, e)
		}
	}
}

func checkoutMessage(e checkout.Event) *websocket.Message {
	msg := &websocket.Message{
		FlowID:        e.FlowID,
		ReservationID: e.ReservationID.String(),
		OrderID:       e.OrderID,
		Message:       e.Detail,
	}
	switch e.State {
	case checkout.StateOrderCreated:
		msg.Type = websocket.MessageTypeOrderCreated
	case checkout.StateCaptured:
		msg.Type = websocket.MessageTypePaymentCaptured
	case checkout.StateFailed:
		msg.Type = websocket.MessageTypePaymentFailed
	default:
		return nil
	}
	return msg
}

func publishCheckoutEvent(ctx context.Context, pub events.Publisher, e checkout.Event) {
	var err error
	switch e.State {
	case checkout.StateCaptured:
		err = pub.Publish(ctx, events.EventBookingStatusChanged, e.ReservationID.String(), events.BookingStatusChangedPayload{
			ReservationID: e.ReservationID,
			Status:        models.BookingStatusConfirmed,
		})
	case checkout.StateFailed:
		err = pub.Publish(ctx, events.EventCheckoutFailed, e.ReservationID.String(), events.CheckoutFailedPayload{
			ReservationID: e.ReservationID,
			OrderID:       e.OrderID,
			Reason:        e.Detail,
		})
	}
	if err != nil {
		log.Printf("Failed to publish checkout event of reservation %s: %v", e.ReservationID, err)
	}
}
