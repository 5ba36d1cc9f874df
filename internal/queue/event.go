// Package queue publishes accepted inventory events to RabbitMQ so downstream
// systems (ERP sync, dashboards) can follow box movements.
package queue

import (
	"time"

	"warehouse-inventory-api/internal/model"
	"warehouse-inventory-api/pkg/uid"
)

// DefaultQueueName is the durable queue accepted events are routed to.
const DefaultQueueName = "inventory.events"

// InventoryEvent is the message body published for every appended event.
type InventoryEvent struct {
	MessageID        string       `json:"message_id"`
	Seq              int64        `json:"seq"`
	Action           model.Action `json:"action"`
	BoxID            string       `json:"box_id"`
	ScannedCode      string       `json:"scanned_code"`
	Location         string       `json:"location"`
	PreviousLocation string       `json:"previous_location,omitempty"`
	Pallet           string       `json:"pallet"`
	ItemCode         string       `json:"item_code"`
	Quantity         string       `json:"quantity"`
	OccurredAt       time.Time    `json:"occurred_at"`
}

// NewInventoryEvent builds the message for an appended event.
func NewInventoryEvent(e model.Event, scannedCode, previousLocation string, enrichment model.Enrichment) InventoryEvent {
	return InventoryEvent{
		MessageID:        uid.New(),
		Seq:              e.Seq,
		Action:           e.Action,
		BoxID:            e.BoxID,
		ScannedCode:      scannedCode,
		Location:         e.Location,
		PreviousLocation: previousLocation,
		Pallet:           e.Pallet,
		ItemCode:         enrichment.ItemCode,
		Quantity:         enrichment.Quantity.String(),
		OccurredAt:       e.Timestamp,
	}
}
