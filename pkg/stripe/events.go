package stripe

import (
	"encoding/json"
	"errors"
)

// Event types handled by the billing service.
const (
	EventCheckoutSessionCompleted    = "checkout.session.completed"
	EventCustomerSubscriptionUpdated = "customer.subscription.updated"
	EventCustomerSubscriptionDeleted = "customer.subscription.deleted"
	EventInvoicePaymentFailed        = "invoice.payment_failed"
)

// Event is a webhook notification. Data.Object holds the affected resource in
// the shape of its API type.
type Event struct {
	ID         string    `json:"id"`
	Object     string    `json:"object"`
	Type       string    `json:"type"`
	Created    int64     `json:"created"`
	Livemode   bool      `json:"livemode"`
	APIVersion string    `json:"api_version"`
	Data       EventData `json:"data"`
}

type EventData struct {
	Object             json.RawMessage `json:"object"`
	PreviousAttributes json.RawMessage `json:"previous_attributes,omitempty"`
}

// Invoice carries the invoice fields needed to react to payment failures.
type Invoice struct {
	ID           string `json:"id"`
	Customer     string `json:"customer"`
	Subscription string `json:"subscription"`
	Status       string `json:"status"`
	AttemptCount int    `json:"attempt_count"`
}

// DecodeObject unmarshals the event's data object into v.
func (e *Event) DecodeObject(v any) error {
	if len(e.Data.Object) == 0 {
		return errors.Join(ErrInvalidResponse, errors.New("event has no data object"))
	}
	if err := json.Unmarshal(e.Data.Object, v); err != nil {
		return errors.Join(ErrInvalidResponse, err)
	}
	return nil
}
