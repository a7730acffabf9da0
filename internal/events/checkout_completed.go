package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	CheckoutCompletedEventName    = "CheckoutCompleted"
	CheckoutCompletedEventVersion = 1
	StorefrontProducer            = "storefront"
)

// CheckoutCompleted is the enveloped event emitted after a successful
// checkout. It is a notification only; the storefront does not persist
// orders.
type CheckoutCompleted struct {
	EventName    string                   `json:"eventName"`
	EventVersion int                      `json:"eventVersion"`
	EventID      string                   `json:"eventId"`
	Producer     string                   `json:"producer"`
	PartitionKey string                   `json:"partitionKey"`
	Sequence     int64                    `json:"sequence"`
	OccurredAt   time.Time                `json:"occurredAt"`
	Payload      CheckoutCompletedPayload `json:"payload"`
}

type CheckoutCompletedPayload struct {
	OrderID   string              `json:"orderId"`
	UserID    string              `json:"userId"`
	Items     []CheckoutLineEvent `json:"items"`
	Total     int64               `json:"total"`
	ItemCount int                 `json:"itemCount"`
}

type CheckoutLineEvent struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
}

// EnvelopeOptions override envelope fields that are otherwise generated.
type EnvelopeOptions struct {
	EventID    string
	Producer   string
	OccurredAt time.Time
}

// BuildCheckoutCompleted wraps a payload in a versioned envelope. The
// partition key is the user id, so per-user ordering follows the sequence.
func BuildCheckoutCompleted(userID string, seq int64, payload CheckoutCompletedPayload, opts EnvelopeOptions) CheckoutCompleted {
	eventID := opts.EventID
	if eventID == "" {
		eventID = uuid.NewString()
	}

	occurredAt := opts.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	producer := opts.Producer
	if producer == "" {
		producer = StorefrontProducer
	}

	return CheckoutCompleted{
		EventName:    CheckoutCompletedEventName,
		EventVersion: CheckoutCompletedEventVersion,
		EventID:      eventID,
		Producer:     producer,
		PartitionKey: userID,
		Sequence:     seq,
		OccurredAt:   occurredAt,
		Payload:      payload,
	}
}
