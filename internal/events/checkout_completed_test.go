package events

import (
	"testing"
	"time"
)

func TestBuildCheckoutCompletedDefaults(t *testing.T) {
	payload := CheckoutCompletedPayload{
		OrderID:   "VIBE-000007",
		UserID:    "user1",
		Total:     6497,
		ItemCount: 2,
	}

	ev := BuildCheckoutCompleted("user1", 7, payload, EnvelopeOptions{})

	if ev.EventName != CheckoutCompletedEventName || ev.EventVersion != CheckoutCompletedEventVersion {
		t.Fatalf("unexpected event identity: %s v%d", ev.EventName, ev.EventVersion)
	}
	if ev.EventID == "" {
		t.Fatalf("event id must be generated")
	}
	if ev.Producer != StorefrontProducer {
		t.Fatalf("unexpected producer %q", ev.Producer)
	}
	if ev.PartitionKey != "user1" || ev.Sequence != 7 {
		t.Fatalf("unexpected partitioning: key=%q seq=%d", ev.PartitionKey, ev.Sequence)
	}
	if ev.OccurredAt.IsZero() {
		t.Fatalf("occurredAt must be set")
	}
	if ev.Payload.OrderID != "VIBE-000007" {
		t.Fatalf("payload not carried: %+v", ev.Payload)
	}
}

func TestBuildCheckoutCompletedOverrides(t *testing.T) {
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	ev := BuildCheckoutCompleted("user1", 1, CheckoutCompletedPayload{}, EnvelopeOptions{
		EventID:    "ev-1",
		Producer:   "storefront-test",
		OccurredAt: at,
	})

	if ev.EventID != "ev-1" || ev.Producer != "storefront-test" || !ev.OccurredAt.Equal(at) {
		t.Fatalf("overrides not applied: %+v", ev)
	}
}
