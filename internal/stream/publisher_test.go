package stream

import (
	"context"
	"testing"
	"time"

	"github.com/10xr-agents/browse-automation-service/internal/action"
)

type fakeBus struct {
	appends []string
}

func (b *fakeBus) Append(_ context.Context, streamKey string, _ []byte) (string, error) {
	b.appends = append(b.appends, streamKey)
	return "1", nil
}
func (b *fakeBus) ReadGroup(context.Context, string, string, string, time.Duration) (string, []byte, bool, error) {
	return "", nil, false, nil
}
func (b *fakeBus) Ack(context.Context, string, string, string) error { return nil }
func (b *fakeBus) Trim(context.Context, string, int, time.Duration) error { return nil }

type fakePubSub struct {
	channels []string
}

func (p *fakePubSub) Publish(_ context.Context, channel string, _ any) error {
	p.channels = append(p.channels, channel)
	return nil
}

func TestPublisher_Publish_UsesEventChannelAndAppendsState(t *testing.T) {
	bus := &fakeBus{}
	pub := &fakePubSub{}
	publisher := NewPublisher(bus, pub)

	envelope := action.Envelope{SequenceNumber: 1, CommandID: "cmd-1"}
	if err := publisher.Publish(context.Background(), "room-a", envelope, action.Result{Success: true}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if len(bus.appends) != 1 || bus.appends[0] != StateStreamKey("room-a") {
		t.Fatalf("expected one append to %s, got %v", StateStreamKey("room-a"), bus.appends)
	}
	if len(pub.channels) != 1 || pub.channels[0] != "browser:events:room-a" {
		t.Fatalf("expected publish to browser:events:room-a, got %v", pub.channels)
	}
}

func TestPublisher_PublishEvent_SkipsStateStream(t *testing.T) {
	bus := &fakeBus{}
	pub := &fakePubSub{}
	publisher := NewPublisher(bus, pub)

	envelope := action.Envelope{SequenceNumber: 4, CommandID: "cmd-4"}
	if err := publisher.PublishEvent(context.Background(), "room-a", envelope, action.Result{}); err != nil {
		t.Fatalf("PublishEvent: %v", err)
	}

	if len(bus.appends) != 0 {
		t.Fatalf("expected PublishEvent not to touch the state stream, got appends %v", bus.appends)
	}
	if len(pub.channels) != 1 || pub.channels[0] != "browser:events:room-a" {
		t.Fatalf("expected publish to browser:events:room-a, got %v", pub.channels)
	}
}
