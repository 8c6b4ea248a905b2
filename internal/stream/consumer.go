package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/10xr-agents/browse-automation-service/internal/action"
	"github.com/10xr-agents/browse-automation-service/internal/braerr"
	"github.com/10xr-agents/browse-automation-service/internal/capability"
)

// ConsumerGroup is the shared consumer group name of §4.6.
const ConsumerGroup = "browser_agent_cluster"

// DedupSeqStore is the dedup-cache/sequence-tracker slice of the stream
// store that the Consumer needs beyond the generic StreamBus capability.
type DedupSeqStore interface {
	DedupStatus(ctx context.Context, sessionRoom, commandID string) (string, bool, error)
	SetDedupStatus(ctx context.Context, sessionRoom, commandID, status string, ttl time.Duration) error
	LastProcessedSeq(ctx context.Context, sessionRoom string) (int64, error)
	SetLastProcessedSeq(ctx context.Context, sessionRoom string, seq int64) error
}

// SessionLookup resolves a room name to the SessionHandle the Dispatcher
// should run the envelope against.
type SessionLookup func(roomName string) (action.SessionHandle, bool)

// DedupTTL is the 5-minute dedup cache TTL of §3.1/§3.2.
const DedupTTL = 5 * time.Minute

// IdleClaimTimeout is the 60s idle timeout before another consumer may claim
// an un-acked message (§4.6 step 7).
const IdleClaimTimeout = 60 * time.Second

// Consumer runs the per-session command-stream loop of §4.6.
type Consumer struct {
	bus        capability.StreamBus
	dedupSeq   DedupSeqStore
	dispatcher *action.Dispatcher
	lookup     SessionLookup
	publisher  *Publisher
	consumerName string
	log        *slog.Logger
}

// NewConsumer constructs a Consumer for one process instance.
// ("consumerName" is this instance's identity within the consumer group.)
func NewConsumer(bus capability.StreamBus, dedupSeq DedupSeqStore, dispatcher *action.Dispatcher, lookup SessionLookup, publisher *Publisher, consumerName string, log *slog.Logger) *Consumer {
	if log == nil {
		log = slog.Default()
	}
	return &Consumer{bus: bus, dedupSeq: dedupSeq, dispatcher: dispatcher, lookup: lookup, publisher: publisher, consumerName: consumerName, log: log}
}

// ProcessOne runs exactly one iteration of the §4.6 consumer loop against
// roomName's command stream, with the given read timeout.
func (c *Consumer) ProcessOne(ctx context.Context, roomName string, readTimeout time.Duration) error {
	streamKey := CommandStreamKey(roomName)
	msgID, payload, ok, err := c.bus.ReadGroup(ctx, streamKey, ConsumerGroup, c.consumerName, readTimeout)
	if err != nil {
		return err
	}
	if !ok {
		return nil // nothing to process within the bounded block
	}

	var envelope action.Envelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		// Malformed envelope: ack + emit error event (§4.6 step 2).
		_ = c.bus.Ack(ctx, streamKey, ConsumerGroup, msgID)
		c.log.Error("malformed command envelope", "room", roomName, "error", err)
		return nil
	}

	status, found, err := c.dedupSeq.DedupStatus(ctx, roomName, envelope.CommandID)
	if err != nil {
		return err
	}
	if found {
		if status == "processed" {
			_ = c.bus.Ack(ctx, streamKey, ConsumerGroup, msgID)
			return nil
		}
		// status == "processing": another consumer has it in flight; skip
		// without acking so it can be reclaimed after IdleClaimTimeout.
		return nil
	}

	lastProcessed, err := c.dedupSeq.LastProcessedSeq(ctx, roomName)
	if err != nil {
		return err
	}
	expected := lastProcessed + 1
	if envelope.SequenceNumber < expected {
		// Duplicate — ack, skip (§4.6 step 4).
		_ = c.bus.Ack(ctx, streamKey, ConsumerGroup, msgID)
		return nil
	}
	if envelope.SequenceNumber > expected {
		// Gap — emit SequenceGap, do not ack (§4.6 step 4).
		c.publishErrorEvent(ctx, roomName, envelope, braerr.New(braerr.SequenceGap, "sequence gap detected, awaiting retransmission"))
		return nil
	}

	if err := c.dedupSeq.SetDedupStatus(ctx, roomName, envelope.CommandID, "processing", DedupTTL); err != nil {
		return err
	}

	handle, ok := c.lookup(roomName)
	if !ok {
		c.publishErrorEvent(ctx, roomName, envelope, braerr.New(braerr.SessionNotFound, "no active session for room"))
		return nil
	}

	result := c.dispatcher.Dispatch(ctx, handle, envelope)

	if result.Success || (result.Error != nil && braerr.ClassOf(result.Error.Code) != braerr.ClassTransient) {
		if c.publisher != nil {
			_ = c.publisher.Publish(ctx, roomName, envelope, result)
		}
		_ = c.bus.Ack(ctx, streamKey, ConsumerGroup, msgID)
		_ = c.dedupSeq.SetDedupStatus(ctx, roomName, envelope.CommandID, "processed", DedupTTL)
		_ = c.dedupSeq.SetLastProcessedSeq(ctx, roomName, envelope.SequenceNumber)
		return nil
	}

	// Transient failure: leave un-acked for reclaim after idle timeout
	// (§4.6 step 7).
	return nil
}

func (c *Consumer) publishErrorEvent(ctx context.Context, roomName string, envelope action.Envelope, berr *braerr.Error) {
	if c.publisher == nil {
		return
	}
	_ = c.publisher.PublishEvent(ctx, roomName, envelope, action.Result{Error: berr})
}

// Run loops ProcessOne until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context, roomName string, readTimeout time.Duration) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if err := c.ProcessOne(ctx, roomName, readTimeout); err != nil {
			c.log.Error("consumer loop error", "room", roomName, "error", err)
		}
	}
}
