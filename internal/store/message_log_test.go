package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-client/internal/models"
)

func msg(sender, text string, ts time.Time) models.ChatMessage {
	return models.ChatMessage{
		SenderID:   sender,
		ReceiverID: "seller-1",
		Message:    text,
		ProductID:  "product-1",
		Timestamp:  ts,
	}
}

func TestAppendRemoteDropsNearDuplicate(t *testing.T) {
	log := NewMessageLog()
	base := time.Now()

	require.True(t, log.Append(msg("u1", "hello", base), SourceRemote))
	assert.False(t, log.Append(msg("u1", "hello", base.Add(1500*time.Millisecond)), SourceRemote))
	assert.False(t, log.Append(msg("u1", "hello", base.Add(-1500*time.Millisecond)), SourceRemote))
	assert.Equal(t, 1, log.Len())

	// Outside the window, same text is a distinct message.
	assert.True(t, log.Append(msg("u1", "hello", base.Add(2500*time.Millisecond)), SourceRemote))
	assert.Equal(t, 2, log.Len())
}

func TestAppendRemoteDifferentSenderOrTextKept(t *testing.T) {
	log := NewMessageLog()
	base := time.Now()

	require.True(t, log.Append(msg("u1", "hello", base), SourceRemote))
	assert.True(t, log.Append(msg("u2", "hello", base), SourceRemote))
	assert.True(t, log.Append(msg("u1", "hello!", base), SourceRemote))
	assert.Equal(t, 3, log.Len())
}

func TestDedupPropertyHolds(t *testing.T) {
	log := NewMessageLog()
	base := time.Now()

	for i := 0; i < 40; i++ {
		sender := fmt.Sprintf("u%d", i%3)
		text := fmt.Sprintf("text-%d", i%5)
		log.Append(msg(sender, text, base.Add(time.Duration(i*300)*time.Millisecond)), SourceRemote)
	}

	entries := log.Messages()
	for i := range entries {
		for j := i + 1; j < len(entries); j++ {
			if entries[i].SenderID != entries[j].SenderID || entries[i].Message != entries[j].Message {
				continue
			}
			delta := entries[j].Timestamp.Sub(entries[i].Timestamp)
			if delta < 0 {
				delta = -delta
			}
			assert.GreaterOrEqual(t, delta, DedupWindow,
				"entries %d and %d violate the dedup window", i, j)
		}
	}
}

func TestAppendLocalIsUnconditional(t *testing.T) {
	log := NewMessageLog()
	base := time.Now()

	require.True(t, log.Append(msg("u1", "hello", base), SourceLocal))
	require.True(t, log.Append(msg("u1", "hello", base.Add(100*time.Millisecond)), SourceLocal))
	assert.Equal(t, 2, log.Len())
}

func TestHydrateThenLocalAppendKeepsOrder(t *testing.T) {
	log := NewMessageLog()
	base := time.Now().Add(-time.Hour)

	history := []models.ChatMessage{
		msg("seller-1", "hi", base),
		msg("u1", "hello", base.Add(time.Minute)),
		msg("seller-1", "still there?", base.Add(2*time.Minute)),
	}
	log.Hydrate(history)
	require.True(t, log.Hydrated())

	local := msg("u1", "yes", time.Now())
	log.Append(local, SourceLocal)

	entries := log.Messages()
	require.Len(t, entries, 4)
	assert.Equal(t, history, entries[:3])
	assert.Equal(t, local, entries[3])
}

func TestHydrateMergesLiveMessagesThatRacedAhead(t *testing.T) {
	log := NewMessageLog()
	base := time.Now()

	early := msg("seller-1", "fresh", base)
	require.True(t, log.Append(early, SourceRemote))

	history := []models.ChatMessage{
		msg("u1", "old", base.Add(-time.Hour)),
		msg("seller-1", "older", base.Add(-2*time.Hour)),
	}
	log.Hydrate(history)

	entries := log.Messages()
	require.Len(t, entries, 3)
	assert.Equal(t, history, entries[:2])
	assert.Equal(t, early, entries[2])
}

func TestHydrateDropsLiveDuplicateOfHistoryEntry(t *testing.T) {
	log := NewMessageLog()
	base := time.Now()

	live := msg("seller-1", "hi", base)
	require.True(t, log.Append(live, SourceRemote))

	history := []models.ChatMessage{
		msg("seller-1", "hi", base.Add(500*time.Millisecond)),
	}
	log.Hydrate(history)

	assert.Equal(t, 1, log.Len())
}

func TestMessagesReturnsCopy(t *testing.T) {
	log := NewMessageLog()
	log.Append(msg("u1", "hello", time.Now()), SourceLocal)

	entries := log.Messages()
	entries[0].Message = "mutated"
	assert.Equal(t, "hello", log.Messages()[0].Message)
}
