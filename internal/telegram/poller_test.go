package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedSource replays canned poll results, then cancels the run
type scriptedSource struct {
	results []pollResult
	calls   int
	cancel  context.CancelFunc
	offsets []int
}

type pollResult struct {
	updates []tgbotapi.Update
	err     error
}

func (s *scriptedSource) GetUpdates(cfg tgbotapi.UpdateConfig) ([]tgbotapi.Update, error) {
	s.offsets = append(s.offsets, cfg.Offset)
	if s.calls >= len(s.results) {
		s.cancel()
		return nil, nil
	}
	r := s.results[s.calls]
	s.calls++
	return r.updates, r.err
}

// recordingHandler collects handled update ids in order
type recordingHandler struct {
	ids []int
	err error
}

func (h *recordingHandler) HandleUpdate(_ context.Context, update tgbotapi.Update) error {
	h.ids = append(h.ids, update.UpdateID)
	return h.err
}

func runPoller(t *testing.T, source *scriptedSource, handler Handler) *Poller {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	source.cancel = cancel

	poller := NewPoller(source, handler, 0, time.Millisecond, zap.NewNop())
	err := poller.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	return poller
}

func updatesWithIDs(ids ...int) []tgbotapi.Update {
	updates := make([]tgbotapi.Update, 0, len(ids))
	for _, id := range ids {
		updates = append(updates, tgbotapi.Update{UpdateID: id})
	}
	return updates
}

func TestPoller_OrdersBatchBySequenceID(t *testing.T) {
	source := &scriptedSource{results: []pollResult{
		{updates: updatesWithIDs(5, 3, 4)},
	}}
	handler := &recordingHandler{}

	poller := runPoller(t, source, handler)

	assert.Equal(t, []int{3, 4, 5}, handler.ids)
	assert.Equal(t, 6, poller.Offset(), "next poll must ask from id+1")
}

func TestPoller_SkipsAlreadyDeliveredUpdates(t *testing.T) {
	source := &scriptedSource{results: []pollResult{
		{updates: updatesWithIDs(1, 2)},
		// The platform re-delivers update 2 alongside a new one.
		{updates: updatesWithIDs(2, 3)},
	}}
	handler := &recordingHandler{}

	poller := runPoller(t, source, handler)

	assert.Equal(t, []int{1, 2, 3}, handler.ids)
	assert.Equal(t, 4, poller.Offset())
}

func TestPoller_RetriesAfterPollFailure(t *testing.T) {
	source := &scriptedSource{results: []pollResult{
		{err: errors.New("network down")},
		{updates: updatesWithIDs(7)},
	}}
	handler := &recordingHandler{}

	poller := runPoller(t, source, handler)

	assert.Equal(t, []int{7}, handler.ids)
	assert.Equal(t, 8, poller.Offset())
	// The failed poll must not advance the offset.
	assert.Equal(t, []int{0, 0, 8}, source.offsets)
}

func TestPoller_HandlerErrorDoesNotStopTheLoop(t *testing.T) {
	source := &scriptedSource{results: []pollResult{
		{updates: updatesWithIDs(1, 2, 3)},
	}}
	handler := &recordingHandler{err: errors.New("boom")}

	poller := runPoller(t, source, handler)

	assert.Equal(t, []int{1, 2, 3}, handler.ids, "every update is attempted despite failures")
	assert.Equal(t, 4, poller.Offset())
}
