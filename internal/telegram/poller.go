package telegram

import (
	"context"
	"sort"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// updateSource is the polling slice of tgbotapi.BotAPI
type updateSource interface {
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
}

// Handler consumes one classified update. A handler error fails that
// update only; the loop logs it and moves on.
type Handler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update) error
}

// Poller long-polls the platform for updates and feeds them to the
// handler in increasing update-id order. The offset cursor is advanced
// to id+1 only after an update has been handed to the handler, so a
// crash mid-batch re-delivers unprocessed events on restart
// (at-least-once delivery).
type Poller struct {
	source     updateSource
	handler    Handler
	log        *zap.Logger
	timeout    int
	retryDelay time.Duration

	offset int
}

// NewPoller creates a poller. timeout is the long-poll timeout in
// seconds; retryDelay is the pause after a failed poll.
func NewPoller(source updateSource, handler Handler, timeout int, retryDelay time.Duration, log *zap.Logger) *Poller {
	return &Poller{
		source:     source,
		handler:    handler,
		log:        log,
		timeout:    timeout,
		retryDelay: retryDelay,
	}
}

// Run polls until the context is cancelled. Network failures are never
// fatal: the loop logs, waits, and retries.
func (p *Poller) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		updates, err := p.source.GetUpdates(tgbotapi.UpdateConfig{
			Offset:  p.offset,
			Timeout: p.timeout,
		})
		if err != nil {
			p.log.Warn("poll failed", zap.Error(err))
			select {
			case <-time.After(p.retryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		// Updates within one batch are dispatched in sequence order so a
		// command is never overtaken by a same-poll button click.
		sort.Slice(updates, func(i, j int) bool {
			return updates[i].UpdateID < updates[j].UpdateID
		})

		for _, update := range updates {
			if update.UpdateID < p.offset {
				continue // already delivered
			}
			if err := p.handler.HandleUpdate(ctx, update); err != nil {
				p.log.Error("failed to handle update",
					zap.Int("update_id", update.UpdateID),
					zap.Error(err),
				)
			}
			p.offset = update.UpdateID + 1
		}
	}
}

// Offset returns the next expected update id
func (p *Poller) Offset() int {
	return p.offset
}
