package telegram

import (
	"context"
	"fmt"

	"github.com/example/vocabot/internal/trainer"
	"go.uber.org/zap"
)

// rewardSender is the outbound slice the reward hook needs
type rewardSender interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendSticker(ctx context.Context, chatID int64, fileID string) error
}

// NewRewardHook builds the side-effect hook fired when a word
// transitions to learned. Every time the learned total reaches a
// multiple of `every`, the user gets a congratulation: the configured
// sticker when one is set, a plain message otherwise. Failures are
// logged and never reach the answer flow.
func NewRewardHook(sender rewardSender, every int, stickerFileID string, log *zap.Logger) trainer.LearnedHook {
	if every <= 0 {
		return nil
	}
	return func(ctx context.Context, chatID int64, learnedTotal int) {
		if learnedTotal == 0 || learnedTotal%every != 0 {
			return
		}
		if stickerFileID != "" {
			err := sender.SendSticker(ctx, chatID, stickerFileID)
			if err == nil {
				return
			}
			log.Warn("failed to send reward sticker", zap.Int64("chat_id", chatID), zap.Error(err))
		}
		text := fmt.Sprintf("Поздравляем! Вы выучили уже %d слов!", learnedTotal)
		if err := sender.SendText(ctx, chatID, text); err != nil {
			log.Warn("failed to send reward message", zap.Int64("chat_id", chatID), zap.Error(err))
		}
	}
}
