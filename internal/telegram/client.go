package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/example/vocabot/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// botAPI is the slice of tgbotapi.BotAPI the client uses, split out so
// tests can substitute a fake.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// RetryPolicy controls how a transient failure is retried.
// MaxAttempts of zero means retry until the context is cancelled.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// Client sends messages, menus, questions and edits to the platform.
// Sends retry with a fixed delay until they succeed or the context is
// cancelled; file downloads use a bounded policy and then fail upward.
// The client remembers the id of the last message sent to each chat so
// answer callbacks can edit the question in place.
type Client struct {
	api            botAPI
	log            *zap.Logger
	http           *http.Client
	downloadDir    string
	sendPolicy     RetryPolicy
	downloadPolicy RetryPolicy

	mu             sync.Mutex
	lastMessageIDs map[int64]int
}

// NewClient creates a client over an authorized bot API
func NewClient(api botAPI, downloadDir string, retryDelay time.Duration, log *zap.Logger) *Client {
	return &Client{
		api:            api,
		log:            log,
		http:           &http.Client{Timeout: 30 * time.Second},
		downloadDir:    downloadDir,
		sendPolicy:     RetryPolicy{MaxAttempts: 0, Delay: retryDelay},
		downloadPolicy: RetryPolicy{MaxAttempts: 3, Delay: retryDelay},
		lastMessageIDs: make(map[int64]int),
	}
}

// SendText sends a plain text message
func (c *Client) SendText(ctx context.Context, chatID int64, text string) error {
	_, err := c.send(ctx, tgbotapi.NewMessage(chatID, text))
	return err
}

// SendMenu sends the main menu with its inline keyboard
func (c *Client) SendMenu(ctx context.Context, chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "Основное меню")
	msg.ReplyMarkup = menuKeyboard()
	_, err := c.send(ctx, msg)
	return err
}

// SendQuestion sends a new question message with its answer buttons
func (c *Client) SendQuestion(ctx context.Context, chatID int64, q *models.Question) error {
	msg := tgbotapi.NewMessage(chatID, questionText(q))
	msg.ReplyMarkup = questionKeyboard(q)
	_, err := c.send(ctx, msg)
	return err
}

// EditQuestion replaces an already-sent question message in place
func (c *Client) EditQuestion(ctx context.Context, chatID int64, messageID int, q *models.Question) error {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, questionText(q), questionKeyboard(q))
	_, err := c.send(ctx, edit)
	return err
}

// AnswerCallback acknowledges a button click so the client stops showing
// a progress indicator.
func (c *Client) AnswerCallback(ctx context.Context, callbackID string) error {
	_, err := c.api.Request(tgbotapi.NewCallback(callbackID, ""))
	if err != nil {
		return fmt.Errorf("failed to answer callback: %w", err)
	}
	return nil
}

// SendSticker sends a sticker by its platform file id
func (c *Client) SendSticker(ctx context.Context, chatID int64, fileID string) error {
	_, err := c.send(ctx, tgbotapi.NewSticker(chatID, tgbotapi.FileID(fileID)))
	return err
}

// DownloadDocument fetches an uploaded file into the download directory
// and returns the local path. Unlike sends, downloads give up after a
// bounded number of attempts.
func (c *Client) DownloadDocument(ctx context.Context, fileID, fileName string) (string, error) {
	if err := os.MkdirAll(c.downloadDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.downloadPolicy.MaxAttempts; attempt++ {
		path, err := c.tryDownload(ctx, fileID, fileName)
		if err == nil {
			return path, nil
		}
		lastErr = err
		c.log.Warn("document download failed",
			zap.Int("attempt", attempt),
			zap.String("file_id", fileID),
			zap.Error(err),
		)
		select {
		case <-time.After(c.downloadPolicy.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", fmt.Errorf("failed to download document after %d attempts: %w",
		c.downloadPolicy.MaxAttempts, lastErr)
}

// LastMessageID returns the id of the last message sent to the chat
func (c *Client) LastMessageID(chatID int64) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.lastMessageIDs[chatID]
	return id, ok
}

func (c *Client) tryDownload(ctx context.Context, fileID, fileName string) (string, error) {
	url, err := c.api.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve file url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s fetching file", resp.Status)
	}

	local := filepath.Join(c.downloadDir, fmt.Sprintf("%d_%s", time.Now().UnixNano(), filepath.Base(fileName)))
	out, err := os.Create(local)
	if err != nil {
		return "", fmt.Errorf("failed to create local file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(local)
		return "", fmt.Errorf("failed to write local file: %w", err)
	}
	return local, nil
}

// send delivers one chattable, retrying per the send policy, and records
// the resulting message id for the chat.
func (c *Client) send(ctx context.Context, msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	var lastErr error
	for attempt := 1; ; attempt++ {
		sent, err := c.api.Send(msg)
		if err == nil {
			c.remember(sent)
			return sent, nil
		}
		lastErr = err
		c.log.Warn("send failed",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if c.sendPolicy.MaxAttempts > 0 && attempt >= c.sendPolicy.MaxAttempts {
			return tgbotapi.Message{}, fmt.Errorf("failed to send after %d attempts: %w", attempt, lastErr)
		}
		select {
		case <-time.After(c.sendPolicy.Delay):
		case <-ctx.Done():
			return tgbotapi.Message{}, ctx.Err()
		}
	}
}

func (c *Client) remember(sent tgbotapi.Message) {
	if sent.Chat == nil {
		return
	}
	c.mu.Lock()
	c.lastMessageIDs[sent.Chat.ID] = sent.MessageID
	c.mu.Unlock()
}

func questionText(q *models.Question) string {
	return fmt.Sprintf("Переведите слово: %s", q.CorrectAnswer.Original)
}

func questionKeyboard(q *models.Question) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, variant := range q.Variants {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(variant.Translation, fmt.Sprintf("%s%d", callbackAnswerPrefix, i)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func menuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Изучить слова", callbackLearn),
			tgbotapi.NewInlineKeyboardButtonData("Статистика", callbackStatistics),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Сбросить прогресс", callbackReset),
		),
	)
}
