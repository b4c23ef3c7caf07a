package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/example/vocabot/internal/catalog"
	"github.com/example/vocabot/internal/trainer"
	"github.com/example/vocabot/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Sender is the outbound surface the dispatcher drives
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendMenu(ctx context.Context, chatID int64) error
	SendQuestion(ctx context.Context, chatID int64, q *models.Question) error
	EditQuestion(ctx context.Context, chatID int64, messageID int, q *models.Question) error
	AnswerCallback(ctx context.Context, callbackID string) error
	DownloadDocument(ctx context.Context, fileID, fileName string) (string, error)
	LastMessageID(chatID int64) (int, bool)
}

// UserStore is the slice of the word store the dispatcher needs
type UserStore interface {
	EnsureUser(ctx context.Context, chatID int64) error
}

// CatalogImporter loads an uploaded catalog file into the store
type CatalogImporter interface {
	ImportFile(ctx context.Context, path string) (*catalog.Report, error)
}

// Dispatcher classifies inbound updates and routes them to the
// per-conversation trainers. Unrecognized input is silently dropped.
type Dispatcher struct {
	client   Sender
	users    UserStore
	sessions *trainer.Registry
	importer CatalogImporter
	log      *zap.Logger
}

// NewDispatcher wires the dispatcher to its collaborators
func NewDispatcher(client Sender, users UserStore, sessions *trainer.Registry, importer CatalogImporter, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		client:   client,
		users:    users,
		sessions: sessions,
		importer: importer,
		log:      log,
	}
}

// HandleUpdate implements the poller's Handler
func (d *Dispatcher) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	switch e := classify(update).(type) {
	case TextEvent:
		return d.handleText(ctx, e)
	case CallbackEvent:
		return d.handleCallback(ctx, e)
	default:
		return nil
	}
}

func (d *Dispatcher) handleText(ctx context.Context, e TextEvent) error {
	if e.Document != nil {
		return d.handleDocument(ctx, e)
	}

	switch strings.ToLower(strings.TrimSpace(e.Text)) {
	case "hello", "/start", "start", "/menu", "menu":
		if err := d.users.EnsureUser(ctx, e.ChatID); err != nil {
			return fmt.Errorf("failed to ensure user %d: %w", e.ChatID, err)
		}
		return d.client.SendMenu(ctx, e.ChatID)
	default:
		// Free text outside the fixed vocabulary is dropped.
		return nil
	}
}

func (d *Dispatcher) handleDocument(ctx context.Context, e TextEvent) error {
	path, err := d.client.DownloadDocument(ctx, e.Document.FileID, e.Document.FileName)
	if err != nil {
		d.sendOrLog(ctx, e.ChatID, "Не удалось загрузить файл, попробуйте ещё раз")
		return fmt.Errorf("failed to download document for chat %d: %w", e.ChatID, err)
	}

	report, err := d.importer.ImportFile(ctx, path)
	if err != nil {
		d.sendOrLog(ctx, e.ChatID, "Не удалось импортировать словарь из файла")
		return fmt.Errorf("failed to import catalog for chat %d: %w", e.ChatID, err)
	}

	return d.client.SendText(ctx, e.ChatID, fmt.Sprintf(
		"Файл обработан: добавлено %d, дубликатов %d, ошибок формата %d",
		report.Inserted, report.Duplicate, report.Malformed))
}

func (d *Dispatcher) handleCallback(ctx context.Context, e CallbackEvent) error {
	if err := d.client.AnswerCallback(ctx, e.CallbackID); err != nil {
		d.log.Warn("failed to answer callback", zap.Error(err))
	}
	if err := d.users.EnsureUser(ctx, e.ChatID); err != nil {
		return fmt.Errorf("failed to ensure user %d: %w", e.ChatID, err)
	}

	session := d.sessions.Get(e.ChatID)

	switch {
	case e.Data == callbackLearn:
		return d.askNext(ctx, session, e.ChatID, 0)

	case e.Data == callbackStatistics:
		stats, err := session.Statistics(ctx)
		if err != nil {
			return err
		}
		return d.client.SendText(ctx, e.ChatID, fmt.Sprintf(
			"Выучено %d из %d слов | %d%%", stats.LearnedCount, stats.TotalCount, stats.Percent))

	case e.Data == callbackReset:
		if err := session.ResetProgress(ctx); err != nil {
			return err
		}
		return d.client.SendText(ctx, e.ChatID, "Прогресс сброшен")

	case strings.HasPrefix(e.Data, callbackAnswerPrefix):
		return d.handleAnswer(ctx, session, e)

	default:
		return nil
	}
}

func (d *Dispatcher) handleAnswer(ctx context.Context, session *trainer.Trainer, e CallbackEvent) error {
	index, err := strconv.Atoi(strings.TrimPrefix(e.Data, callbackAnswerPrefix))
	if err != nil {
		return nil
	}

	question := session.Question()
	if question == nil {
		// Stale click on an already-answered question.
		return d.client.SendText(ctx, e.ChatID, "Нажмите «Изучить слова», чтобы получить новый вопрос")
	}
	if index < 0 || index >= len(question.Variants) {
		return d.client.SendText(ctx, e.ChatID, "Некорректный вариант ответа")
	}

	// The question message id is resolved before any further send
	// overwrites the bookkeeping, so the next question can edit it in
	// place.
	messageID, ok := d.client.LastMessageID(e.ChatID)
	if !ok {
		messageID = e.MessageID
	}

	correct, err := session.CheckAnswer(ctx, index)
	if err != nil {
		return err
	}

	feedback := "Правильно!"
	if !correct {
		feedback = fmt.Sprintf("Неправильно! %s - это %s",
			question.CorrectAnswer.Original, question.CorrectAnswer.Translation)
	}
	if err := d.client.SendText(ctx, e.ChatID, feedback); err != nil {
		return err
	}

	return d.askNext(ctx, session, e.ChatID, messageID)
}

// askNext poses the next question. A non-zero editMessageID reuses an
// existing question message via edit in place instead of sending a new
// one.
func (d *Dispatcher) askNext(ctx context.Context, session *trainer.Trainer, chatID int64, editMessageID int) error {
	question, err := session.NextQuestion(ctx)
	if err != nil {
		return err
	}
	if question == nil {
		return d.client.SendText(ctx, chatID, "Вы выучили все слова в базе")
	}
	if editMessageID != 0 {
		return d.client.EditQuestion(ctx, chatID, editMessageID, question)
	}
	return d.client.SendQuestion(ctx, chatID, question)
}

func (d *Dispatcher) sendOrLog(ctx context.Context, chatID int64, text string) {
	if err := d.client.SendText(ctx, chatID, text); err != nil {
		d.log.Warn("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}
