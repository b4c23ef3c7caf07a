package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback button codes. The answer prefix is followed by the zero-based
// variant index.
const (
	callbackLearn        = "learn_words_clicked"
	callbackStatistics   = "statistics_clicked"
	callbackReset        = "reset_clicked"
	callbackAnswerPrefix = "answer_"
)

// Event is an inbound platform event after classification. Exactly two
// shapes exist, so there is never ambiguity about which field carries
// the chat id.
type Event interface {
	eventChatID() int64
}

// TextEvent is a plain message: free text, a command, or an attached
// catalog document.
type TextEvent struct {
	ChatID   int64
	Text     string
	Document *Document
}

// Document is a file attached to a message
type Document struct {
	FileID   string
	FileName string
}

// CallbackEvent is a button click carrying the callback data and the id
// of the message the button was attached to.
type CallbackEvent struct {
	CallbackID string
	ChatID     int64
	MessageID  int
	Data       string
}

func (e TextEvent) eventChatID() int64     { return e.ChatID }
func (e CallbackEvent) eventChatID() int64 { return e.ChatID }

// classify maps a raw update onto the event union. Unrecognized update
// shapes yield nil and are silently dropped.
func classify(update tgbotapi.Update) Event {
	switch {
	case update.Message != nil && update.Message.Chat != nil:
		e := TextEvent{
			ChatID: update.Message.Chat.ID,
			Text:   update.Message.Text,
		}
		if update.Message.Document != nil {
			e.Document = &Document{
				FileID:   update.Message.Document.FileID,
				FileName: update.Message.Document.FileName,
			}
		}
		if e.Text == "" && e.Document == nil {
			return nil
		}
		return e

	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil && update.CallbackQuery.Message.Chat != nil:
		return CallbackEvent{
			CallbackID: update.CallbackQuery.ID,
			ChatID:     update.CallbackQuery.Message.Chat.ID,
			MessageID:  update.CallbackQuery.Message.MessageID,
			Data:       update.CallbackQuery.Data,
		}

	default:
		return nil
	}
}
