package trainer

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/example/vocabot/pkg/models"
)

// questionVariants is how many answer buttons a question offers.
const questionVariants = 4

// Dictionary is the word store surface the trainer needs
type Dictionary interface {
	LearnedWords(ctx context.Context, chatID int64) ([]models.Word, error)
	UnlearnedWords(ctx context.Context, chatID int64) ([]models.Word, error)
	LearnedCount(ctx context.Context, chatID int64) (int, error)
	RecordAnswer(ctx context.Context, chatID int64, original string, newCount int) error
	ResetProgress(ctx context.Context, chatID int64) error
	Size(ctx context.Context) (int, error)
}

// LearnedHook is invoked after a word transitions to learned, with the
// user's new learned total. Failures inside the hook must not affect the
// answer flow.
type LearnedHook func(ctx context.Context, chatID int64, learnedTotal int)

// Trainer runs the quiz for one conversation. It holds at most one live
// question; the question is replaced by NextQuestion and cleared by a
// valid answer.
type Trainer struct {
	chatID    int64
	dict      Dictionary
	threshold int
	onLearned LearnedHook
	rng       *rand.Rand

	question *models.Question
}

// NewTrainer creates a trainer for a single conversation
func NewTrainer(dict Dictionary, chatID int64, learningThreshold int, onLearned LearnedHook) *Trainer {
	return &Trainer{
		chatID:    chatID,
		dict:      dict,
		threshold: learningThreshold,
		onLearned: onLearned,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NextQuestion selects the next question for the user. It returns nil
// when every word in the catalog is learned. When fewer than four
// unlearned words remain, the variants are padded with learned words; a
// word never appears twice within one question.
func (t *Trainer) NextQuestion(ctx context.Context) (*models.Question, error) {
	unlearned, err := t.dict.UnlearnedWords(ctx, t.chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unlearned words: %w", err)
	}
	if len(unlearned) == 0 {
		t.question = nil
		return nil, nil
	}

	t.shuffle(unlearned)
	variants := unlearned
	if len(variants) > questionVariants {
		variants = variants[:questionVariants]
	} else if len(variants) < questionVariants {
		learned, err := t.dict.LearnedWords(ctx, t.chatID)
		if err != nil {
			return nil, fmt.Errorf("failed to load learned words: %w", err)
		}
		t.shuffle(learned)
		need := questionVariants - len(variants)
		if need > len(learned) {
			need = len(learned)
		}
		variants = append(variants, learned[:need]...)
	}
	t.shuffle(variants)

	t.question = &models.Question{
		Variants:      variants,
		CorrectAnswer: variants[t.rng.Intn(len(variants))],
	}
	return t.question, nil
}

// CheckAnswer evaluates the chosen variant index against the live
// question. An out-of-range index is a no-op negative that keeps the
// question pending; a valid index clears the question whether or not the
// answer was right. A correct answer increments the word's counter.
func (t *Trainer) CheckAnswer(ctx context.Context, chosenIndex int) (bool, error) {
	if t.question == nil {
		return false, nil
	}
	if chosenIndex < 0 || chosenIndex >= len(t.question.Variants) {
		return false, nil
	}

	question := t.question
	t.question = nil

	chosen := question.Variants[chosenIndex]
	if chosen.Original != question.CorrectAnswer.Original {
		return false, nil
	}

	newCount := question.CorrectAnswer.CorrectAnswers + 1
	if err := t.dict.RecordAnswer(ctx, t.chatID, question.CorrectAnswer.Original, newCount); err != nil {
		return false, fmt.Errorf("failed to record answer: %w", err)
	}

	if newCount == t.threshold && t.onLearned != nil {
		if total, err := t.dict.LearnedCount(ctx, t.chatID); err == nil {
			t.onLearned(ctx, t.chatID, total)
		}
	}
	return true, nil
}

// Question returns the live question, nil when none is pending
func (t *Trainer) Question() *models.Question {
	return t.question
}

// Statistics reads the user's current progress snapshot
func (t *Trainer) Statistics(ctx context.Context) (models.Statistics, error) {
	learned, err := t.dict.LearnedCount(ctx, t.chatID)
	if err != nil {
		return models.Statistics{}, fmt.Errorf("failed to count learned words: %w", err)
	}
	total, err := t.dict.Size(ctx)
	if err != nil {
		return models.Statistics{}, fmt.Errorf("failed to get catalog size: %w", err)
	}
	return models.NewStatistics(learned, total), nil
}

// ResetProgress wipes the user's counters and any pending question
func (t *Trainer) ResetProgress(ctx context.Context) error {
	t.question = nil
	return t.dict.ResetProgress(ctx, t.chatID)
}

func (t *Trainer) shuffle(words []models.Word) {
	t.rng.Shuffle(len(words), func(i, j int) {
		words[i], words[j] = words[j], words[i]
	})
}
