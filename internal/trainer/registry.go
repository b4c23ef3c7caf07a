package trainer

import "sync"

// Registry maps conversation ids to their trainers, creating one on
// first reference. Sessions are never evicted during the process
// lifetime; per-user state is small.
//
// TODO: add LRU eviction if the bot ever serves an unbounded user base.
type Registry struct {
	mu        sync.Mutex
	dict      Dictionary
	threshold int
	onLearned LearnedHook
	sessions  map[int64]*Trainer
}

// NewRegistry creates an empty session registry
func NewRegistry(dict Dictionary, learningThreshold int, onLearned LearnedHook) *Registry {
	return &Registry{
		dict:      dict,
		threshold: learningThreshold,
		onLearned: onLearned,
		sessions:  make(map[int64]*Trainer),
	}
}

// Get returns the trainer for the conversation, creating it if needed
func (r *Registry) Get(chatID int64) *Trainer {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.sessions[chatID]
	if !ok {
		t = NewTrainer(r.dict, chatID, r.threshold, r.onLearned)
		r.sessions[chatID] = t
	}
	return t
}

// Len reports the number of active sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
