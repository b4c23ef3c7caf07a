package models

const percentMultiplier = 100

// Statistics is a derived snapshot of a user's progress
type Statistics struct {
	LearnedCount int `json:"learned_count"`
	TotalCount   int `json:"total_count"`
	Percent      int `json:"percent"`
}

// NewStatistics computes the percentage with integer truncation,
// reporting 0 for an empty catalog.
func NewStatistics(learned, total int) Statistics {
	percent := 0
	if total > 0 {
		percent = learned * percentMultiplier / total
	}
	return Statistics{
		LearnedCount: learned,
		TotalCount:   total,
		Percent:      percent,
	}
}
