package topic

import (
	"errors"
	"strings"
	"time"

	"github.com/examcraft/backend/internal/id"
)

var ErrEmptyName = errors.New("topic name cannot be empty")

// Topic groups a user's flashcards for study sessions.
type Topic struct {
	ID        string
	UserID    string
	Name      string
	CreatedAt time.Time
}

func New(userID, name string) (*Topic, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	return &Topic{
		ID:        id.GenerateID(),
		UserID:    userID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (t *Topic) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	t.Name = name
	return nil
}

// Stats counts a topic's cards per mastery status.
type Stats struct {
	TopicID     string
	Total       int
	Learning    int
	UnderReview int
	Mastered    int
}

// MasteredPercent is the share of mastered cards, 0-100.
func (s Stats) MasteredPercent() int {
	if s.Total == 0 {
		return 0
	}
	return s.Mastered * 100 / s.Total
}
