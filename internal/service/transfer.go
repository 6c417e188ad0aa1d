// internal/service/transfer.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/examcraft/backend/internal/domain/flashcard"
	"github.com/examcraft/backend/internal/domain/topic"
	"github.com/examcraft/backend/internal/store"
)

// ExportVersion is written into every export document.
const ExportVersion = "1.0"

// Format is an export/import encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" and "yml"; empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", flashcard.ErrInvalidArgument, s)
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

type ExportCard struct {
	Front              string `json:"front" yaml:"front"`
	Back               string `json:"back" yaml:"back"`
	MasteryStatus      string `json:"mastery_status,omitempty" yaml:"mastery_status,omitempty"`
	ConsecutiveCorrect int    `json:"consecutive_correct,omitempty" yaml:"consecutive_correct,omitempty"`
}

type ExportTopic struct {
	Name       string       `json:"name" yaml:"name"`
	Flashcards []ExportCard `json:"flashcards" yaml:"flashcards"`
}

type ExportData struct {
	Version    string        `json:"version" yaml:"version"`
	ExportedAt string        `json:"exported_at" yaml:"exported_at"`
	Topics     []ExportTopic `json:"topics" yaml:"topics"`
}

type ImportResult struct {
	TopicsCreated     int `json:"topics_created"`
	FlashcardsCreated int `json:"flashcards_created"`
}

// TransferStore is the persistence export and import need.
type TransferStore interface {
	SaveImport(ctx context.Context, batches []store.ImportBatch) error
	ListTopics(ctx context.Context, userID string) ([]*topic.Topic, error)
	ListFlashcards(ctx context.Context, userID, topicID string) ([]flashcard.Flashcard, error)
}

type TransferService struct {
	store TransferStore
}

func NewTransferService(s TransferStore) *TransferService {
	return &TransferService{store: s}
}

// Export collects every topic and card a user owns.
func (ts *TransferService) Export(ctx context.Context, userID string) (*ExportData, error) {
	topics, err := ts.store.ListTopics(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}

	data := &ExportData{
		Version:    ExportVersion,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Topics:     make([]ExportTopic, 0, len(topics)),
	}

	for _, t := range topics {
		cards, err := ts.store.ListFlashcards(ctx, userID, t.ID)
		if err != nil {
			return nil, fmt.Errorf("list flashcards of topic %s: %w", t.ID, err)
		}

		et := ExportTopic{Name: t.Name, Flashcards: make([]ExportCard, 0, len(cards))}
		for _, c := range cards {
			et.Flashcards = append(et.Flashcards, ExportCard{
				Front:              c.Front,
				Back:               c.Back,
				MasteryStatus:      string(c.MasteryStatus),
				ConsecutiveCorrect: c.ConsecutiveCorrect,
			})
		}
		data.Topics = append(data.Topics, et)
	}
	return data, nil
}

// Import creates new topics and cards from an export document. The whole
// document is validated first and then written in a single transaction, so a
// failed import leaves nothing behind.
func (ts *TransferService) Import(ctx context.Context, userID string, data *ExportData) (*ImportResult, error) {
	var (
		batches []store.ImportBatch
		result  ImportResult
	)
	for i, et := range data.Topics {
		t, err := topic.New(userID, et.Name)
		if err != nil {
			return nil, fmt.Errorf("%w: topic %d: %v", flashcard.ErrInvalidArgument, i, err)
		}

		batch := store.ImportBatch{Topic: t}
		for j, ec := range et.Flashcards {
			card, err := importCard(userID, t.ID, ec)
			if err != nil {
				return nil, fmt.Errorf("topic %q card %d: %w", et.Name, j, err)
			}
			batch.Cards = append(batch.Cards, card)
		}
		batches = append(batches, batch)
		result.TopicsCreated++
		result.FlashcardsCreated += len(batch.Cards)
	}

	if err := ts.store.SaveImport(ctx, batches); err != nil {
		return nil, fmt.Errorf("save import: %w", err)
	}
	return &result, nil
}

func importCard(userID, topicID string, ec ExportCard) (*flashcard.Flashcard, error) {
	card, err := flashcard.New(userID, topicID, ec.Front, ec.Back)
	if err != nil {
		return nil, err
	}
	card.Source = flashcard.SourceImported

	if ec.MasteryStatus != "" {
		status, err := flashcard.ParseMasteryStatus(ec.MasteryStatus)
		if err != nil {
			return nil, err
		}
		card.MasteryStatus = status
		card.ConsecutiveCorrect = ec.ConsecutiveCorrect
	}
	if err := card.Validate(); err != nil {
		return nil, err
	}
	return card, nil
}

// Encode writes data in the given format.
func Encode(w io.Writer, data *ExportData, format Format) error {
	if format == FormatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// Decode reads an export document in the given format.
func Decode(r io.Reader, format Format) (*ExportData, error) {
	var data ExportData
	var err error
	if format == FormatYAML {
		err = yaml.NewDecoder(r).Decode(&data)
	} else {
		err = json.NewDecoder(r).Decode(&data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", flashcard.ErrInvalidArgument, format, err)
	}
	return &data, nil
}
