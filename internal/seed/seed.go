// Package seed loads the inspection question set. Questions are static
// reference data: operators answer them, nobody edits them through the
// API, so they ship with the binary and can be overridden with a YAML
// file for site-specific checklists.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/gleber2006-sketch/machlog/internal/model"
	"github.com/gleber2006-sketch/machlog/internal/repository"
)

//go:embed questions.yaml
var defaultQuestions []byte

type questionFile struct {
	Questions []questionEntry `yaml:"questions"`
}

type questionEntry struct {
	Category string `yaml:"category"`
	Question string `yaml:"question"`
}

// Load parses a question set from YAML. An empty path selects the
// embedded default set.
func Load(path string) ([]model.ChecklistQuestion, error) {
	data := defaultQuestions
	if path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read question seed: %w", err)
		}
		data = fileData
	}

	var file questionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse question seed: %w", err)
	}

	questions := make([]model.ChecklistQuestion, 0, len(file.Questions))
	for i, entry := range file.Questions {
		if entry.Category == "" || entry.Question == "" {
			return nil, fmt.Errorf("question seed entry %d: category and question are required", i)
		}
		questions = append(questions, model.ChecklistQuestion{
			ID:       uuid.NewString(),
			Category: entry.Category,
			Question: entry.Question,
		})
	}
	return questions, nil
}

// Apply upserts the question set; re-running against an already-seeded
// database is a no-op.
func Apply(ctx context.Context, store *repository.Store, path string) error {
	questions, err := Load(path)
	if err != nil {
		return err
	}
	for _, question := range questions {
		if err := store.UpsertQuestion(ctx, question); err != nil {
			return fmt.Errorf("seed question %q: %w", question.Question, err)
		}
	}
	return nil
}
