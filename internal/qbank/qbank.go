// Package qbank loads the question bank and builds the process-wide
// read-only question index.
package qbank

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/itskys/jszs/internal/model"
)

// Index is the id → question lookup built once at startup. Read-only after
// Load returns; safe for concurrent use without locking.
type Index struct {
	byID  map[string]*model.Question
	order []string // full-paper order: single, multi, true_false
}

// Load reads the question bank JSON file and builds the index.
// Duplicate ids across the bank are rejected.
func Load(path string) (*Index, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}
	return Parse(raw)
}

// Parse builds an index from raw question bank JSON.
func Parse(raw []byte) (*Index, error) {
	var file model.QuestionBankFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse question bank: %w", err)
	}

	idx := &Index{byID: make(map[string]*model.Question)}

	add := func(qs []model.Question, typ model.QuestionType) error {
		for i := range qs {
			q := qs[i]
			if q.ID == "" {
				return fmt.Errorf("question of type %s missing id", typ)
			}
			if _, exists := idx.byID[q.ID]; exists {
				return fmt.Errorf("duplicate question id %q", q.ID)
			}
			if q.Type == "" {
				q.Type = typ
			}
			idx.byID[q.ID] = &q
			idx.order = append(idx.order, q.ID)
		}
		return nil
	}

	if err := add(file.Single, model.QuestionTypeSingle); err != nil {
		return nil, err
	}
	if err := add(file.Multi, model.QuestionTypeMulti); err != nil {
		return nil, err
	}
	if err := add(file.TrueFalse, model.QuestionTypeTrueFalse); err != nil {
		return nil, err
	}

	return idx, nil
}

// Get returns the question for an id, or nil if unknown.
func (i *Index) Get(id string) *model.Question {
	return i.byID[id]
}

// Len returns the number of questions in the bank.
func (i *Index) Len() int {
	return len(i.byID)
}

// FullPaper returns the ids of the complete bank in section order
// (single, then multi, then true/false).
func (i *Index) FullPaper() []string {
	return append([]string(nil), i.order...)
}

// ResolvePaper maps persisted question ids back onto the current bank.
// Ids that no longer resolve are silently dropped — after a question-bank
// change a restored paper may shrink; that is a documented edge case, not
// an error.
func (i *Index) ResolvePaper(ids []string) []*model.Question {
	paper := make([]*model.Question, 0, len(ids))
	for _, id := range ids {
		if q := i.byID[id]; q != nil {
			paper = append(paper, q)
		}
	}
	return paper
}
