package qbank

import (
	"reflect"
	"testing"

	"github.com/itskys/jszs/internal/model"
)

var bankJSON = []byte(`{
	"single": [
		{"id": "s1", "text": "q1", "options": ["a", "b"], "answer": "A"},
		{"id": "s2", "text": "q2", "options": ["c", "d"], "answer": "B"}
	],
	"multi": [
		{"id": "m1", "text": "q3", "options": ["e", "f", "g"], "answer": "AB"}
	],
	"true_false": [
		{"id": "t1", "text": "q4", "answer": "对"}
	]
}`)

func TestParse(t *testing.T) {
	idx, err := Parse(bankJSON)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if idx.Len() != 4 {
		t.Errorf("Len = %d, want 4", idx.Len())
	}

	q := idx.Get("m1")
	if q == nil {
		t.Fatal("Get(m1) = nil")
	}
	if q.Type != model.QuestionTypeMulti {
		t.Errorf("m1 type = %s, want multi (defaulted from section)", q.Type)
	}

	if idx.Get("nope") != nil {
		t.Error("Get of unknown id must return nil")
	}
}

func TestParseRejectsDuplicateID(t *testing.T) {
	dup := []byte(`{
		"single": [{"id": "x", "text": "a", "answer": "A"}],
		"multi":  [{"id": "x", "text": "b", "answer": "B"}]
	}`)
	if _, err := Parse(dup); err == nil {
		t.Fatal("duplicate id accepted")
	}
}

func TestParseRejectsMissingID(t *testing.T) {
	missing := []byte(`{"single": [{"text": "a", "answer": "A"}]}`)
	if _, err := Parse(missing); err == nil {
		t.Fatal("missing id accepted")
	}
}

func TestFullPaperOrder(t *testing.T) {
	idx, err := Parse(bankJSON)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"s1", "s2", "m1", "t1"}
	if got := idx.FullPaper(); !reflect.DeepEqual(got, want) {
		t.Errorf("FullPaper = %v, want %v", got, want)
	}

	// Mutating the returned slice must not poison the index.
	paper := idx.FullPaper()
	paper[0] = "corrupted"
	if got := idx.FullPaper(); !reflect.DeepEqual(got, want) {
		t.Errorf("FullPaper shares backing storage with callers")
	}
}

func TestResolvePaperDropsUnknownIDs(t *testing.T) {
	idx, err := Parse(bankJSON)
	if err != nil {
		t.Fatal(err)
	}

	paper := idx.ResolvePaper([]string{"s2", "ghost", "t1"})
	if len(paper) != 2 {
		t.Fatalf("ResolvePaper kept %d questions, want 2", len(paper))
	}
	if paper[0].ID != "s2" || paper[1].ID != "t1" {
		t.Errorf("ResolvePaper order mismatch: %s, %s", paper[0].ID, paper[1].ID)
	}
}
