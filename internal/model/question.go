package model

// QuestionType enumerates the supported question kinds.
type QuestionType string

const (
	QuestionTypeSingle    QuestionType = "single"
	QuestionTypeMulti     QuestionType = "multi"
	QuestionTypeTrueFalse QuestionType = "true_false"
)

// Question is a single question-bank entry. Immutable once loaded.
// Options is empty for true/false questions; Answer keeps the raw stored
// form (letter codes, option text, or 对/错) and is normalized by the
// answer key resolver at grading time.
type Question struct {
	ID      string       `json:"id"`
	Type    QuestionType `json:"type"`
	Text    string       `json:"text"`
	Options []string     `json:"options,omitempty"`
	Answer  string       `json:"answer"`
}

// QuestionBankFile is the on-disk shape of the question bank: questions
// grouped by type.
type QuestionBankFile struct {
	Single    []Question `json:"single"`
	Multi     []Question `json:"multi"`
	TrueFalse []Question `json:"true_false"`
}
