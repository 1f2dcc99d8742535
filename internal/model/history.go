package model

// Snapshot is the minimal replayable form of an attempt: the paper's
// question ids plus the submitted answers.
type Snapshot struct {
	QuestionIDs []string          `json:"question_ids"`
	Answers     map[string]string `json:"answers"`
}

// HistoryRecord is one completed attempt in the local ledger. Immutable
// once appended.
type HistoryRecord struct {
	Date     string   `json:"date"`
	Score    float64  `json:"score"`
	Duration string   `json:"duration"`
	Stats    string   `json:"stats"`
	Snapshot Snapshot `json:"snapshot"`
}
