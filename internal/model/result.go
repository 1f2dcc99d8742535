package model

import (
	"encoding/json"
	"time"
)

// TypeBreakdown summarizes one question type inside a submission payload:
// correct / answered / total counts.
type TypeBreakdown struct {
	Correct  int `json:"c"`
	Answered int `json:"a"`
	Total    int `json:"t"`
}

// DetailedStats is the per-attempt statistics object stored alongside a
// result row.
type DetailedStats struct {
	Breakdown map[QuestionType]TypeBreakdown `json:"breakdown"`
	WrongIDs  []string                       `json:"wrongIds"`
	PaperIDs  []string                       `json:"paperIds"`
}

// ExamData is the submission payload sent to the result store.
type ExamData struct {
	StudentName  string        `json:"studentName" binding:"required"`
	StudentID    string        `json:"studentId" binding:"required"`
	Score        float64       `json:"score"`
	Duration     string        `json:"duration"`
	CorrectCount int           `json:"correctCount"`
	SubmitTime   string        `json:"submitTime"`
	ExamVersion  string        `json:"examVersion"`
	SwitchCount  int           `json:"switchCount"`
	Stats        DetailedStats `json:"stats"`
}

// ResultRow is a stored result record. Append-only, identified by ID.
type ResultRow struct {
	ID           int64           `json:"id"`
	StudentName  string          `json:"student_name"`
	StudentID    string          `json:"student_id"`
	Score        float64         `json:"score"`
	Duration     string          `json:"duration"`
	CorrectCount int             `json:"correct_count"`
	SubmitTime   string          `json:"submit_time"`
	ExamVersion  string          `json:"exam_version"`
	SwitchCount  int             `json:"switch_count"`
	Stats        json.RawMessage `json:"stats"`
	CreatedAt    time.Time       `json:"created_at"`
}
