package model

import "time"

// Student identifies the person taking an attempt.
type Student struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// AttemptState is the full mutable state of one exam attempt. One active
// instance per student, owned by the attempt service.
//
// Invariants: PaperQuestionIDs has no duplicates and every id resolves in
// the question index; Answers keys are a subset of PaperQuestionIDs.
type AttemptState struct {
	SessionID        string            `json:"session_id"`
	Student          Student           `json:"student"`
	PaperQuestionIDs []string          `json:"paper_question_ids"`
	Answers          map[string]string `json:"answers"`
	TimeLeftSeconds  int               `json:"time_left_seconds"`
	TabSwitchCount   int               `json:"tab_switch_count"`
	Finished         bool              `json:"finished"`
	CreatedAt        time.Time         `json:"created_at"`
}

// Clone returns a deep copy safe to hand outside the attempt lock.
func (s *AttemptState) Clone() *AttemptState {
	cp := *s
	cp.PaperQuestionIDs = append([]string(nil), s.PaperQuestionIDs...)
	cp.Answers = make(map[string]string, len(s.Answers))
	for k, v := range s.Answers {
		cp.Answers[k] = v
	}
	return &cp
}

// StartAttemptRequest is the payload for starting a new attempt.
type StartAttemptRequest struct {
	Name        string   `json:"name" binding:"required,min=1,max=64"`
	StudentID   string   `json:"student_id" binding:"required,min=1,max=64"`
	QuestionIDs []string `json:"question_ids,omitempty"`
}

// AnswerRequest is the payload for capturing one answer.
type AnswerRequest struct {
	QuestionID string `json:"question_id" binding:"required"`
	Answer     string `json:"answer"`
}

// ResumeRequest is the payload deciding a pending session restoration.
type ResumeRequest struct {
	Accept bool `json:"accept"`
}

// ResumeSummary is what the confirmation prompt surfaces before a saved
// session is applied.
type ResumeSummary struct {
	StudentName     string    `json:"student_name"`
	TimeLeftSeconds int       `json:"time_left_seconds"`
	SavedAt         time.Time `json:"saved_at"`
}
