package exam

import (
	"fmt"

	"github.com/itskys/jszs/internal/model"
)

// TypeStat aggregates grading counts for one question type.
type TypeStat struct {
	Answered int `json:"answered"`
	Correct  int `json:"correct"`
	Total    int `json:"total"`
}

// Result is the outcome of grading one paper/answers pair.
type Result struct {
	CorrectCount int                             `json:"correct_count"`
	TypeStats    map[model.QuestionType]TypeStat `json:"type_stats"`
	WrongIDs     []string                        `json:"wrong_ids"`
}

// Grade compares submitted answers against canonical keys. A question with
// no submitted answer grades against the empty string. Free of side
// effects and idempotent: live scoring and historical replay call it on
// the same inputs and get the same output.
func Grade(paper []*model.Question, answers map[string]string) Result {
	res := Result{
		TypeStats: map[model.QuestionType]TypeStat{
			model.QuestionTypeSingle:    {},
			model.QuestionTypeMulti:     {},
			model.QuestionTypeTrueFalse: {},
		},
		WrongIDs: []string{},
	}

	for _, q := range paper {
		submitted := answers[q.ID]
		correct := submitted == Resolve(q)

		stat := res.TypeStats[q.Type]
		stat.Total++
		if submitted != "" {
			stat.Answered++
		}
		if correct {
			stat.Correct++
			res.CorrectCount++
		} else {
			res.WrongIDs = append(res.WrongIDs, q.ID)
		}
		res.TypeStats[q.Type] = stat
	}

	return res
}

// ScorePolicy turns grading counts into a numeric score. Weights are a
// configuration input; the engine itself never hardcodes them.
type ScorePolicy struct {
	Weights map[model.QuestionType]float64
}

// NewScorePolicy builds a policy from per-type weights.
func NewScorePolicy(single, multi, trueFalse float64) ScorePolicy {
	return ScorePolicy{Weights: map[model.QuestionType]float64{
		model.QuestionTypeSingle:    single,
		model.QuestionTypeMulti:     multi,
		model.QuestionTypeTrueFalse: trueFalse,
	}}
}

// Score computes the weighted score for a grading result.
func (p ScorePolicy) Score(r Result) float64 {
	var score float64
	for typ, stat := range r.TypeStats {
		score += p.Weights[typ] * float64(stat.Correct)
	}
	return score
}

// Breakdown converts a grading result into the submission stats shape.
func (r Result) Breakdown() map[model.QuestionType]model.TypeBreakdown {
	out := make(map[model.QuestionType]model.TypeBreakdown, len(r.TypeStats))
	for typ, stat := range r.TypeStats {
		out[typ] = model.TypeBreakdown{
			Correct:  stat.Correct,
			Answered: stat.Answered,
			Total:    stat.Total,
		}
	}
	return out
}

// StatsDisplay renders the per-type summary line stored in history
// records, e.g. "单选 8/10 | 多选 3/5 | 判断 4/5".
func (r Result) StatsDisplay() string {
	s := r.TypeStats[model.QuestionTypeSingle]
	m := r.TypeStats[model.QuestionTypeMulti]
	tf := r.TypeStats[model.QuestionTypeTrueFalse]
	return fmt.Sprintf("单选 %d/%d | 多选 %d/%d | 判断 %d/%d",
		s.Correct, s.Total, m.Correct, m.Total, tf.Correct, tf.Total)
}

// FormatDuration renders elapsed seconds as a display string ("12分5秒").
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d分%d秒", seconds/60, seconds%60)
}
