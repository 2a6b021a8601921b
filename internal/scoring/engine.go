// Package scoring grades quiz submissions. Every function here is pure and
// safe for concurrent use.
package scoring

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/quiz-service/internal/models"
)

// Result is the outcome of grading a single question.
type Result struct {
	QuestionID    string  `json:"question_id"`
	Answered      bool    `json:"answered"`
	IsCorrect     bool    `json:"is_correct"`
	ObtainedMarks float64 `json:"obtained_marks"`
	MaxMarks      int     `json:"max_marks"`
}

// GradeQuestion grades one answer against one question. A missing, malformed
// or mismatched answer earns zero; it never fails.
func GradeQuestion(q *models.Question, answer json.RawMessage) Result {
	res := Result{
		QuestionID: q.ID,
		MaxMarks:   q.EffectiveMarks(),
		Answered:   !models.IsNullJSON(answer),
	}
	if !res.Answered {
		return res
	}

	key, err := q.AnswerKey()
	if err != nil {
		return res
	}

	marks := float64(res.MaxMarks)
	switch k := key.(type) {
	case models.SingleSelectKey:
		if idx, ok := models.DecodeIndex(answer); ok && idx == k.Index {
			res.ObtainedMarks = marks
		}
	case models.MultipleSelectKey:
		res.ObtainedMarks = gradeMultipleSelect(k, answer, marks)
	case models.FillInBlankKey:
		if matchesAnyAccepted(k, answer) {
			res.ObtainedMarks = marks
		}
	case models.IntegerKey:
		if v, ok := coerceNumber(answer); ok && v == k.Value {
			res.ObtainedMarks = marks
		}
	}

	res.IsCorrect = res.ObtainedMarks == marks
	return res
}

// Explain grades every question of a quiz against the given answers, in
// question order.
func Explain(questions []models.Question, answers map[string]json.RawMessage) []Result {
	results := make([]Result, 0, len(questions))
	for i := range questions {
		results = append(results, GradeQuestion(&questions[i], answers[questions[i].ID]))
	}
	return results
}

// Score returns the awarded score and the total possible marks. totalMarks
// counts every question, answered or not. Answers for unknown questions are
// ignored.
func Score(questions []models.Question, answers []models.SubmittedAnswer) (float64, int) {
	return Sum(Explain(questions, models.AnswersByQuestion(answers)))
}

// Sum totals obtained and maximum marks over a set of results.
func Sum(results []Result) (score float64, totalMarks int) {
	for _, r := range results {
		score += r.ObtainedMarks
		totalMarks += r.MaxMarks
	}
	return score, totalMarks
}

// Percentage rounds half up. A zero total yields 0.
func Percentage(score float64, totalMarks int) int {
	if totalMarks <= 0 {
		return 0
	}
	return int(math.Floor(score/float64(totalMarks)*100 + 0.5))
}

// gradeMultipleSelect awards marks in proportion to the correct picks.
// Wrong picks and members that are not indices are ignored.
func gradeMultipleSelect(k models.MultipleSelectKey, answer json.RawMessage, marks float64) float64 {
	if len(k.Indices) == 0 {
		return 0
	}
	picked, ok := models.DecodeSelections(answer)
	if !ok {
		return 0
	}

	hits := 0
	for _, idx := range picked {
		if k.Contains(idx) {
			hits++
		}
	}
	return marks * float64(hits) / float64(len(k.Indices))
}

func matchesAnyAccepted(k models.FillInBlankKey, answer json.RawMessage) bool {
	var given string
	if err := json.Unmarshal(answer, &given); err != nil {
		return false
	}
	given = strings.TrimSpace(given)
	for _, accepted := range k.Accepted {
		if strings.EqualFold(given, strings.TrimSpace(accepted)) {
			return true
		}
	}
	return false
}

// coerceNumber accepts a JSON number or a string holding one. Blank strings
// and every other JSON type are rejected.
func coerceNumber(answer json.RawMessage) (float64, bool) {
	if v, ok := models.DecodeNumber(answer); ok {
		return v, true
	}

	var s string
	if err := json.Unmarshal(answer, &s); err != nil {
		return 0, false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}
