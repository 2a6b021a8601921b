package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SubmittedAnswer is one (question, answer) pair as sent by the candidate.
// Answer is kept raw since its shape depends on the question type.
type SubmittedAnswer struct {
	QuestionID string          `json:"question_id"`
	Answer     json.RawMessage `json:"answer"`
}

// Response is a graded submission. One per (quiz, user).
type Response struct {
	ID         string         `json:"id" gorm:"primaryKey;size:36"`
	QuizID     string         `json:"quiz_id" gorm:"not null;size:36;uniqueIndex:idx_responses_quiz_user"`
	UserID     string         `json:"user_id" gorm:"not null;size:36;uniqueIndex:idx_responses_quiz_user;index"`
	Score      float64        `json:"score" gorm:"not null"`
	TotalMarks int            `json:"total_marks" gorm:"not null"`
	Answers    datatypes.JSON `json:"answers"`
	// Graded freezes the questions as they were graded, so a later edit to
	// the quiz does not change how this response is explained.
	Graded    datatypes.JSONSlice[GradedQuestion] `json:"-" gorm:"default:'[]'"`
	CreatedAt time.Time                           `json:"created_at" gorm:"index"`

	// Relations
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Quiz Quiz `json:"-" gorm:"foreignKey:QuizID"`
}

func (Response) TableName() string {
	return "responses"
}

func (r *Response) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// DecodeAnswers returns the stored answers keyed by question id.
func (r *Response) DecodeAnswers() (map[string]json.RawMessage, error) {
	var answers []SubmittedAnswer
	if IsNullJSON(r.Answers) {
		return map[string]json.RawMessage{}, nil
	}
	if err := json.Unmarshal(r.Answers, &answers); err != nil {
		return nil, err
	}
	return AnswersByQuestion(answers), nil
}

// AnswersByQuestion indexes answers by question id. A later duplicate wins.
func AnswersByQuestion(answers []SubmittedAnswer) map[string]json.RawMessage {
	byID := make(map[string]json.RawMessage, len(answers))
	for _, a := range answers {
		byID[a.QuestionID] = a.Answer
	}
	return byID
}

// GradedQuestion is the part of a question that grading and the response
// detail read.
type GradedQuestion struct {
	ID            string       `json:"id"`
	Type          QuestionType `json:"type"`
	Text          string       `json:"text"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer AnswerJSON   `json:"correct_answer"`
	Marks         int          `json:"marks"`
	Explanation   *string      `json:"explanation,omitempty"`
}

// SnapshotQuestions copies the graded fields of questions, in order.
func SnapshotQuestions(questions []Question) []GradedQuestion {
	out := make([]GradedQuestion, 0, len(questions))
	for _, q := range questions {
		out = append(out, GradedQuestion{
			ID:            q.ID,
			Type:          q.Type,
			Text:          q.Text,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Marks:         q.EffectiveMarks(),
			Explanation:   q.Explanation,
		})
	}
	return out
}

// GradedQuestions rebuilds the questions this response was graded against.
// ok is false for responses stored without a snapshot.
func (r *Response) GradedQuestions() (questions []Question, ok bool) {
	if len(r.Graded) == 0 {
		return nil, false
	}
	questions = make([]Question, 0, len(r.Graded))
	for _, g := range r.Graded {
		questions = append(questions, Question{
			ID:            g.ID,
			QuizID:        r.QuizID,
			Type:          g.Type,
			Text:          g.Text,
			Options:       g.Options,
			CorrectAnswer: g.CorrectAnswer,
			Marks:         g.Marks,
			Explanation:   g.Explanation,
		})
	}
	return questions, true
}
