package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents different types of quiz domain events
type EventType string

const (
	EventQuizCreated       EventType = "quiz.created"
	EventQuizDeleted       EventType = "quiz.deleted"
	EventResponseSubmitted EventType = "response.submitted"
	EventClassJoined       EventType = "class.joined"
)

const (
	eventSource  = "quiz-service"
	eventVersion = "1.0"
)

// Event is the envelope for every published event
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewEvent wraps a payload in an envelope with a fresh id.
func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

type QuizCreatedEvent struct {
	QuizID         string  `json:"quiz_id"`
	Title          string  `json:"title"`
	TeacherID      string  `json:"teacher_id"`
	ClassID        *string `json:"class_id,omitempty"`
	QuestionsCount int     `json:"questions_count"`
	TotalMarks     int     `json:"total_marks"`
	IsPublic       bool    `json:"is_public"`
}

type QuizDeletedEvent struct {
	QuizID       string `json:"quiz_id"`
	TeacherID    string `json:"teacher_id"`
	BlobsDeleted int    `json:"blobs_deleted"`
	BlobsFailed  int    `json:"blobs_failed"`
}

type ResponseSubmittedEvent struct {
	ResponseID  string    `json:"response_id"`
	QuizID      string    `json:"quiz_id"`
	QuizTitle   string    `json:"quiz_title"`
	TeacherID   string    `json:"teacher_id"`
	UserID      string    `json:"user_id"`
	Score       float64   `json:"score"`
	TotalMarks  int       `json:"total_marks"`
	Percentage  int       `json:"percentage"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type ClassJoinedEvent struct {
	ClassID   string `json:"class_id"`
	TeacherID string `json:"teacher_id"`
	StudentID string `json:"student_id"`
}
