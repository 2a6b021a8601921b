package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/quiz-service/internal/auth"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/scoring"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type ExportFormat string

const (
	ExportXLSX ExportFormat = "xlsx"
	ExportCSV  ExportFormat = "csv"
)

// ParseExportFormat defaults to xlsx when s is empty.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", ExportXLSX:
		return ExportXLSX, nil
	case ExportCSV:
		return ExportCSV, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

func (f ExportFormat) ContentType() string {
	if f == ExportCSV {
		return "text/csv"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

const (
	MaxImportRows    = 500
	resultsSheetName = "Responses"
)

var responseExportHeaders = []string{
	"Rank", "Name", "Email", "Score", "Total Marks", "Percentage", "Submitted At",
}

// ImportRowError points at the cell that made a row unusable. Row numbers
// count the header as row 1.
type ImportRowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

type ImportResult struct {
	TotalRows    int              `json:"total_rows"`
	SuccessCount int              `json:"success_count"`
	ErrorCount   int              `json:"error_count"`
	Errors       []ImportRowError `json:"errors"`
	Questions    []QuestionView   `json:"questions"`
}

type importExportService struct {
	repo      repositories.Repository
	validator *validator.Validator
	logger    *slog.Logger
	opLogger  *ServiceLogger
}

func NewImportExportService(deps Dependencies) ImportExportService {
	return &importExportService{
		repo:      deps.Repo,
		validator: deps.Validator,
		logger:    deps.Logger,
		opLogger:  NewServiceLogger(deps.Logger, LogConfig{Service: "quiz", Component: "import_export_service"}),
	}
}

// ===== EXPORT =====

// ExportResponses renders the quiz's responses in leaderboard order.
func (s *importExportService) ExportResponses(ctx context.Context, quizID string, format ExportFormat, actor auth.Identity) (data []byte, err error) {
	op := s.opLogger.WithOperation(ctx, "export_responses", actor.ID)
	defer func() { op.LogResult(quizID, "quiz", err) }()

	quiz, err := s.repo.Quiz().GetByID(ctx, nil, quizID)
	if err != nil {
		return nil, notFoundAs(err, ErrQuizNotFound, "get quiz")
	}
	if !quiz.IsOwnedBy(actor.ID) && !actor.HasRole(models.RoleAdmin) {
		return nil, NewPermissionError(actor.ID, quizID, "quiz", "export_responses", "not the quiz owner")
	}

	responses, err := s.repo.Response().Leaderboard(ctx, nil, quiz.ID, repositories.MaxExportRows)
	if err != nil {
		return nil, fmt.Errorf("failed to load responses: %w", err)
	}

	rows := make([][]interface{}, 0, len(responses))
	for i, r := range responses {
		name := ""
		if r.User.Name != nil {
			name = *r.User.Name
		}
		rows = append(rows, []interface{}{
			i + 1,
			name,
			r.User.Email,
			r.Score,
			r.TotalMarks,
			scoring.Percentage(r.Score, r.TotalMarks),
			r.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		})
	}

	switch format {
	case ExportCSV:
		return writeCSV(responseExportHeaders, rows)
	case ExportXLSX, "":
		return writeXLSX(resultsSheetName, responseExportHeaders, rows)
	default:
		return nil, ErrUnsupportedFormat
	}
}

func writeCSV(headers []string, rows [][]interface{}) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	record := make([]string, len(headers))
	for _, row := range rows {
		for i, v := range row {
			record[i] = fmt.Sprint(v)
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

func writeXLSX(sheetName string, headers []string, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return nil, fmt.Errorf("failed to write Excel header: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write Excel row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

// ===== IMPORT =====

// ImportQuestions appends every valid row of a CSV or xlsx sheet to the quiz.
// Invalid rows are reported and skipped; valid ones are inserted together.
//
// Columns: type, text, options (separated by "|"), correct_answer (JSON),
// marks, subject, difficulty, explanation, answer_link, tags (comma separated).
func (s *importExportService) ImportQuestions(ctx context.Context, quizID string, r io.Reader, fileName string, actor auth.Identity) (result *ImportResult, err error) {
	op := s.opLogger.WithOperation(ctx, "import_questions", actor.ID)
	defer func() { op.LogResult(quizID, "quiz", err) }()

	quiz, err := s.repo.Quiz().GetByID(ctx, nil, quizID)
	if err != nil {
		return nil, notFoundAs(err, ErrQuizNotFound, "get quiz")
	}
	if !quiz.IsOwnedBy(actor.ID) {
		return nil, NewPermissionError(actor.ID, quizID, "quiz", "import_questions", "not the quiz owner")
	}

	records, err := readSheet(r, fileName)
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, NewValidationError("file", "must have a header row and at least one data row", len(records))
	}
	if len(records)-1 > MaxImportRows {
		return nil, NewValidationError("file", fmt.Sprintf("must have at most %d data rows", MaxImportRows), len(records)-1)
	}

	header := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		header[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range []string{"type", "text", "correct_answer"} {
		if _, ok := header[col]; !ok {
			return nil, NewValidationError("headers", fmt.Sprintf("missing required column: %s", col), col)
		}
	}

	result = &ImportResult{
		TotalRows: len(records) - 1,
		Errors:    []ImportRowError{},
		Questions: []QuestionView{},
	}

	var questions []models.Question
	for i, record := range records[1:] {
		rowNum := i + 2
		if isBlankRow(record) {
			result.TotalRows--
			continue
		}
		q, rowErr := s.parseRow(record, header, rowNum)
		if rowErr != nil {
			result.Errors = append(result.Errors, *rowErr)
			result.ErrorCount++
			continue
		}
		q.QuizID = quiz.ID
		questions = append(questions, q)
	}

	if len(questions) > 0 {
		err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
			pos, err := s.repo.Question().NextPosition(ctx, tx, quiz.ID)
			if err != nil {
				return err
			}
			for i := range questions {
				questions[i].Position = pos + i
				if err := s.repo.Question().Create(ctx, tx, &questions[i]); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to save imported questions: %w", err)
		}
	}

	for i := range questions {
		result.Questions = append(result.Questions, NewQuestionView(&questions[i], true))
	}
	result.SuccessCount = len(questions)

	s.logger.Info("Question import completed",
		"quiz_id", quiz.ID,
		"total_rows", result.TotalRows,
		"success_count", result.SuccessCount,
		"error_count", result.ErrorCount)

	return result, nil
}

func readSheet(r io.Reader, fileName string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		reader := csv.NewReader(r)
		reader.TrimLeadingSpace = true
		reader.FieldsPerRecord = -1
		records, err := reader.ReadAll()
		if err != nil {
			return nil, NewValidationError("file", "unreadable CSV: "+err.Error(), fileName)
		}
		return records, nil
	case ".xlsx":
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, NewValidationError("file", "unreadable Excel file", fileName)
		}
		defer f.Close()

		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, NewValidationError("file", "Excel file has no sheets", fileName)
		}
		rows, err := f.GetRows(sheets[0])
		if err != nil {
			return nil, fmt.Errorf("failed to read Excel rows: %w", err)
		}
		return rows, nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

func (s *importExportService) parseRow(record []string, header map[string]int, rowNum int) (models.Question, *ImportRowError) {
	column := func(name string) string {
		if i, ok := header[name]; ok && i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}
	rowErr := func(col, msg, value string) *ImportRowError {
		return &ImportRowError{Row: rowNum, Column: col, Message: msg, Value: value}
	}

	in := QuestionInput{
		Text:          column("text"),
		Type:          models.QuestionType(strings.ToUpper(column("type"))),
		Options:       splitList(column("options"), "|"),
		CorrectAnswer: json.RawMessage(column("correct_answer")),
		Difficulty:    models.DifficultyLevel(strings.ToUpper(column("difficulty"))),
		Tags:          splitList(column("tags"), ","),
	}
	if v := column("marks"); v != "" {
		marks, err := strconv.Atoi(v)
		if err != nil {
			return models.Question{}, rowErr("marks", "must be a whole number", v)
		}
		in.Marks = &marks
	}
	if v := column("subject"); v != "" {
		in.Subject = &v
	}
	if v := column("explanation"); v != "" {
		in.Explanation = &v
	}
	if v := column("answer_link"); v != "" {
		in.AnswerLink = &v
	}
	if len(in.CorrectAnswer) > 0 && !json.Valid(in.CorrectAnswer) {
		return models.Question{}, rowErr("correct_answer", "must be valid JSON", column("correct_answer"))
	}

	if err := s.validator.ValidateStruct(&in); err != nil {
		return models.Question{}, rowErrorFrom(rowNum, err)
	}
	q := buildQuestion(&in, 0)
	if err := s.validator.Question().ValidateQuestion(&q); err != nil {
		return models.Question{}, rowErrorFrom(rowNum, err)
	}
	if err := canonicalizeAnswer(&q); err != nil {
		return models.Question{}, rowErrorFrom(rowNum, err)
	}
	return q, nil
}

// rowErrorFrom keeps the first field error of a validation failure.
func rowErrorFrom(rowNum int, err error) *ImportRowError {
	if ve, ok := err.(ValidationErrors); ok && len(ve) > 0 {
		value := ""
		if ve[0].Value != nil {
			value = fmt.Sprint(ve[0].Value)
		}
		return &ImportRowError{Row: rowNum, Column: ve[0].Field, Message: ve[0].Message, Value: value}
	}
	return &ImportRowError{Row: rowNum, Message: err.Error()}
}

func splitList(s, sep string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isBlankRow(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
