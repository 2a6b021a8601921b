package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func TestQuizRepository_CreateComputesTotals(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	teacher := testutil.CreateUser(t, db, "teacher@example.com", models.RoleTeacher)

	quiz := &models.Quiz{
		Title:       "Algebra",
		Description: "basics",
		Duration:    20,
		TeacherID:   teacher.ID,
		Questions: []models.Question{
			testutil.SingleSelect("q2", 1, 3, 1),
			testutil.Integer("q1", 4, 0, 0),
		},
	}
	require.NoError(t, repo.Quiz().Create(ctx, nil, quiz))
	assert.NotEmpty(t, quiz.ID)
	assert.Equal(t, 4, quiz.TotalMarks)

	loaded, err := repo.Quiz().GetByIDWithDetails(ctx, nil, quiz.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Questions, 2)
	assert.Equal(t, "q1", loaded.Questions[0].Text)
	assert.Equal(t, 4, loaded.TotalMarks)
	assert.Equal(t, 2, loaded.QuestionsCount)
}

func TestQuestionRepository_CorrectAnswerRoundTrip(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	teacher := testutil.CreateUser(t, db, "teacher@example.com", models.RoleTeacher)

	quiz := testutil.CreateQuiz(t, db, teacher.ID,
		testutil.SingleSelect("capital", 2, 1, 0),
		testutil.MultipleSelect("primes", []int{0, 2}, 2, 1),
		testutil.FillInBlank("planet", []string{"Jupiter"}, 1, 2),
		testutil.Integer("answer", 42, 1, 3),
		testutil.Integer("half", -3.5, 1, 4),
	)

	loaded, err := repo.Quiz().GetByIDWithDetails(ctx, nil, quiz.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Questions, 5)

	want := []string{`2`, `[0,2]`, `["Jupiter"]`, `42`, `-3.5`}
	for i, q := range loaded.Questions {
		assert.JSONEq(t, want[i], string(q.CorrectAnswer), q.Text)
		_, err := q.AnswerKey()
		assert.NoError(t, err, q.Text)
	}

	single, err := repo.Question().GetByID(ctx, nil, loaded.Questions[0].ID)
	require.NoError(t, err)
	key, err := single.AnswerKey()
	require.NoError(t, err)
	assert.Equal(t, models.SingleSelectKey{Index: 2}, key)
}

func TestQuizRepository_GetByIDNotFound(t *testing.T) {
	repo := NewRepository(testutil.NewTestDB(t))

	_, err := repo.Quiz().GetByID(context.Background(), nil, "missing")
	assert.True(t, repositories.IsNotFoundError(err))
}

func TestQuizRepository_ListFilters(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	teacher := testutil.CreateUser(t, db, "t@example.com", models.RoleTeacher)
	other := testutil.CreateUser(t, db, "o@example.com", models.RoleTeacher)

	testutil.CreateQuiz(t, db, teacher.ID)
	private := testutil.CreateQuiz(t, db, teacher.ID)
	require.NoError(t, repo.Quiz().Update(ctx, nil, private.ID, map[string]interface{}{"is_public": false}))
	testutil.CreateQuiz(t, db, other.ID)

	all, total, err := repo.Quiz().List(ctx, nil, repositories.QuizFilters{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 3)

	mine, total, err := repo.Quiz().List(ctx, nil, repositories.QuizFilters{TeacherID: &teacher.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, mine, 2)

	public, total, err := repo.Quiz().List(ctx, nil, repositories.QuizFilters{PublicOnly: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, q := range public {
		assert.True(t, q.IsPublic)
	}
}

func TestQuizRepository_DeleteCascades(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	teacher := testutil.CreateUser(t, db, "t@example.com", models.RoleTeacher)
	student := testutil.CreateUser(t, db, "s@example.com", models.RoleStudent)
	quiz := testutil.CreateQuiz(t, db, teacher.ID, testutil.SingleSelect("q", 0, 1, 0))

	require.NoError(t, repo.Media().CreateQuizImage(ctx, nil, &models.QuizImage{
		QuizID:       quiz.ID,
		StoredObject: models.StoredObject{URL: "u1", Key: "quiz-images/a.png"},
	}))
	require.NoError(t, repo.Media().CreateQuestionImage(ctx, nil, &models.QuestionImage{
		QuestionID:   quiz.Questions[0].ID,
		StoredObject: models.StoredObject{URL: "u2", Key: "question-images/b.png"},
	}))
	require.NoError(t, repo.Response().Create(ctx, nil, &models.Response{
		QuizID: quiz.ID, UserID: student.ID, Score: 1, TotalMarks: 1, Answers: datatypes.JSON("[]"),
	}))

	keys, err := repo.Media().QuizBlobKeys(ctx, nil, quiz.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"quiz-images/a.png", "question-images/b.png"}, keys)

	require.NoError(t, repo.Quiz().Delete(ctx, nil, quiz.ID))

	for _, model := range []interface{}{&models.Quiz{}, &models.Question{}, &models.QuizImage{}, &models.QuestionImage{}, &models.Response{}} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Zero(t, count, "%T rows left", model)
	}

	assert.True(t, repositories.IsNotFoundError(repo.Quiz().Delete(ctx, nil, quiz.ID)))
}

func TestQuizRepository_IncrementAttemptCount(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	teacher := testutil.CreateUser(t, db, "t@example.com", models.RoleTeacher)
	quiz := testutil.CreateQuiz(t, db, teacher.ID)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Quiz().IncrementAttemptCount(ctx, nil, quiz.ID))
	}

	loaded, err := repo.Quiz().GetByID(ctx, nil, quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.AttemptCount)

	assert.True(t, repositories.IsNotFoundError(repo.Quiz().IncrementAttemptCount(ctx, nil, "missing")))
}

func TestResponseRepository_UniquePerQuizAndUser(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	teacher := testutil.CreateUser(t, db, "t@example.com", models.RoleTeacher)
	student := testutil.CreateUser(t, db, "s@example.com", models.RoleStudent)
	quiz := testutil.CreateQuiz(t, db, teacher.ID)

	first := &models.Response{QuizID: quiz.ID, UserID: student.ID, Answers: datatypes.JSON("[]")}
	require.NoError(t, repo.Response().Create(ctx, nil, first))

	second := &models.Response{QuizID: quiz.ID, UserID: student.ID, Answers: datatypes.JSON("[]")}
	err := repo.Response().Create(ctx, nil, second)
	require.Error(t, err)
	assert.True(t, repositories.IsDuplicateKeyError(err))

	exists, err := repo.Response().ExistsForUser(ctx, nil, quiz.ID, student.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestResponseRepository_ListByUser(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	teacher := testutil.CreateUser(t, db, "t@example.com", models.RoleTeacher)
	student := testutil.CreateUser(t, db, "s@example.com", models.RoleStudent)
	older := testutil.CreateQuiz(t, db, teacher.ID, testutil.Integer("q", 1, 1, 0))
	newer := testutil.CreateQuiz(t, db, teacher.ID, testutil.Integer("q", 1, 1, 0))

	now := time.Now()
	require.NoError(t, repo.Response().Create(ctx, nil, &models.Response{QuizID: older.ID, UserID: student.ID, Score: 1, TotalMarks: 1, CreatedAt: now.Add(-time.Hour)}))
	require.NoError(t, repo.Response().Create(ctx, nil, &models.Response{QuizID: newer.ID, UserID: student.ID, TotalMarks: 1, CreatedAt: now}))
	require.NoError(t, repo.Response().Create(ctx, nil, &models.Response{QuizID: older.ID, UserID: teacher.ID, TotalMarks: 1}))

	responses, err := repo.Response().ListByUser(ctx, nil, student.ID)
	require.NoError(t, err)
	require.Len(t, responses, 2)
	assert.Equal(t, newer.ID, responses[0].QuizID)
	assert.Equal(t, older.ID, responses[1].QuizID)
	assert.Equal(t, "Quiz", responses[0].Quiz.Title)
}

func TestResponseRepository_LeaderboardOrdering(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	teacher := testutil.CreateUser(t, db, "t@example.com", models.RoleTeacher)
	quiz := testutil.CreateQuiz(t, db, teacher.ID)

	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	entries := []struct {
		email string
		score float64
		at    time.Duration
	}{
		{"late@example.com", 5, 2 * time.Minute},
		{"early@example.com", 5, time.Minute},
		{"top@example.com", 9, 3 * time.Minute},
		{"low@example.com", 1, 0},
	}
	for _, e := range entries {
		u := testutil.CreateUser(t, db, e.email, models.RoleStudent)
		require.NoError(t, repo.Response().Create(ctx, nil, &models.Response{
			QuizID: quiz.ID, UserID: u.ID, Score: e.score, CreatedAt: base.Add(e.at), Answers: datatypes.JSON("[]"),
		}))
	}

	board, err := repo.Response().Leaderboard(ctx, nil, quiz.ID, 3)
	require.NoError(t, err)
	require.Len(t, board, 3)
	assert.Equal(t, "top@example.com", board[0].User.Email)
	assert.Equal(t, "early@example.com", board[1].User.Email)
	assert.Equal(t, "late@example.com", board[2].User.Email)
}

func TestResponseRepository_Stats(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	teacher := testutil.CreateUser(t, db, "t@example.com", models.RoleTeacher)
	student := testutil.CreateUser(t, db, "s@example.com", models.RoleStudent)
	q1 := testutil.CreateQuiz(t, db, teacher.ID)
	q2 := testutil.CreateQuiz(t, db, teacher.ID)

	require.NoError(t, repo.Response().Create(ctx, nil, &models.Response{QuizID: q1.ID, UserID: student.ID, Score: 2, Answers: datatypes.JSON("[]")}))
	require.NoError(t, repo.Response().Create(ctx, nil, &models.Response{QuizID: q2.ID, UserID: student.ID, Score: 4, Answers: datatypes.JSON("[]")}))

	ts, err := repo.Response().TeacherStats(ctx, nil, teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), ts.TotalAttempts)
	assert.Equal(t, int64(1), ts.DistinctStudents)

	us, err := repo.Response().UserStats(ctx, nil, student.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), us.Attempts)
	assert.InDelta(t, 6, us.TotalScore, 1e-9)
	assert.InDelta(t, 3, us.AverageScore, 1e-9)
}

func TestWithTransaction_RollsBack(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	teacher := testutil.CreateUser(t, db, "t@example.com", models.RoleTeacher)
	student := testutil.CreateUser(t, db, "s@example.com", models.RoleStudent)
	quiz := testutil.CreateQuiz(t, db, teacher.ID)

	boom := errors.New("boom")
	err := repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := repo.Response().Create(ctx, tx, &models.Response{QuizID: quiz.ID, UserID: student.ID, Answers: datatypes.JSON("[]")}); err != nil {
			return err
		}
		if err := repo.Quiz().IncrementAttemptCount(ctx, tx, quiz.ID); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	exists, err := repo.Response().ExistsForUser(ctx, nil, quiz.ID, student.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	loaded, err := repo.Quiz().GetByID(ctx, nil, quiz.ID)
	require.NoError(t, err)
	assert.Zero(t, loaded.AttemptCount)
}

func TestQuestionRepository_PositionAndSubjects(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	teacher := testutil.CreateUser(t, db, "t@example.com", models.RoleTeacher)
	quiz := testutil.CreateQuiz(t, db, teacher.ID)

	pos, err := repo.Question().NextPosition(ctx, nil, quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, pos)

	math := "math"
	q := testutil.SingleSelect("q", 0, 1, 4)
	q.QuizID = quiz.ID
	q.Subject = &math
	require.NoError(t, repo.Question().Create(ctx, nil, &q))

	pos, err = repo.Question().NextPosition(ctx, nil, quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, pos)

	subjects, err := repo.Question().ListSubjects(ctx, nil)
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, "math", subjects[0].Subject)
	assert.Equal(t, int64(1), subjects[0].QuestionCount)

	require.NoError(t, repo.Question().Delete(ctx, nil, q.ID))
	_, err = repo.Question().GetByID(ctx, nil, q.ID)
	assert.True(t, repositories.IsNotFoundError(err))
}

func TestUserRepository_EmailNormalization(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	user := &models.User{Email: "  Alice@Example.COM ", PasswordHash: "h"}
	require.NoError(t, repo.User().Create(ctx, nil, user))
	assert.Equal(t, models.RoleStudent, user.Role)

	found, err := repo.User().GetByEmail(ctx, nil, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	exists, err := repo.User().ExistsByEmail(ctx, nil, "ALICE@example.com", nil)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.User().ExistsByEmail(ctx, nil, "alice@example.com", &user.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	dup := &models.User{Email: "alice@example.com", PasswordHash: "h"}
	assert.True(t, repositories.IsDuplicateKeyError(repo.User().Create(ctx, nil, dup)))
}

func TestClassRepository_Enrolment(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	teacher := testutil.CreateUser(t, db, "t@example.com", models.RoleTeacher)
	student := testutil.CreateUser(t, db, "s@example.com", models.RoleStudent)

	class := &models.Class{Name: "Physics", PasswordHash: "h", TeacherID: teacher.ID}
	require.NoError(t, repo.Class().Create(ctx, nil, class))

	quiz := testutil.CreateQuiz(t, db, teacher.ID)
	require.NoError(t, repo.Quiz().Update(ctx, nil, quiz.ID, map[string]interface{}{"class_id": class.ID}))

	require.NoError(t, repo.Class().AddStudent(ctx, nil, class.ID, student.ID))
	require.NoError(t, repo.Class().AddStudent(ctx, nil, class.ID, student.ID))

	enrolled, err := repo.Class().ListByStudent(ctx, nil, student.ID)
	require.NoError(t, err)
	require.Len(t, enrolled, 1)
	assert.Equal(t, teacher.ID, enrolled[0].Teacher.ID)
	assert.Len(t, enrolled[0].Quizzes, 1)

	count, err := repo.Class().CountByStudent(ctx, nil, student.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, repo.Class().Delete(ctx, nil, class.ID))

	isStudent, err := repo.Class().IsStudent(ctx, nil, class.ID, student.ID)
	require.NoError(t, err)
	assert.False(t, isStudent)

	detached, err := repo.Quiz().GetByID(ctx, nil, quiz.ID)
	require.NoError(t, err)
	assert.Nil(t, detached.ClassID)
}
