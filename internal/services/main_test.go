package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/auth"
	"github.com/SAP-F-2025/quiz-service/internal/events"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories"
	"github.com/SAP-F-2025/quiz-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/quiz-service/internal/storage"
	"github.com/SAP-F-2025/quiz-service/internal/testutil"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// fakeStore is an in-memory ObjectStore. Keys listed in failDelete fail on
// Delete.
type fakeStore struct {
	mu         sync.Mutex
	objects    map[string]int64
	deleted    []string
	failDelete map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string]int64{}, failDelete: map[string]bool{}}
}

func (f *fakeStore) Upload(_ context.Context, file storage.File, folder string) (*models.StoredObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := folder + "/" + uuid.NewString()
	f.objects[key] = file.Size
	return &models.StoredObject{
		URL:      "http://store.test/" + key,
		Key:      key,
		FileName: file.FileName,
		FileSize: file.Size,
		FileType: file.ContentType,
	}, nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	if f.failDelete[key] {
		return errors.New("store unavailable")
	}
	delete(f.objects, key)
	return nil
}

type testEnv struct {
	db        *gorm.DB
	repo      repositories.Repository
	store     *fakeStore
	publisher *events.MockEventPublisher
	tokens    *auth.TokenManager
	services  ServiceManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db := testutil.NewTestDB(t)
	env := &testEnv{
		db:        db,
		repo:      postgres.NewRepository(db),
		store:     newFakeStore(),
		publisher: events.NewMockEventPublisher(logger),
		tokens:    auth.NewTokenManager("test-secret", time.Hour),
	}
	env.services = NewServiceManager(Dependencies{
		Repo:           env.repo,
		Store:          env.store,
		Events:         env.publisher,
		Tokens:         env.tokens,
		Validator:      validator.New(),
		Logger:         logger,
		LeaderboardTTL: time.Minute,
	})
	return env
}

func identityOf(u *models.User) auth.Identity {
	return auth.Identity{ID: u.ID, Email: u.Email, Role: u.Role}
}

func (e *testEnv) user(t *testing.T, email string, role models.UserRole) auth.Identity {
	t.Helper()
	return identityOf(testutil.CreateUser(t, e.db, email, role))
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
