package services

import (
	"context"
	"testing"

	"github.com/SAP-F-2025/quiz-service/internal/events"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassService_CreateAndJoin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	teacher := env.user(t, "teacher@example.com", models.RoleTeacher)
	student := env.user(t, "student@example.com", models.RoleStudent)

	_, err := env.services.Class().Create(ctx, &CreateClassRequest{Name: "Nope", Password: "1234"}, student)
	assert.ErrorIs(t, err, ErrInsufficientPrivilege)

	class, err := env.services.Class().Create(ctx, &CreateClassRequest{
		Name:     " Physics 101 ",
		Password: "letmein",
	}, teacher)
	require.NoError(t, err)
	assert.Equal(t, "Physics 101", class.Name)
	assert.NotEqual(t, "letmein", class.PasswordHash)

	_, err = env.services.Class().Join(ctx, &JoinClassRequest{ClassID: class.ID, Password: "wrong"}, student)
	assert.ErrorIs(t, err, ErrClassPasswordMismatch)

	_, err = env.services.Class().Join(ctx, &JoinClassRequest{ClassID: "missing", Password: "letmein"}, student)
	assert.ErrorIs(t, err, ErrClassNotFound)

	joined, err := env.services.Class().Join(ctx, &JoinClassRequest{ClassID: class.ID, Password: "letmein"}, student)
	require.NoError(t, err)
	assert.Equal(t, class.ID, joined.ID)

	// joining again is harmless
	_, err = env.services.Class().Join(ctx, &JoinClassRequest{ClassID: class.ID, Password: "letmein"}, student)
	require.NoError(t, err)

	enrolled, err := env.services.Class().Enrolled(ctx, student)
	require.NoError(t, err)
	require.Len(t, enrolled, 1)
	assert.Equal(t, class.ID, enrolled[0].ID)

	teaching, err := env.services.Class().Teaching(ctx, teacher)
	require.NoError(t, err)
	assert.Len(t, teaching, 1)

	published := env.publisher.GetPublishedEvents()
	require.NotEmpty(t, published)
	assert.Equal(t, events.EventClassJoined, published[0].Type)
}

func TestClassService_OtherTeachersSeeNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner@example.com", models.RoleTeacher)
	other := env.user(t, "other@example.com", models.RoleTeacher)

	class, err := env.services.Class().Create(ctx, &CreateClassRequest{Name: "Chem", Password: "letmein"}, owner)
	require.NoError(t, err)

	_, err = env.services.Class().Update(ctx, class.ID, &UpdateClassRequest{Name: strPtr("Stolen")}, other)
	assert.ErrorIs(t, err, ErrClassNotFound)
	assert.ErrorIs(t, env.services.Class().Delete(ctx, class.ID, other), ErrClassNotFound)

	updated, err := env.services.Class().Update(ctx, class.ID, &UpdateClassRequest{Name: strPtr("Chemistry")}, owner)
	require.NoError(t, err)
	assert.Equal(t, "Chemistry", updated.Name)

	require.NoError(t, env.services.Class().Delete(ctx, class.ID, owner))
	empty, err := env.services.Class().Teaching(ctx, owner)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
