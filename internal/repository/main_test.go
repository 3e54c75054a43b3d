package repository

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/fitlg/fitlg/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func createUser(t *testing.T, db *sqlx.DB) *model.User {
	t.Helper()

	user := &model.User{
		ID:           uuid.New().String(),
		Username:     gofakeit.Username() + uuid.New().String()[:8],
		Email:        uuid.New().String()[:8] + gofakeit.Email(),
		PasswordHash: "hash",
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))
	return user
}

func createEquipment(t *testing.T, db *sqlx.DB, founder *model.User, name string) *model.Equipment {
	t.Helper()

	equipment := &model.Equipment{
		ID:        uuid.New().String(),
		Name:      name,
		FounderID: founder.ID,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, NewEquipmentRepository(db).Create(context.Background(), equipment))
	return equipment
}

func createSettings(t *testing.T, db *sqlx.DB, founder *model.User, names ...string) map[string]*model.MovementSetting {
	t.Helper()

	repo := NewSettingRepository(db)
	settings := make(map[string]*model.MovementSetting, len(names))
	for _, name := range names {
		s := &model.MovementSetting{
			ID:        uuid.New().String(),
			Name:      name,
			FounderID: founder.ID,
			CreatedAt: time.Now().UTC(),
		}
		require.NoError(t, repo.Create(context.Background(), s))
		settings[name] = s
	}
	return settings
}

func createMovement(t *testing.T, db *sqlx.DB, founder *model.User, equipment *model.Equipment, name string) *model.Movement {
	t.Helper()

	movement := &model.Movement{
		ID:          uuid.New().String(),
		Name:        name,
		EquipmentID: equipment.ID,
		FounderID:   founder.ID,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, NewMovementRepository(db).Create(context.Background(), movement))
	return movement
}

func createExercise(t *testing.T, db *sqlx.DB, founder *model.User, isDefault bool, movements ...NewExerciseMovement) *model.Exercise {
	t.Helper()

	goal := 20
	exercise := &model.Exercise{
		ID:           uuid.New().String(),
		Name:         gofakeit.Word(),
		ExerciseType: model.ExerciseTypeAMRAP,
		GoalType:     model.GoalTypeDuration,
		GoalValue:    &goal,
		FounderID:    founder.ID,
		IsDefault:    isDefault,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, NewExerciseRepository(db).Create(context.Background(), exercise, movements))
	return exercise
}
