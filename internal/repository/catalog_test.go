package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitlg/fitlg/internal/db/dbtest"
	"github.com/fitlg/fitlg/internal/model"
)

func TestMovementAddSettingsUnion(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	founder := createUser(t, db)
	settings := createSettings(t, db, founder, model.SettingNames...)
	movement := createMovement(t, db, founder, createEquipment(t, db, founder, "kettlebell"), "swing")
	repo := NewMovementRepository(db)

	require.NoError(t, repo.AddSettings(ctx, movement.ID,
		settings[model.SettingRepetitions].ID,
		settings[model.SettingWeight].ID,
	))
	require.NoError(t, repo.AddSettings(ctx, movement.ID,
		settings[model.SettingRepetitions].ID,
		settings[model.SettingWeight].ID,
		settings[model.SettingCalories].ID,
		settings[model.SettingDistance].ID,
	))

	got, err := repo.ByID(ctx, movement.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"repetitions", "poids", "distance", "calories"}, got.SettingNames)
	assert.Equal(t, "kettlebell", got.EquipmentName)
}

func TestMovementRepositoryAll(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	founder := createUser(t, db)
	settings := createSettings(t, db, founder, model.SettingDistance)
	equipment := createEquipment(t, db, founder, "aucun")
	run := createMovement(t, db, founder, equipment, "run")
	createMovement(t, db, founder, equipment, "burpees")

	repo := NewMovementRepository(db)
	require.NoError(t, repo.AddSettings(ctx, run.ID, settings[model.SettingDistance].ID))

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "burpees", all[0].Name)
	assert.Equal(t, []string{}, all[0].SettingNames)
	assert.Equal(t, "run", all[1].Name)
	assert.Equal(t, []string{"distance"}, all[1].SettingNames)
}

func TestMovementRepositoryDuplicateAndMissing(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	founder := createUser(t, db)
	equipment := createEquipment(t, db, founder, "box")
	movement := createMovement(t, db, founder, equipment, "box jumps")
	repo := NewMovementRepository(db)

	dup := *movement
	dup.ID = "other"
	assert.ErrorIs(t, repo.Create(ctx, &dup), ErrDuplicateMovement)

	_, err := repo.ByName(ctx, "box jump")
	assert.ErrorIs(t, err, ErrMovementNotFound)

	require.NoError(t, repo.Delete(ctx, movement.ID))
	assert.ErrorIs(t, repo.Delete(ctx, movement.ID), ErrMovementNotFound)
}

func TestSettingRepositoryByNames(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	founder := createUser(t, db)
	createSettings(t, db, founder, model.SettingRepetitions, model.SettingWeight)
	repo := NewSettingRepository(db)

	got, err := repo.ByNames(ctx, model.SettingWeight, model.SettingRepetitions)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, model.SettingWeight, got[0].Name)
	assert.Equal(t, model.SettingRepetitions, got[1].Name)

	_, err = repo.ByNames(ctx, model.SettingRepetitions, "tempo")
	assert.ErrorIs(t, err, ErrSettingNotFound)
}

func TestEquipmentRepositoryDuplicate(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	founder := createUser(t, db)
	equipment := createEquipment(t, db, founder, "rameur")

	dup := *equipment
	dup.ID = "other"
	assert.ErrorIs(t, NewEquipmentRepository(db).Create(ctx, &dup), ErrDuplicateEquipment)

	_, err := NewEquipmentRepository(db).ByName(ctx, "anneaux")
	assert.ErrorIs(t, err, ErrEquipmentNotFound)
}
