package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitlg/fitlg/internal/db/dbtest"
	"github.com/fitlg/fitlg/internal/model"
)

func TestExerciseCreateNumbersMovements(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	founder := createUser(t, db)
	settings := createSettings(t, db, founder, model.SettingRepetitions, model.SettingAddedLoad)
	equipment := createEquipment(t, db, founder, "aucun")
	pullups := createMovement(t, db, founder, equipment, "pullups")
	pushups := createMovement(t, db, founder, equipment, "pushups")
	squats := createMovement(t, db, founder, equipment, "squats")

	rep := settings[model.SettingRepetitions].ID
	lest := settings[model.SettingAddedLoad].ID
	exercise := createExercise(t, db, founder, false,
		NewExerciseMovement{MovementID: pullups.ID, Settings: []NewSettingValue{{SettingID: rep, Value: 5}, {SettingID: lest, Value: 0}}},
		NewExerciseMovement{MovementID: pushups.ID, Settings: []NewSettingValue{{SettingID: rep, Value: 10}}},
		NewExerciseMovement{MovementID: squats.ID},
	)

	rows, err := NewExerciseRepository(db).MovementRows(ctx, exercise.ID)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, 1, rows[0].MovementNumber)
	assert.Equal(t, "pullups", rows[0].MovementName)
	require.NotNil(t, rows[0].SettingName)
	assert.Equal(t, model.SettingRepetitions, *rows[0].SettingName)
	assert.Equal(t, 5, *rows[0].SettingValue)
	assert.Equal(t, model.SettingAddedLoad, *rows[1].SettingName)
	assert.Equal(t, 0, *rows[1].SettingValue)

	assert.Equal(t, 2, rows[2].MovementNumber)
	assert.Equal(t, 10, *rows[2].SettingValue)

	assert.Equal(t, 3, rows[3].MovementNumber)
	assert.Equal(t, "squats", rows[3].MovementName)
	assert.Nil(t, rows[3].SettingName)
	assert.Nil(t, rows[3].SettingValue)
}

func TestExerciseCreateRollsBack(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	founder := createUser(t, db)
	equipment := createEquipment(t, db, founder, "aucun")
	pushups := createMovement(t, db, founder, equipment, "pushups")
	repo := NewExerciseRepository(db)

	goal := 1
	exercise := &model.Exercise{
		ID:           uuid.New().String(),
		Name:         "broken",
		ExerciseType: model.ExerciseTypeForTime,
		GoalType:     model.GoalTypeRounds,
		GoalValue:    &goal,
		FounderID:    founder.ID,
	}
	err := repo.Create(ctx, exercise, []NewExerciseMovement{
		{MovementID: pushups.ID},
		{MovementID: uuid.New().String()},
	})
	require.Error(t, err)

	_, err = repo.ByID(ctx, exercise.ID)
	assert.ErrorIs(t, err, ErrExerciseNotFound)

	var count int
	require.NoError(t, db.GetContext(ctx, &count, `SELECT COUNT(*) FROM exercise_movements`))
	assert.Zero(t, count)
}

func TestExerciseAppendMovement(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	founder := createUser(t, db)
	equipment := createEquipment(t, db, founder, "aucun")
	run := createMovement(t, db, founder, equipment, "run")
	repo := NewExerciseRepository(db)
	exercise := createExercise(t, db, founder, false, NewExerciseMovement{MovementID: run.ID})

	number, err := repo.AppendMovement(ctx, exercise.ID, NewExerciseMovement{MovementID: run.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, number)

	number, err = repo.AppendMovement(ctx, exercise.ID, NewExerciseMovement{MovementID: run.ID})
	require.NoError(t, err)
	assert.Equal(t, 3, number)

	_, err = repo.AppendMovement(ctx, uuid.New().String(), NewExerciseMovement{MovementID: run.ID})
	assert.ErrorIs(t, err, ErrExerciseNotFound)
}

func TestExerciseMovementNumberIsUnique(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	founder := createUser(t, db)
	equipment := createEquipment(t, db, founder, "aucun")
	run := createMovement(t, db, founder, equipment, "run")
	exercise := createExercise(t, db, founder, false, NewExerciseMovement{MovementID: run.ID})

	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	err = insertExerciseMovement(ctx, tx, exercise.ID, 1, NewExerciseMovement{MovementID: run.ID})
	assert.ErrorIs(t, err, ErrMovementNumberConflict)
}

func TestExerciseConcurrentAppendsNeverShareANumber(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	founder := createUser(t, db)
	equipment := createEquipment(t, db, founder, "aucun")
	run := createMovement(t, db, founder, equipment, "run")
	repo := NewExerciseRepository(db)
	exercise := createExercise(t, db, founder, false, NewExerciseMovement{MovementID: run.ID})

	const writers = 6
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers []int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			number, err := repo.AppendMovement(ctx, exercise.ID, NewExerciseMovement{MovementID: run.ID})
			if err != nil {
				// SQLite may report a busy database; losing writers are fine, duplicates are not.
				return
			}
			mu.Lock()
			numbers = append(numbers, number)
			mu.Unlock()
		}()
	}
	wg.Wait()

	var stored []int
	require.NoError(t, db.SelectContext(ctx, &stored,
		`SELECT movement_number FROM exercise_movements WHERE exercise_id = $1 ORDER BY movement_number`, exercise.ID))

	seen := map[int]bool{}
	for _, n := range stored {
		assert.False(t, seen[n], "movement number %d stored twice", n)
		seen[n] = true
	}
	assert.Len(t, stored, len(numbers)+1)
	for _, n := range numbers {
		assert.True(t, seen[n])
	}
}

func TestExerciseVisibility(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	admin := createUser(t, db)
	alice := createUser(t, db)
	bob := createUser(t, db)
	repo := NewExerciseRepository(db)

	shared := createExercise(t, db, admin, true)
	private := createExercise(t, db, alice, false)

	visible, err := repo.VisibleTo(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, shared.ID, visible[0].ID)

	visible, err = repo.VisibleTo(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, visible, 2)
	assert.Equal(t, private.ID, visible[0].ID, "own exercises come first")

	_, err = repo.VisibleByID(ctx, bob.ID, private.ID)
	assert.ErrorIs(t, err, ErrExerciseNotFound)

	got, err := repo.DefaultByName(ctx, shared.Name)
	require.NoError(t, err)
	assert.Equal(t, shared.ID, got.ID)

	_, err = repo.DefaultByName(ctx, private.Name+"-missing")
	assert.ErrorIs(t, err, ErrExerciseNotFound)
}

func TestExerciseDelete(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	founder := createUser(t, db)
	repo := NewExerciseRepository(db)
	exercise := createExercise(t, db, founder, false)

	require.NoError(t, repo.Delete(ctx, exercise.ID))
	assert.ErrorIs(t, repo.Delete(ctx, exercise.ID), ErrExerciseNotFound)
}
