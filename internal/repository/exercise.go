package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fitlg/fitlg/internal/model"
)

var (
	ErrExerciseNotFound       = errors.New("exercise not found")
	ErrMovementNumberConflict = errors.New("movement number already taken in exercise")
)

// appendAttempts bounds how often AppendMovement retries after losing a numbering race.
const appendAttempts = 3

// NewExerciseMovement describes one movement to place in an exercise, with its setting values
// in the order they should be listed.
type NewExerciseMovement struct {
	MovementID string
	Settings   []NewSettingValue
}

type NewSettingValue struct {
	SettingID string
	Value     int
}

type ExerciseRepository interface {
	Create(ctx context.Context, exercise *model.Exercise, movements []NewExerciseMovement) error
	AppendMovement(ctx context.Context, exerciseID string, movement NewExerciseMovement) (int, error)
	ByID(ctx context.Context, id string) (*model.Exercise, error)
	VisibleByID(ctx context.Context, userID, id string) (*model.Exercise, error)
	VisibleTo(ctx context.Context, userID string) ([]*model.Exercise, error)
	DefaultByName(ctx context.Context, name string) (*model.Exercise, error)
	MovementRows(ctx context.Context, exerciseIDs ...string) ([]*model.ExerciseMovementRow, error)
	Delete(ctx context.Context, id string) error
}

type exerciseRepository struct {
	db *sqlx.DB
}

func NewExerciseRepository(db *sqlx.DB) ExerciseRepository {
	return &exerciseRepository{db: db}
}

// Create inserts the exercise, its movements numbered 1..n in slice order and
// their setting values in a single transaction.
func (r *exerciseRepository) Create(ctx context.Context, exercise *model.Exercise, movements []NewExerciseMovement) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO exercises (id, name, description, exercise_type, goal_type, goal_value, founder_id, is_default, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = tx.ExecContext(ctx, query,
		exercise.ID,
		exercise.Name,
		exercise.Description,
		exercise.ExerciseType,
		exercise.GoalType,
		exercise.GoalValue,
		exercise.FounderID,
		exercise.IsDefault,
		exercise.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert exercise: %w", err)
	}

	for i, m := range movements {
		err = insertExerciseMovement(ctx, tx, exercise.ID, i+1, m)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// AppendMovement adds a movement after the last one of an exercise and returns its number.
// The number is read and written in one transaction; the unique (exercise_id, movement_number)
// constraint rejects a concurrent writer that picked the same number, which then retries.
func (r *exerciseRepository) AppendMovement(ctx context.Context, exerciseID string, movement NewExerciseMovement) (int, error) {
	var lastErr error
	for attempt := 0; attempt < appendAttempts; attempt++ {
		number, err := r.appendOnce(ctx, exerciseID, movement)
		if err == nil {
			return number, nil
		}
		if !errors.Is(err, ErrMovementNumberConflict) {
			return 0, err
		}
		lastErr = err
	}
	return 0, lastErr
}

func (r *exerciseRepository) appendOnce(ctx context.Context, exerciseID string, movement NewExerciseMovement) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var exists int
	err = tx.GetContext(ctx, &exists, `SELECT COUNT(*) FROM exercises WHERE id = $1`, exerciseID)
	if err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, ErrExerciseNotFound
	}

	var last int
	err = tx.GetContext(ctx, &last, `SELECT COALESCE(MAX(movement_number), 0) FROM exercise_movements WHERE exercise_id = $1`, exerciseID)
	if err != nil {
		return 0, err
	}

	number := last + 1
	err = insertExerciseMovement(ctx, tx, exerciseID, number, movement)
	if err != nil {
		return 0, err
	}

	err = tx.Commit()
	if isUniqueViolation(err) {
		return 0, ErrMovementNumberConflict
	}
	if err != nil {
		return 0, err
	}
	return number, nil
}

func insertExerciseMovement(ctx context.Context, tx *sqlx.Tx, exerciseID string, number int, m NewExerciseMovement) error {
	exerciseMovementID := uuid.New().String()

	query := `INSERT INTO exercise_movements (id, exercise_id, movement_id, movement_number) VALUES ($1, $2, $3, $4)`
	_, err := tx.ExecContext(ctx, query, exerciseMovementID, exerciseID, m.MovementID, number)
	if isUniqueViolation(err) {
		return ErrMovementNumberConflict
	}
	if err != nil {
		return fmt.Errorf("failed to insert movement %d: %w", number, err)
	}

	query = `INSERT INTO exercise_movement_settings (id, exercise_movement_id, setting_id, setting_value, position)
	         VALUES ($1, $2, $3, $4, $5)`
	for j, s := range m.Settings {
		_, err = tx.ExecContext(ctx, query, uuid.New().String(), exerciseMovementID, s.SettingID, s.Value, j+1)
		if err != nil {
			return fmt.Errorf("failed to insert setting %d of movement %d: %w", j+1, number, err)
		}
	}

	return nil
}

func (r *exerciseRepository) ByID(ctx context.Context, id string) (*model.Exercise, error) {
	exercise := &model.Exercise{}
	query := `SELECT * FROM exercises WHERE id = $1`

	err := r.db.GetContext(ctx, exercise, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrExerciseNotFound
	}
	if err != nil {
		return nil, err
	}

	return exercise, nil
}

// VisibleByID returns the exercise if userID founded it or it is a default exercise.
func (r *exerciseRepository) VisibleByID(ctx context.Context, userID, id string) (*model.Exercise, error) {
	exercise := &model.Exercise{}
	query := `SELECT * FROM exercises WHERE id = $1 AND (founder_id = $2 OR is_default = $3)`

	err := r.db.GetContext(ctx, exercise, query, id, userID, true)
	if err == sql.ErrNoRows {
		return nil, ErrExerciseNotFound
	}
	if err != nil {
		return nil, err
	}

	return exercise, nil
}

// VisibleTo lists the user's own exercises followed by the default ones.
func (r *exerciseRepository) VisibleTo(ctx context.Context, userID string) ([]*model.Exercise, error) {
	var exercises []*model.Exercise
	query := `SELECT * FROM exercises
	          WHERE founder_id = $1 OR is_default = $2
	          ORDER BY is_default ASC, LOWER(name) ASC`

	err := r.db.SelectContext(ctx, &exercises, query, userID, true)
	if err != nil {
		return nil, err
	}

	return exercises, nil
}

func (r *exerciseRepository) DefaultByName(ctx context.Context, name string) (*model.Exercise, error) {
	exercise := &model.Exercise{}
	query := `SELECT * FROM exercises WHERE name = $1 AND is_default = $2 LIMIT 1`

	err := r.db.GetContext(ctx, exercise, query, name, true)
	if err == sql.ErrNoRows {
		return nil, ErrExerciseNotFound
	}
	if err != nil {
		return nil, err
	}

	return exercise, nil
}

// MovementRows loads the movements and setting values of the given exercises,
// ordered by exercise, movement number and setting position.
func (r *exerciseRepository) MovementRows(ctx context.Context, exerciseIDs ...string) ([]*model.ExerciseMovementRow, error) {
	if len(exerciseIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT em.exercise_id, em.id AS exercise_movement_id, em.movement_number,
		       m.id AS movement_id, m.name AS movement_name,
		       s.name AS setting_name, ems.setting_value
		FROM exercise_movements em
		JOIN movements m ON m.id = em.movement_id
		LEFT JOIN exercise_movement_settings ems ON ems.exercise_movement_id = em.id
		LEFT JOIN movement_settings s ON s.id = ems.setting_id
		WHERE em.exercise_id IN (?)
		ORDER BY em.exercise_id, em.movement_number, ems.position`, exerciseIDs)
	if err != nil {
		return nil, err
	}

	var rows []*model.ExerciseMovementRow
	err = r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *exerciseRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM exercises WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	return expectRow(result, err, ErrExerciseNotFound)
}
