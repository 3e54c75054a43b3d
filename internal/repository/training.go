package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/fitlg/fitlg/internal/model"
)

var (
	ErrTrainingNotFound    = errors.New("training not found")
	ErrTrainingAlreadyDone = errors.New("training already completed")
)

type TrainingRepository interface {
	Create(ctx context.Context, training *model.Training) error
	ByID(ctx context.Context, userID, trainingID string) (*model.Training, error)
	ByUser(ctx context.Context, userID string) ([]*model.Training, error)
	ByExerciseAndUser(ctx context.Context, exerciseID, userID string) ([]*model.Training, error)
	Complete(ctx context.Context, userID, trainingID string, value int) error
}

type trainingRepository struct {
	db *sqlx.DB
}

func NewTrainingRepository(db *sqlx.DB) TrainingRepository {
	return &trainingRepository{db: db}
}

func (r *trainingRepository) Create(ctx context.Context, training *model.Training) error {
	query := `INSERT INTO trainings (id, founder_id, exercise_id, date, done, performance_type, performance_value)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		training.ID,
		training.FounderID,
		training.ExerciseID,
		training.Date,
		training.Done,
		training.PerformanceType,
		training.PerformanceValue,
	)

	return err
}

func (r *trainingRepository) ByID(ctx context.Context, userID, trainingID string) (*model.Training, error) {
	training := &model.Training{}
	query := `SELECT * FROM trainings WHERE id = $1 AND founder_id = $2`

	err := r.db.GetContext(ctx, training, query, trainingID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrTrainingNotFound
	}
	if err != nil {
		return nil, err
	}

	return training, nil
}

// ByUser lists a user's trainings, most recent first.
func (r *trainingRepository) ByUser(ctx context.Context, userID string) ([]*model.Training, error) {
	var trainings []*model.Training
	query := `SELECT * FROM trainings WHERE founder_id = $1 ORDER BY date DESC`

	err := r.db.SelectContext(ctx, &trainings, query, userID)
	if err != nil {
		return nil, err
	}

	return trainings, nil
}

// ByExerciseAndUser lists a user's trainings of one exercise, most recent first.
func (r *trainingRepository) ByExerciseAndUser(ctx context.Context, exerciseID, userID string) ([]*model.Training, error) {
	var trainings []*model.Training
	query := `SELECT * FROM trainings WHERE exercise_id = $1 AND founder_id = $2 ORDER BY date DESC`

	err := r.db.SelectContext(ctx, &trainings, query, exerciseID, userID)
	if err != nil {
		return nil, err
	}

	return trainings, nil
}

// Complete records the performance and marks the training done.
// Only a pending training can be completed; the conditional UPDATE makes the
// transition happen at most once even with concurrent submissions.
func (r *trainingRepository) Complete(ctx context.Context, userID, trainingID string, value int) error {
	query := `UPDATE trainings
	          SET done = $1, performance_value = $2
	          WHERE id = $3 AND founder_id = $4 AND done = $5`

	result, err := r.db.ExecContext(ctx, query, true, value, trainingID, userID, false)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		// Distinguish a missing training from one that is already done
		_, err := r.ByID(ctx, userID, trainingID)
		if err != nil {
			return err
		}
		return ErrTrainingAlreadyDone
	}

	return nil
}
