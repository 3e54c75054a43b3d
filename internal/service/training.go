package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fitlg/fitlg/internal/metrics"
	"github.com/fitlg/fitlg/internal/model"
	"github.com/fitlg/fitlg/internal/repository"
)

type TrainingView struct {
	ID               string         `json:"id"`
	Date             time.Time      `json:"date"`
	Done             bool           `json:"done"`
	PerformanceType  model.GoalType `json:"performance_type"`
	PerformanceValue *int           `json:"performance_value"`
	Exercise         ExerciseView   `json:"exercise"`
}

// IsPB reports whether the training holds the exercise's personal best.
func (v TrainingView) IsPB() bool {
	return v.PerformanceValue != nil && *v.PerformanceValue != 0 && *v.PerformanceValue == v.Exercise.PB
}

func (v TrainingView) PerformanceLabel() string {
	if v.PerformanceValue == nil {
		return ""
	}
	return v.formatValue(*v.PerformanceValue)
}

func (v TrainingView) PBLabel() string {
	return v.formatValue(v.Exercise.PB)
}

func (v TrainingView) formatValue(n int) string {
	if v.PerformanceType == model.GoalTypeDuration {
		return model.FormatClock(n)
	}
	return strconv.Itoa(n)
}

type TrainingList struct {
	Trainings           []TrainingView
	TrainingsNumber     int
	TrainingsDoneNumber int
	PBNumber            int
}

type TrainingService struct {
	trainingRepository repository.TrainingRepository
	exerciseRepository repository.ExerciseRepository
	exerciseService    *ExerciseService
	metrics            *metrics.Manager
}

func NewTrainingService(
	trainingRepository repository.TrainingRepository,
	exerciseRepository repository.ExerciseRepository,
	exerciseService *ExerciseService,
	metrics *metrics.Manager,
) *TrainingService {
	return &TrainingService{
		trainingRepository: trainingRepository,
		exerciseRepository: exerciseRepository,
		exerciseService:    exerciseService,
		metrics:            metrics,
	}
}

// Start opens a pending training of an exercise visible to user.
func (s *TrainingService) Start(ctx context.Context, user *model.User, exerciseID string) (*model.Training, error) {
	exercise, err := s.exerciseRepository.VisibleByID(ctx, user.ID, exerciseID)
	if err != nil {
		return nil, err
	}
	if err := checkExercise(exercise); err != nil {
		return nil, err
	}

	training := &model.Training{
		ID:              uuid.New().String(),
		FounderID:       user.ID,
		ExerciseID:      exercise.ID,
		Date:            time.Now().UTC(),
		PerformanceType: model.PerformanceTypeFor(exercise.ExerciseType),
	}

	err = s.trainingRepository.Create(ctx, training)
	if err != nil {
		return nil, fmt.Errorf("failed to create training: %w", err)
	}

	slog.Info("training started", "training_id", training.ID, "exercise_id", exercise.ID, "user_id", user.ID)
	return training, nil
}

// Complete records the performance of a pending training. Duration
// performances are given as HH:MM:SS or HH:MM, the others as an integer.
func (s *TrainingService) Complete(ctx context.Context, user *model.User, trainingID, raw string) (*model.Training, error) {
	training, err := s.trainingRepository.ByID(ctx, user.ID, trainingID)
	if err != nil {
		return nil, err
	}
	if training.Done {
		return nil, repository.ErrTrainingAlreadyDone
	}

	value, err := ParsePerformance(training.PerformanceType, raw)
	if err != nil {
		return nil, err
	}

	err = s.trainingRepository.Complete(ctx, user.ID, training.ID, value)
	if err != nil {
		return nil, err
	}

	training.Done = true
	training.PerformanceValue = &value

	s.metrics.CounterTrainingsCompleted.WithLabelValues(string(training.PerformanceType)).Inc()
	slog.Info("training completed", "training_id", training.ID, "user_id", user.ID, "performance_type", training.PerformanceType)
	return training, nil
}

// ParsePerformance converts a submitted performance into the stored integer.
func ParsePerformance(performanceType model.GoalType, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, invalid("performance_value", "performance is required")
	}

	if performanceType == model.GoalTypeDuration {
		seconds, err := model.ParseClock(raw)
		if err != nil {
			return 0, &ValidationError{Field: "performance_value", Message: err.Error()}
		}
		return seconds, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || n > maxQuantity {
		return 0, invalid("performance_value", "performance must be a whole number between 0 and %d", maxQuantity)
	}
	return n, nil
}

// List returns the user's trainings, most recent first.
func (s *TrainingService) List(ctx context.Context, user *model.User) (*TrainingList, error) {
	trainings, err := s.trainingRepository.ByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trainings: %w", err)
	}

	exercises, err := s.exerciseService.List(ctx, user)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]ExerciseView, len(exercises.Exercises))
	for _, e := range exercises.Exercises {
		byID[e.ID] = e
	}

	list := &TrainingList{Trainings: make([]TrainingView, 0, len(trainings))}
	for _, t := range trainings {
		exercise, ok := byID[t.ExerciseID]
		if !ok {
			slog.Warn("skipping training", "error", &MalformedRecordError{
				Entity: "training",
				ID:     t.ID,
				Err:    errors.New("exercise is not visible to its founder"),
			})
			continue
		}

		view := TrainingView{
			ID:               t.ID,
			Date:             t.Date,
			Done:             t.Done,
			PerformanceType:  t.PerformanceType,
			PerformanceValue: t.PerformanceValue,
			Exercise:         exercise,
		}
		list.Trainings = append(list.Trainings, view)

		if view.Done {
			list.TrainingsDoneNumber++
		}
		if view.IsPB() {
			list.PBNumber++
		}
	}
	list.TrainingsNumber = len(list.Trainings)

	return list, nil
}
