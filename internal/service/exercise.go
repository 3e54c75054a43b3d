package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fitlg/fitlg/internal/metrics"
	"github.com/fitlg/fitlg/internal/model"
	"github.com/fitlg/fitlg/internal/repository"
)

const maxExerciseNameLength = 100

// kmThreshold is the distance below which a goal value is read as kilometers.
const kmThreshold = 100

// maxQuantity bounds goal, setting and performance values.
const maxQuantity = 1_000_000_000

// Number decodes a JSON number, a numeric string, null or "" (unset).
type Number struct {
	Value float64
	Set   bool
}

func NewNumber(v float64) Number {
	return Number{Value: v, Set: true}
}

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = Number{}
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
		if raw == "" {
			*n = Number{}
			return nil
		}
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("invalid number %s", data)
	}
	*n = Number{Value: v, Set: true}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Set {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// ExerciseInput is the payload of the exercise builder.
type ExerciseInput struct {
	Name         string          `json:"name"`
	ExerciseType string          `json:"exerciseType"`
	Description  string          `json:"description"`
	GoalType     string          `json:"goalType"`
	GoalValue    Number          `json:"goalValue"`
	Movements    []MovementInput `json:"movements"`
}

type MovementInput struct {
	Name     string         `json:"name"`
	Order    Number         `json:"order"`
	Settings []SettingInput `json:"settings"`
}

type SettingInput struct {
	Name  string `json:"name"`
	Value Number `json:"value"`
}

type SettingEntry struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type MovementEntry struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Order    int            `json:"order"`
	Settings []SettingEntry `json:"settings"`
}

type ExerciseView struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	ExerciseType model.ExerciseType `json:"exercise_type"`
	Description  string             `json:"description"`
	GoalType     model.GoalType     `json:"goal_type"`
	GoalValue    *int               `json:"goal_value"`
	IsDefault    bool               `json:"is_default"`
	PB           int                `json:"pb"`
	Movements    []MovementEntry    `json:"movements"`

	FounderID string `json:"-"`
}

// PBLabel renders the personal best for the exercise list.
// Trainings of exercises with a rounds or distance goal record time.
func (v ExerciseView) PBLabel() string {
	if v.PB != 0 && v.GoalType != model.GoalTypeDuration {
		return model.FormatClock(v.PB)
	}
	return strconv.Itoa(v.PB)
}

// PerformanceType is what a training of this exercise records.
func (v ExerciseView) PerformanceType() model.GoalType {
	return model.PerformanceTypeFor(v.ExerciseType)
}

type ExerciseList struct {
	Exercises             []ExerciseView
	ExercisesNumber       int
	CustomExercisesNumber int
	PBNumber              int
}

type ExerciseService struct {
	exerciseRepository repository.ExerciseRepository
	movementRepository repository.MovementRepository
	settingRepository  repository.SettingRepository
	trainingRepository repository.TrainingRepository
	metrics            *metrics.Manager
}

func NewExerciseService(
	exerciseRepository repository.ExerciseRepository,
	movementRepository repository.MovementRepository,
	settingRepository repository.SettingRepository,
	trainingRepository repository.TrainingRepository,
	metrics *metrics.Manager,
) *ExerciseService {
	return &ExerciseService{
		exerciseRepository: exerciseRepository,
		movementRepository: movementRepository,
		settingRepository:  settingRepository,
		trainingRepository: trainingRepository,
		metrics:            metrics,
	}
}

// DecodeExerciseInput reads the builder payload.
func DecodeExerciseInput(data []byte) (ExerciseInput, error) {
	var in ExerciseInput
	err := json.Unmarshal(data, &in)
	if err != nil {
		return in, &ValidationError{Field: "body", Message: "invalid exercise payload"}
	}
	return in, nil
}

// Register creates an exercise founded by founder. Exercises created by an
// admin are default exercises visible to everyone.
func (s *ExerciseService) Register(ctx context.Context, founder *model.User, in ExerciseInput) (*model.Exercise, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name", "name is required")
	}
	if len(name) > maxExerciseNameLength {
		return nil, invalid("name", "name must be less than %d characters", maxExerciseNameLength)
	}

	exerciseType, err := model.ParseExerciseType(in.ExerciseType)
	if err != nil {
		return nil, &ValidationError{Field: "exerciseType", Message: err.Error()}
	}

	goal, err := goalValue(in.GoalType, in.GoalValue)
	if err != nil {
		return nil, err
	}

	if len(in.Movements) == 0 {
		return nil, invalid("movements", "at least one movement is required")
	}

	movements := make([]repository.NewExerciseMovement, 0, len(in.Movements))
	for i, m := range in.Movements {
		nm, err := s.resolveMovement(ctx, i+1, m)
		if err != nil {
			return nil, err
		}
		movements = append(movements, nm)
	}

	exercise := &model.Exercise{
		ID:           uuid.New().String(),
		Name:         name,
		Description:  strings.TrimSpace(in.Description),
		ExerciseType: exerciseType,
		GoalType:     model.GoalTypeFor(exerciseType),
		GoalValue:    goal,
		FounderID:    founder.ID,
		IsDefault:    founder.IsAdmin,
		CreatedAt:    time.Now().UTC(),
	}

	err = s.exerciseRepository.Create(ctx, exercise, movements)
	if err != nil {
		return nil, fmt.Errorf("failed to create exercise: %w", err)
	}

	s.metrics.CounterExercisesRegistered.Inc()
	slog.Info("exercise registered", "exercise_id", exercise.ID, "user_id", founder.ID, "movements", len(movements))
	return exercise, nil
}

func (s *ExerciseService) resolveMovement(ctx context.Context, number int, in MovementInput) (repository.NewExerciseMovement, error) {
	field := fmt.Sprintf("movements[%d]", number)

	movement, err := s.movementRepository.ByName(ctx, NormalizeName(in.Name))
	if errors.Is(err, repository.ErrMovementNotFound) {
		return repository.NewExerciseMovement{}, invalid(field, "unknown movement %q", in.Name)
	}
	if err != nil {
		return repository.NewExerciseMovement{}, fmt.Errorf("failed to get movement: %w", err)
	}

	nm := repository.NewExerciseMovement{MovementID: movement.ID}
	for _, st := range in.Settings {
		setting, err := s.settingRepository.ByName(ctx, NormalizeName(st.Name))
		if errors.Is(err, repository.ErrSettingNotFound) {
			return nm, invalid(field, "unknown setting %q", st.Name)
		}
		if err != nil {
			return nm, fmt.Errorf("failed to get setting: %w", err)
		}
		value, ok := quantity(st.Value.Value)
		if !ok {
			return nm, invalid(field, "%s must be between 0 and %d", setting.Name, maxQuantity)
		}
		nm.Settings = append(nm.Settings, repository.NewSettingValue{
			SettingID: setting.ID,
			Value:     value,
		})
	}

	return nm, nil
}

// goalValue applies the unit rule of the builder: a distance goal under 100 is
// given in kilometers and stored in meters.
func goalValue(inputGoalType string, n Number) (*int, error) {
	if !n.Set {
		return nil, nil
	}

	raw := n.Value
	if strings.EqualFold(strings.TrimSpace(inputGoalType), string(model.GoalTypeDistance)) && raw < kmThreshold {
		raw = math.Round(raw * 1000)
	}
	v, ok := quantity(raw)
	if !ok {
		return nil, invalid("goalValue", "goal must be between 0 and %d", maxQuantity)
	}
	return &v, nil
}

// quantity truncates v to a whole number within [0, maxQuantity].
func quantity(v float64) (int, bool) {
	if math.IsNaN(v) || v < 0 || v > maxQuantity {
		return 0, false
	}
	return int(v), true
}

// View returns an exercise visible to user, with the user's personal best.
func (s *ExerciseService) View(ctx context.Context, user *model.User, exerciseID string) (*ExerciseView, error) {
	exercise, err := s.exerciseRepository.VisibleByID(ctx, user.ID, exerciseID)
	if err != nil {
		return nil, err
	}

	trainings, err := s.trainingRepository.ByExerciseAndUser(ctx, exercise.ID, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load trainings: %w", err)
	}

	views, err := s.views(ctx, []*model.Exercise{exercise}, trainings)
	if err != nil {
		return nil, err
	}

	return &views[0], nil
}

// List returns the user's exercises followed by the default ones.
// Malformed rows are logged and left out.
func (s *ExerciseService) List(ctx context.Context, user *model.User) (*ExerciseList, error) {
	exercises, err := s.exerciseRepository.VisibleTo(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list exercises: %w", err)
	}

	valid := exercises[:0]
	for _, e := range exercises {
		if err := checkExercise(e); err != nil {
			slog.Warn("skipping exercise", "error", err)
			continue
		}
		valid = append(valid, e)
	}

	trainings, err := s.trainingRepository.ByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load trainings: %w", err)
	}

	views, err := s.views(ctx, valid, trainings)
	if err != nil {
		return nil, err
	}

	list := &ExerciseList{Exercises: views, ExercisesNumber: len(views)}
	for _, v := range views {
		if !v.IsDefault {
			list.CustomExercisesNumber++
		}
		if v.PB != 0 {
			list.PBNumber++
		}
	}

	return list, nil
}

// HasDefault reports whether a default exercise with this name exists.
func (s *ExerciseService) HasDefault(ctx context.Context, name string) (bool, error) {
	_, err := s.exerciseRepository.DefaultByName(ctx, name)
	if errors.Is(err, repository.ErrExerciseNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes an exercise. Founders delete their own exercises, admins
// also delete default ones.
func (s *ExerciseService) Delete(ctx context.Context, actor *model.User, exerciseID string) error {
	exercise, err := s.editable(ctx, actor, exerciseID)
	if err != nil {
		return err
	}

	err = s.exerciseRepository.Delete(ctx, exercise.ID)
	if err != nil {
		return err
	}

	slog.Info("exercise deleted", "exercise_id", exercise.ID, "user_id", actor.ID)
	return nil
}

// AddMovement appends a movement to an exercise and returns its position.
// The same founder and admin rules as Delete apply.
func (s *ExerciseService) AddMovement(ctx context.Context, actor *model.User, exerciseID string, in MovementInput) (int, error) {
	exercise, err := s.editable(ctx, actor, exerciseID)
	if err != nil {
		return 0, err
	}

	nm, err := s.resolveMovement(ctx, 1, in)
	if err != nil {
		return 0, err
	}

	number, err := s.exerciseRepository.AppendMovement(ctx, exercise.ID, nm)
	if err != nil {
		return 0, fmt.Errorf("failed to append movement: %w", err)
	}

	slog.Info("movement appended", "exercise_id", exercise.ID, "movement_id", nm.MovementID, "number", number)
	return number, nil
}

// editable loads an exercise actor may change. Another user's private
// exercise is reported as not found.
func (s *ExerciseService) editable(ctx context.Context, actor *model.User, exerciseID string) (*model.Exercise, error) {
	exercise, err := s.exerciseRepository.ByID(ctx, exerciseID)
	if err != nil {
		return nil, err
	}

	switch {
	case exercise.FounderID == actor.ID:
	case exercise.IsDefault && actor.IsAdmin:
	case exercise.IsDefault:
		return nil, ErrForbidden
	default:
		return nil, repository.ErrExerciseNotFound
	}
	return exercise, nil
}

func checkExercise(e *model.Exercise) error {
	if !e.ExerciseType.Valid() {
		return &MalformedRecordError{Entity: "exercise", ID: e.ID, Err: fmt.Errorf("unknown exercise type %q", e.ExerciseType)}
	}
	if !e.GoalType.Valid() {
		return &MalformedRecordError{Entity: "exercise", ID: e.ID, Err: fmt.Errorf("unknown goal type %q", e.GoalType)}
	}
	return nil
}

// views assembles projections with movements, settings and the PB found in trainings.
func (s *ExerciseService) views(ctx context.Context, exercises []*model.Exercise, trainings []*model.Training) ([]ExerciseView, error) {
	if len(exercises) == 0 {
		return []ExerciseView{}, nil
	}

	ids := make([]string, 0, len(exercises))
	for _, e := range exercises {
		if err := checkExercise(e); err != nil {
			return nil, err
		}
		ids = append(ids, e.ID)
	}

	rows, err := s.exerciseRepository.MovementRows(ctx, ids...)
	if err != nil {
		return nil, fmt.Errorf("failed to load exercise movements: %w", err)
	}
	movements := groupMovementRows(rows)

	byExercise := make(map[string][]*model.Training)
	for _, t := range trainings {
		byExercise[t.ExerciseID] = append(byExercise[t.ExerciseID], t)
	}

	views := make([]ExerciseView, 0, len(exercises))
	for _, e := range exercises {
		entries := movements[e.ID]
		if entries == nil {
			entries = []MovementEntry{}
		}
		views = append(views, ExerciseView{
			ID:           e.ID,
			Name:         e.Name,
			ExerciseType: e.ExerciseType,
			Description:  e.Description,
			GoalType:     e.GoalType,
			GoalValue:    e.GoalValue,
			IsDefault:    e.IsDefault,
			PB:           ComputePB(e.GoalType, performanceValues(byExercise[e.ID])),
			Movements:    entries,
			FounderID:    e.FounderID,
		})
	}

	return views, nil
}

// groupMovementRows folds rows ordered by exercise, movement number and
// setting position into movement entries per exercise.
func groupMovementRows(rows []*model.ExerciseMovementRow) map[string][]MovementEntry {
	grouped := make(map[string][]MovementEntry)
	lastMovement := ""

	for _, row := range rows {
		entries := grouped[row.ExerciseID]
		if row.ExerciseMovementID != lastMovement {
			entries = append(entries, MovementEntry{
				ID:       row.MovementID,
				Name:     row.MovementName,
				Order:    row.MovementNumber,
				Settings: []SettingEntry{},
			})
			lastMovement = row.ExerciseMovementID
		}

		if row.SettingName != nil && row.SettingValue != nil {
			last := &entries[len(entries)-1]
			last.Settings = append(last.Settings, SettingEntry{Name: *row.SettingName, Value: *row.SettingValue})
		}
		grouped[row.ExerciseID] = entries
	}

	return grouped
}
