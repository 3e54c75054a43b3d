package model

import (
	"fmt"
	"strings"
	"time"
)

type ExerciseType string

const (
	ExerciseTypeRunning      ExerciseType = "RUNNING"
	ExerciseTypeForTime      ExerciseType = "FORTIME"
	ExerciseTypeAMRAP        ExerciseType = "AMRAP"
	ExerciseTypeWarmup       ExerciseType = "WARMUP"
	ExerciseTypeStrength     ExerciseType = "STRENGTH"
	ExerciseTypeEMOM         ExerciseType = "EMOM"
	ExerciseTypeConditioning ExerciseType = "CONDITIONNING"
)

var ExerciseTypes = []ExerciseType{
	ExerciseTypeRunning,
	ExerciseTypeForTime,
	ExerciseTypeAMRAP,
	ExerciseTypeWarmup,
	ExerciseTypeStrength,
	ExerciseTypeEMOM,
	ExerciseTypeConditioning,
}

var exerciseTypeLabels = map[ExerciseType]string{
	ExerciseTypeRunning:      "Running",
	ExerciseTypeForTime:      "For time",
	ExerciseTypeAMRAP:        "AMRAP",
	ExerciseTypeWarmup:       "Warm-up",
	ExerciseTypeStrength:     "Strength",
	ExerciseTypeEMOM:         "EMOM",
	ExerciseTypeConditioning: "Conditioning",
}

func (t ExerciseType) Label() string {
	if l, ok := exerciseTypeLabels[t]; ok {
		return l
	}
	return string(t)
}

func (t ExerciseType) Valid() bool {
	_, ok := exerciseTypeLabels[t]
	return ok
}

// ParseExerciseType accepts any casing of a known exercise type.
func ParseExerciseType(s string) (ExerciseType, error) {
	t := ExerciseType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown exercise type %q", s)
	}
	return t, nil
}

// GoalType is shared by exercises (goal_type) and trainings (performance_type).
type GoalType string

const (
	GoalTypeDuration    GoalType = "duree"
	GoalTypeRounds      GoalType = "round"
	GoalTypeDistance    GoalType = "distance"
	GoalTypeUnspecified GoalType = "anyone"
)

func (g GoalType) Valid() bool {
	switch g {
	case GoalTypeDuration, GoalTypeRounds, GoalTypeDistance, GoalTypeUnspecified:
		return true
	}
	return false
}

// GoalTypeFor derives the goal type of an exercise from its type.
func GoalTypeFor(t ExerciseType) GoalType {
	switch t {
	case ExerciseTypeRunning:
		return GoalTypeDistance
	case ExerciseTypeAMRAP, ExerciseTypeEMOM:
		return GoalTypeDuration
	default:
		return GoalTypeRounds
	}
}

// PerformanceTypeFor derives what a training of this exercise type records:
// elapsed time for FORTIME and RUNNING, completed rounds for AMRAP and EMOM.
func PerformanceTypeFor(t ExerciseType) GoalType {
	switch t {
	case ExerciseTypeForTime, ExerciseTypeRunning:
		return GoalTypeDuration
	case ExerciseTypeAMRAP, ExerciseTypeEMOM:
		return GoalTypeRounds
	default:
		return GoalTypeUnspecified
	}
}

type Exercise struct {
	ID           string       `db:"id"`
	Name         string       `db:"name"`
	Description  string       `db:"description"`
	ExerciseType ExerciseType `db:"exercise_type"`
	GoalType     GoalType     `db:"goal_type"`
	GoalValue    *int         `db:"goal_value"`
	FounderID    string       `db:"founder_id"`
	IsDefault    bool         `db:"is_default"`
	CreatedAt    time.Time    `db:"created_at"`
}

// ExerciseMovement is one movement placed in an exercise.
type ExerciseMovement struct {
	ID             string `db:"id"`
	ExerciseID     string `db:"exercise_id"`
	MovementID     string `db:"movement_id"`
	MovementNumber int    `db:"movement_number"`
}

// ExerciseMovementSetting is the value of one setting for one ExerciseMovement.
type ExerciseMovementSetting struct {
	ID                 string `db:"id"`
	ExerciseMovementID string `db:"exercise_movement_id"`
	SettingID          string `db:"setting_id"`
	SettingValue       int    `db:"setting_value"`
	Position           int    `db:"position"`
}

// ExerciseMovementRow is the flattened join used to assemble exercise projections.
// Setting columns are NULL for a movement carrying no setting values.
type ExerciseMovementRow struct {
	ExerciseID         string  `db:"exercise_id"`
	ExerciseMovementID string  `db:"exercise_movement_id"`
	MovementNumber     int     `db:"movement_number"`
	MovementID         string  `db:"movement_id"`
	MovementName       string  `db:"movement_name"`
	SettingName        *string `db:"setting_name"`
	SettingValue       *int    `db:"setting_value"`
}
