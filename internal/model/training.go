package model

import "time"

type Training struct {
	ID               string    `db:"id"`
	FounderID        string    `db:"founder_id"`
	ExerciseID       string    `db:"exercise_id"`
	Date             time.Time `db:"date"`
	Done             bool      `db:"done"`
	PerformanceType  GoalType  `db:"performance_type"`
	PerformanceValue *int      `db:"performance_value"`
}
