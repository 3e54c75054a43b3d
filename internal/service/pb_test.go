package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fitlg/fitlg/internal/model"
)

func TestComputePB(t *testing.T) {
	for name, tc := range map[string]struct {
		goal   model.GoalType
		values []*int
		want   int
	}{
		"rounds keep the lowest":        {goal: model.GoalTypeRounds, values: []*int{intPtr(25), intPtr(15)}, want: 15},
		"distance keeps the lowest":     {goal: model.GoalTypeDistance, values: []*int{intPtr(600), intPtr(540)}, want: 540},
		"zeros are ignored":             {goal: model.GoalTypeRounds, values: []*int{intPtr(0), intPtr(25), intPtr(0), intPtr(15)}, want: 15},
		"duration keeps the highest":    {goal: model.GoalTypeDuration, values: []*int{intPtr(230), intPtr(330)}, want: 330},
		"pending trainings are skipped": {goal: model.GoalTypeRounds, values: []*int{nil, intPtr(42), nil}, want: 42},
		"unspecified keeps the lowest":  {goal: model.GoalTypeUnspecified, values: []*int{intPtr(9), intPtr(3)}, want: 3},
		"no trainings":                  {goal: model.GoalTypeRounds, want: 0},
		"only pending":                  {goal: model.GoalTypeDuration, values: []*int{nil}, want: 0},
	} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, ComputePB(tc.goal, tc.values))
		})
	}
}
