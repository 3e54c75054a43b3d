package service

import "github.com/fitlg/fitlg/internal/model"

// ComputePB returns the personal best among recorded performance values.
// Duration goals keep the highest value, every other goal keeps the lowest
// non-zero one. Pending trainings (nil values) are ignored; no value gives 0.
func ComputePB(goalType model.GoalType, values []*int) int {
	pb := 0
	for _, v := range values {
		if v == nil {
			continue
		}
		if goalType == model.GoalTypeDuration {
			if *v > pb {
				pb = *v
			}
			continue
		}
		if *v != 0 && (pb == 0 || *v < pb) {
			pb = *v
		}
	}
	return pb
}

func performanceValues(trainings []*model.Training) []*int {
	values := make([]*int, 0, len(trainings))
	for _, t := range trainings {
		values = append(values, t.PerformanceValue)
	}
	return values
}
