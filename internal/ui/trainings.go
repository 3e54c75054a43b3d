package ui

import (
	"github.com/a-h/templ"

	"github.com/fitlg/fitlg/internal/model"
	"github.com/fitlg/fitlg/internal/service"
)

func TrainingsPage(flash Flash, list *service.TrainingList) templ.Component {
	rows := make([]templ.Component, 0, len(list.Trainings))
	for _, t := range list.Trainings {
		rows = append(rows, trainingRow(t))
	}

	return Layout("Trainings", flash, Group(
		El("div", Attrs{"class", "mb-6 grid grid-cols-3 gap-4 text-center"},
			stat("Trainings", list.TrainingsNumber),
			stat("Done", list.TrainingsDoneNumber),
			stat("Personal bests", list.PBNumber),
		),
		Card("Trainings",
			If(len(rows) == 0, El("p", Attrs{"class", "text-gray-500"},
				Text("No training yet. Pick an exercise in "),
				El("a", Attrs{"href", "/app/exercices/", "class", "underline"}, Text("the exercise list")),
				Text(" to start one."),
			)),
			If(len(rows) > 0, El("table", Attrs{"class", "w-full text-left text-sm"},
				El("thead", nil, El("tr", nil,
					El("th", nil, Text("Date")),
					El("th", nil, Text("Exercise")),
					El("th", nil, Text("Performance")),
					El("th", nil, Text("PB")),
				)),
				El("tbody", nil, rows...),
			)),
		),
	))
}

func trainingRow(t service.TrainingView) templ.Component {
	var performance templ.Component
	if t.Done {
		performance = Group(
			Text(t.PerformanceLabel()),
			If(t.IsPB(), El("span", Attrs{"class", "ml-2 rounded bg-yellow-200 px-1 text-xs"}, Text("PB"))),
		)
	} else {
		performance = completionForm(t)
	}

	return El("tr", Attrs{"class", "border-t"},
		El("td", Attrs{"class", "py-2"}, Text(t.Date.Local().Format("2006-01-02 15:04"))),
		El("td", nil, El("a", Attrs{"href", "/app/exercise/" + t.Exercise.ID + "/", "class", "underline"}, Text(t.Exercise.Name))),
		El("td", nil, performance),
		El("td", nil, Text(t.PBLabel())),
	)
}

func completionForm(t service.TrainingView) templ.Component {
	input := Attrs{"name", "performance_value", "required", "", "class", "rounded border p-1"}
	if t.PerformanceType == model.GoalTypeDuration {
		input = append(input, "type", "time", "step", "1")
	} else {
		input = append(input, "type", "number", "min", "0", "step", "1")
	}

	return El("form", Attrs{"method", "post", "action", "/app/trainings/", "class", "flex gap-2"},
		CSRFField(),
		Void("input", Attrs{"type", "hidden", "name", "training_pk", "value", t.ID}),
		Void("input", input),
		Button("Save", "px-2 py-1"),
	)
}
