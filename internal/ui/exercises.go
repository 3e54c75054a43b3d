package ui

import (
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/fitlg/fitlg/internal/model"
	"github.com/fitlg/fitlg/internal/service"
)

// CanDelete reports whether user may delete the exercise.
func CanDelete(user *model.User, e service.ExerciseView) bool {
	if user == nil {
		return false
	}
	return e.FounderID == user.ID || (e.IsDefault && user.IsAdmin)
}

func ExercisesPage(flash Flash, user *model.User, list *service.ExerciseList) templ.Component {
	rows := make([]templ.Component, 0, len(list.Exercises))
	for _, e := range list.Exercises {
		rows = append(rows, exerciseRow(user, e))
	}

	return Layout("Exercises", flash, Group(
		El("div", Attrs{"class", "mb-6 grid grid-cols-3 gap-4 text-center"},
			stat("Exercises", list.ExercisesNumber),
			stat("Custom exercises", list.CustomExercisesNumber),
			stat("Personal bests", list.PBNumber),
		),
		Card("Exercises",
			If(len(rows) == 0, El("p", Attrs{"class", "text-gray-500"}, Text("No exercise yet."))),
			If(len(rows) > 0, El("table", Attrs{"class", "w-full text-left text-sm"},
				El("thead", nil, El("tr", nil,
					El("th", nil, Text("Name")),
					El("th", nil, Text("Type")),
					El("th", nil, Text("Goal")),
					El("th", nil, Text("PB")),
					El("th", nil),
				)),
				El("tbody", nil, rows...),
			)),
		),
		exerciseBuilder(),
	))
}

func exerciseRow(user *model.User, e service.ExerciseView) templ.Component {
	name := Group(
		El("a", Attrs{"href", "/app/exercise/" + e.ID + "/", "class", "underline"}, Text(e.Name)),
		If(e.IsDefault, El("span", Attrs{"class", "ml-2 rounded bg-gray-200 px-1 text-xs"}, Text("default"))),
	)

	return El("tr", Attrs{"class", "border-t"},
		El("td", Attrs{"class", "py-2"}, name),
		El("td", nil, Text(e.ExerciseType.Label())),
		El("td", nil, Text(goalLabel(e))),
		El("td", nil, Text(e.PBLabel())),
		El("td", Attrs{"class", "text-right"},
			If(CanDelete(user, e), El("a", Attrs{"href", "/app/delete-exercise/" + e.ID + "/", "class", "text-red-600"}, Text("Delete"))),
		),
	)
}

func goalLabel(e service.ExerciseView) string {
	if e.GoalValue == nil {
		return string(e.GoalType)
	}
	v := *e.GoalValue
	switch e.GoalType {
	case model.GoalTypeDuration:
		return strconv.Itoa(v) + " min"
	case model.GoalTypeDistance:
		return strconv.Itoa(v) + " m"
	case model.GoalTypeRounds:
		return strconv.Itoa(v) + " rounds"
	}
	return strconv.Itoa(v)
}

func stat(label string, n int) templ.Component {
	return El("div", Attrs{"class", "rounded-lg border bg-white p-4"},
		El("div", Attrs{"class", "text-2xl font-bold"}, Text(strconv.Itoa(n))),
		El("div", Attrs{"class", "text-sm text-gray-500"}, Text(label)),
	)
}

// exerciseBuilder is the form driven by assets/js/app.js, which loads the
// movement catalog and posts the exercise as JSON.
func exerciseBuilder() templ.Component {
	typeOptions := make([]templ.Component, 0, len(model.ExerciseTypes))
	for _, t := range model.ExerciseTypes {
		typeOptions = append(typeOptions, El("option", Attrs{"value", string(t)}, Text(t.Label())))
	}

	goalOptions := []templ.Component{
		El("option", Attrs{"value", "Duree"}, Text("Duration (minutes)")),
		El("option", Attrs{"value", "Round"}, Text("Rounds")),
		El("option", Attrs{"value", "Distance"}, Text("Distance (km or m)")),
	}

	return Card("New exercise",
		El("form", Attrs{"id", "exercise-builder", "data-movements-url", "/app/get-all-movements/", "data-submit-url", "/app/add-exercise/"},
			Field("Name", "name", "text", "", "required", "", "maxlength", "100"),
			El("div", Attrs{"class", "mb-3"},
				El("label", Attrs{"for", "exerciseType", "class", "mb-1 block text-sm font-medium"}, Text("Type")),
				El("select", Attrs{"id", "exerciseType", "name", "exerciseType", "class", "w-full rounded border p-2"}, typeOptions...),
			),
			El("div", Attrs{"class", "mb-3"},
				El("label", Attrs{"for", "description", "class", "mb-1 block text-sm font-medium"}, Text("Description (markdown)")),
				El("textarea", Attrs{"id", "description", "name", "description", "rows", "3", "class", "w-full rounded border p-2"}),
			),
			El("div", Attrs{"class", "mb-3 grid grid-cols-2 gap-4"},
				El("div", nil,
					El("label", Attrs{"for", "goalType", "class", "mb-1 block text-sm font-medium"}, Text("Goal")),
					El("select", Attrs{"id", "goalType", "name", "goalType", "class", "w-full rounded border p-2"}, goalOptions...),
				),
				Field("Goal value", "goalValue", "number", "", "step", "any", "min", "0"),
			),
			El("div", Attrs{"id", "movements", "class", "mb-3"}),
			El("button", Attrs{"type", "button", "id", "add-movement", "class", "mb-3 rounded border px-3 py-1"}, Text("Add movement")),
			El("div", nil, Button("Create exercise")),
		),
	)
}

func ExercisePage(flash Flash, user *model.User, e *service.ExerciseView, descriptionHTML string) templ.Component {
	movements := make([]templ.Component, 0, len(e.Movements))
	for _, m := range e.Movements {
		settings := make([]string, 0, len(m.Settings))
		for _, s := range m.Settings {
			settings = append(settings, s.Name+": "+strconv.Itoa(s.Value))
		}
		movements = append(movements, El("li", Attrs{"class", "py-1"},
			Textf("%d. %s", m.Order, m.Name),
			If(len(settings) > 0, El("span", Attrs{"class", "ml-2 text-sm text-gray-500"}, Text(strings.Join(settings, ", ")))),
		))
	}

	return Layout(e.Name, flash, Group(
		Card(e.Name,
			El("p", Attrs{"class", "mb-2 text-sm text-gray-500"},
				Textf("%s, goal %s, personal best %s", e.ExerciseType.Label(), goalLabel(*e), e.PBLabel()),
			),
			El("div", Attrs{"class", "prose mb-4"}, templ.Raw(descriptionHTML)),
			El("ol", Attrs{"class", "mb-4"}, movements...),
			PostForm("/app/exercise/"+e.ID+"/", Button("Start a training")),
			If(CanDelete(user, *e), El("a", Attrs{"href", "/app/delete-exercise/" + e.ID + "/", "class", "mt-3 inline-block text-red-600"}, Text("Delete exercise"))),
		),
	))
}
