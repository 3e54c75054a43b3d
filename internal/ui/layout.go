package ui

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/fitlg/fitlg/internal/ctxkeys"
)

// Flash carries the messages shown above the page content.
type Flash struct {
	Notice string
	Error  string
}

type navItem struct {
	href  string
	label string
}

var appNav = []navItem{
	{"/app/trainings/", "Trainings"},
	{"/app/exercices/", "Exercises"},
	{"/app/profile/", "Profile"},
}

// Layout wraps content in the page shell. The signed in user, CSRF token and
// app name are read from the request context.
func Layout(title string, flash Flash, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		appName := "fitlg"
		if cfg := ctxkeys.Config(ctx); cfg != nil && cfg.AppName != "" {
			appName = cfg.AppName
		}

		_, err := io.WriteString(w, "<!DOCTYPE html>")
		if err != nil {
			return err
		}

		page := El("html", Attrs{"lang", "en"},
			El("head", nil,
				Void("meta", Attrs{"charset", "utf-8"}),
				Void("meta", Attrs{"name", "viewport", "content", "width=device-width, initial-scale=1"}),
				Void("meta", Attrs{"name", "csrf-token", "content", ctxkeys.CSRFToken(ctx)}),
				El("title", nil, Textf("%s | %s", title, appName)),
				Void("link", Attrs{"rel", "stylesheet", "href", "/assets/css/app.css"}),
			),
			El("body", Attrs{"class", "min-h-screen bg-gray-50 text-gray-900"},
				header(ctx, appName),
				El("main", Attrs{"class", "mx-auto max-w-4xl p-4"},
					Alerts(flash),
					content,
				),
				El("script", Attrs{"src", "/assets/js/app.js", "nonce", templ.GetNonce(ctx), "defer", ""}),
			),
		)
		return page.Render(ctx, w)
	})
}

func header(ctx context.Context, appName string) templ.Component {
	user := ctxkeys.User(ctx)
	path := ctxkeys.URLPath(ctx)

	if user == nil {
		return El("header", Attrs{"class", "border-b bg-white"},
			El("nav", Attrs{"class", "mx-auto flex max-w-4xl items-center justify-between p-4"},
				El("a", Attrs{"href", "/", "class", "font-bold"}, Text(appName)),
				El("div", Attrs{"class", "flex gap-4"},
					El("a", Attrs{"href", "/users/login/"}, Text("Log in")),
					El("a", Attrs{"href", "/users/register/"}, Text("Sign up")),
				),
			),
		)
	}

	links := make([]templ.Component, 0, len(appNav)+1)
	for _, item := range appNav {
		class := Class("text-gray-600 hover:text-gray-900", activeClass(path == item.href))
		links = append(links, El("a", Attrs{"href", item.href, "class", class}, Text(item.label)))
	}
	links = append(links, El("a", Attrs{"href", "/users/logout/", "class", "text-gray-600"}, Text("Log out")))

	return El("header", Attrs{"class", "border-b bg-white"},
		El("nav", Attrs{"class", "mx-auto flex max-w-4xl items-center justify-between p-4"},
			El("a", Attrs{"href", "/", "class", "font-bold"}, Text(appName)),
			El("span", Attrs{"class", "text-sm text-gray-500"}, Text(user.Username)),
			El("div", Attrs{"class", "flex gap-4"}, links...),
		),
	)
}

func activeClass(active bool) string {
	if active {
		return "font-semibold text-gray-900"
	}
	return ""
}

// Alerts renders the flash messages, if any.
func Alerts(flash Flash) templ.Component {
	return Group(
		If(flash.Notice != "", El("div", Attrs{"role", "status", "class", "mb-4 rounded border border-green-300 bg-green-50 p-3 text-green-800"}, Text(flash.Notice))),
		If(flash.Error != "", El("div", Attrs{"role", "alert", "class", "mb-4 rounded border border-red-300 bg-red-50 p-3 text-red-800"}, Text(flash.Error))),
	)
}

// Card is a titled panel.
func Card(title string, children ...templ.Component) templ.Component {
	return El("section", Attrs{"class", "mb-6 rounded-lg border bg-white p-4 shadow-sm"},
		El("h2", Attrs{"class", "mb-3 text-lg font-semibold"}, Text(title)),
		Group(children...),
	)
}

// Field renders a labelled input.
func Field(label, name, inputType, value string, extra ...string) templ.Component {
	attrs := Attrs{"id", name, "name", name, "type", inputType, "class", "w-full rounded border p-2"}
	if value != "" {
		attrs = append(attrs, "value", value)
	}
	attrs = append(attrs, extra...)

	return El("div", Attrs{"class", "mb-3"},
		El("label", Attrs{"for", name, "class", "mb-1 block text-sm font-medium"}, Text(label)),
		Void("input", attrs),
	)
}

// CSRFField is the hidden form field checked by the CSRF middleware.
func CSRFField() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return Void("input", Attrs{"type", "hidden", "name", "csrf_token", "value", ctxkeys.CSRFToken(ctx)}).Render(ctx, w)
	})
}

// PostForm is a form posting to action with the CSRF field included.
func PostForm(action string, children ...templ.Component) templ.Component {
	return El("form", Attrs{"method", "post", "action", action},
		CSRFField(),
		Group(children...),
	)
}

func Button(label string, class ...string) templ.Component {
	classes := append([]string{"rounded bg-gray-900 px-4 py-2 text-white hover:bg-gray-700"}, class...)
	return El("button", Attrs{"type", "submit", "class", Class(classes...)}, Text(label))
}
