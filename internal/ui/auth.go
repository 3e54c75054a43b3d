package ui

import "github.com/a-h/templ"

func LoginPage(flash Flash, username string) templ.Component {
	return Layout("Log in", flash, Card("Log in",
		PostForm("/users/login/",
			Field("Username", "username", "text", username, "required", "", "autocomplete", "username"),
			Field("Password", "password", "password", "", "required", "", "autocomplete", "current-password"),
			Button("Log in"),
		),
		El("p", Attrs{"class", "mt-4 text-sm"},
			El("a", Attrs{"href", "/users/password-forgotten/", "class", "underline"}, Text("Forgot your password?")),
		),
		El("p", Attrs{"class", "mt-2 text-sm"},
			Text("No account yet? "),
			El("a", Attrs{"href", "/users/register/", "class", "underline"}, Text("Sign up")),
		),
	))
}

func RegisterPage(flash Flash, username, email string) templ.Component {
	return Layout("Sign up", flash, Card("Create an account",
		PostForm("/users/register/",
			Field("Username", "username", "text", username, "required", "", "autocomplete", "username"),
			Field("Email", "mail", "email", email, "required", "", "autocomplete", "email"),
			Field("Password", "password", "password", "", "required", "", "autocomplete", "new-password"),
			Field("Confirm password", "password_check", "password", "", "required", "", "autocomplete", "new-password"),
			Button("Sign up"),
		),
		El("p", Attrs{"class", "mt-4 text-sm"},
			Text("Already registered? "),
			El("a", Attrs{"href", "/users/login/", "class", "underline"}, Text("Log in")),
		),
	))
}

func PasswordForgottenPage(flash Flash, email string) templ.Component {
	return Layout("Password forgotten", flash, Card("Reset your password",
		El("p", Attrs{"class", "mb-3 text-sm text-gray-600"},
			Text("Enter the email of your account and we will send you a link to choose a new password."),
		),
		PostForm("/users/password-forgotten/",
			Field("Email", "mail", "email", email, "required", "", "autocomplete", "email"),
			Button("Send link"),
		),
	))
}

func PasswordResetPage(flash Flash) templ.Component {
	return Layout("New password", flash, Card("Choose a new password",
		PostForm("/users/password-reset/",
			Field("New password", "password", "password", "", "required", "", "autocomplete", "new-password"),
			Field("Confirm password", "password_check", "password", "", "required", "", "autocomplete", "new-password"),
			Button("Save password"),
		),
	))
}

func ProfilePage(flash Flash, username, email string) templ.Component {
	return Layout("Profile", flash, Group(
		Card("Account",
			El("dl", Attrs{"class", "grid grid-cols-2 gap-2 text-sm"},
				El("dt", Attrs{"class", "font-medium"}, Text("Username")),
				El("dd", nil, Text(username)),
				El("dt", Attrs{"class", "font-medium"}, Text("Email")),
				El("dd", nil, Text(email)),
			),
		),
		Card("Change password",
			PostForm("/app/profile/",
				Field("Current password", "old_password", "password", "", "required", "", "autocomplete", "current-password"),
				Field("New password", "new_password1", "password", "", "required", "", "autocomplete", "new-password"),
				Field("Confirm new password", "new_password2", "password", "", "required", "", "autocomplete", "new-password"),
				Button("Change password"),
			),
		),
	))
}

func NotFoundPage() templ.Component {
	return Layout("Not found", Flash{}, Card("Page not found",
		El("p", nil, Text("The page you are looking for does not exist.")),
		El("a", Attrs{"href", "/", "class", "mt-3 inline-block underline"}, Text("Back home")),
	))
}
