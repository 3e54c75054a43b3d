package service

import "fmt"

func accountActivationEmailTemplate(username, activateURL, appName string) (string, string) {
	subject := fmt.Sprintf("Activate your %s account", appName)
	body := fmt.Sprintf(`Hi %s,

Thanks for signing up. Please confirm your email address to activate your account:
%s

The link can only be used once.

If you didn't create an account, you can safely ignore this email.

Best,
The %s Team`, username, activateURL, appName)

	return subject, body
}

func passwordResetEmailTemplate(username, resetURL, appName string) (string, string) {
	subject := fmt.Sprintf("Reset your password for %s", appName)
	body := fmt.Sprintf(`Hi %s,

You requested to reset your password. Follow this link to choose a new one:
%s

This link expires in 1 hour and can only be used once.

If you didn't request this, you can safely ignore this email. Your password won't be changed.

Best,
The %s Team`, username, resetURL, appName)

	return subject, body
}

func passwordChangedEmailTemplate(username, appName string) (string, string) {
	subject := fmt.Sprintf("Your %s password was changed", appName)
	body := fmt.Sprintf(`Hi %s,

The password of your account was just changed.

If this wasn't you, reset your password right away from the login page.

Best,
The %s Team`, username, appName)

	return subject, body
}
