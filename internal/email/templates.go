package email

import "fmt"

// Plain-text templates. Each returns (subject, body).

func welcomeTemplate(username, frontendURL string) (string, string) {
	subject := "Welcome to Code Snippets!"
	body := fmt.Sprintf(`Hi %s,

Welcome to Code Snippets! Your account is ready.

Start saving and sharing your snippets here: %s

Best,
The Code Snippets Team`, username, frontendURL)

	return subject, body
}

func passwordResetTemplate(link string) (string, string) {
	subject := "Reset your Code Snippets password"
	body := fmt.Sprintf(`You requested a password reset. Use this link to choose a new password:
%s

This link expires in 1 hour and can only be used once.

If you didn't request this, you can safely ignore this email. Your password won't be changed.

Best,
The Code Snippets Team`, link)

	return subject, body
}

func passwordResetConfirmationTemplate(username string) (string, string) {
	subject := "Your Code Snippets password was changed"
	body := fmt.Sprintf(`Hi %s,

Your password was just changed. If this was you, no action is needed.

If you didn't change your password, contact us immediately — your account may be compromised.

Best,
The Code Snippets Team`, username)

	return subject, body
}

func contactTemplate(name, replyTo, subject, message string) (string, string) {
	mailSubject := fmt.Sprintf("[Contact] %s", subject)
	body := fmt.Sprintf(`New contact form submission

From: %s <%s>

%s`, name, replyTo, message)

	return mailSubject, body
}
