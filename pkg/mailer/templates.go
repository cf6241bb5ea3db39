package mailer

import "fmt"

// ConfirmationEmail builds the message asking a new user to confirm their
// address. confirmURL already contains the user id.
func ConfirmationEmail(name, confirmURL string) (subject, body string) {
	subject = "Confirm your email - MiniBank"
	body = fmt.Sprintf(`Hello, %s!

Thanks for registering with MiniBank. To finish setting up your account, please confirm your email by clicking the link below:

%s

If you did not sign up, you can ignore this message.

Best regards,
The MiniBank Team`, name, confirmURL)
	return subject, body
}

// WelcomeEmail builds the message sent once the user's account is open.
func WelcomeEmail(name string) (subject, body string) {
	subject = "Welcome to MiniBank"
	body = fmt.Sprintf(`Hello, %s!

Your MiniBank account has been created and is ready to use.

You can now:
- Make deposits
- Withdraw funds
- Check your balance

Sign in and explore what's available. If you have any questions, contact our support team.

Best regards,
The MiniBank Team`, name)
	return subject, body
}
