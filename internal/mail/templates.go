package mail

import "fmt"

// PasswordReset builds the forgot-password mail for a user. resetURL
// points at the frontend's reset page for that user.
func PasswordReset(username, to, resetURL string) Message {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>We received a request to reset your password for the account associated with this email address. If you made this request, click the link below to reset your password:</p>
		<p><a href="%s" target="_blank">Reset your password</a></p>
		<p>If you did not request a password reset, please ignore this email. We recommend that you do not share your account details with anyone.</p>
		<p>Best regards,<br/>The Dusk Blog Team</p>`,
		username, resetURL)
	return Message{
		To:       to,
		Subject:  "Password Reset Request - Dusk Blog",
		HTMLBody: body,
	}
}

// ContactAdmin builds the contact-form mail delivered to the admin.
func ContactAdmin(adminName, adminEmail, senderName, senderEmail, subject, message string) Message {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>You have received a new message through the contact form.</p>
		<p><strong>Details:</strong></p>
		<ul>
			<li><strong>Name:</strong> %s</li>
			<li><strong>Email:</strong> %s</li>
			<li><strong>Subject:</strong> %s</li>
			<li><strong>Message:</strong> %s</li>
		</ul>
		<p>Best regards,<br/>The Dusk Blog Team</p>`,
		adminName, senderName, senderEmail, subject, message)
	return Message{
		To:       adminEmail,
		Subject:  fmt.Sprintf("New Contact Form Submission: %s", subject),
		HTMLBody: body,
	}
}
