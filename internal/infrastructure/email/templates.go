package email

import (
	htmltemplate "html/template"
	texttemplate "text/template"
)

type templateData struct {
	Name string
	URL  string
}

var (
	verifyHTML = htmltemplate.Must(htmltemplate.New("verify_html").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<h1 style="color: #4CAF50;">Verify Your Email Address</h1>
		<p>Hello {{.Name}},</p>
		<p>Please confirm your email by clicking on the following link:</p>
		<div style="text-align: center; margin: 30px 0;">
			<a href="{{.URL}}" style="background-color: #4CAF50; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">Verify Email</a>
		</div>
		<p>Or copy and paste this link into your browser:</p>
		<p style="word-break: break-all; color: #666;">{{.URL}}</p>
		<p style="color: #999; font-size: 12px;">If you didn't create an account, please ignore this email.</p>
	</div>
</body>
</html>`))

	verifyText = texttemplate.Must(texttemplate.New("verify_text").Parse(
		"Hello {{.Name}},\n\nPlease confirm your email by opening this link:\n\n{{.URL}}\n"))

	resetHTML = htmltemplate.Must(htmltemplate.New("reset_html").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<h1 style="color: #2196F3;">Reset Your Password</h1>
		<p>Hello {{.Name}},</p>
		<p>Please reset your password by clicking on the following link:</p>
		<div style="text-align: center; margin: 30px 0;">
			<a href="{{.URL}}" style="background-color: #2196F3; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">Reset Password</a>
		</div>
		<p>Or copy and paste this link into your browser:</p>
		<p style="word-break: break-all; color: #666;">{{.URL}}</p>
		<p>This link will expire in 10 minutes.</p>
		<p style="color: #999; font-size: 12px;">If you didn't request a password reset, please ignore this email.</p>
	</div>
</body>
</html>`))

	resetText = texttemplate.Must(texttemplate.New("reset_text").Parse(
		"Hello {{.Name}},\n\nReset your password by opening this link:\n\n{{.URL}}\n\nThis link will expire in 10 minutes.\n"))
)
