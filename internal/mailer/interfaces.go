package mailer

type Service interface {
	SendVerificationEmail(toEmail, toName, verifyURL, token string) error
	SendPasswordResetEmail(toEmail, toName, resetURL string) error
}
