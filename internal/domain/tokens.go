package domain

// ResetToken is the plaintext password reset token. It is only ever emailed.
type ResetToken string

// ResetTokenHash is the one-way hash of a ResetToken. It is only ever persisted.
type ResetTokenHash string

const (
	VerificationTokenBytes = 40
	RefreshTokenBytes      = 40
	ResetTokenBytes        = 70
)
