package mail

import "context"

// Mailer delivers account-lifecycle emails. Implementations render the
// body themselves; callers only supply the recipient and the token that
// goes into the link.
type Mailer interface {
	// SendVerificationEmail sends the "confirm your address" mail. baseURL
	// is the externally visible origin used to build the confirmation link.
	SendVerificationEmail(ctx context.Context, to, baseURL, token string) error

	// SendPasswordResetEmail sends the password reset mail carrying the
	// reset token.
	SendPasswordResetEmail(ctx context.Context, to, baseURL, token string) error
}
