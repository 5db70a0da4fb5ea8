package email

import "errors"

var (
	ErrInvalidConfig     = errors.New("email: invalid configuration")
	ErrInvalidRecipient  = errors.New("email: invalid recipient address")
	ErrFailedToSendEmail = errors.New("email: failed to send")
)
