package ticket

import "errors"

var (
	ErrTicketNotFound       = errors.New("ticket not found")
	ErrTicketExpired        = errors.New("ticket expired")
	ErrAuthenticationFailed = errors.New("authentication failed")
)
