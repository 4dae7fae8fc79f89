package models

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInvite      = errors.New("invalid invite code")
	ErrEmptyResponse      = errors.New("response must not be empty")
	ErrEmptyMessage       = errors.New("message must not be empty")
	ErrTicketResolved     = errors.New("ticket already resolved")
	ErrTicketNotPending   = errors.New("ticket is not pending")
	ErrNotTicketOwner     = errors.New("ticket belongs to another installer")
)
