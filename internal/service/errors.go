package service

import "errors"

// Domain-level errors surfaced to clients. Store failures never appear
// here: they are absorbed into the registry fallback at the call site.
var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomCodeTaken   = errors.New("room code already in use")
	ErrMessageNotFound = errors.New("message not found")
	ErrRequestNotFound = errors.New("join request not found")
	ErrInternalServer  = errors.New("internal server error")
)
