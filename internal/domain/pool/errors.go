package pool

import "errors"

var (
	ErrInvalidGroup    = errors.New("invalid group")
	ErrInvalidAmount   = errors.New("total bet amount must be greater than zero")
	ErrBelowMinimum    = errors.New("total bet amount is below the configured minimum")
	ErrMemberExists    = errors.New("user is already a member")
	ErrNotMember       = errors.New("user is not a member")
	ErrInviteExists    = errors.New("invite already pending")
	ErrInvalidInvite   = errors.New("invalid invite")
	ErrMemberPaid      = errors.New("member has already paid")
	ErrOwnerRemoval    = errors.New("group owner cannot be removed")
	ErrGroupNotFound   = errors.New("group not found")
	ErrVersionConflict = errors.New("group was modified concurrently")
)
