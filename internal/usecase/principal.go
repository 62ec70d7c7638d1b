package usecase

import "strings"

// Principal is the authenticated caller as resolved by the transport layer.
type Principal struct {
	UserID  string
	Email   string
	IsAdmin bool
}

func (p Principal) normalized() Principal {
	p.UserID = strings.TrimSpace(p.UserID)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	return p
}
