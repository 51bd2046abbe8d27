package domain

import "time"

// Purpose tags what an outstanding one-time code was issued for.
type Purpose string

const (
	PurposeVerify   Purpose = "verify"
	PurposeReset    Purpose = "reset"
	PurposeRegister Purpose = "register"
)

// Challenge is the single outstanding one-time code of an account. Issuing a
// new one replaces the previous challenge whatever its purpose.
type Challenge struct {
	CodeHash  string
	Purpose   Purpose
	ExpiresAt time.Time
}

// Expired reports whether the challenge is past its window at now.
func (c Challenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
