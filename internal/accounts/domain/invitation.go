package domain

import "time"

type InvitationState string

const (
	InvitationInvited    InvitationState = "invited"
	InvitationAccepted   InvitationState = "accepted"
	InvitationRegistered InvitationState = "registered"
)

type Invitation struct {
	TokenHash string // cleared once consumed; loaded only with store.WithSecrets
	BranchID  string
	InvitedBy string
	State     InvitationState
	ExpiresAt time.Time
}
