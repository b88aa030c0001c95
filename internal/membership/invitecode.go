package membership

import (
	"math/rand/v2"

	"staffcall-backend/internal/parse"
)

const inviteAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// CodeGenerator returns a candidate invite code. Candidates may collide with
// existing codes; the caller re-rolls until one is free.
type CodeGenerator func() string

// RandomInviteCode draws parse.InviteCodeLength characters from A-Z0-9.
func RandomInviteCode() string {
	b := make([]byte, parse.InviteCodeLength)
	for i := range b {
		b[i] = inviteAlphabet[rand.IntN(len(inviteAlphabet))]
	}
	return string(b)
}
