package app

import (
	"crypto/rand"
	"fmt"

	"github.com/google/uuid"
)

func newID() string {
	return uuid.NewString()
}

// ticketNumberAlphabet avoids 0/O and 1/I so door staff can read codes
// aloud without ambiguity.
const ticketNumberAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// newTicketNumber returns a short human-readable code like "TKT-7GK2QF9M".
// Uniqueness is enforced per event by the store, not here.
func newTicketNumber() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("TKT-%.8s", uuid.NewString())
	}
	for i := range b {
		b[i] = ticketNumberAlphabet[int(b[i])%len(ticketNumberAlphabet)]
	}
	return "TKT-" + string(b)
}
