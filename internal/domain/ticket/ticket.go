package ticket

import (
	"time"

	"github.com/google/uuid"
)

// MatchTicket is one user's pending matchmaking request. GameUUID stays
// empty until the ticket is paired; once set it never changes and the
// ticket becomes a permanent pointer to its game.
type MatchTicket struct {
	UUID     string    `json:"uuid" bson:"uuid"`
	UID      string    `json:"uid" bson:"uid"`
	Created  time.Time `json:"created" bson:"created"`
	Polled   time.Time `json:"polled" bson:"polled"`
	Expires  time.Time `json:"expires" bson:"expires"`
	GameUUID string    `json:"gameuuid" bson:"gameuuid"`
}

func New(uid string, now time.Time, timeout time.Duration) MatchTicket {
	return MatchTicket{
		UUID:    uuid.New().String(),
		UID:     uid,
		Created: now,
		Polled:  now,
		Expires: now.Add(timeout),
	}
}

func (t *MatchTicket) Filled() bool {
	return t.GameUUID != ""
}

func (t *MatchTicket) Expired(now time.Time) bool {
	return t.Expires.Before(now)
}

// Touch refreshes the polled and expires timestamps.
func (t *MatchTicket) Touch(now time.Time, timeout time.Duration) {
	t.Polled = now
	t.Expires = now.Add(timeout)
}
