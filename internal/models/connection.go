package models

import "time"

// ConnectionStatus is the stored state of a connection request row.
type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "PENDING"
	ConnectionAccepted ConnectionStatus = "ACCEPTED"
	ConnectionRejected ConnectionStatus = "REJECTED"
)

// ConnectionDecision is the transition input accepted by Respond. It is
// deliberately distinct from ConnectionStatus so that responding with
// PENDING cannot be expressed.
type ConnectionDecision string

const (
	DecisionAccept ConnectionDecision = "ACCEPTED"
	DecisionReject ConnectionDecision = "REJECTED"
)

// Valid reports whether the decision is one of the two permitted outcomes.
func (d ConnectionDecision) Valid() bool {
	return d == DecisionAccept || d == DecisionReject
}

// Status converts the decision into the stored status value.
func (d ConnectionDecision) Status() ConnectionStatus {
	return ConnectionStatus(d)
}

// ConnectionRequest is a directed handshake row between two students.
// The relationship between a pair is defined by the most recent row in
// either direction; CreatedAt is refreshed when the receiver responds
// so it always orders rows by last state change.
type ConnectionRequest struct {
	ID         string           `db:"id" json:"id"`
	SenderID   string           `db:"sender_id" json:"sender_id"`
	ReceiverID string           `db:"receiver_id" json:"receiver_id"`
	Status     ConnectionStatus `db:"status" json:"status"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
}

// RemovalOutcome is the branchable result of a removal attempt. Removal
// failures are ordinary outcomes rather than errors so callers can act
// on them without unwrapping anything.
type RemovalOutcome string

const (
	RemovalNoConnection    RemovalOutcome = "NO_CONNECTION_FOUND"
	RemovalNotAcceptedYet  RemovalOutcome = "NOT_ACCEPTED_YET"
	RemovalConnectionGone  RemovalOutcome = "CONNECTION_REMOVED"
)

// NoConnectionHistory is the sentinel status label returned when a pair
// has no request rows at all.
const NoConnectionHistory = "No connection history"

// ConnectionWithCounterpart decorates a request row with the other
// party's profile for inbox listings.
type ConnectionWithCounterpart struct {
	ConnectionRequest
	Counterpart StudentRef `json:"counterpart"`
	Incoming    bool       `json:"incoming"`
}
