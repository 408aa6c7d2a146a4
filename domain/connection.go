// Package domain contains core concepts of the telemedicine chat system.
// This file defines participant roles and connection lifecycle states.
// No runtime, network, or UI logic should be added here.
package domain

// Role identifies which side of a consultation a user is on.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

// Valid reports whether the role is one the system admits.
func (r Role) Valid() bool {
	return r == RolePatient || r == RoleDoctor
}

// ConnState is the lifecycle state of a live connection.
// A connection is active from registration until it is either replaced,
// times out, or the client closes it; closing marks a connection whose
// teardown has started but whose close event has not yet been processed.
type ConnState string

const (
	StateActive  ConnState = "active"
	StateClosing ConnState = "closing"
	StateClosed  ConnState = "closed"
)
