package domain

import "time"

// ConsultationStatus follows the consultation lifecycle managed by the CRUD
// layer; the routing layer only reads it for status broadcasts.
type ConsultationStatus string

const (
	ConsultationScheduled  ConsultationStatus = "scheduled"
	ConsultationInProgress ConsultationStatus = "in_progress"
	ConsultationCompleted  ConsultationStatus = "completed"
	ConsultationCancelled  ConsultationStatus = "cancelled"
)

// ConsultationSnapshot is a read-only projection of one consultation,
// fetched per broadcast and never cached.
type ConsultationSnapshot struct {
	ID            string             `json:"id"`
	Status        ConsultationStatus `json:"status"`
	PatientID     string             `json:"patientId"`
	DoctorID      string             `json:"doctorId"`
	LastMessage   string             `json:"lastMessage,omitempty"`
	LastMessageAt time.Time          `json:"lastMessageAt,omitzero"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}
