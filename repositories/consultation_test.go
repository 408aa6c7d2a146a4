package repositories

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"telechat/domain"
	"telechat/errors"
)

func testConsultation(id string) domain.ConsultationSnapshot {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return domain.ConsultationSnapshot{
		ID:        id,
		Status:    domain.ConsultationScheduled,
		PatientID: "patient-1",
		DoctorID:  "doctor-1",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func Test_Put_And_GetByID(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewConsultationRepository(db, slog.Default())

	// Given: A stored consultation
	snapshot := testConsultation("consult-1")
	req.NoError(repository.Put(snapshot))

	// When: Fetching it back
	fetched, err := repository.GetByID("consult-1")

	// Then: The snapshot round-trips
	req.NoError(err)
	req.Equal(snapshot, fetched)
}

func Test_GetByID_Unknown_Consultation(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewConsultationRepository(db, slog.Default())

	_, err := repository.GetByID("missing")
	req.ErrorIs(err, errors.ErrConsultationNotFound)
}

func Test_UpdateLastMessage(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewConsultationRepository(db, slog.Default())

	snapshot := testConsultation("consult-1")
	req.NoError(repository.Put(snapshot))

	// When: Updating the last-message preview
	at := time.Now().UTC().Truncate(time.Millisecond)
	req.NoError(repository.UpdateLastMessage("consult-1", "see you tomorrow", at))

	// Then: Preview and UpdatedAt moved, the rest is untouched
	fetched, err := repository.GetByID("consult-1")
	req.NoError(err)
	req.Equal("see you tomorrow", fetched.LastMessage)
	req.Equal(at, fetched.LastMessageAt)
	req.Equal(snapshot.PatientID, fetched.PatientID)
	req.Equal(snapshot.Status, fetched.Status)
	req.False(fetched.UpdatedAt.Before(snapshot.UpdatedAt))
}

func Test_UpdateLastMessage_Unknown_Consultation(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewConsultationRepository(db, slog.Default())

	err := repository.UpdateLastMessage("missing", "hello", time.Now().UTC())
	req.ErrorIs(err, errors.ErrConsultationNotFound)
}

func Test_UpdateStatus(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewConsultationRepository(db, slog.Default())

	snapshot := testConsultation("consult-1")
	req.NoError(repository.Put(snapshot))

	req.NoError(repository.UpdateStatus("consult-1", domain.ConsultationInProgress))

	fetched, err := repository.GetByID("consult-1")
	req.NoError(err)
	req.Equal(domain.ConsultationInProgress, fetched.Status)
}
