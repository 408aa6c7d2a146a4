package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"telechat/domain"
	"telechat/errors"
)

// ConsultationRepository stores consultation snapshots keyed by
// "consultation:{id}". It implements contract.ConsultationStore.
type ConsultationRepository struct {
	db    *badger.DB
	log   *slog.Logger
	clock func() time.Time
}

func NewConsultationRepository(db *badger.DB, log *slog.Logger) ConsultationRepository {
	return ConsultationRepository{db: db, log: log, clock: time.Now}
}

func consultationKey(id string) []byte {
	return []byte(fmt.Sprintf("consultation:%s", id))
}

// Put writes the full snapshot, creating or replacing it.
func (c ConsultationRepository) Put(snapshot domain.ConsultationSnapshot) error {
	bytes, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(consultationKey(snapshot.ID), bytes)
	})
}

func (c ConsultationRepository) GetByID(id string) (domain.ConsultationSnapshot, error) {
	var snapshot domain.ConsultationSnapshot
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(consultationKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			return json.Unmarshal(value, &snapshot)
		})
	})
	if err == badger.ErrKeyNotFound {
		return domain.ConsultationSnapshot{}, errors.ErrConsultationNotFound
	}
	if err != nil {
		return domain.ConsultationSnapshot{}, err
	}
	return snapshot, nil
}

// UpdateLastMessage refreshes the last-message preview inside a single
// read-modify-write transaction.
func (c ConsultationRepository) UpdateLastMessage(id, text string, at time.Time) error {
	return c.update(id, func(snapshot *domain.ConsultationSnapshot) {
		snapshot.LastMessage = text
		snapshot.LastMessageAt = at
	})
}

// UpdateStatus transitions the consultation lifecycle status.
func (c ConsultationRepository) UpdateStatus(id string, status domain.ConsultationStatus) error {
	return c.update(id, func(snapshot *domain.ConsultationSnapshot) {
		snapshot.Status = status
	})
}

func (c ConsultationRepository) update(id string, mutate func(*domain.ConsultationSnapshot)) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(consultationKey(id))
		if err != nil {
			return err
		}
		var snapshot domain.ConsultationSnapshot
		err = item.Value(func(value []byte) error {
			return json.Unmarshal(value, &snapshot)
		})
		if err != nil {
			return err
		}
		mutate(&snapshot)
		snapshot.UpdatedAt = c.clock().UTC()
		bytes, err := json.Marshal(snapshot)
		if err != nil {
			return err
		}
		return txn.Set(consultationKey(id), bytes)
	})
	if err == badger.ErrKeyNotFound {
		return errors.ErrConsultationNotFound
	}
	return err
}
