package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"telechat/domain"
)

// MessageRepository persists chat messages in BadgerDB. It implements
// contract.MessageStore.
type MessageRepository struct {
	db    *badger.DB
	log   *slog.Logger
	limit *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limit *int) MessageRepository {
	return MessageRepository{db: db, log: log, limit: limit}
}

// messageKey formats keys as "msg:{conversation}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order).
//  2. Prevent data loss by using the UUID as a tie-breaker if two messages
//     arrive at the same nanosecond.
func messageKey(msg domain.ChatMessage) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s",
		msg.ConversationID,
		msg.CreatedAt.UnixNano(),
		msg.ID,
	))
}

// Add writes one message through to disk.
func (m MessageRepository) Add(msg domain.ChatMessage) error {
	bytes, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set(messageKey(msg), bytes)
	})
}

// MarkRead flips the read flag of the given messages within one
// conversation. Unknown ids are ignored; receipts are persistence-only and
// never fanned out.
func (m MessageRepository) MarkRead(conversationID string, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	wanted := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	prefix := []byte(fmt.Sprintf("msg:%s:", conversationID))
	return m.db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var msg domain.ChatMessage
			err := item.Value(func(value []byte) error {
				return json.Unmarshal(value, &msg)
			})
			if err != nil {
				return err
			}
			if _, ok := wanted[msg.ID]; !ok || msg.Read {
				continue
			}
			msg.Read = true
			bytes, err := json.Marshal(msg)
			if err != nil {
				return err
			}
			if err := txn.Set(item.KeyCopy(nil), bytes); err != nil {
				return err
			}
		}
		return nil
	})
}

// History retrieves messages for a conversation using a prefix scan, newest
// first. Thanks to the padded timestamp in the key, messages are naturally
// sorted by time. It stops collecting once the configured limit is reached
// and returns a cursor for the next page.
func (m MessageRepository) History(conversationID string, cursor *string) ([]domain.ChatMessage, *string, error) {
	var messages []domain.ChatMessage
	var lastKey string

	err := m.db.View(func(txn *badger.Txn) error {
		prefixStr := fmt.Sprintf("msg:%s:", conversationID)
		prefix := []byte(prefixStr)
		prefixLen := len(prefixStr)

		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Seek past the newest possible timestamp, then walk backwards.
			seekKey = append(prefix, []byte("9999999999999999999")...)
		default:
			seekKey = append(prefix, []byte(*cursor)...)
		}

		it.Seek(seekKey)

		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if m.limit != nil && len(messages) == *m.limit {
				m.log.Debug(fmt.Sprintf("Maximum of %d messages reached", *m.limit))
				break
			}
			item := it.Item()
			lastKey = string(item.Key()[prefixLen:])
			var msg domain.ChatMessage
			err := item.Value(func(value []byte) error {
				return json.Unmarshal(value, &msg)
			})
			if err != nil {
				return err
			}
			messages = append(messages, msg)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if lastKey == "" {
		return messages, nil, nil
	}
	return messages, &lastKey, nil
}
