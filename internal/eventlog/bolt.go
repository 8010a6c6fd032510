// Package eventlog is a small embedded log of processed webhook event ids.
// The payment provider retries webhook delivery until it gets a 2xx, so the
// receiver needs a durable record of which events it has already handled.
package eventlog

import (
	"time"

	bolt "github.com/boltdb/bolt"
)

const bucketName = "webhook_events"

// Store marks webhook event ids as seen in a single BoltDB file. Bolt keeps
// everything in one file, which suits a log that only this process reads.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the database at path and ensures the event bucket
// exists.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Seen reports whether the event id has been marked before.
func (s *Store) Seen(eventID string) (bool, error) {
	var seen bool
	err := s.db.View(func(tx *bolt.Tx) error {
		seen = tx.Bucket([]byte(bucketName)).Get([]byte(eventID)) != nil
		return nil
	})
	return seen, err
}

// MarkSeen records the event id with the time it was processed. Marking the
// same id twice overwrites the timestamp and is harmless.
func (s *Store) MarkSeen(eventID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		stamp := time.Now().UTC().Format(time.RFC3339)
		return tx.Bucket([]byte(bucketName)).Put([]byte(eventID), []byte(stamp))
	})
}
