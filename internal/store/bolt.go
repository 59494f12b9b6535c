package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/lojasmm/tilebot/internal/estimate"
)

var (
	outboxBucket = []byte("outbox")
	deadBucket   = []byte("dead_letters")
)

// ErrNotFound is returned when a delivery id is not in the outbox.
var ErrNotFound = errors.New("delivery not found")

// Delivery is a request to email an estimate, waiting for the dispatcher.
type Delivery struct {
	ID        string           `json:"id"`
	SessionID string           `json:"session_id"`
	Name      string           `json:"name"`
	Recipient string           `json:"recipient"`
	TileType  string           `json:"tile_type,omitempty"`
	TileSize  string           `json:"tile_size,omitempty"`
	Estimate  *estimate.Result `json:"estimate,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	Attempts  int              `json:"attempts"`
	LastError string           `json:"last_error,omitempty"`
}

type Store interface {
	Enqueue(d Delivery) (Delivery, error)
	Pending(limit int) ([]Delivery, error)
	MarkDelivered(id string) error
	// MarkFailed records a failed attempt. Once maxAttempts is reached the
	// delivery moves to the dead-letter bucket and dead is true.
	MarkFailed(id string, cause error, maxAttempts int) (dead bool, err error)
	DeadLetters() ([]Delivery, error)
	Close() error
}

type BoltStore struct {
	db *bolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(outboxBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(deadBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Enqueue assigns an id and timestamp when missing. Ids are UUIDv7 so the
// outbox iterates oldest first.
func (s *BoltStore) Enqueue(d Delivery) (Delivery, error) {
	if d.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return Delivery{}, fmt.Errorf("generating delivery id: %w", err)
		}
		d.ID = id.String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		return put(tx.Bucket(outboxBucket), d)
	})
	if err != nil {
		return Delivery{}, fmt.Errorf("enqueue delivery: %w", err)
	}
	return d, nil
}

// Pending returns up to limit deliveries, oldest first. limit <= 0 means all.
func (s *BoltStore) Pending(limit int) ([]Delivery, error) {
	return s.list(outboxBucket, limit)
}

func (s *BoltStore) DeadLetters() ([]Delivery, error) {
	return s.list(deadBucket, 0)
}

func (s *BoltStore) MarkDelivered(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(outboxBucket)
		if b.Get([]byte(id)) == nil {
			return ErrNotFound
		}
		return b.Delete([]byte(id))
	})
}

func (s *BoltStore) MarkFailed(id string, cause error, maxAttempts int) (bool, error) {
	dead := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(outboxBucket)
		v := b.Get([]byte(id))
		if v == nil {
			return ErrNotFound
		}
		var d Delivery
		if err := json.Unmarshal(v, &d); err != nil {
			return err
		}
		d.Attempts++
		if cause != nil {
			d.LastError = cause.Error()
		}
		if maxAttempts > 0 && d.Attempts >= maxAttempts {
			dead = true
			if err := b.Delete([]byte(id)); err != nil {
				return err
			}
			return put(tx.Bucket(deadBucket), d)
		}
		return put(b, d)
	})
	return dead, err
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) list(bucket []byte, limit int) ([]Delivery, error) {
	var out []Delivery
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if limit > 0 && len(out) >= limit {
				break
			}
			var d Delivery
			if err := json.Unmarshal(v, &d); err != nil {
				return fmt.Errorf("decoding delivery %s: %w", k, err)
			}
			out = append(out, d)
		}
		return nil
	})
	return out, err
}

func put(b *bolt.Bucket, d Delivery) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return b.Put([]byte(d.ID), data)
}
