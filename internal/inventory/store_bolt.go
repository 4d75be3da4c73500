package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// boltLockTimeout bounds the wait for another process's lock on the file.
const boltLockTimeout = 1 * time.Second

var boltBucket = []byte("inventory")

// BoltStore keeps the encoded document under a single key of an embedded
// bbolt database. bbolt serializes write transactions itself.
type BoltStore struct {
	db  *bolt.DB
	key []byte
}

func OpenBoltStore(path, document string) (*BoltStore, error) {
	if document == "" {
		document = "games"
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: boltLockTimeout})
	if err != nil {
		return nil, fmt.Errorf("open bolt %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	return &BoltStore{db: db, key: []byte(document)}, nil
}

func (s *BoltStore) Load(ctx context.Context) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}

	doc := emptyDocument()
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(boltBucket)
		if b == nil {
			return errors.New("bucket missing")
		}
		v := b.Get(s.key)
		if v == nil {
			return nil
		}
		// v is only valid inside the transaction; decoding copies it out.
		d, err := decodeDocument(v)
		if err != nil {
			return err
		}
		doc = d
		return nil
	})
	if err != nil {
		return Document{}, fmt.Errorf("bolt load: %w", err)
	}
	return doc, nil
}

func (s *BoltStore) Save(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	v, err := encodeDocument(doc)
	if err != nil {
		return err
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(boltBucket)
		if err != nil {
			return err
		}
		return b.Put(s.key, v)
	})
	if err != nil {
		return fmt.Errorf("bolt save: %w", err)
	}
	return nil
}

func (s *BoltStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		done := make(chan error, 1)
		go func() {
			done <- s.db.View(func(tx *bolt.Tx) error {
				if tx.Bucket(boltBucket) == nil {
					return errors.New("bucket missing")
				}
				return nil
			})
		}()

		select {
		case err := <-done:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

