package snapshot

import (
	"context"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/vango-dev/vdiff/pkg/vdom"
)

const bucketSnapshots = "snapshots"

// BoltStore keeps snapshots in a bbolt database file, one key per session
// in the "snapshots" bucket.
type BoltStore struct {
	db *bolt.DB
}

// OpenBolt opens or creates the database at path. It waits at most one
// second for the file lock held by another process.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, backendError("open", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketSnapshots))
		return err
	})
	if err != nil {
		db.Close()
		return nil, backendError("open", path, err)
	}
	return &BoltStore{db: db}, nil
}

// Load implements Store.
func (s *BoltStore) Load(ctx context.Context, id string) (*vdom.Node, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(bucketSnapshots)).Get([]byte(id)); v != nil {
			// v is only valid inside the transaction.
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("load", id, err)
	}
	if data == nil {
		return nil, notFound(id)
	}
	return decode(id, data)
}

// Save implements Store.
func (s *BoltStore) Save(ctx context.Context, id string, node *vdom.Node) error {
	data := encode(node)
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketSnapshots)).Put([]byte(id), data)
	})
	if err != nil {
		return s.fail("save", id, err)
	}
	return nil
}

// Delete implements Store.
func (s *BoltStore) Delete(ctx context.Context, id string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketSnapshots)).Delete([]byte(id))
	})
	if err != nil {
		return s.fail("delete", id, err)
	}
	return nil
}

// IDs lists the stored session IDs in key order.
func (s *BoltStore) IDs() ([]string, error) {
	var ids []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketSnapshots)).ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, s.fail("list", "", err)
	}
	return ids, nil
}

// Close implements Store.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) fail(op, id string, err error) error {
	if err == bolt.ErrDatabaseNotOpen {
		return ErrClosed
	}
	return backendError(op, id, err)
}
