// Package checkpoint saves and loads sampler snapshots in a bolt database so
// a long run can be frozen and continued.
package checkpoint

import (
	"encoding/json"
	"time"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/CraigKelly/amwg/sampler"
)

var log = logging.MustGetLogger("checkpoint")

// MAIN is the bucket holding every snapshot
var MAIN = []byte("main")

// Store is a snapshot database.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "Could not open checkpoint database %s", path)
	}
	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes snap under key, replacing anything already there.
func (s *Store) Save(key string, snap *sampler.Snapshot[float64]) error {
	if snap == nil {
		return errors.New("Nil snapshot")
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrap(err, "Could not serialize checkpoint")
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(MAIN)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), data)
	})
	if err != nil {
		return errors.Wrapf(err, "Could not save checkpoint %s", key)
	}

	log.Debugf("Saved checkpoint %s (sweeps=%d, chain=%d)", key, snap.Sweeps, len(snap.Chain))
	return nil
}

// Load returns the snapshot stored under key, or nil (and no error) if there
// is none.
func (s *Store) Load(key string) (*sampler.Snapshot[float64], error) {
	var data []byte

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(MAIN)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			// v is only valid inside the transaction
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "Could not read checkpoint %s", key)
	}
	if data == nil {
		return nil, nil
	}

	var snap sampler.Snapshot[float64]
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrapf(err, "Could not parse checkpoint %s", key)
	}

	log.Noticef("Found checkpoint %s (sweeps=%d, chain=%d, lnL=%v)", key, snap.Sweeps, len(snap.Chain), snap.Density)
	return &snap, nil
}

// Delete removes the snapshot under key (if any).
func (s *Store) Delete(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(MAIN)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
}
