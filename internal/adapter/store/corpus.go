package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"go.etcd.io/bbolt"
	"videorag/internal/domain"
)

var (
	bucketUnits = []byte("units")
	bucketMeta  = []byte("meta")
	keySnapshot = []byte("snapshot")
)

// BoltCorpusStore keeps the text units of one snapshot in a bbolt file.
// The database is opened per call so a serving process never holds the
// file lock while an ingest rewrites it.
type BoltCorpusStore struct {
	path    string
	timeout time.Duration
}

func NewBoltCorpusStore(path string) *BoltCorpusStore {
	return &BoltCorpusStore{path: path, timeout: 5 * time.Second}
}

func (s *BoltCorpusStore) Path() string {
	return s.path
}

// Save deduplicates texts and replaces the stored corpus in a single
// transaction. snapshot.Units is overwritten with the deduplicated count.
func (s *BoltCorpusStore) Save(texts []string, snapshot domain.Snapshot) ([]domain.TextUnit, error) {
	units := domain.Units(domain.Dedup(texts))
	snapshot.Units = len(units)

	db, err := bbolt.Open(s.path, 0600, &bbolt.Options{Timeout: s.timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus db: %w", err)
	}
	defer db.Close()

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketUnits, bucketMeta} {
			if tx.Bucket(name) == nil {
				continue
			}
			if err := tx.DeleteBucket(name); err != nil {
				return fmt.Errorf("failed to clear bucket %s: %w", name, err)
			}
		}

		ub, err := tx.CreateBucket(bucketUnits)
		if err != nil {
			return err
		}
		// Keys are written in ascending order, so bulk fill is cheap.
		ub.FillPercent = 1.0
		for _, u := range units {
			if err := ub.Put(unitKey(u.ID), []byte(u.Text)); err != nil {
				return err
			}
		}

		mb, err := tx.CreateBucket(bucketMeta)
		if err != nil {
			return err
		}
		if err := putSchemaInfo(mb, SchemaInfo{Version: CurrentSchemaVersion}); err != nil {
			return err
		}
		data, err := json.Marshal(snapshot)
		if err != nil {
			return err
		}
		return mb.Put(keySnapshot, data)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write corpus: %w", err)
	}

	return units, nil
}

// Load reads the whole corpus ordered by ID.
func (s *BoltCorpusStore) Load() ([]domain.TextUnit, domain.Snapshot, error) {
	var snapshot domain.Snapshot

	info, err := os.Stat(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, snapshot, fmt.Errorf("%w: %s", domain.ErrCorpusMissing, s.path)
	}
	if err != nil {
		return nil, snapshot, err
	}
	if info.Size() == 0 {
		return nil, snapshot, fmt.Errorf("%w: %s", domain.ErrCorpusEmpty, s.path)
	}

	db, err := bbolt.Open(s.path, 0600, &bbolt.Options{Timeout: s.timeout, ReadOnly: true})
	if err != nil {
		if errors.Is(err, bbolt.ErrTimeout) {
			return nil, snapshot, fmt.Errorf("corpus db is locked: %w", err)
		}
		return nil, snapshot, fmt.Errorf("%w: %v", domain.ErrCorpusCorrupt, err)
	}
	defer db.Close()

	var units []domain.TextUnit
	err = db.View(func(tx *bbolt.Tx) error {
		mb := tx.Bucket(bucketMeta)
		ub := tx.Bucket(bucketUnits)
		if mb == nil || ub == nil {
			return domain.ErrCorpusEmpty
		}

		schema, err := getSchemaInfo(mb)
		if err != nil {
			return err
		}
		if err := schema.check(); err != nil {
			return err
		}

		data := mb.Get(keySnapshot)
		if data == nil {
			return fmt.Errorf("%w: snapshot record missing", domain.ErrCorpusCorrupt)
		}
		if err := json.Unmarshal(data, &snapshot); err != nil {
			return fmt.Errorf("%w: snapshot record: %v", domain.ErrCorpusCorrupt, err)
		}

		if snapshot.Units < 0 {
			return fmt.Errorf("%w: negative unit count %d", domain.ErrCorpusCorrupt, snapshot.Units)
		}

		units = make([]domain.TextUnit, 0, ub.Stats().KeyN)
		return ub.ForEach(func(k, v []byte) error {
			if len(k) != 8 {
				return fmt.Errorf("%w: bad unit key length %d", domain.ErrCorpusCorrupt, len(k))
			}
			id := int(binary.BigEndian.Uint64(k))
			if id != len(units) {
				return fmt.Errorf("%w: unit id %d out of sequence", domain.ErrCorpusCorrupt, id)
			}
			units = append(units, domain.TextUnit{ID: id, Text: string(v)})
			return nil
		})
	})
	if err != nil {
		return nil, snapshot, err
	}

	if len(units) == 0 {
		return nil, snapshot, fmt.Errorf("%w: %s", domain.ErrCorpusEmpty, s.path)
	}
	if len(units) != snapshot.Units {
		return nil, snapshot, fmt.Errorf("%w: snapshot records %d units, found %d",
			domain.ErrCorpusCorrupt, snapshot.Units, len(units))
	}

	return units, snapshot, nil
}

// Close is a no-op; every call opens and closes the database itself.
func (s *BoltCorpusStore) Close() error {
	return nil
}

func unitKey(id int) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], uint64(id))
	return k[:]
}
