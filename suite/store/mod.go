// Package store implements a library of named test suites on top of a
// key/value database.
//
// A suite is saved with its wire JSON and its digest, so that two saved
// suites can be compared without being decoded.
package store

import (
	"encoding/hex"
	"encoding/json"

	"github.com/rs/xid"
	"github.com/sctester/scenario"
	"github.com/sctester/scenario/serde"
	"github.com/sctester/scenario/store/kv"
	"github.com/sctester/scenario/suite"
	"golang.org/x/xerrors"
)

var bucketName = []byte("suites")

// ErrNotFound is returned when no suite is saved under the name.
var ErrNotFound = xerrors.New("suite not found")

// Record is a suite saved in the library.
type Record struct {
	// ID is unique to every save, and carries the time of the save.
	ID     xid.ID
	Name   string
	Digest []byte
	Suite  suite.TestSuite
}

type recordJSON struct {
	ID     xid.ID          `json:"id"`
	Name   string          `json:"name"`
	Digest string          `json:"digest"`
	Suite  json.RawMessage `json:"suite"`
}

// Store is the library of suites.
type Store struct {
	db      kv.DB
	ctx     serde.Context
	factory suite.Factory
}

// NewStore returns a library that persists the suites in the database. The
// context must use the JSON format.
func NewStore(db kv.DB, ctx serde.Context) Store {
	return Store{
		db:      db,
		ctx:     ctx,
		factory: suite.NewFactory(),
	}
}

// Save saves the suite under the name and replaces any previous suite with the
// same name.
func (s Store) Save(name string, ts suite.TestSuite) (Record, error) {
	if name == "" {
		return Record{}, xerrors.New("name must not be empty")
	}

	data, err := ts.Serialize(s.ctx)
	if err != nil {
		return Record{}, xerrors.Errorf("failed to serialize suite: %w", err)
	}

	digest, err := suite.Digest(s.ctx, ts)
	if err != nil {
		return Record{}, xerrors.Errorf("failed to compute digest: %w", err)
	}

	rec := Record{
		ID:     xid.New(),
		Name:   name,
		Digest: digest,
		Suite:  ts,
	}

	value, err := s.ctx.Marshal(recordJSON{
		ID:     rec.ID,
		Name:   name,
		Digest: hex.EncodeToString(digest),
		Suite:  data,
	})
	if err != nil {
		return Record{}, xerrors.Errorf("failed to marshal record: %v", err)
	}

	err = s.db.Update(func(tx kv.WritableTx) error {
		bucket, err := tx.GetBucketOrCreate(bucketName)
		if err != nil {
			return err
		}

		tx.OnCommit(func() {
			scenario.Logger.Info().
				Str("name", name).
				Str("id", rec.ID.String()).
				Hex("digest", digest).
				Msg("suite saved")
		})

		return bucket.Set([]byte(name), value)
	})
	if err != nil {
		return Record{}, xerrors.Errorf("failed to save: %v", err)
	}

	return rec, nil
}

// Get returns the suite saved under the name, or ErrNotFound.
func (s Store) Get(name string) (Record, error) {
	var value []byte

	err := s.db.View(func(tx kv.ReadableTx) error {
		bucket := tx.GetBucket(bucketName)
		if bucket == nil {
			return nil
		}

		// The value is only valid during the transaction.
		value = append([]byte{}, bucket.Get([]byte(name))...)

		return nil
	})
	if err != nil {
		return Record{}, xerrors.Errorf("failed to read: %v", err)
	}

	if len(value) == 0 {
		return Record{}, xerrors.Errorf("suite '%s': %w", name, ErrNotFound)
	}

	return s.decode(value)
}

// List returns the saved suites sorted by name.
func (s Store) List() ([]Record, error) {
	return s.Find("")
}

// Find returns the saved suites whose name starts with the prefix, sorted by
// name.
func (s Store) Find(prefix string) ([]Record, error) {
	var values [][]byte

	err := s.db.View(func(tx kv.ReadableTx) error {
		bucket := tx.GetBucket(bucketName)
		if bucket == nil {
			return nil
		}

		return bucket.Scan([]byte(prefix), func(k, v []byte) error {
			values = append(values, append([]byte{}, v...))
			return nil
		})
	})
	if err != nil {
		return nil, xerrors.Errorf("failed to read: %v", err)
	}

	records := make([]Record, len(values))

	for i, value := range values {
		records[i], err = s.decode(value)
		if err != nil {
			return nil, err
		}
	}

	return records, nil
}

// Delete removes the suite saved under the name, or returns ErrNotFound.
func (s Store) Delete(name string) error {
	err := s.db.Update(func(tx kv.WritableTx) error {
		bucket := tx.GetBucket(bucketName)
		if bucket == nil || bucket.Get([]byte(name)) == nil {
			return xerrors.Errorf("suite '%s': %w", name, ErrNotFound)
		}

		return bucket.Delete([]byte(name))
	})
	if err != nil {
		return xerrors.Errorf("failed to delete: %w", err)
	}

	scenario.Logger.Info().Str("name", name).Msg("suite deleted")

	return nil
}

func (s Store) decode(value []byte) (Record, error) {
	m := recordJSON{}

	err := s.ctx.Unmarshal(value, &m)
	if err != nil {
		return Record{}, xerrors.Errorf("failed to unmarshal record: %v", err)
	}

	digest, err := hex.DecodeString(m.Digest)
	if err != nil {
		return Record{}, xerrors.Errorf("invalid digest of '%s': %v", m.Name, err)
	}

	ts, err := s.factory.SuiteOf(s.ctx, m.Suite)
	if err != nil {
		return Record{}, xerrors.Errorf("failed to decode suite '%s': %w", m.Name, err)
	}

	rec := Record{
		ID:     m.ID,
		Name:   m.Name,
		Digest: digest,
		Suite:  ts,
	}

	return rec, nil
}
