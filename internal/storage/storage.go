// Package storage persists the lifetime match ledger and the history of
// tuned artifacts in a badger database.
package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"gauntlet/internal/arena"
	"gauntlet/internal/domain"
	"gauntlet/internal/tuner"
)

const (
	matchPrefix    = "match:"
	artifactPrefix = "artifact:"
)

// MatchRecord accumulates lifetime results for one old/new pairing,
// counted from the new role's side.
type MatchRecord struct {
	Matchup   string    `json:"matchup"`
	Wins      int       `json:"wins"`
	Losses    int       `json:"losses"`
	Draws     int       `json:"draws"`
	Errors    int       `json:"errors"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r MatchRecord) Games() int {
	return r.Wins + r.Losses + r.Draws
}

// Store wraps a badger database. All writes go through single-statement
// transactions; the arena feeds it from one collector goroutine.
type Store struct {
	db  *badger.DB
	log zerolog.Logger
}

func Open(dir string, log zerolog.Logger) (*Store, error) {
	var opts = badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordOutcome folds one finished trial into the matchup's record. The
// read and the write share a transaction, so a crash never loses half an
// update.
func (s *Store) RecordOutcome(matchup string, out *domain.Outcome) error {
	var key = []byte(matchPrefix + matchup)
	return s.db.Update(func(txn *badger.Txn) error {
		var rec = MatchRecord{Matchup: matchup}
		item, err := txn.Get(key)
		if err == nil {
			err = item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
		}
		if err != nil && err != badger.ErrKeyNotFound {
			return err
		}

		if out.Err != nil {
			rec.Errors++
		} else {
			switch out.Result() {
			case domain.ResultWin:
				rec.Wins++
			case domain.ResultLoss:
				rec.Losses++
			default:
				rec.Draws++
			}
		}
		rec.UpdatedAt = time.Now()

		data, err := json.Marshal(&rec)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// Match loads a matchup's record, or an empty one if it was never
// played.
func (s *Store) Match(matchup string) (MatchRecord, error) {
	var rec = MatchRecord{Matchup: matchup}
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(matchPrefix + matchup))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	return rec, err
}

// AppendArtifact adds one tuned artifact to the history. Keys embed the
// zero-padded unix nanosecond timestamp so iteration order is
// chronological.
func (s *Store) AppendArtifact(a tuner.Artifact) error {
	data, err := json.Marshal(&a)
	if err != nil {
		return err
	}
	var key = []byte(fmt.Sprintf("%s%020d", artifactPrefix, a.Timestamp.UnixNano()))
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// Artifacts returns the tuned-artifact history, oldest first.
func (s *Store) Artifacts() ([]tuner.Artifact, error) {
	var out []tuner.Artifact
	err := s.db.View(func(txn *badger.Txn) error {
		var it = txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		var prefix = []byte(artifactPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var a tuner.Artifact
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &a)
			})
			if err != nil {
				return err
			}
			out = append(out, a)
		}
		return nil
	})
	return out, err
}

// Sink folds every trial the arena finishes into the lifetime ledger.
type Sink struct {
	store   *Store
	matchup string
}

func NewSink(store *Store, matchup string) *Sink {
	return &Sink{store: store, matchup: matchup}
}

func (s *Sink) HandleResult(out *domain.Outcome, _ arena.Counters) {
	if err := s.store.RecordOutcome(s.matchup, out); err != nil {
		s.store.log.Error().Err(err).Int("game", out.GameNumber).Msg("ledger update failed")
	}
}
