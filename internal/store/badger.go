// Package store persists drawings, official results and generated picks in Badger.
package store

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/palpiteiro/tipengine/internal/generator"
	"github.com/palpiteiro/tipengine/internal/lotto"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrInvalidKey = errors.New("invalid key")
)

const (
	drawPrefix     = "draw/"
	officialLatest = "official/latest"
	pickPrefix     = "pick/"
)

type Options struct {
	Path     string
	InMemory bool
	Codec    Codec // defaults to JSON
}

type BadgerStore struct {
	db    *badger.DB
	codec Codec
}

// StoredPick is a pick as persisted for a user. Batch groups the picks of one generation;
// a batch id and pick id pair is stored at most once.
type StoredPick struct {
	UserID    string         `json:"user_id"`
	Batch     string         `json:"batch"`
	CreatedAt time.Time      `json:"created_at"`
	Pick      generator.Pick `json:"pick"`
}

func Open(o Options) (*BadgerStore, error) {
	opts := badger.DefaultOptions(o.Path).WithLogger(nil)
	if o.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	codec := o.Codec
	if codec == nil {
		codec = JSON
	}
	return &BadgerStore{db: db, codec: codec}, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func drawKey(contest int) []byte {
	return fmt.Appendf(nil, "%s%08d", drawPrefix, contest)
}

func pickKey(user, batch string, id int) []byte {
	return fmt.Appendf(nil, "%s%s/%s/%03d", pickPrefix, user, batch, id)
}

func checkPart(kind, s string) error {
	if s == "" || strings.Contains(s, "/") {
		return fmt.Errorf("%w: %s %q", ErrInvalidKey, kind, s)
	}
	return nil
}

// AppendDrawing stores the drawing of a contest, replacing any previous one.
func (s *BadgerStore) AppendDrawing(ctx context.Context, contest int, d lotto.Drawing) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if contest <= 0 {
		return fmt.Errorf("%w: contest %d", ErrInvalidKey, contest)
	}
	if err := lotto.ValidateNumbers("drawing", d.Numbers); err != nil {
		return err
	}
	data, err := s.codec.Marshal(d)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(drawKey(contest), data)
	})
}

// RecentDrawings returns up to n drawings, most recent contest first.
func (s *BadgerStore) RecentDrawings(ctx context.Context, n int) (lotto.History, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h := make(lotto.History, 0, max(n, 0))
	if n <= 0 {
		return h, nil
	}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(drawPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(drawPrefix)
		for it.Seek(append(p, 0xFF)); it.ValidForPrefix(p) && len(h) < n; it.Next() {
			var d lotto.Drawing
			if err := it.Item().Value(func(v []byte) error {
				return s.codec.Unmarshal(v, &d)
			}); err != nil {
				return err
			}
			h = append(h, d)
		}
		return nil
	})
	return h, err
}

// SaveOfficial stores o as the latest official result and records its drawing.
func (s *BadgerStore) SaveOfficial(ctx context.Context, o lotto.Official) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := o.Validate(); err != nil {
		return err
	}
	od, err := s.codec.Marshal(o)
	if err != nil {
		return err
	}
	dd, err := s.codec.Marshal(o.Drawing)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(officialLatest), od); err != nil {
			return err
		}
		if o.Contest > 0 {
			return txn.Set(drawKey(o.Contest), dd)
		}
		return nil
	})
}

// LatestOfficialDrawing returns the last saved official result, or ErrNotFound.
func (s *BadgerStore) LatestOfficialDrawing(ctx context.Context) (lotto.Official, error) {
	if err := ctx.Err(); err != nil {
		return lotto.Official{}, err
	}
	var o lotto.Official
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(officialLatest))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return item.Value(func(v []byte) error {
			return s.codec.Unmarshal(v, &o)
		})
	})
	return o, err
}

// SavePick implements the pick sink. Saving a pick already stored under the same batch
// is a no-op; the first write keeps its CreatedAt.
func (s *BadgerStore) SavePick(ctx context.Context, user, batch string, createdAt time.Time, p generator.Pick) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkPart("user id", user); err != nil {
		return err
	}
	if err := checkPart("batch", batch); err != nil {
		return err
	}
	data, err := s.codec.Marshal(StoredPick{UserID: user, Batch: batch, CreatedAt: createdAt.UTC(), Pick: p})
	if err != nil {
		return err
	}
	key := pickKey(user, batch, p.ID)
	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		switch {
		case err == nil:
			return nil
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}
		return txn.Set(key, data)
	})
}

// ListPicks returns every pick of user in creation order, then batch and pick id.
func (s *BadgerStore) ListPicks(ctx context.Context, user string) ([]StoredPick, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkPart("user id", user); err != nil {
		return nil, err
	}
	out := make([]StoredPick, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		p := []byte(pickPrefix + user + "/")
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			var sp StoredPick
			if err := it.Item().Value(func(v []byte) error {
				return s.codec.Unmarshal(v, &sp)
			}); err != nil {
				return err
			}
			out = append(out, sp)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(out, func(a, b StoredPick) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.Batch, b.Batch), cmp.Compare(a.Pick.ID, b.Pick.ID))
	})
	return out, nil
}
