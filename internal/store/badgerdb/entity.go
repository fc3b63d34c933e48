package badgerdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/agrix/agrix-server/internal/store"
)

// idWidth zero-pads ids in keys so that key order is id order.
const idWidth = 20

// errIDTaken signals that a sequence value collided with an explicitly saved id.
var errIDTaken = errors.New("id already taken")

// entity provides CRUD over one record kind stored as JSON under prefix.
type entity[T any] struct {
	db      *badger.DB
	prefix  string
	seq     *badger.Sequence
	getID   func(*T) int64
	setID   func(*T, int64)
	indexes []index[T]
}

// index is a non-unique secondary index. Each value yields the key
// prefix + "idx:" + name + ":" + value + ":" + id.
type index[T any] struct {
	name   string
	keyGen func(*T) []string
}

func newEntity[T any](db *badger.DB, prefix string, getID func(*T) int64, setID func(*T, int64)) (*entity[T], error) {
	seq, err := db.GetSequence([]byte("seq:"+prefix), 100)
	if err != nil {
		return nil, fmt.Errorf("sequence %s: %w", prefix, err)
	}
	return &entity[T]{
		db:     db,
		prefix: prefix,
		seq:    seq,
		getID:  getID,
		setID:  setID,
	}, nil
}

// withIndex adds a secondary index to the entity.
func (e *entity[T]) withIndex(name string, keyGen func(*T) []string) *entity[T] {
	e.indexes = append(e.indexes, index[T]{name: name, keyGen: keyGen})
	return e
}

// release returns unused leased ids so the next open continues the sequence.
func (e *entity[T]) release() error {
	return e.seq.Release()
}

func padID(id int64) string {
	s := strconv.FormatInt(id, 10)
	if len(s) >= idWidth {
		return s
	}
	return strings.Repeat("0", idWidth-len(s)) + s
}

func (e *entity[T]) key(id int64) []byte {
	return []byte(e.prefix + padID(id))
}

func (e *entity[T]) indexPrefix(name string) string {
	return e.prefix + "idx:" + name + ":"
}

func (e *entity[T]) indexKey(name, value string, id int64) []byte {
	return []byte(e.indexPrefix(name) + value + ":" + padID(id))
}

// save inserts v when its id is zero, assigning the next sequence value,
// and replaces the stored record and its index keys otherwise.
func (e *entity[T]) save(ctx context.Context, v *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if e.getID(v) != 0 {
		return e.db.Update(func(txn *badger.Txn) error {
			return e.put(txn, e.getID(v), v)
		})
	}

	for {
		next, err := e.seq.Next()
		if err != nil {
			return fmt.Errorf("next id: %w", err)
		}
		id := int64(next) + 1

		err = e.db.Update(func(txn *badger.Txn) error {
			if _, err := txn.Get(e.key(id)); err == nil {
				return errIDTaken
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("failed to check existing key: %w", err)
			}
			e.setID(v, id)
			return e.put(txn, id, v)
		})
		if errors.Is(err, errIDTaken) {
			continue
		}
		if err != nil {
			e.setID(v, 0)
		}
		return err
	}
}

// put writes v under id, swapping out the index keys of any previous version.
func (e *entity[T]) put(txn *badger.Txn, id int64, v *T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	old, err := e.read(txn, id)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if old != nil {
		for _, idx := range e.indexes {
			for _, value := range idx.keyGen(old) {
				if err := txn.Delete(e.indexKey(idx.name, value, id)); err != nil {
					return fmt.Errorf("failed to delete old index key: %w", err)
				}
			}
		}
	}

	if err := txn.Set(e.key(id), data); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}
	for _, idx := range e.indexes {
		for _, value := range idx.keyGen(v) {
			if err := txn.Set(e.indexKey(idx.name, value, id), nil); err != nil {
				return fmt.Errorf("failed to set index key: %w", err)
			}
		}
	}
	return nil
}

func (e *entity[T]) read(txn *badger.Txn, id int64) (*T, error) {
	item, err := txn.Get(e.key(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, store.NotFoundf("%s %d", strings.TrimSuffix(e.prefix, ":"), id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}

	var v T
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &v)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return &v, nil
}

// get retrieves an entity by id.
// Returns store.ErrNotFound if the entity does not exist.
func (e *entity[T]) get(ctx context.Context, id int64) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var v *T
	err := e.db.View(func(txn *badger.Txn) error {
		var err error
		v, err = e.read(txn, id)
		return err
	})
	return v, err
}

// getMany returns the entities for ids in the given order, skipping missing ones.
func (e *entity[T]) getMany(ctx context.Context, ids []int64) ([]*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := make([]*T, 0, len(ids))
	err := e.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			v, err := e.read(txn, id)
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			result = append(result, v)
		}
		return nil
	})
	return result, err
}

// list returns an iterator over all entities in id order.
func (e *entity[T]) list(ctx context.Context) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		// stopped is set once an error went to the caller or the caller
		// broke out of the loop; nothing more may be yielded after that.
		stopped := false
		err := e.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = []byte(e.prefix)
			opts.PrefetchValues = true

			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek([]byte(e.prefix)); it.ValidForPrefix([]byte(e.prefix)); it.Next() {
				if ctx.Err() != nil {
					stopped = true
					yield(nil, ctx.Err())
					return ctx.Err()
				}

				// Skip index keys
				if strings.HasPrefix(string(it.Item().Key()[len(e.prefix):]), "idx:") {
					continue
				}

				var v T
				err := it.Item().Value(func(val []byte) error {
					return json.Unmarshal(val, &v)
				})
				if err != nil {
					stopped = true
					yield(nil, err)
					return err
				}

				if !yield(&v, nil) {
					stopped = true
					return nil
				}
			}
			return nil
		})
		if err != nil && !stopped {
			yield(nil, err)
		}
	}
}

// collect drains list into a slice.
func (e *entity[T]) collect(ctx context.Context) ([]*T, error) {
	result := []*T{}
	for v, err := range e.list(ctx) {
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, nil
}

// listByIndexRange returns entities whose index value lies in [from, to],
// compared lexically, ordered by id.
func (e *entity[T]) listByIndexRange(ctx context.Context, name, from, to string) ([]*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if from > to {
		return []*T{}, nil
	}

	prefix := e.indexPrefix(name)
	var ids []int64
	err := e.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte(prefix + from)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			rest := string(it.Item().Key()[len(prefix):])
			sep := strings.LastIndexByte(rest, ':')
			if sep < 0 {
				continue
			}
			if rest[:sep] > to {
				break
			}
			id, err := strconv.ParseInt(rest[sep+1:], 10, 64)
			if err != nil {
				return fmt.Errorf("corrupt index key %q: %w", it.Item().Key(), err)
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(ids)
	return e.getMany(ctx, ids)
}

// listByIndex returns entities whose index value equals value, ordered by id.
func (e *entity[T]) listByIndex(ctx context.Context, name, value string) ([]*T, error) {
	return e.listByIndexRange(ctx, name, value, value)
}
