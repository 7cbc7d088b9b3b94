package store

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/rushteam/eventrec/core"
)

// BadgerStore 是基于 BadgerDB 的嵌入式持久化 Store。
// 单机部署时替代 FileStore：事务写入，进程崩溃不会留下半截值。
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore 打开（或创建）path 下的 BadgerDB。path 为空时使用内存模式。
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, core.StoreUnavailable("open badger "+path, err)
	}
	return &BadgerStore{db: db}, nil
}

// NewBadgerStoreFromDB 复用已打开的 DB。
func NewBadgerStoreFromDB(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

func (b *BadgerStore) Name() string { return "badger" }

func (b *BadgerStore) Get(ctx context.Context, key string) ([]byte, error) {
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, core.StoreUnavailable("get "+key, err)
	}
	return out, nil
}

func (b *BadgerStore) Set(ctx context.Context, key string, value []byte, ttl ...int) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(newBadgerEntry(key, value, ttl))
	})
	if err != nil {
		return core.StoreUnavailable("set "+key, err)
	}
	return nil
}

func (b *BadgerStore) Delete(ctx context.Context, key string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return core.StoreUnavailable("delete "+key, err)
	}
	return nil
}

func (b *BadgerStore) BatchGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	result := make(map[string][]byte, len(keys))
	err := b.db.View(func(txn *badger.Txn) error {
		for _, k := range keys {
			item, err := txn.Get([]byte(k))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			v, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			result[k] = v
		}
		return nil
	})
	if err != nil {
		return nil, core.StoreUnavailable("batch get", err)
	}
	return result, nil
}

// BatchSet 在一个事务内写入全部 key。
func (b *BadgerStore) BatchSet(ctx context.Context, kvs map[string][]byte, ttl ...int) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		for k, v := range kvs {
			if err := txn.SetEntry(newBadgerEntry(k, v, ttl)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return core.StoreUnavailable("batch set", err)
	}
	return nil
}

// Keys 按前缀列出 key（Badger 迭代顺序即字典序）。
func (b *BadgerStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys := make([]string, 0)
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return nil, core.StoreUnavailable("list "+prefix, err)
	}
	return keys, nil
}

func (b *BadgerStore) Close() error {
	return b.db.Close()
}

func newBadgerEntry(key string, value []byte, ttl []int) *badger.Entry {
	e := badger.NewEntry([]byte(key), value)
	if len(ttl) > 0 && ttl[0] > 0 {
		e = e.WithTTL(time.Duration(ttl[0]) * time.Second)
	}
	return e
}

var (
	_ core.Store  = (*BadgerStore)(nil)
	_ core.Lister = (*BadgerStore)(nil)
)
