package store

import (
	"context"
	"errors"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rushteam/eventrec/core"
)

// FileStore 把每个 key 存成目录下的一个 JSON 文件（storage/<key>.json）。
//
// Set 先写同目录临时文件再 rename，保证读方只会看到完整的旧值或新值。
// 不支持 TTL，ttl 参数被忽略。
type FileStore struct {
	dir string
	mu  sync.Mutex // 只保护同一进程内的并发写
}

// NewFileStore 打开（必要时创建）目录 dir。
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = "storage"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, core.StoreUnavailable("mkdir "+dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) Name() string { return "file" }

// Dir 返回数据目录。
func (f *FileStore) Dir() string { return f.dir }

func (f *FileStore) path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key)+".json")
}

func (f *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, core.StoreUnavailable("read "+key, err)
	}
	return data, nil
}

func (f *FileStore) Set(ctx context.Context, key string, value []byte, _ ...int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writeAtomic(key, value)
}

func (f *FileStore) writeAtomic(key string, value []byte) error {
	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return core.StoreUnavailable("create temp for "+key, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return core.StoreUnavailable("write "+key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return core.StoreUnavailable("sync "+key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return core.StoreUnavailable("close "+key, err)
	}
	if err := os.Rename(tmpName, f.path(key)); err != nil {
		os.Remove(tmpName)
		return core.StoreUnavailable("rename "+key, err)
	}
	return nil
}

func (f *FileStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return core.StoreUnavailable("delete "+key, err)
	}
	return nil
}

func (f *FileStore) BatchGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	result := make(map[string][]byte, len(keys))
	for _, k := range keys {
		v, err := f.Get(ctx, k)
		if err != nil {
			if core.IsStoreNotFound(err) {
				continue
			}
			return nil, err
		}
		result[k] = v
	}
	return result, nil
}

func (f *FileStore) BatchSet(ctx context.Context, kvs map[string][]byte, _ ...int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for k, v := range kvs {
		if err := f.writeAtomic(k, v); err != nil {
			return err
		}
	}
	return nil
}

// Keys 按前缀列出 key（升序）。
func (f *FileStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, core.StoreUnavailable("list "+f.dir, err)
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".tmp-") || !strings.HasSuffix(name, ".json") {
			continue
		}
		key, err := url.PathUnescape(strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *FileStore) Close() error { return nil }

var (
	_ core.Store  = (*FileStore)(nil)
	_ core.Lister = (*FileStore)(nil)
)
