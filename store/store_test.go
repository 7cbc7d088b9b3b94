package store

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rushteam/eventrec/core"
)

type storeWithLister interface {
	core.Store
	core.Lister
}

func testBackends(t *testing.T) map[string]storeWithLister {
	t.Helper()

	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	bs, err := NewBadgerStore("")
	if err != nil {
		t.Fatalf("NewBadgerStore() error = %v", err)
	}

	backends := map[string]storeWithLister{
		"memory": NewMemoryStore(),
		"file":   fs,
		"badger": bs,
	}
	t.Cleanup(func() {
		for _, s := range backends {
			s.Close()
		}
	})
	return backends
}

func TestStore_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	for name, s := range testBackends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Get(ctx, "missing"); !core.IsStoreNotFound(err) {
				t.Fatalf("Get(missing) error = %v, want not found", err)
			}

			if err := s.Set(ctx, "popularity", []byte(`{"e1":1.0986}`)); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			got, err := s.Get(ctx, "popularity")
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if string(got) != `{"e1":1.0986}` {
				t.Errorf("Get() = %s", got)
			}

			// 整值替换
			if err := s.Set(ctx, "popularity", []byte(`{}`)); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			got, _ = s.Get(ctx, "popularity")
			if string(got) != `{}` {
				t.Errorf("Get() after overwrite = %s, want {}", got)
			}

			if err := s.Delete(ctx, "popularity"); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if _, err := s.Get(ctx, "popularity"); !core.IsStoreNotFound(err) {
				t.Errorf("Get() after delete error = %v, want not found", err)
			}
			// 删除不存在的 key 不报错
			if err := s.Delete(ctx, "popularity"); err != nil {
				t.Errorf("Delete(missing) error = %v", err)
			}
		})
	}
}

func TestStore_BatchAndKeys(t *testing.T) {
	ctx := context.Background()
	for name, s := range testBackends(t) {
		t.Run(name, func(t *testing.T) {
			err := s.BatchSet(ctx, map[string][]byte{
				"evrec:popularity": []byte("1"),
				"evrec:engagement": []byte("2"),
				"other:key":        []byte("3"),
			})
			if err != nil {
				t.Fatalf("BatchSet() error = %v", err)
			}

			got, err := s.BatchGet(ctx, []string{"evrec:popularity", "evrec:missing", "other:key"})
			if err != nil {
				t.Fatalf("BatchGet() error = %v", err)
			}
			if len(got) != 2 || string(got["evrec:popularity"]) != "1" || string(got["other:key"]) != "3" {
				t.Errorf("BatchGet() = %v", got)
			}

			keys, err := s.Keys(ctx, "evrec:")
			if err != nil {
				t.Fatalf("Keys() error = %v", err)
			}
			want := []string{"evrec:engagement", "evrec:popularity"}
			if !reflect.DeepEqual(keys, want) {
				t.Errorf("Keys() = %v, want %v", keys, want)
			}
		})
	}
}

func TestMemoryStore_ValueIsCopied(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	v := []byte("abc")
	_ = s.Set(ctx, "k", v)
	v[0] = 'x'

	got, _ := s.Get(ctx, "k")
	if string(got) != "abc" {
		t.Fatalf("stored value mutated through caller slice: %s", got)
	}
	got[1] = 'y'
	again, _ := s.Get(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("stored value mutated through returned slice: %s", again)
	}
}

func TestFileStore_NoTempFilesLeft(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		if err := s.Set(ctx, "interactions", []byte("[]")); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "interactions.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("dir entries = %v, want [interactions.json]", names)
	}
}

func TestFileStore_UnavailableOnWriteFailure(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	// 目录被移除后写入必须报 UNAVAILABLE，而不是静默成功
	if err := os.RemoveAll(filepath.Clean(dir)); err != nil {
		t.Fatal(err)
	}
	err = s.Set(ctx, "popularity", []byte("{}"))
	if !core.IsUnavailable(err) {
		t.Fatalf("Set() error = %v, want unavailable", err)
	}
}

func TestOpen(t *testing.T) {
	s, err := Open(Options{Backend: "memory"})
	if err != nil || s.Name() != "memory" {
		t.Fatalf("Open(memory) = %v, %v", s, err)
	}
	s.Close()

	s, err = Open(Options{Backend: "file", Path: t.TempDir()})
	if err != nil || s.Name() != "file" {
		t.Fatalf("Open(file) = %v, %v", s, err)
	}

	if _, err := Open(Options{Backend: "cassandra"}); err == nil {
		t.Error("Open(unknown) expected error")
	}
}

func TestRedisStore(t *testing.T) {
	t.Skip("需要连接真实的 Redis 服务器才能运行")

	ctx := context.Background()
	s, err := NewRedisStore("localhost:6379", 0)
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	defer s.Close()

	if err := s.Set(ctx, "evrec:test", []byte("1")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	keys, err := s.Keys(ctx, "evrec:")
	if err != nil || len(keys) == 0 {
		t.Fatalf("Keys() = %v, %v", keys, err)
	}
}
