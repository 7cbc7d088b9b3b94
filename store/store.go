package store

// 注意：此包只包含实现，接口定义在 core 包。
// 使用 core.Store 和 core.Lister 接口。
//
// 示例：
//   var s core.Store = NewMemoryStore()
//   fs, _ := NewFileStore("storage")
//
// 所有实现都保证 Set 是整值替换，离线任务覆盖产出表时读方不会看到半截数据。

import (
	"fmt"
	"strings"

	"github.com/rushteam/eventrec/core"
)

// ErrNotFound 是 core.ErrStoreNotFound 的包内别名。
var ErrNotFound = core.ErrStoreNotFound

// Options 描述如何打开一个存储后端。
type Options struct {
	// Backend: memory / file / redis / badger
	Backend string

	// Path 用于 file（目录）与 badger（数据目录）
	Path string

	// Addr / DB 用于 redis
	Addr string
	DB   int
}

// Open 按 Options 打开存储后端。
func Open(opts Options) (core.Store, error) {
	switch strings.ToLower(opts.Backend) {
	case "", "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(opts.Path)
	case "redis":
		return NewRedisStore(opts.Addr, opts.DB)
	case "badger":
		return NewBadgerStore(opts.Path)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", opts.Backend)
	}
}
