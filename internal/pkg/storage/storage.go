package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// Storage 渲染产物存储接口
type Storage interface {
	// Upload 整体写入文件，失败时不得留下部分写入的内容
	Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error)

	// Delete 删除文件
	Delete(ctx context.Context, key string) error

	// Exists 检查文件是否存在
	Exists(ctx context.Context, key string) (bool, error)

	// GetFileInfo 获取文件信息
	GetFileInfo(ctx context.Context, key string) (*FileInfo, error)

	// GetStorageType 获取存储类型
	GetStorageType() string
}

// Preflighter 可选接口：写入前检查 key 是否可写（如父目录是否存在）
type Preflighter interface {
	CheckWritable(ctx context.Context, key string) error
}

// FileInfo 文件信息
type FileInfo struct {
	Key          string
	Size         int64
	ContentType  string
	ETag         string
	LastModified time.Time
}

// StorageType 存储类型
type StorageType string

const (
	StorageTypeLocal StorageType = "local" // 本地文件系统
	StorageTypeOSS   StorageType = "oss"   // 阿里云OSS
)

// ErrParentDirMissing 输出文件的父目录不存在
var ErrParentDirMissing = errors.New("parent directory does not exist")

// Preflight 若存储实现了 Preflighter 则执行写入前检查
func Preflight(ctx context.Context, s Storage, key string) error {
	if p, ok := s.(Preflighter); ok {
		return p.CheckWritable(ctx, key)
	}
	return nil
}
