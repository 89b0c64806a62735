package storagefactory

import (
	"context"
	"fmt"

	"ninjin/internal/config"
	"ninjin/internal/pkg/storage"
	"ninjin/internal/pkg/storage/local"
	"ninjin/internal/pkg/storage/oss"
)

// NewStorage 根据配置创建存储实例，未配置类型时使用本地文件系统
func NewStorage(ctx context.Context, cfg *config.StorageConfig) (storage.Storage, error) {
	switch cfg.Type {
	case "local", "":
		basePath := "."
		if cfg.Local != nil && cfg.Local.BasePath != "" {
			basePath = cfg.Local.BasePath
		}
		s, err := local.NewLocalStorage(basePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "oss":
		if cfg.OSS == nil {
			return nil, fmt.Errorf("OSS storage config is required")
		}
		s, err := oss.NewOSSStorage(
			cfg.OSS.Endpoint,
			cfg.OSS.Bucket,
			cfg.OSS.AccessKeyID,
			cfg.OSS.AccessKeySecret,
		)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
