package xconf

import "github.com/knadh/koanf/v2"

// Format 配置格式
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Config 分层加载后的配置
type Config interface {
	// Client 返回当前的 koanf 快照，Reload 后旧快照仍可读但不再更新
	Client() *koanf.Koanf

	// Unmarshal 将 path 下的配置解码到 target，path 为空时解码全部
	Unmarshal(path string, target any) error

	// Reload 重新加载全部层，失败时保留旧配置
	Reload() error

	// Path 配置文件路径，字节数据创建时为空
	Path() string

	Format() Format
}

// MustUnmarshal 同 Config.Unmarshal，失败时 panic，用于启动阶段
func MustUnmarshal(cfg Config, path string, target any) {
	if err := cfg.Unmarshal(path, target); err != nil {
		panic(err)
	}
}
