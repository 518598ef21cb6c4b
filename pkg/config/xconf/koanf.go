package xconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

type koanfConfig struct {
	k      atomic.Pointer[koanf.Koanf]
	path   string
	data   []byte // 仅字节数据创建时非空
	format Format
	opts   *options

	// reloadMu 串行化 Reload，避免较慢的旧读取覆盖新结果
	reloadMu sync.Mutex
}

// New 从文件创建配置，格式按扩展名判定（.yaml / .yml / .json）
func New(path string, opts ...Option) (Config, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	format, err := detectFormat(path)
	if err != nil {
		return nil, err
	}

	c := &koanfConfig{path: path, format: format, opts: applyOptions(opts)}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewFromBytes 从字节数据创建配置，空数据得到只含默认值与环境变量的配置
func NewFromBytes(data []byte, format Format, opts ...Option) (Config, error) {
	if !isValidFormat(format) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	c := &koanfConfig{data: data, format: format, opts: applyOptions(opts)}
	k, err := c.load(data)
	if err != nil {
		return nil, err
	}
	c.k.Store(k)
	return c, nil
}

func (c *koanfConfig) Client() *koanf.Koanf {
	return c.k.Load()
}

func (c *koanfConfig) Unmarshal(path string, target any) error {
	if err := c.k.Load().UnmarshalWithConf(path, target, koanf.UnmarshalConf{Tag: c.opts.tag}); err != nil {
		return fmt.Errorf("%w: %w", ErrUnmarshalFailed, err)
	}
	return nil
}

// Reload 重新读取文件并整体替换快照，失败时保留旧快照
//
// 设计决策: 每次重载构建全新的 koanf 实例再原子替换，而不是在原实例上 Load。
// 读者拿到的始终是完整的一版配置，不会看到新旧混合或半解析的中间状态。
func (c *koanfConfig) Reload() error {
	if c.path == "" {
		return ErrNotReloadable
	}

	c.reloadMu.Lock()
	defer c.reloadMu.Unlock()

	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	k, err := c.load(data)
	if err != nil {
		return err
	}
	c.k.Store(k)
	return nil
}

func (c *koanfConfig) Path() string   { return c.path }
func (c *koanfConfig) Format() Format { return c.format }

// =============================================================================
// 分层加载
// =============================================================================

func (c *koanfConfig) load(data []byte) (*koanf.Koanf, error) {
	k := koanf.New(c.opts.delim)

	if len(c.opts.defaults) > 0 {
		if err := k.Load(confmap.Provider(c.opts.defaults, c.opts.delim), nil); err != nil {
			return nil, fmt.Errorf("%w: defaults: %w", ErrLoadFailed, err)
		}
	}

	if len(data) > 0 {
		if err := k.Load(rawbytes.Provider(data), parserFor(c.format)); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
		}
	}

	if c.opts.envPrefix != "" {
		if err := k.Load(env.Provider(c.opts.envPrefix, c.opts.delim, c.opts.envKey), nil); err != nil {
			return nil, fmt.Errorf("%w: env: %w", ErrLoadFailed, err)
		}
	}
	return k, nil
}

func detectFormat(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %q", ErrUnsupportedFormat, ext)
	}
}

func isValidFormat(format Format) bool {
	return format == FormatYAML || format == FormatJSON
}

func parserFor(format Format) koanf.Parser {
	if format == FormatJSON {
		return json.Parser()
	}
	return yaml.Parser()
}
