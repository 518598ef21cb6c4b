package xconf

import "strings"

const (
	defaultDelim = "."
	defaultTag   = "koanf"

	// envLevelSep 环境变量中的层级分隔符，单下划线保留给键名本身
	envLevelSep = "__"
)

type options struct {
	delim     string
	tag       string
	envPrefix string
	defaults  map[string]any
}

// Option 加载选项
type Option func(*options)

func defaultOptions() *options {
	return &options{delim: defaultDelim, tag: defaultTag}
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// WithDelim 设置键分隔符，默认 "."
func WithDelim(delim string) Option {
	return func(o *options) {
		if delim != "" {
			o.delim = delim
		}
	}
}

// WithTag 设置 Unmarshal 使用的结构体标签，默认 "koanf"
func WithTag(tag string) Option {
	return func(o *options) {
		if tag != "" {
			o.tag = tag
		}
	}
}

// WithEnvPrefix 启用环境变量覆盖，如 "XTRACED_"
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.envPrefix = prefix
	}
}

// WithDefaults 设置默认值，键使用扁平路径（"server.addr"）或嵌套 map
func WithDefaults(defaults map[string]any) Option {
	return func(o *options) {
		o.defaults = defaults
	}
}

// envKey 把 XTRACED_OTEL__SERVICE_NAME 转为 otel.service_name
func (o *options) envKey(name string) string {
	key := strings.TrimPrefix(name, o.envPrefix)
	if key == "" {
		return ""
	}
	return strings.ReplaceAll(strings.ToLower(key), envLevelSep, o.delim)
}
