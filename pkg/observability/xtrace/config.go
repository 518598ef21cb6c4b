package xtrace

import (
	"github.com/omeyang/xtracekit/pkg/observability/xsampling"
)

// Config 文件配置，对应配置文件中的 trace 段
type Config struct {
	// StaticPrefix 静态资源前缀，空值使用 DefaultStaticPrefix
	StaticPrefix string `koanf:"static_prefix" json:"static_prefix"`

	// BypassFile 不追踪的文件路径，空值使用 DefaultBypassFile
	BypassFile string `koanf:"bypass_file" json:"bypass_file"`

	// InstrumentationName tracer 名称
	InstrumentationName string `koanf:"instrumentation_name" json:"instrumentation_name"`

	// SampleRate 采样比率，0 表示未配置（全采样）
	SampleRate float64 `koanf:"sample_rate" json:"sample_rate"`

	// SampleByPath 按请求路径一致性采样，否则按比率随机采样
	SampleByPath bool `koanf:"sample_by_path" json:"sample_by_path"`

	// AlwaysSamplePaths 不受 SampleRate 影响、总是追踪的请求路径（精确匹配）
	AlwaysSamplePaths []string `koanf:"always_sample_paths" json:"always_sample_paths"`

	// LegacyConditionalEnd 见 WithLegacyConditionalEnd
	LegacyConditionalEnd bool `koanf:"legacy_conditional_end" json:"legacy_conditional_end"`
}

// Options 转换为中间件选项；采样比率非法时返回 xsampling.ErrInvalidRate
func (c Config) Options() ([]Option, error) {
	var opts []Option
	if c.StaticPrefix != "" {
		opts = append(opts, WithStaticPrefix(c.StaticPrefix))
	}
	if c.BypassFile != "" {
		opts = append(opts, WithBypassFile(c.BypassFile))
	}
	if c.InstrumentationName != "" {
		opts = append(opts, WithInstrumentationName(c.InstrumentationName))
	}
	if c.LegacyConditionalEnd {
		opts = append(opts, WithLegacyConditionalEnd(true))
	}

	if c.SampleRate != 0 {
		var (
			sampler xsampling.Sampler
			err     error
		)
		if c.SampleByPath {
			sampler, err = xsampling.NewKeyBasedSampler(c.SampleRate, PathKey)
		} else {
			sampler, err = xsampling.NewRateSampler(c.SampleRate)
		}
		if err != nil {
			return nil, err
		}
		if len(c.AlwaysSamplePaths) > 0 {
			if sampler, err = alwaysSamplePaths(sampler, c.AlwaysSamplePaths); err != nil {
				return nil, err
			}
		}
		opts = append(opts, WithSampler(sampler))
	}
	return opts, nil
}

// alwaysSamplePaths 命中 paths 的请求直接采样，其余交给 fallback
func alwaysSamplePaths(fallback xsampling.Sampler, paths []string) (xsampling.Sampler, error) {
	match, err := xsampling.NewKeyMatchSampler(PathKey, paths...)
	if err != nil {
		return nil, err
	}
	return xsampling.Any(match, fallback)
}
