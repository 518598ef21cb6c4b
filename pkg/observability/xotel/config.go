package xotel

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// DefaultShutdownTimeout Shutdown 的默认超时
const DefaultShutdownTimeout = 5 * time.Second

// Config 遥测配置，对应配置文件中的 otel 段
type Config struct {
	ServiceName    string `koanf:"service_name" json:"service_name"`
	ServiceVersion string `koanf:"service_version" json:"service_version"`
	Environment    string `koanf:"environment" json:"environment"`

	// OTLPEndpoint OTLP/HTTP 地址（如 "localhost:4318"），为空时不导出 span
	OTLPEndpoint string `koanf:"otlp_endpoint" json:"otlp_endpoint"`
	OTLPInsecure bool   `koanf:"otlp_insecure" json:"otlp_insecure"`

	// SampleRatio 根 span 采样比率，0 视为 1.0
	SampleRatio float64 `koanf:"sample_ratio" json:"sample_ratio"`

	// ShutdownTimeout 为 0 时使用 DefaultShutdownTimeout
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" json:"shutdown_timeout"`
}

// Validate 校验配置
func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return ErrEmptyServiceName
	}
	if math.IsNaN(c.SampleRatio) || c.SampleRatio < 0 || c.SampleRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, c.SampleRatio)
	}
	if c.ShutdownTimeout < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidShutdownTimeout, c.ShutdownTimeout)
	}
	return nil
}

func (c Config) sampleRatio() float64 {
	if c.SampleRatio == 0 {
		return 1
	}
	return c.SampleRatio
}

func (c Config) shutdownTimeout() time.Duration {
	if c.ShutdownTimeout == 0 {
		return DefaultShutdownTimeout
	}
	return c.ShutdownTimeout
}
