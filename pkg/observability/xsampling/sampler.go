package xsampling

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"math"
)

// Sampler 采样策略接口
type Sampler interface {
	// ShouldSample 返回 true 表示应该采样
	ShouldSample(ctx context.Context) bool
}

type alwaysSampler struct{}

func (alwaysSampler) ShouldSample(context.Context) bool { return true }

type neverSampler struct{}

func (neverSampler) ShouldSample(context.Context) bool { return false }

// Always 返回全采样策略
func Always() Sampler { return alwaysSampler{} }

// Never 返回不采样策略
func Never() Sampler { return neverSampler{} }

// RateSampler 固定比率随机采样
type RateSampler struct {
	rate float64
}

// NewRateSampler 创建固定比率采样器，rate 不在 [0, 1] 或为 NaN 时返回 ErrInvalidRate
func NewRateSampler(rate float64) (*RateSampler, error) {
	if err := validateRate(rate); err != nil {
		return nil, err
	}
	return &RateSampler{rate: rate}, nil
}

func (s *RateSampler) ShouldSample(context.Context) bool {
	switch {
	case s.rate <= 0:
		return false
	case s.rate >= 1:
		return true
	default:
		return randomFloat64() < s.rate
	}
}

// Rate 返回采样比率
func (s *RateSampler) Rate() float64 { return s.rate }

func validateRate(rate float64) error {
	if math.IsNaN(rate) || rate < 0 || rate > 1 {
		return ErrInvalidRate
	}
	return nil
}

const floatScale = 1.0 / (1 << 53)

// randomFloat64 返回 [0, 1) 的随机数；系统熵源不可用时 panic
func randomFloat64() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("xsampling: crypto/rand.Read failed: " + err.Error())
	}
	return float64(binary.LittleEndian.Uint64(buf[:])>>11) * floatScale
}

var (
	_ Sampler = alwaysSampler{}
	_ Sampler = neverSampler{}
	_ Sampler = (*RateSampler)(nil)
)
