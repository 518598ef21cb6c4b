package xsampling

import (
	"context"
	"math"

	"github.com/cespare/xxhash/v2"
)

// KeyFunc 从 context 提取采样 key
//
// 返回空字符串时 KeyBasedSampler 回退到随机采样。
type KeyFunc func(ctx context.Context) string

// KeyBasedOption KeyBasedSampler 可选参数
type KeyBasedOption func(*KeyBasedSampler)

// WithOnEmptyKey 空 key 回调，用于发现上下文传播链路断裂；nil 被忽略
func WithOnEmptyKey(fn func()) KeyBasedOption {
	return func(s *KeyBasedSampler) {
		if fn != nil {
			s.onEmptyKey = fn
		}
	}
}

// KeyBasedSampler 基于 key 的一致性采样
//
// xxhash 在所有进程中结果一致，按上游 trace id 采样时整条链路的决策相同；
// 按路径采样时同一路由要么全部追踪，要么全部跳过。
type KeyBasedSampler struct {
	rate       float64
	keyFunc    KeyFunc
	onEmptyKey func()
}

// NewKeyBasedSampler 创建一致性采样器
//
//	sampler, err := xsampling.NewKeyBasedSampler(0.1, xtrace.PathKey)
func NewKeyBasedSampler(rate float64, keyFunc KeyFunc, opts ...KeyBasedOption) (*KeyBasedSampler, error) {
	if err := validateRate(rate); err != nil {
		return nil, err
	}
	if keyFunc == nil {
		return nil, ErrNilKeyFunc
	}
	s := &KeyBasedSampler{rate: rate, keyFunc: keyFunc}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// ShouldSample 按 key 的哈希值决定是否采样
//
// 设计决策: key 为空时退化为随机采样而不是一律拒绝，
// 避免 keyFunc 取不到 key 的请求被系统性地排除在追踪之外。
func (s *KeyBasedSampler) ShouldSample(ctx context.Context) bool {
	if s.rate <= 0 {
		return false
	}
	if s.rate >= 1 {
		return true
	}

	var key string
	if ctx != nil {
		key = s.keyFunc(ctx)
	}
	if key == "" {
		if s.onEmptyKey != nil {
			s.onEmptyKey()
		}
		return randomFloat64() < s.rate
	}

	normalized := float64(xxhash.Sum64String(key)) / float64(math.MaxUint64)
	return normalized < s.rate
}

// Rate 返回采样比率
func (s *KeyBasedSampler) Rate() float64 { return s.rate }

var _ Sampler = (*KeyBasedSampler)(nil)
