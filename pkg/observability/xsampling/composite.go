package xsampling

import "context"

// CompositeMode 组合方式
type CompositeMode int

const (
	// ModeAND 全部子采样器同意才采样
	ModeAND CompositeMode = iota
	// ModeOR 任一子采样器同意即采样
	ModeOR
)

func (m CompositeMode) String() string {
	switch m {
	case ModeAND:
		return "AND"
	case ModeOR:
		return "OR"
	default:
		return "Unknown"
	}
}

// CompositeSampler 按 AND / OR 组合多个采样器，短路求值
//
// 没有子采样器时 AND 采样、OR 不采样（空集合的逻辑恒等元）。
type CompositeSampler struct {
	samplers []Sampler
	mode     CompositeMode
}

// NewCompositeSampler mode 非法返回 ErrInvalidMode，任一子采样器为 nil 返回 ErrNilSampler
func NewCompositeSampler(mode CompositeMode, samplers ...Sampler) (*CompositeSampler, error) {
	if mode != ModeAND && mode != ModeOR {
		return nil, ErrInvalidMode
	}
	for _, s := range samplers {
		if s == nil {
			return nil, ErrNilSampler
		}
	}
	return &CompositeSampler{samplers: append([]Sampler(nil), samplers...), mode: mode}, nil
}

// All 等价于 NewCompositeSampler(ModeAND, samplers...)
func All(samplers ...Sampler) (*CompositeSampler, error) {
	return NewCompositeSampler(ModeAND, samplers...)
}

// Any 等价于 NewCompositeSampler(ModeOR, samplers...)
//
//	// 管理接口总是追踪，其余请求 10% 随机采样
//	admin, _ := xsampling.NewKeyMatchSampler(xtrace.PathKey, "/api/admin")
//	rate, _ := xsampling.NewRateSampler(0.1)
//	sampler, err := xsampling.Any(admin, rate)
func Any(samplers ...Sampler) (*CompositeSampler, error) {
	return NewCompositeSampler(ModeOR, samplers...)
}

func (s *CompositeSampler) ShouldSample(ctx context.Context) bool {
	for _, sampler := range s.samplers {
		result := sampler.ShouldSample(ctx)
		if s.mode == ModeAND && !result {
			return false
		}
		if s.mode == ModeOR && result {
			return true
		}
	}
	return s.mode == ModeAND
}

// Mode 返回组合方式
func (s *CompositeSampler) Mode() CompositeMode { return s.mode }

// Samplers 返回子采样器的副本
func (s *CompositeSampler) Samplers() []Sampler {
	return append([]Sampler(nil), s.samplers...)
}

// KeyMatchSampler key 命中集合时采样，其余不采样
//
// 通常与 Any 组合，让少数关键路由绕过比率采样。
type KeyMatchSampler struct {
	keyFunc KeyFunc
	keys    map[string]struct{}
}

// NewKeyMatchSampler keyFunc 为 nil 时返回 ErrNilKeyFunc；空字符串 key 被忽略
func NewKeyMatchSampler(keyFunc KeyFunc, keys ...string) (*KeyMatchSampler, error) {
	if keyFunc == nil {
		return nil, ErrNilKeyFunc
	}
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k != "" {
			set[k] = struct{}{}
		}
	}
	return &KeyMatchSampler{keyFunc: keyFunc, keys: set}, nil
}

func (s *KeyMatchSampler) ShouldSample(ctx context.Context) bool {
	if ctx == nil || len(s.keys) == 0 {
		return false
	}
	_, ok := s.keys[s.keyFunc(ctx)]
	return ok
}

var (
	_ Sampler = (*CompositeSampler)(nil)
	_ Sampler = (*KeyMatchSampler)(nil)
)
