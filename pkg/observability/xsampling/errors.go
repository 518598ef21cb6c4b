package xsampling

import "errors"

var (
	// ErrInvalidRate 采样比率不在 [0.0, 1.0] 范围内
	ErrInvalidRate = errors.New("xsampling: rate must be in [0.0, 1.0]")

	// ErrNilKeyFunc KeyBasedSampler 的 keyFunc 为 nil
	ErrNilKeyFunc = errors.New("xsampling: keyFunc must not be nil")

	// ErrInvalidMode CompositeSampler 的组合方式非法
	ErrInvalidMode = errors.New("xsampling: invalid composite mode")

	// ErrNilSampler CompositeSampler 的子采样器为 nil
	ErrNilSampler = errors.New("xsampling: sampler must not be nil")
)
