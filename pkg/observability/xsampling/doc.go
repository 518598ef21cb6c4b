// Package xsampling 决定一个请求是否进入追踪。
//
// xtrace.RequestTracing 在创建 span 前调用 Sampler.ShouldSample；返回 false 的请求
// 与静态资源一样直接透传，不产生 span 也不计入请求指标。
//
// 内置策略：
//   - Always / Never：全采样 / 不采样
//   - RateSampler：按比率随机采样
//   - KeyBasedSampler：按 key 的 xxhash 一致性采样，同一 key 总是得到相同决策
//   - KeyMatchSampler：key 命中集合时采样
//   - CompositeSampler（All / Any）：按 AND / OR 组合上述策略
package xsampling
