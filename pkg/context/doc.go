// Package context 包含请求级与进程级上下文相关的子包。
//
// 子包列表：
//   - xctx: 在 context.Context 中携带追踪标识、请求 ID 与路由操作名
//   - xenv: 进程级部署环境检测
package context
