// Package xconf 加载 xtraced 的服务配置，基于 koanf 实现。
//
// # 分层
//
// 按以下顺序合并，后者覆盖前者：
//  1. WithDefaults 提供的默认值（confmap）
//  2. 配置文件或字节数据（yaml / json，经 rawbytes 载入）
//  3. WithEnvPrefix 指定前缀的环境变量
//
// 环境变量以双下划线分隔层级，其余部分小写：
// XTRACED_OTEL__SERVICE_NAME 对应键 otel.service_name。
//
// # 重载与监视
//
// Reload 重新执行整个分层加载，成功后原子替换 koanf 实例，失败时保留旧配置。
// Watcher 监视配置文件所在目录（兼容编辑器的 rename 写入），防抖后调用 Reload，
// 并把结果交给回调。Watcher.Run 阻塞直到 ctx 取消，可直接交给 xrun 托管。
//
// 从字节数据创建的 Config 不支持 Reload 和监视。
package xconf
