// Package xrotate 为访问日志、追踪调试日志等文件输出提供按大小轮转的能力。
//
// 底层基于 lumberjack，xlog.Builder.SetRotation 直接使用本包。
package xrotate
