// Package xlog 提供基于 log/slog 的结构化日志。
//
// 所有记录方法强制传入 context.Context：EnrichHandler 会从中提取
// trace_id / span_id / request_id 以及路由操作名，请求链路上的日志无需手动拼接这些字段。
//
// 用法：
//
//	logger, cleanup, err := xlog.New().
//		SetFormat("json").
//		SetLevelString("debug").
//		Build()
//	if err != nil {
//		return err
//	}
//	defer cleanup()
//
//	logger.Info(ctx, "request served", xlog.Status(200))
package xlog
