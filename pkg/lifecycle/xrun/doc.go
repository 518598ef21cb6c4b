// Package xrun 托管 xtraced 进程内的长期任务：HTTP 服务、配置监视、遥测刷新。
//
// 任一任务返回错误或收到退出信号时，其余任务的 ctx 被取消；Run 等待全部返回后
// 给出退出原因。信号退出返回 *SignalError，可用 errors.Is(err, ErrSignal) 判断。
//
//	err := xrun.RunWithOptions(ctx, []xrun.Option{xrun.WithLogger(logger)},
//		xrun.HTTPServer(server, 10*time.Second),
//		watcher.Run,
//	)
package xrun
