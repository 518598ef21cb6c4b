// xtraced 是请求追踪中间件的演示服务。
//
// 用法:
//
//	xtraced serve [--config config.yaml]
//	xtraced version
//
// 配置段 log / trace / otel / server，均可用 XTRACED_ 前缀的环境变量覆盖，
// 层级以双下划线分隔，如 XTRACED_OTEL__OTLP_ENDPOINT=localhost:4318。
//
// 演示路由:
//
//	/api/org/preferences/          非 admin 角色（X-Org-Role）返回 403
//	GET /api/org/{id}/preferences  路由名 /api/org/:id/preferences
//	GET /metrics                   Prometheus 指标
//	/public/                       静态文件，不追踪
//	/robots.txt                    不追踪
//
// 退出码: 0 正常退出（含信号），1 运行失败。
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

// 版本信息，通过 -ldflags "-X main.Version=..." 注入
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run(context.Background(), os.Args, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if err := createApp(stdout, stderr).Run(ctx, args); err != nil {
		fmt.Fprintf(stderr, "xtraced: %v\n", err)
		return 1
	}
	return 0
}

func versionString() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime)
}

func createApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "xtraced",
		Usage:     "请求追踪演示服务",
		Version:   versionString(),
		Writer:    stdout,
		ErrWriter: stderr,
		// 退出码由 run 统一处理
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "启动 HTTP 服务",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "配置文件路径（.yaml / .yml / .json）",
						Sources: cli.EnvVars("XTRACED_CONFIG"),
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return serve(ctx, cmd.String("config"), stderr)
				},
			},
			{
				Name:  "version",
				Usage: "打印版本信息",
				Action: func(_ context.Context, cmd *cli.Command) error {
					_, err := fmt.Fprintln(cmd.Root().Writer, "xtraced", versionString())
					return err
				},
			},
		},
	}
}
