// Package xenv 读取进程级的部署环境。
//
// 部署类型来自环境变量 DEPLOYMENT_TYPE（LOCAL / SAAS，大小写不敏感），
// xtraced 在未显式配置 otel.environment 时用它填充 deployment.environment.name。
package xenv
