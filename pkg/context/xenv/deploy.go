package xenv

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// EnvDeploymentType 部署类型环境变量
const EnvDeploymentType = "DEPLOYMENT_TYPE"

// DeploymentType 部署类型
type DeploymentType string

const (
	// DeploymentLocal 本地/私有化部署
	DeploymentLocal DeploymentType = "LOCAL"

	// DeploymentSaaS SaaS 云部署
	DeploymentSaaS DeploymentType = "SAAS"
)

var (
	ErrMissingEnv            = errors.New("xenv: DEPLOYMENT_TYPE env var not set")
	ErrInvalidDeploymentType = errors.New("xenv: invalid deployment type")
)

func (d DeploymentType) String() string { return string(d) }

func (d DeploymentType) IsValid() bool {
	return d == DeploymentLocal || d == DeploymentSaaS
}

// Environment 作为遥测 deployment.environment.name 的取值（小写）
func (d DeploymentType) Environment() string {
	return strings.ToLower(string(d))
}

// Parse 大小写不敏感地解析部署类型
func Parse(s string) (DeploymentType, error) {
	switch dt := DeploymentType(strings.ToUpper(strings.TrimSpace(s))); dt {
	case DeploymentLocal, DeploymentSaaS:
		return dt, nil
	default:
		return "", fmt.Errorf("%w: %q (expected LOCAL or SAAS)", ErrInvalidDeploymentType, s)
	}
}

// Detect 从 DEPLOYMENT_TYPE 读取部署类型，未设置或为空时返回 ErrMissingEnv
func Detect() (DeploymentType, error) {
	return detect(os.LookupEnv)
}

func detect(lookup func(string) (string, bool)) (DeploymentType, error) {
	v, ok := lookup(EnvDeploymentType)
	if !ok || strings.TrimSpace(v) == "" {
		return "", ErrMissingEnv
	}
	return Parse(v)
}
