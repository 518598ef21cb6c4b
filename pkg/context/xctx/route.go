package xctx

import (
	"context"
	"sync/atomic"
)

// KeyRoute 路由操作名的日志属性 Key
const KeyRoute = "route"

const (
	keyRoute     = contextKey("xctx:route")
	keyRouteSlot = contextKey("xctx:route_slot")
)

// routeSlot 请求级的路由名槽位。
//
// 槽位只允许写入一次（首次非空写入生效），与"每个请求至多设置一次路由名"的约定一致。
// parent 指向外层槽位，写入会沿链向外传递，嵌套的追踪中间件都能读到同一个值。
//
// 设计决策: context 是不可变的，handler 派生出的 context 无法回传给外层中间件，
// 因此由外层预先放入一个可变槽位（指针），下游写槽位、外层在 handler 返回后读槽位。
// 使用 atomic.Pointer + CompareAndSwap 而非 Mutex：handler 可能把 ctx 交给其他 goroutine，
// 首次写入胜出的语义恰好用一次 CAS 表达。
type routeSlot struct {
	name   atomic.Pointer[string]
	parent *routeSlot
}

func (s *routeSlot) store(name string) {
	for cur := s; cur != nil; cur = cur.parent {
		n := name
		cur.name.CompareAndSwap(nil, &n)
	}
}

func (s *routeSlot) load() (string, bool) {
	if p := s.name.Load(); p != nil {
		return *p, true
	}
	return "", false
}

// WithRouteSlot 在 context 中放置一个空的路由名槽位。
//
// 由请求入口中间件（如 xtrace.RequestTracing）在调用下游 handler 前使用，
// 使下游通过 WithRouteOperationName 设置的路由名在 handler 返回后对入口可见。
// 如果 ctx 为 nil，返回 ErrNilContext。
func WithRouteSlot(ctx context.Context) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	parent, _ := ctx.Value(keyRouteSlot).(*routeSlot)
	return context.WithValue(ctx, keyRouteSlot, &routeSlot{parent: parent}), nil
}

// WithRouteOperationName 将路由操作名注入 context。
//
// 返回派生的 context，原 context 不变；若 context 链上存在路由槽位，
// 同时写入槽位（已有值时不覆盖）。
// ctx 为 nil 返回 ErrNilContext，name 为空返回 ErrEmptyRouteOperationName。
func WithRouteOperationName(ctx context.Context, name string) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if name == "" {
		return nil, ErrEmptyRouteOperationName
	}
	if slot, ok := ctx.Value(keyRouteSlot).(*routeSlot); ok {
		slot.store(name)
	}
	return context.WithValue(ctx, keyRoute, name), nil
}

// RouteOperationName 从 context 读取路由操作名。
//
// 优先返回槽位中的值（首次写入者），其次返回 context 链上直接携带的值。
// 未设置、ctx 为 nil 或值类型不符时返回 ("", false)，这是正常情况而非错误。
func RouteOperationName(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if slot, ok := ctx.Value(keyRouteSlot).(*routeSlot); ok {
		if name, ok := slot.load(); ok {
			return name, true
		}
	}
	name, ok := ctx.Value(keyRoute).(string)
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// RequireRouteOperationName 读取路由操作名，缺失时返回 ErrMissingRouteOperationName。
func RequireRouteOperationName(ctx context.Context) (string, error) {
	if ctx == nil {
		return "", ErrNilContext
	}
	name, ok := RouteOperationName(ctx)
	if !ok {
		return "", ErrMissingRouteOperationName
	}
	return name, nil
}
