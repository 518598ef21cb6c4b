package xconf

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce 合并连续文件事件的窗口
const DefaultDebounce = 100 * time.Millisecond

// WatchCallback 每次重载后调用，err 非 nil 表示重载或监视出错（旧配置仍生效）
type WatchCallback func(cfg Config, err error)

// WatchOption 监视选项
type WatchOption func(*Watcher)

// WithDebounce 设置防抖窗口，非正值忽略
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// Watcher 监视配置文件并自动重载
type Watcher struct {
	cfg      *koanfConfig
	fs       *fsnotify.Watcher
	callback WatchCallback
	debounce time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
	// pending 等待进行中的回调结束，Run 返回后不再回调
	pending sync.WaitGroup
}

// Watch 为文件配置创建 Watcher，需调用 Run 开始监视
func Watch(cfg Config, callback WatchCallback, opts ...WatchOption) (*Watcher, error) {
	kc, ok := cfg.(*koanfConfig)
	if !ok {
		return nil, fmt.Errorf("xconf: unsupported config type %T", cfg)
	}
	if kc.path == "" {
		return nil, ErrNotReloadable
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("xconf: create watcher: %w", err)
	}
	// 设计决策: 监视所在目录而非文件本身。编辑器与 ConfigMap 常以 rename 原子替换文件，
	// 直接监视文件会在第一次替换后失去 inode，之后的变更再也收不到。
	dir := filepath.Dir(kc.path)
	if err := fs.Add(dir); err != nil {
		return nil, errors.Join(fmt.Errorf("xconf: watch directory %s: %w", dir, err), fs.Close())
	}

	w := &Watcher{cfg: kc, fs: fs, callback: callback, debounce: DefaultDebounce}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w, nil
}

// Run 阻塞监视直到 ctx 取消，返回时已关闭底层 watcher 且没有进行中的回调
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stop()

	filename := filepath.Base(w.cfg.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) == filename && event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.schedule()
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.notify(fmt.Errorf("xconf: watch: %w", err))
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer != nil && w.timer.Stop() {
		w.pending.Done()
	}
	w.pending.Add(1)
	w.timer = time.AfterFunc(w.debounce, func() {
		defer w.pending.Done()
		w.mu.Lock()
		stopped := w.stopped
		w.mu.Unlock()
		if stopped {
			return
		}
		w.notify(w.cfg.Reload())
	})
}

func (w *Watcher) notify(err error) {
	if w.callback != nil {
		w.callback(w.cfg, err)
	}
}

func (w *Watcher) stop() {
	w.mu.Lock()
	w.stopped = true
	if w.timer != nil && w.timer.Stop() {
		w.pending.Done()
	}
	w.mu.Unlock()

	w.pending.Wait()
	_ = w.fs.Close()
}
