package xrun

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrSignal 因系统信号退出
	ErrSignal = errors.New("xrun: received signal")

	ErrNilFunc   = errors.New("xrun: nil service func")
	ErrNilServer = errors.New("xrun: nil http server")
)

// SignalError 携带触发退出的信号
type SignalError struct {
	Signal os.Signal
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("%v: %v", ErrSignal, e.Signal)
}

func (e *SignalError) Is(target error) bool {
	return target == ErrSignal
}
