package xtrace

import (
	"bufio"
	"errors"
	"net"
	"net/http"
)

var errHijackUnsupported = errors.New("xtrace: underlying ResponseWriter does not support hijacking")

// statusWriter 记录响应状态码与写入字节数
//
// 1xx 信息性响应不作为最终状态码；未调用 WriteHeader 时按 net/http 约定视为 200。
//
// 设计决策: 只记录第一个最终状态码。net/http 对重复的 WriteHeader 只打印警告并保留
// 首次写出的状态，span 上的状态码必须与客户端实际收到的一致；101 虽属 1xx，
// 但连接随即被接管，它就是最终响应。
type statusWriter struct {
	http.ResponseWriter
	status  int
	written bool
	bytes   int64
}

func newStatusWriter(w http.ResponseWriter) *statusWriter {
	return &statusWriter{ResponseWriter: w}
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.written && (code >= 200 || code == http.StatusSwitchingProtocols) {
		w.status = code
		w.written = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.markOK()
	n, err := w.ResponseWriter.Write(b)
	w.bytes += int64(n)
	return n, err
}

func (w *statusWriter) markOK() {
	if !w.written {
		w.status = http.StatusOK
		w.written = true
	}
}

// Status 最终状态码
func (w *statusWriter) Status() int {
	if !w.written {
		return http.StatusOK
	}
	return w.status
}

// Written 是否已写出响应头
func (w *statusWriter) Written() bool { return w.written }

// BytesWritten 已写入的 body 字节数
func (w *statusWriter) BytesWritten() int64 { return w.bytes }

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		w.markOK()
		f.Flush()
	}
}

func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errHijackUnsupported
	}
	if !w.written {
		w.status = http.StatusSwitchingProtocols
		w.written = true
	}
	return h.Hijack()
}

// Unwrap 供 http.ResponseController 访问底层 writer
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
