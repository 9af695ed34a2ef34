// Package safe_close coordinates graceful shutdown of long running goroutines.
package safe_close

import (
	"sync"
)

// SafeClose 关闭信号协调器
// Every attached worker receives the same close signal and reports completion
// through done; WaitClosed blocks until all of them have returned.
type SafeClose struct {
	once   sync.Once
	mu     sync.Mutex
	wg     sync.WaitGroup
	signal chan struct{}
	err    error
	closed bool
}

func NewSafeClose() *SafeClose {
	return &SafeClose{signal: make(chan struct{})}
}

// Attach 启动一个受管理的协程
func (s *SafeClose) Attach(fn func(done func(), closeSignal <-chan struct{})) {
	s.wg.Add(1)
	var doneOnce sync.Once
	go fn(func() { doneOnce.Do(s.wg.Done) }, s.signal)
}

// SendCloseSignal 广播关闭信号，只有第一次调用携带的错误会被保留
func (s *SafeClose) SendCloseSignal(err error) {
	s.once.Do(func() {
		s.mu.Lock()
		s.err = err
		s.closed = true
		s.mu.Unlock()
		close(s.signal)
	})
}

// CloseSignal 返回关闭信号通道
func (s *SafeClose) CloseSignal() <-chan struct{} {
	return s.signal
}

// Closed 是否已经发送关闭信号
func (s *SafeClose) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// WaitClosed 等待所有协程退出，返回关闭原因
func (s *SafeClose) WaitClosed() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
