package lifecycle

import (
	"context"
)

// Handle 是分发给单个后台服务的生命周期句柄。
// 服务通过它监听停机信号，并在Goroutine退出前通过 defer 调用 Close
// 通知Manager自己已经完成关闭。
type Handle struct {
	ctx   context.Context
	Close func()
}

// Done 返回一个channel，管理器广播停机信号时该channel会关闭。
func (h *Handle) Done() <-chan struct{} {
	return h.ctx.Done()
}
