package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/SlpAus/quiz-game-backend/pkg/lifecycle"
	"github.com/google/uuid"
)

// Countdown 是归属明确、可取消的答题倒计时。
// 每出一道新题就签发一个全新的令牌；任何离开该题的转换都会作废旧令牌。
// 迟到的定时器回调在触发前校验自己的令牌，校验失败就什么也不做，
// 从而消除“定时器晚到”与“刚刚提交的答案”之间的竞争。
type Countdown struct {
	mu    sync.Mutex
	token string
	timer *time.Timer
}

// Start 为一道新题启动倒计时，返回签发的令牌。
// 之前的倒计时（如果有）会被无条件作废。
func (cd *Countdown) Start(d time.Duration, onExpire func(token string)) string {
	cd.mu.Lock()
	defer cd.mu.Unlock()

	cd.stopLocked()

	newToken, err := uuid.NewV7()
	if err != nil {
		// uuid.NewV7 只有在系统时钟异常时才会失败，退回V4即可
		fmt.Printf("无法生成UUID v7，使用V4代替: %v\n", err)
		cd.token = uuid.NewString()
	} else {
		cd.token = newToken.String()
	}

	token := cd.token
	cd.timer = time.AfterFunc(d, func() {
		cd.mu.Lock()
		// 令牌已被作废：这是一个迟到的过期回调，直接丢弃
		if cd.token != token {
			cd.mu.Unlock()
			return
		}
		cd.token = ""
		cd.timer = nil
		cd.mu.Unlock()

		onExpire(token)
	})
	return token
}

// Cancel 无条件作废当前倒计时。
// 对已取消或从未启动的倒计时调用是无操作，不是错误。
func (cd *Countdown) Cancel() {
	cd.mu.Lock()
	defer cd.mu.Unlock()
	cd.stopLocked()
}

// Active 报告当前是否有倒计时在运行。
func (cd *Countdown) Active() bool {
	cd.mu.Lock()
	defer cd.mu.Unlock()
	return cd.token != ""
}

func (cd *Countdown) stopLocked() {
	cd.token = ""
	if cd.timer != nil {
		cd.timer.Stop()
		cd.timer = nil
	}
}

// StartCountdownSupervisor 把倒计时注册为一个后台服务。
// 收到停机信号时作废仍在运行的倒计时，避免定时器在关库之后触发落库。
func StartCountdownSupervisor(mgr *lifecycle.Manager) error {
	handle, err := mgr.NewServiceHandle("session-countdown")
	if err != nil {
		return err
	}

	go func() {
		defer handle.Close()
		<-handle.Done()
		countdown.Cancel()
		fmt.Println("倒计时监督器: 已作废剩余的答题倒计时。")
	}()
	return nil
}
