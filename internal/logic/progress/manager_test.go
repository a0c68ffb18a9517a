package progress

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

// 指向无人监听端口的 client，所有命令立即返回连接错误，用于验证 Redis 故障容错
func unreachableRedis() *RedisProgressStore {
	return NewRedisProgressStore(goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1"}))
}

func TestProgressManager_PendingUpdates(t *testing.T) {
	pm := NewProgressManager(unreachableRedis(), NewSenderStore(nil))
	assert.Equal(t, 0, pm.PendingUpdates())

	// Redis 写入失败只记日志，更新仍进入缓冲
	pm.MarkRecovered(context.Background(), &SenderUpdate{Signature: "sig1", Network: "mainnet", Sender: "A"})
	pm.MarkRecovered(context.Background(), &SenderUpdate{Signature: "sig2", Network: "mainnet", Sender: "B"})
	assert.Equal(t, 2, pm.PendingUpdates())
}

func TestProgressManager_ShouldProcessOnRedisFailure(t *testing.T) {
	pm := NewProgressManager(unreachableRedis(), NewSenderStore(nil))

	// Redis 不可用时放行处理，幂等性由 DB 的 NULL 条件更新兜底
	assert.True(t, pm.ShouldProcess(context.Background(), "sig"))
}

func TestStartFlushLoop_NonPositiveInterval(t *testing.T) {
	pm := NewProgressManager(unreachableRedis(), NewSenderStore(nil))

	// 配置为 0 时不得 panic，应回落到默认间隔并能正常退出
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		pm.StartFlushLoop(ctx, 0)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("flush loop did not exit after cancel")
	}
}
