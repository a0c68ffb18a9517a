package progress

import (
	"context"
	"time"

	"sender-backfill-sol/pkg/logger"
)

// ProgressManager 统一封装 Redis + DB + 缓冲，控制签名判重与发送方写回
type ProgressManager struct {
	redis  *RedisProgressStore
	db     *SenderStore
	buffer *updateBuffer
}

func NewProgressManager(redis *RedisProgressStore, db *SenderStore) *ProgressManager {
	return &ProgressManager{
		redis:  redis,
		db:     db,
		buffer: newUpdateBuffer(),
	}
}

// Store 暴露底层 DB 存储，供扫描服务分页拉取待处理行
func (pm *ProgressManager) Store() *SenderStore {
	return pm.db
}

// ShouldProcess 判断某签名本轮是否需要打 RPC：
// Redis 中已有终态（Recovered / NotFound / Invalid）的直接跳过。
// Redis 故障时放行处理，幂等性由 DB 的 NULL 条件更新兜底。
func (pm *ProgressManager) ShouldProcess(ctx context.Context, signature string) bool {
	status, err := pm.redis.GetSigStatus(ctx, signature)
	if err != nil {
		logger.Warnf("[progress] redis status lookup failed sig=%s: %v", signature, err)
		return true
	}
	return status == SigUnknown
}

// MarkRecovered 记录一条恢复结果：Redis 置终态，更新进入缓冲等待批量落库
func (pm *ProgressManager) MarkRecovered(ctx context.Context, update *SenderUpdate) {
	if err := pm.redis.MarkSigStatus(ctx, update.Signature, SigRecovered); err != nil {
		logger.Warnf("[progress] mark recovered failed sig=%s: %v", update.Signature, err)
	}
	pm.buffer.Add(update)
}

// MarkSkipped 记录 not_found / invalid 终态（只写 Redis，不产生 DB 更新）
func (pm *ProgressManager) MarkSkipped(ctx context.Context, signature string, status SigStatus) {
	if status != SigNotFound && status != SigInvalid {
		return
	}
	if err := pm.redis.MarkSigStatus(ctx, signature, status); err != nil {
		logger.Warnf("[progress] mark %s failed sig=%s: %v", status, signature, err)
	}
}

// PendingUpdates 返回缓冲中尚未落库的更新条数
func (pm *ProgressManager) PendingUpdates() int {
	return pm.buffer.Len()
}

// Flush 立即把缓冲中的更新批量写回 DB（轮次结束与退出时调用）
func (pm *ProgressManager) Flush(ctx context.Context) error {
	updates := pm.buffer.Flush()
	if len(updates) == 0 {
		return nil
	}
	if err := pm.db.BatchUpdateSenders(ctx, updates); err != nil {
		// 批量失败回退到逐条写，尽量少丢结果
		logger.Errorf("[progress] batch update failed (%d updates), falling back to single writes: %v",
			len(updates), err)
		for _, u := range updates {
			if err := pm.db.UpdateSender(ctx, u.Signature, u.Network, u.Sender); err != nil {
				logger.Errorf("[progress] single update failed sig=%s: %v", u.Signature, err)
			}
		}
	}
	return nil
}

const defaultFlushInterval = 15 * time.Second

// StartFlushLoop 启动后台定时 flush，ctx 取消时做最后一次冲刷后退出。
// interval 非正时回落到默认间隔，避免 NewTicker panic。
func (pm *ProgressManager) StartFlushLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultFlushInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// 退出前冲刷残留，避免丢失已恢复的结果
			flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			_ = pm.Flush(flushCtx)
			cancel()
			return
		case <-ticker.C:
			if n := pm.PendingUpdates(); n > 0 {
				logger.Debugf("[progress] flushing %d buffered updates", n)
			}
			_ = pm.Flush(ctx)
		}
	}
}
