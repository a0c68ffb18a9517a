package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisProgressStore 管理 Redis 中的签名状态记录（跨轮次幂等控制）。
// DB 里 from_address 仍为 NULL 的行每轮都会被捞出来，Redis 状态用来避免
// 对已确认 not_found / invalid 的签名反复打 RPC。
type RedisProgressStore struct {
	rdb *redis.Client
}

const sigKeyPrefix = "backfill:sender:sig"

// 各状态的 TTL：not_found 的交易之后也不会长出发送方，保留更久
const (
	recoveredTTL = 24 * time.Hour
	notFoundTTL  = 7 * 24 * time.Hour
	invalidTTL   = 3 * 24 * time.Hour
)

// NewRedisProgressStore 创建 Redis 判重管理器
func NewRedisProgressStore(rdb *redis.Client) *RedisProgressStore {
	return &RedisProgressStore{rdb: rdb}
}

func (r *RedisProgressStore) getKey(signature string) string {
	return fmt.Sprintf("%s:%s", sigKeyPrefix, signature)
}

func (r *RedisProgressStore) getTTL(status SigStatus) time.Duration {
	switch status {
	case SigNotFound:
		return notFoundTTL
	case SigInvalid:
		return invalidTTL
	default:
		return recoveredTTL
	}
}

// GetSigStatus 获取签名的处理状态（Unknown / Recovered / NotFound / Invalid）
func (r *RedisProgressStore) GetSigStatus(ctx context.Context, signature string) (SigStatus, error) {
	val, err := r.rdb.Get(ctx, r.getKey(signature)).Int()
	switch {
	case err == redis.Nil:
		return SigUnknown, nil
	case err != nil:
		return SigUnknown, fmt.Errorf("redis get error: %w", err)
	case val == int(SigRecovered):
		return SigRecovered, nil
	case val == int(SigNotFound):
		return SigNotFound, nil
	case val == int(SigInvalid):
		return SigInvalid, nil
	default:
		return SigUnknown, nil // 容错处理
	}
}

// MarkSigStatus 设置签名的处理状态
func (r *RedisProgressStore) MarkSigStatus(ctx context.Context, signature string, status SigStatus) error {
	return r.rdb.Set(ctx, r.getKey(signature), int(status), r.getTTL(status)).Err()
}
