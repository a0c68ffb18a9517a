package svc

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"sender-backfill-sol/internal/config"
	"sender-backfill-sol/internal/logic/progress"
	"sender-backfill-sol/pkg/logger"
	"sender-backfill-sol/pkg/mq"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	goredis "github.com/redis/go-redis/v9"
)

// BackfillServiceContext 持有回填服务的全部外部依赖（DB / Redis / Kafka）
type BackfillServiceContext struct {
	Config   *config.Config
	DB       *sql.DB
	Redis    *goredis.Client
	Producer *kafka.Producer // Kafka 未配置时为 nil
	Progress *progress.ProgressManager
}

func NewBackfillServiceContext(cfg *config.Config) (*BackfillServiceContext, error) {
	db, err := sql.Open("postgres", cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres failed: %w", err)
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres failed: %w", err)
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping redis failed: %w", err)
	}

	var producer *kafka.Producer
	if cfg.Kafka.Enabled() {
		producer, err = mq.NewKafkaProducer(cfg.Kafka.ToProducerOption())
		if err != nil {
			_ = db.Close()
			_ = rdb.Close()
			return nil, fmt.Errorf("init kafka producer failed: %w", err)
		}
	} else {
		logger.Infof("[svc] kafka brokers not configured, event publishing disabled")
	}

	pm := progress.NewProgressManager(
		progress.NewRedisProgressStore(rdb),
		progress.NewSenderStore(db),
	)

	return &BackfillServiceContext{
		Config:   cfg,
		DB:       db,
		Redis:    rdb,
		Producer: producer,
		Progress: pm,
	}, nil
}

// Close 释放全部外部连接，退出前调用
func (sc *BackfillServiceContext) Close() {
	if sc.Producer != nil {
		sc.Producer.Flush(5000)
		sc.Producer.Close()
	}
	if sc.Redis != nil {
		_ = sc.Redis.Close()
	}
	if sc.DB != nil {
		_ = sc.DB.Close()
	}
}
