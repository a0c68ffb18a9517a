package config

import (
	"fmt"
	"strings"

	"sender-backfill-sol/internal/consts"
	"sender-backfill-sol/pkg/logger"
	"sender-backfill-sol/pkg/mq"
)

type Config struct {
	LogConf  LogConfig           `json:"log_conf"`
	Backfill BackfillConfig      `json:"backfill"`
	Rpc      RpcConfig           `json:"rpc"`
	Kafka    KafkaProducerConfig `json:"kafka"`
	Redis    RedisConfig         `json:"redis"`
	Postgres PostgresConfig      `json:"postgres"`
}

type LogConfig struct {
	Format   string `json:"format,default=console"`   // 输出格式：console | json
	LogDir   string `json:"log_dir,default=logs"`     // 日志目录
	Level    string `json:"level,default=info"`       // 日志级别
	Compress bool   `json:"compress,default=false"`   // 是否压缩滚动文件
}

func (c *LogConfig) ToLogOption() logger.LogOption {
	return logger.LogOption{
		Format:   c.Format,
		LogDir:   c.LogDir,
		Level:    c.Level,
		Compress: c.Compress,
	}
}

// BackfillConfig 控制扫描回填行为
type BackfillConfig struct {
	Wallet  string `json:"wallet"`                  // 目标钱包地址
	Network string `json:"network,default=mainnet"` // mainnet | devnet

	BatchLimit     int `json:"batch_limit,default=200"`   // 每轮最多拉取的缺失行数
	PaceMs         int `json:"pace_ms,default=600"`       // 相邻 RPC 调用之间的间隔（限速）
	ScanIntervalS  int `json:"scan_interval_s,default=0"` // 轮次间隔秒数，0 表示跑完一轮即退出
	FlushIntervalS int `json:"flush_interval_s,default=15"`
}

type RpcConfig struct {
	Endpoint     string `json:"endpoint,optional"` // 为空时按 network 取公共节点
	MaxRetries   int    `json:"max_retries,default=3"`
	RetryDelayMs int    `json:"retry_delay_ms,default=300"`
	TimeoutSec   int    `json:"timeout_sec,default=10"`
}

// EndpointFor 返回实际使用的 RPC 地址，未配置时回落到对应网络的公共节点
func (c *RpcConfig) EndpointFor(network string) string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	if network == consts.NetworkDevnet {
		return consts.DefaultDevnetRPC
	}
	return consts.DefaultMainnetRPC
}

// KafkaProducerConfig Brokers 为空时不启用事件推送
type KafkaProducerConfig struct {
	Brokers       string `json:"brokers,optional"`
	BatchSize     int    `json:"batch_size,default=32768"`
	LingerMs      int    `json:"linger_ms,default=5"`
	SenderTopic   string `json:"sender_topic,default=solana_sender_recovered"`
	Partitions    int    `json:"partitions,default=4"`
	SendTimeoutMs int    `json:"send_timeout_ms,default=5000"`
}

func (c *KafkaProducerConfig) Enabled() bool {
	return c.Brokers != ""
}

func (c *KafkaProducerConfig) ToProducerOption() mq.KafkaProducerOption {
	opt := mq.KafkaProducerOption{
		Brokers:   c.Brokers,
		BatchSize: c.BatchSize,
		LingerMs:  c.LingerMs,
	}
	opt.Topics = append(opt.Topics, struct {
		Topic      string
		Partitions int
	}{Topic: c.SenderTopic, Partitions: c.Partitions})
	return opt
}

type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password,optional"`
	DB       int    `json:"db,default=0"`
}

type PostgresConfig struct {
	DSN string `json:"dsn"`
}

// Validate 启动前做一次基础校验，配置错误直接拒绝启动
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Backfill.Wallet) == "" {
		return fmt.Errorf("backfill.wallet is required")
	}
	if c.Backfill.Network != consts.NetworkMainnet && c.Backfill.Network != consts.NetworkDevnet {
		return fmt.Errorf("backfill.network must be %q or %q, got %q",
			consts.NetworkMainnet, consts.NetworkDevnet, c.Backfill.Network)
	}
	if c.Backfill.BatchLimit <= 0 {
		return fmt.Errorf("backfill.batch_limit must be positive")
	}
	if strings.TrimSpace(c.Redis.Addr) == "" {
		return fmt.Errorf("redis.addr is required")
	}
	if strings.TrimSpace(c.Postgres.DSN) == "" {
		return fmt.Errorf("postgres.dsn is required")
	}
	if c.Kafka.Enabled() && strings.TrimSpace(c.Kafka.SenderTopic) == "" {
		return fmt.Errorf("kafka.sender_topic is required when brokers are set")
	}
	return nil
}
