package config

import (
	"os"
	"path/filepath"
	"testing"

	"sender-backfill-sol/internal/consts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/core/conf"
	"gopkg.in/yaml.v3"
)

const minimalYaml = `
backfill:
  wallet: "4Nd1mYvM8LGGoq8HirQX8ZMBf8WJbsgMkScvn8h3CLYU"
redis:
  addr: 127.0.0.1:6379
postgres:
  dsn: "postgres://localhost/wallet"
`

func TestLoadDefaults(t *testing.T) {
	var c Config
	require.NoError(t, conf.LoadFromYamlBytes([]byte(minimalYaml), &c))
	require.NoError(t, c.Validate())

	// 未显式配置的字段取默认值，yaml 中整段缺失的 rpc / kafka 也必须拿到内层默认值
	assert.Equal(t, "mainnet", c.Backfill.Network)
	assert.Equal(t, 200, c.Backfill.BatchLimit)
	assert.Equal(t, 600, c.Backfill.PaceMs)
	assert.Equal(t, 0, c.Backfill.ScanIntervalS)
	assert.Equal(t, 15, c.Backfill.FlushIntervalS)
	assert.Equal(t, "console", c.LogConf.Format)
	assert.Equal(t, "info", c.LogConf.Level)
	assert.Equal(t, 3, c.Rpc.MaxRetries)
	assert.Equal(t, 300, c.Rpc.RetryDelayMs)
	assert.Equal(t, "solana_sender_recovered", c.Kafka.SenderTopic)
	assert.Equal(t, 4, c.Kafka.Partitions)

	// Kafka brokers 未配置则事件推送关闭
	assert.False(t, c.Kafka.Enabled())
}

func TestValidate(t *testing.T) {
	load := func(t *testing.T, mutate func(c *Config)) error {
		var c Config
		require.NoError(t, conf.LoadFromYamlBytes([]byte(minimalYaml), &c))
		mutate(&c)
		return c.Validate()
	}

	assert.Error(t, load(t, func(c *Config) { c.Backfill.Wallet = "" }))
	assert.Error(t, load(t, func(c *Config) { c.Backfill.Network = "testnet" }))
	assert.Error(t, load(t, func(c *Config) { c.Backfill.BatchLimit = 0 }))
	assert.Error(t, load(t, func(c *Config) { c.Redis.Addr = "" }))
	assert.Error(t, load(t, func(c *Config) { c.Postgres.DSN = "" }))
	assert.Error(t, load(t, func(c *Config) {
		c.Kafka.Brokers = "localhost:9092"
		c.Kafka.SenderTopic = " "
	}))
	assert.NoError(t, load(t, func(c *Config) { c.Backfill.Network = consts.NetworkDevnet }))
}

func TestRpcEndpointFor(t *testing.T) {
	rpc := RpcConfig{}
	assert.Equal(t, consts.DefaultMainnetRPC, rpc.EndpointFor(consts.NetworkMainnet))
	assert.Equal(t, consts.DefaultDevnetRPC, rpc.EndpointFor(consts.NetworkDevnet))

	rpc.Endpoint = "https://my-node.example.com"
	assert.Equal(t, "https://my-node.example.com", rpc.EndpointFor(consts.NetworkMainnet))
}

func TestToProducerOption(t *testing.T) {
	c := KafkaProducerConfig{
		Brokers:     "localhost:9092",
		SenderTopic: "solana_sender_recovered",
		Partitions:  4,
		BatchSize:   32768,
		LingerMs:    5,
	}
	opt := c.ToProducerOption()
	assert.Equal(t, "localhost:9092", opt.Brokers)
	require.Len(t, opt.Topics, 1)
	assert.Equal(t, "solana_sender_recovered", opt.Topics[0].Topic)
	assert.Equal(t, 4, opt.Topics[0].Partitions)
}

// 示例配置文件必须能被加载且通过校验
func TestSampleConfigFile(t *testing.T) {
	path := filepath.Join("..", "..", "etc", "backfill.yaml")
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, yaml.Unmarshal(data, &raw))
	for _, key := range []string{"backfill", "rpc", "kafka", "redis", "postgres"} {
		assert.Contains(t, raw, key)
	}

	var c Config
	require.NoError(t, conf.LoadFromYamlBytes(data, &c))
	assert.NoError(t, c.Validate())
}
