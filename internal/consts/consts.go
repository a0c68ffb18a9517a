package consts

// 支持的网络名称（与 transactions 表中的 network 字段对应）
const (
	NetworkMainnet = "mainnet"
	NetworkDevnet  = "devnet"
)

// 各网络的默认公共 RPC 入口（配置未指定 endpoint 时使用）
const (
	DefaultMainnetRPC = "https://api.mainnet-beta.solana.com"
	DefaultDevnetRPC  = "https://api.devnet.solana.com"
)
