package progress

// SigStatus 表示某条交易签名的回填处理状态（统一 Redis 与 DB 编码）
type SigStatus int

const (
	SigUnknown   SigStatus = 0 // Redis 不存在
	SigRecovered SigStatus = 1 // 发送方已恢复并写库
	SigNotFound  SigStatus = 2 // 链上无可恢复的发送方（扫描过，跳过后续轮次）
	SigInvalid   SigStatus = 3 // 交易结构异常或已被节点裁剪
)

func (s SigStatus) String() string {
	switch s {
	case SigRecovered:
		return "recovered"
	case SigNotFound:
		return "not_found"
	case SigInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// TxRecord 表示一条待回填的交易记录（from_address 为 NULL 的行）
type TxRecord struct {
	Signature string // base58 交易签名（表主键）
	BlockTime int64  // Unix timestamp（秒）
}

// SenderUpdate 表示一条已恢复、待写回 DB 的发送方更新
type SenderUpdate struct {
	Signature string
	Network   string // mainnet / devnet
	Sender    string // 恢复出的 from_address
}
