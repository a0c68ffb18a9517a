package core

import (
	"sender-backfill-sol/internal/types"
)

// AccountTable 表示交易级的账户地址表，指令通过下标引用其中的地址。
// 所有下标访问必须走 Resolve，越界视为该条指令解码失败，绝不允许 panic。
type AccountTable []types.Pubkey

// Resolve 按下标取地址。下标越界时 ok 为 false，由调用方决定如何跳过。
func (a AccountTable) Resolve(index int) (types.Pubkey, bool) {
	if index < 0 || index >= len(a) {
		return types.Pubkey{}, false
	}
	return a[index], true
}

// RawInstruction 表示交易原始编码中的一条已编译指令：
// 程序与账户均以账户表下标表示，Data 为不透明字节（首字节为指令类型）。
type RawInstruction struct {
	ProgramIndex int   // 程序地址在账户表中的下标
	Accounts     []int // 指令账户在账户表中的下标列表，保持原始顺序
	Data         []byte
}

// StructuredInstruction 表示上游已解析（jsonParsed）的指令。
// 三个 authority 字段互为候选，按 Authority → Owner → MultisigAuthority 的
// 优先级取第一个非空值；上游保证地址格式，本层不再校验。
type StructuredInstruction struct {
	Program           string // 程序名（如 "spl-token"），可为空
	Type              string // parsed.type（如 "transfer"），可为空
	Authority         string
	Owner             string
	MultisigAuthority string
}

// Instruction 是 Raw / Structured 的二选一联合：同一条指令槽位只会填其中一个。
type Instruction struct {
	Raw        *RawInstruction
	Structured *StructuredInstruction
}

// TxView 是发送方提取的只读输入视图：账户表 + 按原始顺序排列的指令列表。
// 构造完成后不再修改，提取过程对其无副作用，可并发使用。
type TxView struct {
	Signature    string // base58 交易签名，仅用于日志与事件
	Slot         uint64
	BlockTime    int64 // Unix 秒，未知时为 0
	Accounts     AccountTable
	Instructions []Instruction
}

// ExtractStatus 表示一次发送方提取的结果状态
type ExtractStatus int

const (
	ExtractNotFound  ExtractStatus = 0 // 扫描完所有指令未找到发送方
	ExtractFound     ExtractStatus = 1 // 已找到发送方
	ExtractMalformed ExtractStatus = 2 // 视图本身缺账户表或指令列表，无法扫描
)

// ExtractResult 是提取管线唯一对外的结果值；指令级失败不会以 error 形式外泄。
// Amount / Token / Memo 为补充信息，仅在能从指令中读到时填充，不影响 Status。
type ExtractResult struct {
	Status ExtractStatus
	Sender string // base58 地址，Status 为 ExtractFound 时非空
	Reason string // Status 为 ExtractMalformed 时的原因说明

	Amount uint64 // 转账数量（最小单位），无法得知时为 0
	Token  string // token mint 地址；原生 SOL 或未知时为空
	Memo   string // Memo 指令文本（如有）
}
