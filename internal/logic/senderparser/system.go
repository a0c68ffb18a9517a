package senderparser

import (
	"encoding/binary"

	"sender-backfill-sol/internal/consts"
	"sender-backfill-sol/internal/logic/core"
	"sender-backfill-sol/internal/types"
)

// System Program 的 Transfer 指令类型（u32 little-endian）
const systemTransferInstruction = uint32(2)

// SystemTransfer 表示一条 System Program 原生 SOL 转账。
type SystemTransfer struct {
	From   types.Pubkey // 转出账户（即发送方）
	Amount uint64       // lamports
}

// ParseSystemTransfer 解析 System Program Transfer 指令：
//
//	data = [0:4]=指令类型(u32, 2=Transfer), [4:12]=lamports(u64)
//	accounts = [from, to]
//
// 非 System 程序或非 Transfer 类型返回 false，与 Token 路径一样静默跳过。
func ParseSystemTransfer(accounts core.AccountTable, ix *core.RawInstruction) (*SystemTransfer, bool) {
	program, ok := accounts.Resolve(ix.ProgramIndex)
	if !ok || program != consts.SystemProgram {
		return nil, false
	}
	if len(ix.Data) < 12 {
		return nil, false
	}
	if binary.LittleEndian.Uint32(ix.Data[0:4]) != systemTransferInstruction {
		return nil, false
	}
	if len(ix.Accounts) < 1 {
		return nil, false
	}
	from, ok := accounts.Resolve(ix.Accounts[0])
	if !ok {
		return nil, false
	}
	return &SystemTransfer{
		From:   from,
		Amount: binary.LittleEndian.Uint64(ix.Data[4:12]),
	}, true
}
