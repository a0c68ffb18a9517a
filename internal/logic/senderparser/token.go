package senderparser

import (
	"encoding/binary"

	"sender-backfill-sol/internal/logic/core"
	"sender-backfill-sol/internal/types"

	sdktoken "github.com/blocto/solana-go-sdk/program/token"
)

// 合约源代码:
// SplToken: https://github.com/solana-program/token/blob/main/program/src/instruction.rs
// Token2022: https://github.com/solana-program/token-2022

// TokenTransfer 表示从一条已编译 Token 指令中恢复出的转账信息。
// Authority 即签署转账的钱包，也就是待回填的发送方。
type TokenTransfer struct {
	Authority types.Pubkey // 授权钱包（发送方）
	Amount    uint64       // 转账数量（最小单位）
	Mint      types.Pubkey // Token mint；Transfer(3) 指令不携带 mint，此时为零值
}

// ParseTokenTransfer 解析 Transfer / TransferChecked 指令并定位 authority。
// 账户位置由 Token 程序的二进制 ABI 固定，按指令类型硬编码，不做推断：
//
//	Transfer(3):         accounts = [src_account, dest_account, authority]，authority 在下标 2
//	TransferChecked(12): accounts = [src_account, mint, dest_account, authority]，authority 在下标 3
//
// 程序不匹配、指令类型不支持、数据或账户数不足、下标越界，一律返回 false，
// 由调用方跳过该指令继续扫描，不视为错误。
func ParseTokenTransfer(accounts core.AccountTable, ix *core.RawInstruction) (*TokenTransfer, bool) {
	program, ok := accounts.Resolve(ix.ProgramIndex)
	if !ok || !IsTokenProgram(program) {
		return nil, false
	}

	// [0]=指令类型, [1:9]=amount，两种转账指令的最小数据长度一致
	if len(ix.Data) < 9 {
		return nil, false
	}

	switch ix.Data[0] {
	case byte(sdktoken.InstructionTransfer):
		if len(ix.Accounts) < 3 {
			return nil, false
		}
		authority, ok := accounts.Resolve(ix.Accounts[2])
		if !ok {
			return nil, false
		}
		return &TokenTransfer{
			Authority: authority,
			Amount:    binary.LittleEndian.Uint64(ix.Data[1:9]),
		}, true

	case byte(sdktoken.InstructionTransferChecked):
		if len(ix.Accounts) < 4 {
			return nil, false
		}
		authority, ok := accounts.Resolve(ix.Accounts[3])
		if !ok {
			return nil, false
		}
		transfer := &TokenTransfer{
			Authority: authority,
			Amount:    binary.LittleEndian.Uint64(ix.Data[1:9]),
		}
		// mint 仅用于事件补充，取不到不影响 authority 判定
		if mint, ok := accounts.Resolve(ix.Accounts[1]); ok {
			transfer.Mint = mint
		}
		return transfer, true
	}

	// 其余 Token 指令（Mint、Burn、Approve 等）不携带可回填的发送方
	return nil, false
}
