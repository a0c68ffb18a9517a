package senderparser

import (
	"sender-backfill-sol/internal/logic/core"
)

// ExtractSender 按原始顺序扫描交易指令，恢复发送方地址。
//
// 规则：
//   - 第一条给出非空发送方的指令胜出，之后的指令不再参与发送方判定（短路扫描）；
//   - 指令级失败（数据过短、下标越界、类型不支持）一律跳过当前指令继续扫描；
//   - 仅当视图本身缺少账户表或指令列表时返回 ExtractMalformed；
//   - 指令扫描完仍无结果时返回 ExtractNotFound。
//
// 纯函数：不修改输入、无共享状态，可在多个 goroutine 上对不同交易并发调用。
func ExtractSender(tx *core.TxView) core.ExtractResult {
	if tx == nil {
		return core.ExtractResult{Status: core.ExtractMalformed, Reason: "nil transaction view"}
	}
	if tx.Accounts == nil {
		return core.ExtractResult{Status: core.ExtractMalformed, Reason: "missing account table"}
	}
	if tx.Instructions == nil {
		return core.ExtractResult{Status: core.ExtractMalformed, Reason: "missing instruction list"}
	}

	for i := range tx.Instructions {
		instr := &tx.Instructions[i]

		if instr.Structured != nil {
			if authority, ok := AuthorityFromStructured(instr.Structured); ok {
				return core.ExtractResult{Status: core.ExtractFound, Sender: authority}
			}
			continue
		}

		if instr.Raw == nil {
			continue
		}

		// Token 路径：程序判定在 ParseTokenTransfer 内完成
		if transfer, ok := ParseTokenTransfer(tx.Accounts, instr.Raw); ok {
			result := core.ExtractResult{
				Status: core.ExtractFound,
				Sender: transfer.Authority.String(),
				Amount: transfer.Amount,
			}
			if !transfer.Mint.IsZero() {
				result.Token = transfer.Mint.String()
			}
			return result
		}

		// 原生 SOL 转账
		if transfer, ok := ParseSystemTransfer(tx.Accounts, instr.Raw); ok {
			return core.ExtractResult{
				Status: core.ExtractFound,
				Sender: transfer.From.String(),
				Amount: transfer.Amount,
			}
		}
	}

	return core.ExtractResult{Status: core.ExtractNotFound}
}
