package txadapter

import (
	"fmt"

	"sender-backfill-sol/internal/logic/core"
	"sender-backfill-sol/internal/types"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
)

// FromClientTransaction 将 blocto SDK 解码后的交易（base64 编码经 SDK 反序列化）
// 适配为提取管线的只读视图。
//
// 账户表优先取 resp.AccountKeys（SDK 已合并 Address Lookup Table 中加载的地址），
// 回退到 message.accountKeys；编译指令的下标语义与链上原始编码一致，原样搬运。
func FromClientTransaction(signature string, resp *client.Transaction) (*core.TxView, error) {
	if resp == nil {
		return nil, fmt.Errorf("nil transaction response")
	}

	keys := resp.AccountKeys
	if len(keys) == 0 {
		keys = resp.Transaction.Message.Accounts
	}
	accounts, err := buildAccountTable(keys)
	if err != nil {
		return nil, fmt.Errorf("tx %s: %w", signature, err)
	}

	message := resp.Transaction.Message
	instructions := make([]core.Instruction, 0, len(message.Instructions))
	for _, ix := range message.Instructions {
		instructions = append(instructions, core.Instruction{Raw: &core.RawInstruction{
			ProgramIndex: ix.ProgramIDIndex,
			Accounts:     ix.Accounts,
			Data:         ix.Data,
		}})
	}

	view := &core.TxView{
		Signature:    signature,
		Slot:         resp.Slot,
		Accounts:     accounts,
		Instructions: instructions,
	}
	if resp.BlockTime != nil {
		view.BlockTime = *resp.BlockTime
	}
	return view, nil
}

// buildAccountTable 构造交易级账户表，每个 key 必须是 32 字节
func buildAccountTable(keys []common.PublicKey) (core.AccountTable, error) {
	table := make(core.AccountTable, len(keys))
	for i, key := range keys {
		pk, err := types.TryPubkeyFromBytes(key.Bytes())
		if err != nil {
			return nil, fmt.Errorf("invalid pubkey in accountKeys at index %d: %w", i, err)
		}
		table[i] = pk
	}
	return table, nil
}
