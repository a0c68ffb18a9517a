package txadapter

import (
	"fmt"

	"sender-backfill-sol/internal/logic/core"
	"sender-backfill-sol/internal/types"

	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/mr-tron/base58"
)

// FromParsedTransaction 将 jsonParsed 编码的 RPC 响应适配为提取管线视图。
//
// jsonParsed 下指令分两种形态：
//   - RPC 节点认识的程序：带 "parsed" 字段（program/type/info），映射为 StructuredInstruction；
//   - 其余程序：部分解码形态（programId + 账户地址字符串 + base58 data），
//     将地址重新映射回账户表下标后还原为 RawInstruction。
//
// 无法识别形态的指令跳过，不影响其余指令的扫描。
func FromParsedTransaction(signature string, result *rpc.GetTransaction) (*core.TxView, error) {
	if result == nil {
		return nil, fmt.Errorf("nil transaction result")
	}
	tx, ok := result.Transaction.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("tx %s: unexpected transaction payload type %T", signature, result.Transaction)
	}
	message, ok := tx["message"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("tx %s: missing message", signature)
	}

	accounts, indexByAddr, err := parsedAccountTable(message["accountKeys"])
	if err != nil {
		return nil, fmt.Errorf("tx %s: %w", signature, err)
	}

	rawInstrs, _ := message["instructions"].([]interface{})
	instructions := make([]core.Instruction, 0, len(rawInstrs))
	for _, item := range rawInstrs {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if instr, ok := adaptParsedInstruction(m, indexByAddr); ok {
			instructions = append(instructions, instr)
		}
	}

	view := &core.TxView{
		Signature:    signature,
		Slot:         result.Slot,
		Accounts:     accounts,
		Instructions: instructions,
	}
	if result.BlockTime != nil {
		view.BlockTime = *result.BlockTime
	}
	return view, nil
}

// parsedAccountTable 解析 jsonParsed 的 accountKeys（[{pubkey, signer, ...}]），
// 同时返回 地址 → 下标 的反查表，供部分解码指令重建下标引用
func parsedAccountTable(raw interface{}) (core.AccountTable, map[string]int, error) {
	items, ok := raw.([]interface{})
	if !ok {
		return nil, nil, fmt.Errorf("missing accountKeys")
	}

	table := make(core.AccountTable, 0, len(items))
	indexByAddr := make(map[string]int, len(items))
	for i, item := range items {
		var addr string
		switch v := item.(type) {
		case map[string]interface{}:
			addr, _ = v["pubkey"].(string)
		case string:
			// 个别节点对 accountKeys 返回纯字符串数组
			addr = v
		}
		pk, err := types.TryPubkeyFromBase58(addr)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid pubkey in accountKeys at index %d: %w", i, err)
		}
		table = append(table, pk)
		indexByAddr[addr] = i
	}
	return table, indexByAddr, nil
}

func adaptParsedInstruction(m map[string]interface{}, indexByAddr map[string]int) (core.Instruction, bool) {
	// 已解析形态
	if parsed, present := m["parsed"]; present {
		parsedMap, ok := parsed.(map[string]interface{})
		if !ok {
			// 例如 spl-memo 的 parsed 是纯字符串，不携带发送方信息
			return core.Instruction{}, false
		}
		structured := &core.StructuredInstruction{}
		structured.Program, _ = m["program"].(string)
		structured.Type, _ = parsedMap["type"].(string)
		if info, ok := parsedMap["info"].(map[string]interface{}); ok {
			structured.Authority, _ = info["authority"].(string)
			structured.Owner, _ = info["owner"].(string)
			structured.MultisigAuthority, _ = info["multisigAuthority"].(string)
		}
		return core.Instruction{Structured: structured}, true
	}

	// 部分解码形态：programId + 账户地址字符串 + base58 data
	programID, _ := m["programId"].(string)
	programIndex, ok := indexByAddr[programID]
	if !ok {
		return core.Instruction{}, false
	}

	accountItems, _ := m["accounts"].([]interface{})
	accountIndices := make([]int, 0, len(accountItems))
	for _, item := range accountItems {
		switch v := item.(type) {
		case string:
			idx, ok := indexByAddr[v]
			if !ok {
				return core.Instruction{}, false
			}
			accountIndices = append(accountIndices, idx)
		case float64:
			// json 编码形态直接给出数字下标
			accountIndices = append(accountIndices, int(v))
		default:
			return core.Instruction{}, false
		}
	}

	dataStr, _ := m["data"].(string)
	data, err := base58.Decode(dataStr)
	if err != nil {
		return core.Instruction{}, false
	}

	return core.Instruction{Raw: &core.RawInstruction{
		ProgramIndex: programIndex,
		Accounts:     accountIndices,
		Data:         data,
	}}, true
}
