package senderparser

import (
	"sender-backfill-sol/internal/logic/core"
)

// AuthorityFromStructured 从已解析（jsonParsed）指令中读取发送方地址。
// 按 authority → owner → multisigAuthority 的固定优先级取第一个非空字段；
// 三者都缺失时返回 false。上游数据源保证地址格式，这里只看是否存在。
func AuthorityFromStructured(ix *core.StructuredInstruction) (string, bool) {
	if ix.Authority != "" {
		return ix.Authority, true
	}
	if ix.Owner != "" {
		return ix.Owner, true
	}
	if ix.MultisigAuthority != "" {
		return ix.MultisigAuthority, true
	}
	return "", false
}
