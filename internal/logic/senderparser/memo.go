package senderparser

import (
	"encoding/base64"
	"unicode/utf8"

	"sender-backfill-sol/internal/logic/core"
)

// ExtractMemo 扫描整笔交易，返回最后一条 Memo 指令的文本；没有则返回空串。
// 独立于发送方扫描执行，避免发送方短路后丢掉靠后的 memo。
func ExtractMemo(tx *core.TxView) string {
	memo := ""
	for _, instr := range tx.Instructions {
		ix := instr.Raw
		if ix == nil {
			continue
		}
		program, ok := tx.Accounts.Resolve(ix.ProgramIndex)
		if !ok || !IsMemoProgram(program) {
			continue
		}
		if text := decodeMemoText(ix.Data); text != "" {
			memo = text
		}
	}
	return memo
}

// decodeMemoText 将 Memo 指令数据还原为文本。
// 多数 memo 是原始 UTF-8，少数被 base64 包了一层，先尝试解包。
func decodeMemoText(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	if decoded, err := base64.StdEncoding.DecodeString(string(data)); err == nil {
		if utf8.Valid(decoded) && !containsNul(decoded) {
			return string(decoded)
		}
	}
	if utf8.Valid(data) {
		return string(data)
	}
	return ""
}

func containsNul(b []byte) bool {
	for _, c := range b {
		if c == 0 {
			return true
		}
	}
	return false
}
