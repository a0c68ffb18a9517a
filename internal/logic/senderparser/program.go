package senderparser

import (
	"sender-backfill-sol/internal/consts"
	"sender-backfill-sol/internal/types"
)

// tokenPrograms 是被识别为 SPL Token 指令来源的程序集合：
// 仅 legacy Token 程序与 Token-2022。进程启动时构造一次，之后只读。
var tokenPrograms = map[types.Pubkey]struct{}{
	consts.TokenProgram:     {},
	consts.TokenProgram2022: {},
}

// IsTokenProgram 判断地址是否为受支持的 Token 程序。未知地址一律返回 false。
func IsTokenProgram(program types.Pubkey) bool {
	_, ok := tokenPrograms[program]
	return ok
}

// IsMemoProgram 判断地址是否为 Memo 程序（SPL 版或 v1 旧版）
func IsMemoProgram(program types.Pubkey) bool {
	return program == consts.MemoProgram || program == consts.MemoProgramLegacy
}
