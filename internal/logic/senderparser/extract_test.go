package senderparser

import (
	"encoding/binary"
	"testing"

	"sender-backfill-sol/internal/consts"
	"sender-backfill-sol/internal/logic/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawIx(programIndex int, accounts []int, data []byte) core.Instruction {
	return core.Instruction{Raw: &core.RawInstruction{
		ProgramIndex: programIndex,
		Accounts:     accounts,
		Data:         data,
	}}
}

func TestExtractSender_EmptyInstructions(t *testing.T) {
	tx := &core.TxView{
		Accounts:     core.AccountTable{testKey(1)},
		Instructions: []core.Instruction{},
	}
	result := ExtractSender(tx)
	assert.Equal(t, core.ExtractNotFound, result.Status)
	assert.Empty(t, result.Sender)
}

func TestExtractSender_MalformedView(t *testing.T) {
	// 仅视图级缺失才报 Malformed：缺账户表 / 缺指令列表 / 整个视图为 nil
	result := ExtractSender(nil)
	assert.Equal(t, core.ExtractMalformed, result.Status)

	result = ExtractSender(&core.TxView{Instructions: []core.Instruction{}})
	assert.Equal(t, core.ExtractMalformed, result.Status)
	assert.Equal(t, "missing account table", result.Reason)

	result = ExtractSender(&core.TxView{Accounts: core.AccountTable{testKey(1)}})
	assert.Equal(t, core.ExtractMalformed, result.Status)
	assert.Equal(t, "missing instruction list", result.Reason)
}

func TestExtractSender_FirstMatchWins(t *testing.T) {
	// 指令 0：非 Token 程序；指令 1：合法 Transfer；指令 2：携带另一地址的已解析指令。
	// 第一条命中的指令 1 胜出，指令 2 的地址绝不能出现在结果里。
	authority := testKey(0xEE)
	accounts := core.AccountTable{testKey(1), testKey(2), authority, consts.TokenProgram, testKey(9)}

	tx := &core.TxView{
		Accounts: accounts,
		Instructions: []core.Instruction{
			rawIx(4, []int{0, 1}, []byte{0x00}), // 未知程序，跳过
			rawIx(3, []int{0, 1, 2}, tokenIxData(3, 777)),
			{Structured: &core.StructuredInstruction{Authority: testKey(0x66).String()}},
		},
	}

	result := ExtractSender(tx)
	require.Equal(t, core.ExtractFound, result.Status)
	assert.Equal(t, authority.String(), result.Sender)
	assert.Equal(t, uint64(777), result.Amount)
}

func TestExtractSender_SkipBrokenAndContinue(t *testing.T) {
	// 指令 0 程序下标越界，指令 1 数据过短，指令 2 才是合法转账：
	// 前两条的失败必须被吞掉，扫描继续
	authority := testKey(0xAB)
	accounts := core.AccountTable{testKey(1), testKey(2), authority, consts.TokenProgram}

	tx := &core.TxView{
		Accounts: accounts,
		Instructions: []core.Instruction{
			rawIx(42, []int{0, 1, 2}, tokenIxData(3, 1)),
			rawIx(3, []int{0, 1, 2}, []byte{3, 0}),
			rawIx(3, []int{0, 1, 2}, tokenIxData(3, 5)),
		},
	}

	result := ExtractSender(tx)
	require.Equal(t, core.ExtractFound, result.Status)
	assert.Equal(t, authority.String(), result.Sender)
}

func TestExtractSender_StructuredOnly(t *testing.T) {
	tx := &core.TxView{
		Accounts: core.AccountTable{},
		Instructions: []core.Instruction{
			{Structured: &core.StructuredInstruction{Program: "spl-token", Type: "transfer", Owner: "OwnerAddr"}},
		},
	}
	result := ExtractSender(tx)
	require.Equal(t, core.ExtractFound, result.Status)
	assert.Equal(t, "OwnerAddr", result.Sender)
}

func TestExtractSender_StructuredWithoutAuthorityIsSkipped(t *testing.T) {
	// 已解析但不含任何 authority 字段的指令让位于后面的编译指令
	authority := testKey(0x31)
	accounts := core.AccountTable{testKey(1), testKey(2), authority, consts.TokenProgram}

	tx := &core.TxView{
		Accounts: accounts,
		Instructions: []core.Instruction{
			{Structured: &core.StructuredInstruction{Program: "spl-memo", Type: "memo"}},
			rawIx(3, []int{0, 1, 2}, tokenIxData(3, 2)),
		},
	}

	result := ExtractSender(tx)
	require.Equal(t, core.ExtractFound, result.Status)
	assert.Equal(t, authority.String(), result.Sender)
}

func TestExtractSender_SystemTransfer(t *testing.T) {
	from := testKey(0x55)
	accounts := core.AccountTable{from, testKey(2), consts.SystemProgram}

	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data[0:4], 2) // System Transfer
	binary.LittleEndian.PutUint64(data[4:12], 5_000_000)

	tx := &core.TxView{
		Accounts: accounts,
		Instructions: []core.Instruction{
			rawIx(2, []int{0, 1}, data),
		},
	}

	result := ExtractSender(tx)
	require.Equal(t, core.ExtractFound, result.Status)
	assert.Equal(t, from.String(), result.Sender)
	assert.Equal(t, uint64(5_000_000), result.Amount)
	assert.Empty(t, result.Token) // 原生 SOL 无 mint
}

func TestParseSystemTransfer_Rejections(t *testing.T) {
	accounts := core.AccountTable{testKey(1), testKey(2), consts.SystemProgram}

	transferData := func(instrType uint32) []byte {
		data := make([]byte, 12)
		binary.LittleEndian.PutUint32(data[0:4], instrType)
		binary.LittleEndian.PutUint64(data[4:12], 1)
		return data
	}

	// 非 Transfer 类型（如 CreateAccount=0）
	_, ok := ParseSystemTransfer(accounts, &core.RawInstruction{ProgramIndex: 2, Accounts: []int{0, 1}, Data: transferData(0)})
	assert.False(t, ok)

	// 数据不足 12 字节
	_, ok = ParseSystemTransfer(accounts, &core.RawInstruction{ProgramIndex: 2, Accounts: []int{0, 1}, Data: []byte{2, 0, 0, 0}})
	assert.False(t, ok)

	// 非 System 程序
	_, ok = ParseSystemTransfer(accounts, &core.RawInstruction{ProgramIndex: 0, Accounts: []int{0, 1}, Data: transferData(2)})
	assert.False(t, ok)
}

func TestExtractMemo(t *testing.T) {
	authority := testKey(0x11)
	accounts := core.AccountTable{testKey(1), testKey(2), authority, consts.TokenProgram, consts.MemoProgram}

	tx := &core.TxView{
		Accounts: accounts,
		Instructions: []core.Instruction{
			rawIx(3, []int{0, 1, 2}, tokenIxData(3, 10)),
			rawIx(4, nil, []byte("invoice #42")),
		},
	}

	// memo 独立扫描，不受发送方短路影响
	assert.Equal(t, "invoice #42", ExtractMemo(tx))

	result := ExtractSender(tx)
	require.Equal(t, core.ExtractFound, result.Status)
	assert.Equal(t, authority.String(), result.Sender)
}
