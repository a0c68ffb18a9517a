package txadapter

import (
	"encoding/binary"
	"testing"

	"sender-backfill-sol/internal/consts"
	"sender-backfill-sol/internal/logic/core"
	"sender-backfill-sol/internal/logic/senderparser"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	sdktypes "github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAccount(tag byte) common.PublicKey {
	b := make([]byte, 32)
	for i := range b {
		b[i] = tag
	}
	return common.PublicKeyFromBytes(b)
}

func transferData(amount uint64) []byte {
	data := make([]byte, 9)
	data[0] = 3 // Transfer
	binary.LittleEndian.PutUint64(data[1:9], amount)
	return data
}

func TestFromClientTransaction(t *testing.T) {
	src, dest, authority := testAccount(0x01), testAccount(0x02), testAccount(0x03)
	tokenProgram := common.PublicKeyFromString(consts.TokenProgramStr)

	blockTime := int64(1700000000)
	resp := &client.Transaction{
		Slot:      123456,
		BlockTime: &blockTime,
		Transaction: sdktypes.Transaction{
			Message: sdktypes.Message{
				Accounts: []common.PublicKey{src, dest, authority, tokenProgram},
				Instructions: []sdktypes.CompiledInstruction{
					{
						ProgramIDIndex: 3,
						Accounts:       []int{0, 1, 2},
						Data:           transferData(42),
					},
				},
			},
		},
	}

	view, err := FromClientTransaction("testsig", resp)
	require.NoError(t, err)
	assert.Equal(t, "testsig", view.Signature)
	assert.Equal(t, uint64(123456), view.Slot)
	assert.Equal(t, blockTime, view.BlockTime)
	require.Len(t, view.Accounts, 4)
	require.Len(t, view.Instructions, 1)

	// 适配结果应能直接走提取管线
	result := senderparser.ExtractSender(view)
	require.Equal(t, core.ExtractFound, result.Status)
	assert.Equal(t, view.Accounts[2].String(), result.Sender)
	assert.Equal(t, uint64(42), result.Amount)
}

func TestFromClientTransaction_PrefersMergedAccountKeys(t *testing.T) {
	// AccountKeys 已含 lookup table 加载的地址时优先使用，而非 message.accountKeys
	resp := &client.Transaction{
		AccountKeys: []common.PublicKey{testAccount(0x10), testAccount(0x20)},
		Transaction: sdktypes.Transaction{
			Message: sdktypes.Message{
				Accounts: []common.PublicKey{testAccount(0x10)},
			},
		},
	}

	view, err := FromClientTransaction("sig", resp)
	require.NoError(t, err)
	assert.Len(t, view.Accounts, 2)
}

func TestFromClientTransaction_Nil(t *testing.T) {
	_, err := FromClientTransaction("sig", nil)
	assert.Error(t, err)
}
