package backfill

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sender-backfill-sol/internal/logic/core"
	"sender-backfill-sol/internal/logic/txadapter"
	"sender-backfill-sol/pkg/logger"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/rpc"
)

var (
	// ErrTxNotFound 表示 RPC 节点上查不到该交易（可能已被裁剪）
	ErrTxNotFound = errors.New("transaction not found on rpc")
	// ErrTxFailed 表示交易本身执行失败，不存在可回填的发送方
	ErrTxFailed = errors.New("transaction failed on chain")
)

// TxFetcher 按签名拉取交易并适配为提取视图。
// 优先走 base64 编码 + SDK 反序列化得到编译指令；SDK 无法解码时回退
// jsonParsed 编码，由适配层读取节点预解析的指令。
type TxFetcher struct {
	cli        *client.Client
	rpcCli     *rpc.RpcClient
	maxRetries int
	retryDelay time.Duration
	timeout    time.Duration
}

func NewTxFetcher(endpoint string, maxRetries, retryDelayMs, timeoutSec int) *TxFetcher {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayMs <= 0 {
		retryDelayMs = 300
	}
	if timeoutSec <= 0 {
		timeoutSec = 10
	}
	rpcCli := rpc.NewRpcClient(endpoint)
	return &TxFetcher{
		cli:        client.NewClient(endpoint),
		rpcCli:     &rpcCli,
		maxRetries: maxRetries,
		retryDelay: time.Duration(retryDelayMs) * time.Millisecond,
		timeout:    time.Duration(timeoutSec) * time.Second,
	}
}

// FetchView 拉取并适配一笔交易。ErrTxNotFound / ErrTxFailed 是终态，
// 调用方据此标记跳过；其余错误为网络/节点层面，可留待下轮重试。
func (f *TxFetcher) FetchView(ctx context.Context, signature string) (*core.TxView, error) {
	view, rawErr := f.fetchRaw(ctx, signature)
	if rawErr == nil {
		return view, nil
	}
	if errors.Is(rawErr, ErrTxNotFound) || errors.Is(rawErr, ErrTxFailed) {
		return nil, rawErr
	}

	// 典型场景：节点返回了 SDK 不认识的编码/版本，改用节点侧解析
	logger.Debugf("[fetcher] raw decode failed sig=%s, fallback to jsonParsed: %v", signature, rawErr)
	view, parsedErr := f.fetchParsed(ctx, signature)
	if parsedErr != nil {
		return nil, fmt.Errorf("raw fetch: %v; jsonParsed fetch: %w", rawErr, parsedErr)
	}
	return view, nil
}

func (f *TxFetcher) fetchRaw(ctx context.Context, signature string) (*core.TxView, error) {
	var resp *client.Transaction
	err := f.withRetry(ctx, func(callCtx context.Context) error {
		var err error
		resp, err = f.cli.GetTransaction(callCtx, signature)
		return err
	})
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, ErrTxNotFound
	}
	if resp.Meta != nil && resp.Meta.Err != nil {
		return nil, ErrTxFailed
	}
	return txadapter.FromClientTransaction(signature, resp)
}

func (f *TxFetcher) fetchParsed(ctx context.Context, signature string) (*core.TxView, error) {
	maxVersion := uint8(0)
	var result *rpc.GetTransaction
	err := f.withRetry(ctx, func(callCtx context.Context) error {
		resp, err := f.rpcCli.GetTransactionWithConfig(callCtx, signature, rpc.GetTransactionConfig{
			Encoding:                       rpc.TransactionEncodingJsonParsed,
			MaxSupportedTransactionVersion: &maxVersion,
		})
		if err != nil {
			return err
		}
		if resp.Error != nil {
			return fmt.Errorf("rpc error: %v", resp.Error)
		}
		result = resp.Result
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, ErrTxNotFound
	}
	if result.Meta != nil && result.Meta.Err != nil {
		return nil, ErrTxFailed
	}
	return txadapter.FromParsedTransaction(signature, result)
}

// withRetry 带上限重试执行一次 RPC 调用，每次调用套独立超时
func (f *TxFetcher) withRetry(ctx context.Context, call func(ctx context.Context) error) error {
	var attempt int
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		callCtx, cancel := context.WithTimeout(ctx, f.timeout)
		err := call(callCtx)
		cancel()

		if err == nil {
			return nil
		}

		attempt++
		if attempt >= f.maxRetries {
			return err
		}
		time.Sleep(f.retryDelay)
	}
}
