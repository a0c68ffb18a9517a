package backfill

import (
	"context"
	"errors"
	"time"

	"sender-backfill-sol/internal/logic/core"
	"sender-backfill-sol/internal/logic/progress"
	"sender-backfill-sol/internal/logic/senderparser"
	"sender-backfill-sol/internal/svc"
	"sender-backfill-sol/pkg/logger"
	"sender-backfill-sol/pkg/mq"
	"sender-backfill-sol/pkg/utils"

	"github.com/bytedance/sonic"
	"github.com/mr-tron/base58"
)

// SenderRecoveredEvent 发送方恢复成功后推送到 Kafka 的事件体
type SenderRecoveredEvent struct {
	Signature string `json:"signature"`
	Wallet    string `json:"wallet"`
	Network   string `json:"network"`
	Sender    string `json:"sender"`
	Amount    uint64 `json:"amount,omitempty"`
	Token     string `json:"token,omitempty"`
	Memo      string `json:"memo,omitempty"`
	Slot      uint64 `json:"slot"`
	BlockTime int64  `json:"block_time"`
}

type passStats struct {
	processed int // 实际打了 RPC 的签名数
	recovered int
	notFound  int
	invalid   int
	skipped   int // Redis 终态命中，未打 RPC
	failed    int // 网络/节点失败，留给下一轮
}

// BackfillService 周期扫描 transactions 表中发送方缺失的行，
// 逐笔拉取链上交易并解析发送方写回。
type BackfillService struct {
	svcCtx  *svc.BackfillServiceContext
	fetcher *TxFetcher

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewBackfillService(svcCtx *svc.BackfillServiceContext) *BackfillService {
	cfg := svcCtx.Config
	fetcher := NewTxFetcher(
		cfg.Rpc.EndpointFor(cfg.Backfill.Network),
		cfg.Rpc.MaxRetries,
		cfg.Rpc.RetryDelayMs,
		cfg.Rpc.TimeoutSec,
	)
	ctx, cancel := context.WithCancel(context.Background())
	return &BackfillService{
		svcCtx:  svcCtx,
		fetcher: fetcher,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

// Start 启动扫描循环后立即返回，生命周期由 Stop 控制。
// scan_interval_s 为 0 时只跑一轮，之后等待退出信号；否则按间隔持续轮询。
func (s *BackfillService) Start() {
	cfg := &s.svcCtx.Config.Backfill
	logger.Infof("[backfill] service started, wallet=%s network=%s batch_limit=%d pace_ms=%d",
		cfg.Wallet, cfg.Network, cfg.BatchLimit, cfg.PaceMs)

	go s.svcCtx.Progress.StartFlushLoop(s.ctx, time.Duration(cfg.FlushIntervalS)*time.Second)
	go s.run()
}

func (s *BackfillService) run() {
	defer close(s.done)
	cfg := &s.svcCtx.Config.Backfill

	for {
		start := time.Now()
		st := s.runPass(s.ctx)
		s.logPassSummary(st, time.Since(start))

		if s.ctx.Err() != nil {
			return
		}
		if cfg.ScanIntervalS <= 0 {
			logger.Infof("[backfill] single pass complete, waiting for shutdown")
			<-s.ctx.Done()
			return
		}

		select {
		case <-s.ctx.Done():
			return
		case <-time.After(time.Duration(cfg.ScanIntervalS) * time.Second):
		}
	}
}

func (s *BackfillService) Stop() {
	logger.Infof("[backfill] service stopping")
	s.cancel()

	select {
	case <-s.done:
	case <-time.After(15 * time.Second):
		logger.Warnf("[backfill] stop timed out waiting for scan loop")
	}
}

// runPass 执行一轮扫描：拉缺失行，逐笔恢复，结束后冲刷缓冲
func (s *BackfillService) runPass(ctx context.Context) passStats {
	cfg := &s.svcCtx.Config.Backfill
	pm := s.svcCtx.Progress

	var st passStats
	records, err := pm.Store().FetchMissingSenders(ctx, cfg.Wallet, cfg.Network, cfg.BatchLimit)
	if err != nil {
		logger.Errorf("[backfill] fetch missing senders failed: %v", err)
		return st
	}
	if len(records) == 0 {
		return st
	}

	pace := time.Duration(cfg.PaceMs) * time.Millisecond
	paced := false

	for _, record := range records {
		select {
		case <-ctx.Done():
			_ = pm.Flush(context.Background())
			return st
		default:
		}

		if !pm.ShouldProcess(ctx, record.Signature) {
			st.skipped++
			continue
		}

		// 只在实际打 RPC 的调用之间限速
		if paced && pace > 0 {
			time.Sleep(pace)
		}
		paced = true
		st.processed++

		view, err := s.fetcher.FetchView(ctx, record.Signature)
		if err != nil {
			switch {
			case errors.Is(err, ErrTxNotFound):
				pm.MarkSkipped(ctx, record.Signature, progress.SigNotFound)
				st.notFound++
			case errors.Is(err, ErrTxFailed):
				pm.MarkSkipped(ctx, record.Signature, progress.SigInvalid)
				st.invalid++
			default:
				// 网络层失败不写终态，下一轮重试
				logger.Warnf("[backfill] fetch tx failed sig=%s: %v", record.Signature, err)
				st.failed++
			}
			continue
		}

		result := senderparser.ExtractSender(view)
		switch result.Status {
		case core.ExtractFound:
			pm.MarkRecovered(ctx, &progress.SenderUpdate{
				Signature: record.Signature,
				Network:   cfg.Network,
				Sender:    result.Sender,
			})
			st.recovered++
			s.publishEvent(ctx, view, &result)
		case core.ExtractNotFound:
			pm.MarkSkipped(ctx, record.Signature, progress.SigNotFound)
			st.notFound++
		case core.ExtractMalformed:
			logger.Warnf("[backfill] malformed tx sig=%s reason=%s", record.Signature, result.Reason)
			pm.MarkSkipped(ctx, record.Signature, progress.SigInvalid)
			st.invalid++
		}
	}

	if err := pm.Flush(ctx); err != nil {
		logger.Errorf("[backfill] flush after pass failed: %v", err)
	}
	return st
}

func (s *BackfillService) logPassSummary(st passStats, elapsed time.Duration) {
	cfg := &s.svcCtx.Config.Backfill
	remaining := int64(-1)
	if count, err := s.svcCtx.Progress.Store().CountMissing(context.Background(), cfg.Wallet, cfg.Network); err == nil {
		remaining = count
	}
	logger.Infof("[backfill] pass done in %s: processed=%d recovered=%d not_found=%d invalid=%d skipped=%d failed=%d remaining=%d",
		elapsed.Round(time.Millisecond), st.processed, st.recovered, st.notFound, st.invalid, st.skipped, st.failed, remaining)
}

// publishEvent 把恢复结果推送到 Kafka，失败只记日志（DB 写回不依赖事件）
func (s *BackfillService) publishEvent(ctx context.Context, view *core.TxView, result *core.ExtractResult) {
	producer := s.svcCtx.Producer
	if producer == nil {
		return
	}
	kafkaCfg := &s.svcCtx.Config.Kafka
	cfg := &s.svcCtx.Config.Backfill

	event := &SenderRecoveredEvent{
		Signature: view.Signature,
		Wallet:    cfg.Wallet,
		Network:   cfg.Network,
		Sender:    result.Sender,
		Amount:    result.Amount,
		Token:     result.Token,
		Memo:      senderparser.ExtractMemo(view),
		Slot:      view.Slot,
		BlockTime: view.BlockTime,
	}
	data, err := sonic.Marshal(event)
	if err != nil {
		logger.Errorf("[backfill] marshal event failed sig=%s: %v", view.Signature, err)
		return
	}

	// 同一签名固定分区，按签名原始字节取哈希
	partition := int32(0)
	if sigBytes, err := base58.Decode(view.Signature); err == nil {
		partition = int32(utils.PartitionHashBytes(sigBytes, uint32(kafkaCfg.Partitions)))
	}

	jobs := []*mq.KafkaJob{{
		Topic:     kafkaCfg.SenderTopic,
		Partition: partition,
		Value:     data,
	}}
	_, failed := mq.SendKafkaJobs(ctx, producer, jobs, time.Duration(kafkaCfg.SendTimeoutMs)*time.Millisecond)
	for _, f := range failed {
		logger.Errorf("[backfill] publish event failed sig=%s: %v", view.Signature, f.Err)
	}
}
