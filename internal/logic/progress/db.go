package progress

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// SenderStore 管理 transactions 表的发送方回填读写。
// 读取 from_address 为 NULL 的行，恢复成功后写回；批量写入供 flush 循环使用。
type SenderStore struct {
	db *sql.DB
}

func NewSenderStore(db *sql.DB) *SenderStore {
	return &SenderStore{db: db}
}

// FetchMissingSenders 分页拉取指定钱包在某网络下发送方缺失的交易，按时间倒序
func (s *SenderStore) FetchMissingSenders(ctx context.Context, wallet, network string, limit int) ([]*TxRecord, error) {
	query := `
		SELECT signature, block_time
		FROM transactions
		WHERE wallet_address = $1
		  AND network = $2
		  AND from_address IS NULL
		ORDER BY block_time DESC
		LIMIT $3
	`
	rows, err := s.db.QueryContext(ctx, query, wallet, network, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch missing senders failed: %w", err)
	}
	defer rows.Close()

	var records []*TxRecord
	for rows.Next() {
		record := &TxRecord{}
		if err := rows.Scan(&record.Signature, &record.BlockTime); err != nil {
			return nil, fmt.Errorf("scan tx record failed: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// CountMissing 统计剩余发送方缺失的交易数（用于轮次汇总日志）
func (s *SenderStore) CountMissing(ctx context.Context, wallet, network string) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM transactions
		WHERE wallet_address = $1
		  AND network = $2
		  AND from_address IS NULL
	`
	var count int64
	if err := s.db.QueryRowContext(ctx, query, wallet, network).Scan(&count); err != nil {
		return 0, fmt.Errorf("count missing senders failed: %w", err)
	}
	return count, nil
}

// UpdateSender 写回单条恢复结果（即时写路径，flush 缓冲之外的兜底）
func (s *SenderStore) UpdateSender(ctx context.Context, signature, network, sender string) error {
	query := `
		UPDATE transactions
		SET from_address = $1
		WHERE signature = $2 AND network = $3
	`
	if _, err := s.db.ExecContext(ctx, query, sender, signature, network); err != nil {
		return fmt.Errorf("update sender for %s failed: %w", signature, err)
	}
	return nil
}

// BatchUpdateSenders 批量写回恢复结果，按 batchLimit 分批执行。
// 仍为 NULL 的行才更新，避免覆盖其他来源已写入的值。
func (s *SenderStore) BatchUpdateSenders(ctx context.Context, updates []*SenderUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	const batchLimit = 500
	for i := 0; i < len(updates); i += batchLimit {
		end := i + batchLimit
		if end > len(updates) {
			end = len(updates)
		}
		if err := s.updateChunk(ctx, updates[i:end]); err != nil {
			return err
		}
	}
	return nil
}

// updateChunk 以 VALUES 连接的方式一次更新一批（最多 500 条）
func (s *SenderStore) updateChunk(ctx context.Context, updates []*SenderUpdate) error {
	var placeholders strings.Builder
	args := make([]interface{}, 0, len(updates)*3)

	for i, u := range updates {
		if i > 0 {
			placeholders.WriteString(",")
		}
		fmt.Fprintf(&placeholders, "($%d,$%d,$%d)", i*3+1, i*3+2, i*3+3)
		args = append(args, u.Signature, u.Network, u.Sender)
	}

	query := fmt.Sprintf(`
		UPDATE transactions AS t
		SET from_address = v.sender
		FROM (VALUES %s) AS v(signature, network, sender)
		WHERE t.signature = v.signature
		  AND t.network = v.network
		  AND t.from_address IS NULL
	`, placeholders.String())

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("batch update senders failed: %w", err)
	}
	return nil
}
