package clickhouse

import (
	"context"
	"fmt"
	"time"

	"solana-pop/internal/domain"
	"solana-pop/internal/storage"
)

// ClaimActivityStore implements storage.ClaimActivityStore using ClickHouse.
// Rows are append-only; uniqueness is the primary store's concern.
type ClaimActivityStore struct {
	conn *Conn
}

// NewClaimActivityStore creates a new ClaimActivityStore.
func NewClaimActivityStore(conn *Conn) *ClaimActivityStore {
	return &ClaimActivityStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ClaimActivityStore = (*ClaimActivityStore)(nil)

// Record appends one activity row.
func (s *ClaimActivityStore) Record(ctx context.Context, a *domain.ClaimActivity) error {
	if a == nil || a.EventID == "" {
		return storage.ErrInvalidInput
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO pop_claim_activity (
			event_id, claim_id, wallet_address, transaction_signature, creator, claimed_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	err = batch.Append(
		a.EventID, a.ClaimID, a.WalletAddress,
		a.TransactionSignature, a.Creator, a.ClaimedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// CountByEvent returns the number of recorded claims for an event.
func (s *ClaimActivityStore) CountByEvent(ctx context.Context, eventID string) (int, error) {
	query := `SELECT count() FROM pop_claim_activity WHERE event_id = ?`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, eventID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count claim activity: %w", err)
	}
	return int(count), nil
}

// DailyCounts returns per-day claim counts for an event, ordered by day ASC.
func (s *ClaimActivityStore) DailyCounts(ctx context.Context, eventID string) ([]domain.DailyClaimCount, error) {
	query := `
		SELECT toStartOfDay(claimed_at, 'UTC') AS day, count() AS claims
		FROM pop_claim_activity
		WHERE event_id = ?
		GROUP BY day
		ORDER BY day ASC
	`

	rows, err := s.conn.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("query daily counts: %w", err)
	}
	defer rows.Close()

	return scanDailyCounts(rows)
}

// scanDailyCounts scans multiple rows.
func scanDailyCounts(rows chRows) ([]domain.DailyClaimCount, error) {
	counts := make([]domain.DailyClaimCount, 0)

	for rows.Next() {
		var (
			day    time.Time
			claims uint64
		)
		if err := rows.Scan(&day, &claims); err != nil {
			return nil, fmt.Errorf("scan daily count row: %w", err)
		}
		counts = append(counts, domain.DailyClaimCount{
			Day:    domain.DayOf(day),
			Claims: int(claims),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily count rows: %w", err)
	}

	return counts, nil
}
