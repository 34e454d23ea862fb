package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// nextReference generates the next order reference for a kind ("PO" or "SO")
// within the caller's transaction, formatted as KIND-YYYY-NNNNN. The counter
// upsert is concurrency-safe: two orders created at once serialize on the
// sequence row and get distinct numbers.
func nextReference(ctx context.Context, tx pgx.Tx, kind string) (string, error) {
	year := time.Now().Year()

	var lastNumber int64
	err := tx.QueryRow(ctx, `
		INSERT INTO order_sequences (kind, year, last_number)
		VALUES ($1, $2, 1)
		ON CONFLICT (kind, year)
		DO UPDATE SET last_number = order_sequences.last_number + 1
		RETURNING last_number`,
		kind, year,
	).Scan(&lastNumber)
	if err != nil {
		return "", fmt.Errorf("generate %s reference: %w", kind, err)
	}

	return fmt.Sprintf("%s-%d-%05d", kind, year, lastNumber), nil
}
