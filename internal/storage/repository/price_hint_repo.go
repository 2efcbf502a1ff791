package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ramonehamilton/precon-analyzer/internal/storage/models"
)

// PriceHintRepository handles last-seen card prices.
type PriceHintRepository interface {
	// Get retrieves the hint for a card key. Returns nil if none is stored.
	Get(ctx context.Context, cardKey string) (*models.PriceHint, error)

	// Upsert stores or replaces the hint for a card.
	Upsert(ctx context.Context, hint *models.PriceHint) error

	// Count returns the number of stored hints.
	Count(ctx context.Context) (int, error)
}

type priceHintRepository struct {
	db *sql.DB
}

// NewPriceHintRepository creates a new price hint repository.
func NewPriceHintRepository(db *sql.DB) PriceHintRepository {
	return &priceHintRepository{db: db}
}

func (r *priceHintRepository) Get(ctx context.Context, cardKey string) (*models.PriceHint, error) {
	var hint models.PriceHint
	err := r.db.QueryRowContext(ctx,
		`SELECT card_key, price_usd, updated_at FROM price_hints WHERE card_key = ?`,
		cardKey,
	).Scan(&hint.CardKey, &hint.PriceUSD, &hint.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get price hint: %w", err)
	}
	return &hint, nil
}

func (r *priceHintRepository) Upsert(ctx context.Context, hint *models.PriceHint) error {
	query := `
		INSERT INTO price_hints (card_key, price_usd, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(card_key) DO UPDATE SET
			price_usd = excluded.price_usd,
			updated_at = excluded.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, hint.CardKey, hint.PriceUSD, hint.UpdatedAt.UTC()); err != nil {
		return fmt.Errorf("failed to upsert price hint: %w", err)
	}
	return nil
}

func (r *priceHintRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM price_hints`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count price hints: %w", err)
	}
	return n, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
