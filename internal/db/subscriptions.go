package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"diningwatch/internal/models"
)

// Keyword and hall lists cross the database boundary as JSON text columns.
// The canonical encoding: halls is NULL when the subscription watches all
// halls; an empty list is never stored.

func encodeList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to encode list: %w", err)
	}
	return string(data), nil
}

func encodeHalls(halls []string) (any, error) {
	if len(halls) == 0 {
		return nil, nil
	}
	return encodeList(halls)
}

func decodeList(data *string) []string {
	if data == nil || *data == "" {
		return nil
	}
	var items []string
	if err := json.Unmarshal([]byte(*data), &items); err != nil {
		// a corrupt column degrades to "no entries" rather than failing the run
		return nil
	}
	if len(items) == 0 {
		return nil
	}
	return items
}

// Subscribe creates a subscription or merges into an existing one.
//
// Merge semantics: keywords are unioned preserving first-occurrence order.
// Halls are unioned too, with two rules: a stored NULL (all halls) absorbs
// any union and stays NULL, and an empty hall selection in the request
// leaves the stored filter untouched for an existing subscription.
// Returns the resulting subscription and whether it was newly created.
func (d *DB) Subscribe(ctx context.Context, email string, keywords, halls []string) (*models.Subscription, bool, error) {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		sub       models.Subscription
		kwJSON    string
		hallsJSON *string
	)
	sub.Email = email

	err = tx.QueryRow(ctx, `
		SELECT id, keywords, halls, last_notified_date, created_at, updated_at
		FROM subscriptions WHERE email = $1
		FOR UPDATE
	`, email).Scan(&sub.ID, &kwJSON, &hallsJSON, &sub.LastNotified, &sub.CreatedAt, &sub.UpdatedAt)

	created := false
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		created = true
		sub.Keywords = mergeLists(nil, keywords)
		sub.Halls = mergeLists(nil, halls)
		if len(sub.Halls) == 0 {
			sub.Halls = nil
		}

		kw, err := encodeList(sub.Keywords)
		if err != nil {
			return nil, false, err
		}
		hl, err := encodeHalls(sub.Halls)
		if err != nil {
			return nil, false, err
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO subscriptions (email, keywords, halls)
			VALUES ($1, $2, $3)
			RETURNING id, created_at, updated_at
		`, email, kw, hl).Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
		if err != nil {
			return nil, false, fmt.Errorf("failed to insert subscription: %w", err)
		}

	case err != nil:
		return nil, false, fmt.Errorf("failed to load subscription: %w", err)

	default:
		sub.Keywords = mergeLists(decodeList(&kwJSON), keywords)
		stored := decodeList(hallsJSON)
		if stored != nil && len(halls) > 0 {
			sub.Halls = mergeLists(stored, halls)
		} else {
			sub.Halls = stored
		}

		kw, err := encodeList(sub.Keywords)
		if err != nil {
			return nil, false, err
		}
		hl, err := encodeHalls(sub.Halls)
		if err != nil {
			return nil, false, err
		}

		err = tx.QueryRow(ctx, `
			UPDATE subscriptions SET keywords = $1, halls = $2, updated_at = NOW()
			WHERE email = $3
			RETURNING updated_at
		`, kw, hl, email).Scan(&sub.UpdatedAt)
		if err != nil {
			return nil, false, fmt.Errorf("failed to update subscription: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to commit: %w", err)
	}

	return &sub, created, nil
}

// mergeLists unions two lists preserving first-occurrence order.
func mergeLists(current, incoming []string) []string {
	seen := make(map[string]bool, len(current))
	out := make([]string, 0, len(current)+len(incoming))
	for _, item := range current {
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	for _, item := range incoming {
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}

// GetSubscriptionByEmail retrieves one subscription.
func (d *DB) GetSubscriptionByEmail(ctx context.Context, email string) (*models.Subscription, error) {
	var (
		sub       models.Subscription
		kwJSON    string
		hallsJSON *string
	)

	err := d.Pool.QueryRow(ctx, `
		SELECT id, email, keywords, halls, last_notified_date, created_at, updated_at
		FROM subscriptions WHERE email = $1
	`, email).Scan(&sub.ID, &sub.Email, &kwJSON, &hallsJSON, &sub.LastNotified, &sub.CreatedAt, &sub.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, err
	}

	sub.Keywords = decodeList(&kwJSON)
	sub.Halls = decodeList(hallsJSON)
	return &sub, nil
}

// ListSubscriptions returns all subscriptions, oldest first.
func (d *DB) ListSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT id, email, keywords, halls, last_notified_date, created_at, updated_at
		FROM subscriptions ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []models.Subscription
	for rows.Next() {
		var (
			sub       models.Subscription
			kwJSON    string
			hallsJSON *string
		)
		if err := rows.Scan(&sub.ID, &sub.Email, &kwJSON, &hallsJSON, &sub.LastNotified, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
			return nil, err
		}
		sub.Keywords = decodeList(&kwJSON)
		sub.Halls = decodeList(hallsJSON)
		subs = append(subs, sub)
	}

	return subs, rows.Err()
}

// Unsubscribe deletes a subscription and reports whether one existed.
func (d *DB) Unsubscribe(ctx context.Context, email string) (bool, error) {
	tag, err := d.Pool.Exec(ctx, `DELETE FROM subscriptions WHERE email = $1`, email)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SetLastNotified records the calendar day a digest was sent.
func (d *DB) SetLastNotified(ctx context.Context, email string, day time.Time) error {
	tag, err := d.Pool.Exec(ctx, `
		UPDATE subscriptions SET last_notified_date = $1, updated_at = NOW()
		WHERE email = $2
	`, day, email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}
