package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// withTx выполняет fn внутри транзакции: rollback при ошибке или панике,
// commit при успехе.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	// Без пула соединений (фейковые репозитории) замыкание выполняется
	// напрямую: атомарность в этом случае обеспечивает вызывающий.
	if db == nil {
		return fn(nil)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
