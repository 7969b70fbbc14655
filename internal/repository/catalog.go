package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// CatalogRepository 角色选择与付费解锁仓库（仅影响外观，不影响闹钟行为）
type CatalogRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCatalogRepository 创建角色仓库
func NewCatalogRepository(db *sql.DB, logger *zap.Logger) *CatalogRepository {
	return &CatalogRepository{
		db:     db,
		logger: logger,
	}
}

const selectedCharacterKey = "selected_character"

// GetSelectedCharacter 获取当前选中的角色 ID（未设置时返回空串）
func (r *CatalogRepository) GetSelectedCharacter(ctx context.Context) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = $1`, selectedCharacterKey,
	).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to get selected character: %w", err)
	}
	return value, nil
}

// SetSelectedCharacter 持久化选中的角色 ID
func (r *CatalogRepository) SetSelectedCharacter(ctx context.Context, characterID string) error {
	if characterID == "" {
		return fmt.Errorf("character id is required")
	}

	// settings 表为 key-value，UPSERT 语义
	query := `
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = $2`

	if _, err := r.db.ExecContext(ctx, query, selectedCharacterKey, characterID); err != nil {
		return fmt.Errorf("failed to set selected character: %w", err)
	}
	return nil
}

// AddEntitlement 记录已购买的商品
func (r *CatalogRepository) AddEntitlement(ctx context.Context, productID string) error {
	if productID == "" {
		return fmt.Errorf("product id is required")
	}

	query := `
		INSERT INTO entitlements (product_id, purchased_at) VALUES ($1, $2)
		ON CONFLICT (product_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, productID, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to add entitlement: %w", err)
	}

	r.logger.Debug("Added entitlement",
		zap.String("product_id", productID),
	)
	return nil
}

// ListEntitlements 列出全部已购商品 ID
func (r *CatalogRepository) ListEntitlements(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT product_id FROM entitlements ORDER BY purchased_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to query entitlements: %w", err)
	}
	defer rows.Close()

	var products []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan entitlement: %w", err)
		}
		products = append(products, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entitlements: %w", err)
	}
	return products, nil
}
