package revocation

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	"github.com/kbukum/fittrack/database"
)

// RevokedToken is a row of the revoked_tokens table.
type RevokedToken struct {
	TokenHash string    `gorm:"column:token_hash;type:varchar(64);primaryKey"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName implements gorm's tabler.
func (RevokedToken) TableName() string { return "revoked_tokens" }

// DatabaseRegistry stores revocations in the revoked_tokens table.
type DatabaseRegistry struct {
	db  *database.DB
	now func() time.Time
}

var (
	_ Registry = (*DatabaseRegistry)(nil)
	_ Purger   = (*DatabaseRegistry)(nil)
)

// NewDatabaseRegistry creates a registry on db. The revoked_tokens table
// must exist.
func NewDatabaseRegistry(db *database.DB, opts ...Option) *DatabaseRegistry {
	o := buildOptions(opts)
	return &DatabaseRegistry{db: db, now: o.now}
}

// Revoke implements Registry. A conflicting insert is ignored so the first
// recorded expiry stands.
func (r *DatabaseRegistry) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	expiresAt = normalize(expiresAt)
	if !expiresAt.After(r.now()) {
		return nil
	}

	row := RevokedToken{TokenHash: Key(token), ExpiresAt: expiresAt, CreatedAt: r.now().UTC()}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked implements Registry.
func (r *DatabaseRegistry) IsRevoked(ctx context.Context, token string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&RevokedToken{}).
		Where("token_hash = ? AND expires_at > ?", Key(token), r.now().UTC()).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("lookup revoked token: %w", err)
	}
	return n > 0, nil
}

// Purge implements Purger.
func (r *DatabaseRegistry) Purge(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at <= ?", r.now().UTC()).
		Delete(&RevokedToken{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge revoked tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}
