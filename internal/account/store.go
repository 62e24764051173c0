package account

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/kbukum/fittrack/database"
	apperrors "github.com/kbukum/fittrack/errors"
)

// Store persists users and profiles. Lookups of missing rows return a
// NOT_FOUND AppError; other failures are STORE_UNAVAILABLE.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	// Create inserts u, returning DUPLICATE_EMAIL when the email is taken.
	Create(ctx context.Context, u *User) error
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	// UpsertProfile creates or replaces the profile of p.UserID and returns
	// the stored row.
	UpsertProfile(ctx context.Context, p *Profile) (*Profile, error)
}

// GormStore is the Store backed by the users and profiles tables.
type GormStore struct {
	db *database.DB
}

var _ Store = (*GormStore)(nil)

// NewGormStore creates a store on db.
func NewGormStore(db *database.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, database.FromDatabase(err, "user")
	}
	return &u, nil
}

func (s *GormStore) Create(ctx context.Context, u *User) error {
	err := s.db.WithContext(ctx).Create(u).Error
	if database.IsDuplicateError(err) {
		return apperrors.DuplicateEmail().WithCause(err)
	}
	if err != nil {
		return database.FromDatabase(err, "user")
	}
	return nil
}

func (s *GormStore) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	var p Profile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, database.FromDatabase(err, "profile")
	}
	return &p, nil
}

func (s *GormStore) UpsertProfile(ctx context.Context, p *Profile) (*Profile, error) {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"age", "weight", "primary_goal", "experience_level", "updated_at"}),
		}).
		Create(p).Error
	if err != nil {
		return nil, database.FromDatabase(err, "profile")
	}
	// On conflict the freshly generated id is discarded, so read back.
	return s.GetProfile(ctx, p.UserID)
}
