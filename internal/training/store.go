package training

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"github.com/kbukum/fittrack/database"
)

// Store persists plans and workouts. Missing rows surface as NOT_FOUND
// AppErrors; other failures are STORE_UNAVAILABLE.
type Store interface {
	GetPlan(ctx context.Context, userID string) (*Plan, error)
	UpsertPlan(ctx context.Context, p *Plan) (*Plan, error)
	AddWorkout(ctx context.Context, w *Workout) error
	// ListWorkouts returns the workouts of userID, newest first.
	ListWorkouts(ctx context.Context, userID string) ([]Workout, error)
	// WorkoutsSince returns the workouts of userID dated after since,
	// oldest first.
	WorkoutsSince(ctx context.Context, userID string, since time.Time) ([]Workout, error)
	Summarize(ctx context.Context, userID string) (Summary, error)
}

// GormStore is the Store backed by the training_plans and
// workout_sessions tables.
type GormStore struct {
	db *database.DB
}

var _ Store = (*GormStore)(nil)

// NewGormStore creates a store on db.
func NewGormStore(db *database.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) GetPlan(ctx context.Context, userID string) (*Plan, error) {
	var p Plan
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, database.FromDatabase(err, "plan")
	}
	return &p, nil
}

func (s *GormStore) UpsertPlan(ctx context.Context, p *Plan) (*Plan, error) {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"plan_name", "reps", "sets", "form_status", "updated_at"}),
		}).
		Create(p).Error
	if err != nil {
		return nil, database.FromDatabase(err, "plan")
	}
	return s.GetPlan(ctx, p.UserID)
}

func (s *GormStore) AddWorkout(ctx context.Context, w *Workout) error {
	if err := s.db.WithContext(ctx).Create(w).Error; err != nil {
		return database.FromDatabase(err, "workout")
	}
	return nil
}

func (s *GormStore) ListWorkouts(ctx context.Context, userID string) ([]Workout, error) {
	workouts := []Workout{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		Find(&workouts).Error
	if err != nil {
		return nil, database.FromDatabase(err, "workout")
	}
	return workouts, nil
}

func (s *GormStore) WorkoutsSince(ctx context.Context, userID string, since time.Time) ([]Workout, error) {
	var workouts []Workout
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date > ?", userID, since.UTC()).
		Order("date ASC").
		Find(&workouts).Error
	if err != nil {
		return nil, database.FromDatabase(err, "workout")
	}
	return workouts, nil
}

func (s *GormStore) Summarize(ctx context.Context, userID string) (Summary, error) {
	var sum Summary
	err := s.db.WithContext(ctx).
		Model(&Workout{}).
		Select("COALESCE(SUM(reps), 0) AS total_reps, COUNT(*) AS total_sessions").
		Where("user_id = ?", userID).
		Scan(&sum).Error
	if err != nil {
		return Summary{}, database.FromDatabase(err, "workout")
	}
	return sum, nil
}
