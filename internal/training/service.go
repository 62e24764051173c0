package training

import (
	"context"
	"time"

	"github.com/kbukum/fittrack/logger"
	"github.com/kbukum/fittrack/util"
	"github.com/kbukum/fittrack/validation"
)

// WeeklyWindow is how far back the weekly breakdown looks.
const WeeklyWindow = 7 * 24 * time.Hour

const dayLayout = "2006-01-02"

// PlanInput is the body of a plan update.
type PlanInput struct {
	PlanName   string `json:"planName" validate:"required,max=100"`
	Reps       int    `json:"reps" validate:"gte=0"`
	Sets       int    `json:"sets" validate:"gte=0"`
	FormStatus int    `json:"formStatus" validate:"gte=0,lte=100"`
}

// WorkoutInput is the body of a recorded workout.
type WorkoutInput struct {
	Reps        int `json:"reps" validate:"gte=0"`
	ValidReps   int `json:"validReps" validate:"gte=0"`
	InvalidReps int `json:"invalidReps" validate:"gte=0"`
	DurationSec int `json:"durationSec" validate:"gte=0"`
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service manages plans and workouts on behalf of a user.
type Service struct {
	store Store
	log   *logger.Logger
	now   func() time.Time
}

// NewService wires a Service.
func NewService(store Store, log *logger.Logger, opts ...Option) *Service {
	s := &Service{store: store, log: log.WithComponent("training"), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Plan returns the plan of userID.
func (s *Service) Plan(ctx context.Context, userID string) (*Plan, error) {
	return s.store.GetPlan(ctx, userID)
}

// SavePlan creates or replaces the plan of userID.
func (s *Service) SavePlan(ctx context.Context, userID string, in PlanInput) (*Plan, error) {
	in.PlanName = util.SanitizeString(in.PlanName)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	return s.store.UpsertPlan(ctx, &Plan{
		UserID:     userID,
		PlanName:   in.PlanName,
		Reps:       in.Reps,
		Sets:       in.Sets,
		FormStatus: in.FormStatus,
	})
}

// RecordWorkout stores a workout dated now. Valid and invalid repetitions
// together cannot exceed the total.
func (s *Service) RecordWorkout(ctx context.Context, userID string, in WorkoutInput) (*Workout, error) {
	err := validation.New().
		Merge(validation.Struct(in)).
		Check(in.ValidReps+in.InvalidReps <= in.Reps, "reps", "must be at least validReps + invalidReps").
		Err()
	if err != nil {
		return nil, err
	}

	w := &Workout{
		UserID:      userID,
		Reps:        in.Reps,
		ValidReps:   in.ValidReps,
		InvalidReps: in.InvalidReps,
		DurationSec: in.DurationSec,
		FormStatus:  FormStatus(in.ValidReps, in.Reps),
		Date:        s.now().UTC(),
	}
	if err := s.store.AddWorkout(ctx, w); err != nil {
		return nil, err
	}

	s.log.WithContext(ctx).Debug("Workout recorded", logger.Fields(
		logger.FieldUserID, userID,
		"reps", w.Reps,
		"form_status", w.FormStatus,
	))
	return w, nil
}

// Workouts returns the workouts of userID, newest first.
func (s *Service) Workouts(ctx context.Context, userID string) ([]Workout, error) {
	return s.store.ListWorkouts(ctx, userID)
}

// Summary returns the all-time totals of userID.
func (s *Service) Summary(ctx context.Context, userID string) (Summary, error) {
	return s.store.Summarize(ctx, userID)
}

// Weekly returns repetitions per UTC day over the last WeeklyWindow,
// oldest day first. Days without workouts are omitted.
func (s *Service) Weekly(ctx context.Context, userID string) ([]DayReps, error) {
	workouts, err := s.store.WorkoutsSince(ctx, userID, s.now().Add(-WeeklyWindow))
	if err != nil {
		return nil, err
	}

	days := []DayReps{}
	for _, w := range workouts {
		day := w.Date.UTC().Format(dayLayout)
		if n := len(days); n > 0 && days[n-1].Day == day {
			days[n-1].Reps += int64(w.Reps)
			continue
		}
		days = append(days, DayReps{Day: day, Reps: int64(w.Reps)})
	}
	return days, nil
}
