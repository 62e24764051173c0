// Package training stores training plans and workout sessions and derives
// the analytics shown to each user.
package training

import (
	"time"

	"github.com/kbukum/fittrack/database"
)

// Plan is the training plan of a user. There is at most one per user.
type Plan struct {
	database.BaseModel
	UserID     string `gorm:"type:varchar(36);uniqueIndex;not null" json:"userId"`
	PlanName   string `gorm:"not null" json:"planName"`
	Reps       int    `gorm:"not null" json:"reps"`
	Sets       int    `gorm:"not null" json:"sets"`
	FormStatus int    `gorm:"not null" json:"formStatus"`
}

// TableName implements gorm's tabler.
func (Plan) TableName() string { return "training_plans" }

// Workout is one recorded exercise session.
type Workout struct {
	database.BaseModel
	UserID      string    `gorm:"type:varchar(36);not null;index:idx_workout_sessions_user_date,priority:1" json:"userId"`
	Reps        int       `gorm:"not null" json:"reps"`
	ValidReps   int       `gorm:"not null" json:"validReps"`
	InvalidReps int       `gorm:"not null" json:"invalidReps"`
	DurationSec int       `gorm:"not null" json:"durationSec"`
	FormStatus  int       `gorm:"not null" json:"formStatus"`
	Date        time.Time `gorm:"not null;index:idx_workout_sessions_user_date,priority:2" json:"date"`
}

// TableName implements gorm's tabler.
func (Workout) TableName() string { return "workout_sessions" }

// Summary is the all-time total of a user's workouts.
type Summary struct {
	TotalReps     int64 `json:"total_reps"`
	TotalSessions int64 `json:"total_sessions"`
}

// DayReps is the number of repetitions done on one UTC day.
type DayReps struct {
	Day  string `json:"day"`
	Reps int64  `json:"reps"`
}

// FormStatus is the share of valid repetitions as a whole percentage,
// 0 when nothing was counted.
func FormStatus(validReps, totalReps int) int {
	if totalReps <= 0 || validReps <= 0 {
		return 0
	}
	return min(validReps*100/totalReps, 100)
}
