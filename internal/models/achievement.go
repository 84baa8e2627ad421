package models

import "time"

type EarnedAchievement struct {
	ID       string    `json:"id"`
	EarnedAt time.Time `json:"earned_at"`
}

type AchievementStatus struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Points      int        `json:"points"`
	Earned      bool       `json:"earned"`
	EarnedAt    *time.Time `json:"earned_at,omitempty"`
}

type AchievementsResponse struct {
	Achievements []AchievementStatus `json:"achievements"`
	EarnedCount  int                 `json:"earned_count"`
	TotalPoints  int                 `json:"total_points"`
}
