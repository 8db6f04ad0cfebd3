package model

// StreakCounters is returned after a completion is recorded.
type StreakCounters struct {
	CurrentStreak int `json:"currentStreak"`
	LongestStreak int `json:"longestStreak"`
}

// TopicCount is one entry of the topic mastery list.
type TopicCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// UserStats is the dashboard payload.
type UserStats struct {
	CurrentStreak     int          `json:"currentStreak"`
	LongestStreak     int          `json:"longestStreak"`
	TotalSolved       int          `json:"totalSolved"`
	TopicMastery      []TopicCount `json:"topicMastery"`
	RevisingQuestions []Question   `json:"revisingQuestions"`
}

// ProgressUpdate is the response of a status change.
type ProgressUpdate struct {
	Progress *Progress      `json:"progress"`
	Streak   StreakCounters `json:"streak"`
}

// SweepResult reports one run of the daily reset sweep.
type SweepResult struct {
	Day        string `json:"day"`
	ResetCount int64  `json:"resetCount"`
	Skipped    bool   `json:"skipped"`
}
