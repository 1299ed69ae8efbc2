package dto

// LeaderboardUserDTO is one row of the leaderboard.
type LeaderboardUserDTO struct {
	Rank              int    `json:"rank"`
	UserID            uint   `json:"user_id"`
	Username          string `json:"username"`
	QuestionsAnswered int64  `json:"questions_answered"`
	CorrectAnswers    int64  `json:"correct_answers"`
	CurrentStreak     int    `json:"current_streak"`
}

// PaginatedLeaderboardResponse is a page of the leaderboard.
type PaginatedLeaderboardResponse struct {
	Users    []*LeaderboardUserDTO `json:"users"`
	Total    int64                 `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
}
