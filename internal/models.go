package internal

import "time"

type User struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Nickname    string `json:"nickname"`
	Level       int    `json:"level"`
	Experience  int    `json:"experience"`
	Points      int    `json:"points"`
	TotalPoints int    `json:"totalPoints"`
	Streak      int    `json:"streak"`
	LastLogin   string `json:"lastLogin"` // YYYY-MM-DD
	IsAdmin     bool   `json:"isAdmin"`
}

type Quest struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Difficulty  string  `json:"difficulty"` // easy|medium|hard
	Points      int     `json:"points"`
	Category    string  `json:"category"`
	Icon        string  `json:"icon"`
	CreatedBy   *string `json:"createdBy,omitempty"`
}

// UserQuest is a catalog quest annotated with the user's per-quest state.
type UserQuest struct {
	Quest
	Status      string     `json:"status"` // selected|completed
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

type Reward struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Points      int     `json:"points"` // cost
	Type        string  `json:"type"`   // youtube|game|snack|money
	Duration    int     `json:"duration"`
	Icon        string  `json:"icon"`
	CreatedBy   *string `json:"createdBy,omitempty"`
}

// RewardUse is a redemption log row joined with the catalog entry.
type RewardUse struct {
	Reward
	UsedAt time.Time `json:"usedAt"`
}

type Team struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	LeaderID    string    `json:"leaderId"`
	MaxMembers  int       `json:"maxMembers"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type TeamMember struct {
	TeamID   string    `json:"teamId"`
	UserID   string    `json:"userId"`
	Role     string    `json:"role"` // leader|member
	JoinedAt time.Time `json:"joinedAt"`
	User     User      `json:"user"`
}

// TeamDetail is a team with its member roster and derived aggregates.
type TeamDetail struct {
	Team
	Members      []TeamMember `json:"members"`
	MemberCount  int          `json:"memberCount"`
	TotalPoints  int          `json:"totalPoints"`
	AverageLevel float64      `json:"averageLevel"`
}

// TeamSummary is the aggregate-only view used by the team list and ranking.
type TeamSummary struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	LeaderID          string  `json:"leaderId"`
	MaxMembers        int     `json:"maxMembers"`
	LeaderName        string  `json:"leaderName"`
	LeaderDisplayName string  `json:"leaderDisplayName"`
	MemberCount       int     `json:"memberCount"`
	TotalPoints       int     `json:"totalPoints"`
	AverageLevel      float64 `json:"averageLevel"`
	AverageStreak     float64 `json:"averageStreak"`
	Rank              int     `json:"rank,omitempty"`
}

// RankedUser is one row of a ranking list.
type RankedUser struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Nickname    string `json:"nickname"`
	DisplayName string `json:"displayName"`
	Points      int    `json:"points"`
	TotalPoints int    `json:"totalPoints"`
	Level       int    `json:"level"`
	Experience  int    `json:"experience"`
	Streak      int    `json:"streak"`
	Rank        int    `json:"rank"`
}

type UserStats struct {
	TotalUsers     int     `json:"totalUsers"`
	AvgTotalPoints int     `json:"avgTotalPoints"`
	MaxTotalPoints int     `json:"maxTotalPoints"`
	AvgLevel       float64 `json:"avgLevel"`
	MaxLevel       int     `json:"maxLevel"`
	AvgStreak      float64 `json:"avgStreak"`
	MaxStreak      int     `json:"maxStreak"`
}

type RankingReport struct {
	PointsRanking []RankedUser `json:"pointsRanking"`
	LevelRanking  []RankedUser `json:"levelRanking"`
	StreakRanking []RankedUser `json:"streakRanking"`
	Stats         UserStats    `json:"stats"`
}

type TeamStats struct {
	TotalTeams     int     `json:"totalTeams"`
	AvgTotalPoints int     `json:"avgTotalPoints"`
	MaxTotalPoints int     `json:"maxTotalPoints"`
	AvgMemberCount float64 `json:"avgMemberCount"`
	AvgLevel       float64 `json:"avgLevel"`
	MaxLevel       float64 `json:"maxLevel"`
}

type TeamRankingReport struct {
	TeamRanking []TeamSummary `json:"teamRanking"`
	Stats       TeamStats     `json:"stats"`
}
