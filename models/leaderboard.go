package models

// LeaderboardScopeKind selects the partition a ranking is computed over.
type LeaderboardScopeKind string

const (
	ScopeGlobal    LeaderboardScopeKind = "global"
	ScopeCategory  LeaderboardScopeKind = "category"
	ScopeChallenge LeaderboardScopeKind = "challenge"
)

// LeaderboardScope identifies one ranking partition. Key is empty for the
// global scope, a waste category for ScopeCategory, a challenge key for ScopeChallenge.
type LeaderboardScope struct {
	Kind LeaderboardScopeKind `json:"kind"`
	Key  string               `json:"key,omitempty"`
}

// LeaderboardEntry is one row of a ranked view, derived from profile state.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	TotalPoints int64  `json:"total_points"`
	Level       int    `json:"level,omitempty"`
	StreakDays  int    `json:"streak_days,omitempty"`
	Completed   bool   `json:"completed,omitempty"` // challenge scope only
}
