package models

// StandingRow is one line of a classification table. It is derived from the
// round history on every request and never persisted; the rounds are the
// source of truth.
type StandingRow struct {
	PlayerID      int        `json:"player_id"`
	Name          string     `json:"name"`
	Role          PlayerRole `json:"role"`
	GamesPlayed   int        `json:"games_played"`
	Wins          int        `json:"wins"`
	Draws         int        `json:"draws"`
	Losses        int        `json:"losses"`
	Points        int        `json:"points"`
	GoalsFor      int        `json:"goals_for"`
	GoalsAgainst  int        `json:"goals_against"`
	GoalDiff      int        `json:"goal_diff"`
	YellowCards   int        `json:"yellow_cards"`
	RedCards      int        `json:"red_cards"`
	PhotoBonuses  int        `json:"photo_bonuses"`
	DeflatedBalls int        `json:"deflated_balls"`
	Rank          int        `json:"rank"`
	// RankDelta is the movement against the same period without its last
	// round: positive means the player climbed. Nil for a first appearance.
	RankDelta *int `json:"rank_delta,omitempty"`
}

// StandingsTables carries the two classification tables of a league.
type StandingsTables struct {
	FieldPlayers []StandingRow `json:"field_players"`
	Goalkeepers  []StandingRow `json:"goalkeepers"`
}
