package models

import "time"

// Round is one recorded match session. Once closed it is part of the
// append-only history and rejects mutation.
type Round struct {
	ID        int       `json:"id"`
	OwnerID   int       `json:"-"`
	Date      time.Time `json:"date"`
	Season    string    `json:"season"`
	Label     string    `json:"label"` // chronological label, e.g. "3ª Rodada"
	Closed    bool      `json:"closed"`
	CreatedAt time.Time `json:"created_at"`

	// Loaded by the service layer when the full round is requested.
	Teams   []*RoundTeam  `json:"teams,omitempty"`
	Entries []*RoundEntry `json:"entries,omitempty"`
}

// RoundTeam is a side drawn for one round. Wins/draws/losses count the
// mini-matches the side played within the session.
type RoundTeam struct {
	ID           int    `json:"id"`
	RoundID      int    `json:"round_id"`
	Name         string `json:"name"`
	Wins         int    `json:"wins"`
	Draws        int    `json:"draws"`
	Losses       int    `json:"losses"`
	GoalsFor     int    `json:"goals_for"`
	GoalsAgainst int    `json:"goals_against"`
	Points       int    `json:"points"`
}

// RoundEntry is one player's record for one round. Team results are
// propagated onto entries without IndividualOverride; goalkeepers usually
// carry an override with results of their own.
type RoundEntry struct {
	ID                 int  `json:"id"`
	RoundID            int  `json:"round_id"`
	PlayerID           int  `json:"player_id"`
	TeamID             *int `json:"team_id,omitempty"`
	Present            bool `json:"present"`
	Wins               int  `json:"wins"`
	Draws              int  `json:"draws"`
	Losses             int  `json:"losses"`
	GoalsFor           int  `json:"goals_for"`
	GoalsAgainst       int  `json:"goals_against"`
	Points             int  `json:"points"`
	YellowCards        int  `json:"yellow_cards"`
	RedCards           int  `json:"red_cards"`
	PhotoBonus         bool `json:"photo_bonus"`
	DeflatedBall       bool `json:"deflated_ball"`
	IndividualOverride bool `json:"individual_override"`
}
