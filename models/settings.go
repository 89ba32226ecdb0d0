package models

// LeagueSettings are the per-owner knobs of a league. Fees feed the cash
// summaries, UseCards toggles the card columns, PlayersPerTeamLine drives the
// team draw.
type LeagueSettings struct {
	OwnerID            int     `json:"-"`
	LeagueName         string  `json:"league_name"`
	Location           string  `json:"location"`
	PixKey             string  `json:"pix_key"`
	MonthlyFee         float64 `json:"monthly_fee"`
	WalkInFee          float64 `json:"walkin_fee"`
	CourtRent          float64 `json:"court_rent"`
	RefereeFee         float64 `json:"referee_fee"`
	HasReferee         bool    `json:"has_referee"`
	UseCards           bool    `json:"use_cards"`
	YellowCardFee      float64 `json:"yellow_card_fee"`
	RedCardFee         float64 `json:"red_card_fee"`
	PlayersPerTeamLine int     `json:"players_per_team_line"`
}

// DefaultLeagueSettings mirrors the defaults seeded for a fresh league.
func DefaultLeagueSettings(ownerID int) *LeagueSettings {
	return &LeagueSettings{
		OwnerID:            ownerID,
		LeagueName:         "Pelada",
		UseCards:           true,
		PlayersPerTeamLine: 5,
	}
}
