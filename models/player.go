package models

import (
	"strings"
	"time"
)

type PlayerRole string

const (
	RoleField      PlayerRole = "field"
	RoleGoalkeeper PlayerRole = "goalkeeper"
)

type PlayerPlan string

const (
	PlanMonthly PlayerPlan = "monthly"
	PlanWalkIn  PlayerPlan = "walkin"
)

// Position is the on-pitch position as entered on the registration sheet.
// "GOL" implies RoleGoalkeeper, everything else is a field player.
type Position string

const (
	PositionForward    Position = "ATA"
	PositionMidfielder Position = "MEIA"
	PositionDefender   Position = "ZAG"
	PositionGoalkeeper Position = "GOL"
)

type Player struct {
	ID        int        `json:"id"`
	OwnerID   int        `json:"-"`
	Name      string     `json:"name"`
	Nickname  string     `json:"nickname"`
	Position  Position   `json:"position"`
	Role      PlayerRole `json:"role"`
	Plan      PlayerPlan `json:"plan"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
}

// DisplayName prefers the nickname, falling back to the full name.
func (p *Player) DisplayName() string {
	if strings.TrimSpace(p.Nickname) != "" {
		return p.Nickname
	}
	return p.Name
}

// ParsePosition normalizes a position label from a form or spreadsheet cell.
// Unknown labels default to forward, matching the registration sheet behavior.
func ParsePosition(s string) Position {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "GOL", "GK", "GOLEIRO":
		return PositionGoalkeeper
	case "ZAG", "ZAGUEIRO", "DEF":
		return PositionDefender
	case "MEIA", "MEI", "MID":
		return PositionMidfielder
	default:
		return PositionForward
	}
}

// RoleForPosition derives the player role from the position.
func RoleForPosition(pos Position) PlayerRole {
	if pos == PositionGoalkeeper {
		return RoleGoalkeeper
	}
	return RoleField
}

// ParsePlan normalizes a plan label. Unknown labels default to monthly,
// matching the registration sheet behavior.
func ParsePlan(s string) PlayerPlan {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "avulso", "walkin", "walk-in":
		return PlanWalkIn
	default:
		return PlanMonthly
	}
}
