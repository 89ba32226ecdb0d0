package standings

import (
	"fmt"
	"sort"

	"github.com/peladahub/pelada-system/models"
)

// ErrInvalidRoundData reports a round entry referencing a player that is not
// in the roster. The computation is aborted; stored history is untouched.
type ErrInvalidRoundData struct {
	RoundID  int
	PlayerID int
}

func (e *ErrInvalidRoundData) Error() string {
	return fmt.Sprintf("round %d references unknown player %d", e.RoundID, e.PlayerID)
}

// ScoringRule holds the point weights applied per recorded result.
type ScoringRule struct {
	Name       string
	WinPoints  int
	DrawPoints int
	LossPoints int
}

// ThreeOneZero is the league default: win=3, draw=1, loss=0. Goalkeepers are
// scored with the same rule as field players.
var ThreeOneZero = ScoringRule{Name: "three-one-zero", WinPoints: 3, DrawPoints: 1, LossPoints: 0}

// Points applies the rule to a win/draw/loss record.
func (r ScoringRule) Points(wins, draws, losses int) int {
	return wins*r.WinPoints + draws*r.DrawPoints + losses*r.LossPoints
}

// Calculator derives classification tables from the full round history.
// It keeps no state between calls: every computation is a pure function of
// its inputs, so two calls over the same history yield identical tables.
type Calculator struct {
	rule ScoringRule
}

func NewCalculator(rule ScoringRule) *Calculator {
	return &Calculator{rule: rule}
}

// Compute accumulates every player's record across the given rounds and
// returns the field-player and goalkeeper tables, each ranked.
//
// Ordering: points desc, goal difference desc, goals for desc, fewer cards
// (yellow+red), player ID asc. The final key makes the order total and
// independent of input order.
//
// Players with zero recorded presences are omitted. An empty history yields
// empty tables rather than an error.
func (c *Calculator) Compute(roster []models.Player, rounds []*models.Round) (*models.StandingsTables, error) {
	players := make(map[int]*models.Player, len(roster))
	for i := range roster {
		players[roster[i].ID] = &roster[i]
	}

	acc := make(map[int]*models.StandingRow, len(roster))
	for _, round := range rounds {
		for _, entry := range round.Entries {
			p, ok := players[entry.PlayerID]
			if !ok {
				return nil, &ErrInvalidRoundData{RoundID: round.ID, PlayerID: entry.PlayerID}
			}
			if !entry.Present {
				continue
			}
			row, ok := acc[entry.PlayerID]
			if !ok {
				row = &models.StandingRow{
					PlayerID: p.ID,
					Name:     p.DisplayName(),
					Role:     p.Role,
				}
				acc[entry.PlayerID] = row
			}
			row.GamesPlayed++
			row.Wins += entry.Wins
			row.Draws += entry.Draws
			row.Losses += entry.Losses
			row.GoalsFor += entry.GoalsFor
			row.GoalsAgainst += entry.GoalsAgainst
			row.YellowCards += entry.YellowCards
			row.RedCards += entry.RedCards
			if entry.PhotoBonus {
				row.PhotoBonuses++
			}
			if entry.DeflatedBall {
				row.DeflatedBalls++
			}
		}
	}

	tables := &models.StandingsTables{
		FieldPlayers: make([]models.StandingRow, 0, len(acc)),
		Goalkeepers:  make([]models.StandingRow, 0),
	}
	for _, row := range acc {
		row.Points = c.rule.Points(row.Wins, row.Draws, row.Losses)
		row.GoalDiff = row.GoalsFor - row.GoalsAgainst
		if row.Role == models.RoleGoalkeeper {
			tables.Goalkeepers = append(tables.Goalkeepers, *row)
		} else {
			tables.FieldPlayers = append(tables.FieldPlayers, *row)
		}
	}

	rank(tables.FieldPlayers)
	rank(tables.Goalkeepers)
	return tables, nil
}

func rank(rows []models.StandingRow) {
	sort.Slice(rows, func(i, j int) bool {
		return less(&rows[i], &rows[j])
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
}

func less(a, b *models.StandingRow) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	if a.GoalDiff != b.GoalDiff {
		return a.GoalDiff > b.GoalDiff
	}
	if a.GoalsFor != b.GoalsFor {
		return a.GoalsFor > b.GoalsFor
	}
	aCards, bCards := a.YellowCards+a.RedCards, b.YellowCards+b.RedCards
	if aCards != bCards {
		return aCards < bCards
	}
	return a.PlayerID < b.PlayerID
}

// ApplyRankDeltas annotates current rows with their movement against a
// previous table of the same kind. Rows absent from the previous table keep
// a nil delta.
func ApplyRankDeltas(current, previous []models.StandingRow) {
	prevRank := make(map[int]int, len(previous))
	for _, row := range previous {
		prevRank[row.PlayerID] = row.Rank
	}
	for i := range current {
		if prev, ok := prevRank[current[i].PlayerID]; ok {
			d := prev - current[i].Rank
			current[i].RankDelta = &d
		}
	}
}
