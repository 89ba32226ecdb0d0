package standings

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/peladahub/pelada-system/models"
)

func fieldPlayer(id int, name string) models.Player {
	return models.Player{ID: id, Name: name, Role: models.RoleField, Active: true}
}

func entry(playerID, wins, draws, losses, gf, ga int) *models.RoundEntry {
	return &models.RoundEntry{
		PlayerID:     playerID,
		Present:      true,
		Wins:         wins,
		Draws:        draws,
		Losses:       losses,
		GoalsFor:     gf,
		GoalsAgainst: ga,
	}
}

func round(id int, entries ...*models.RoundEntry) *models.Round {
	return &models.Round{ID: id, Date: time.Date(2025, 1, id, 0, 0, 0, 0, time.UTC), Entries: entries}
}

func TestComputeScenario(t *testing.T) {
	// Round 1: A beats B 2-1. Round 2: A draws C 0-0.
	roster := []models.Player{fieldPlayer(1, "A"), fieldPlayer(2, "B"), fieldPlayer(3, "C")}
	rounds := []*models.Round{
		round(1, entry(1, 1, 0, 0, 2, 1), entry(2, 0, 0, 1, 1, 2)),
		round(2, entry(1, 0, 1, 0, 0, 0), entry(3, 0, 1, 0, 0, 0)),
	}

	tables, err := NewCalculator(ThreeOneZero).Compute(roster, rounds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tables.FieldPlayers) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(tables.FieldPlayers))
	}

	tests := []struct {
		pos    int
		name   string
		games  int
		points int
		gd     int
	}{
		{pos: 0, name: "A", games: 2, points: 4, gd: 1},
		{pos: 1, name: "C", games: 1, points: 1, gd: 0},
		{pos: 2, name: "B", games: 1, points: 0, gd: -1},
	}
	for _, tc := range tests {
		row := tables.FieldPlayers[tc.pos]
		if row.Name != tc.name {
			t.Errorf("position %d: expected %s, got %s", tc.pos+1, tc.name, row.Name)
		}
		if row.GamesPlayed != tc.games || row.Points != tc.points || row.GoalDiff != tc.gd {
			t.Errorf("%s: got games=%d points=%d gd=%d, want games=%d points=%d gd=%d",
				tc.name, row.GamesPlayed, row.Points, row.GoalDiff, tc.games, tc.points, tc.gd)
		}
		if row.Rank != tc.pos+1 {
			t.Errorf("%s: expected rank %d, got %d", tc.name, tc.pos+1, row.Rank)
		}
	}
}

func TestComputeDeterminism(t *testing.T) {
	roster := []models.Player{fieldPlayer(1, "A"), fieldPlayer(2, "B"), fieldPlayer(3, "C")}
	rounds := []*models.Round{
		round(1, entry(3, 1, 0, 0, 3, 0), entry(1, 0, 1, 1, 2, 2), entry(2, 0, 1, 1, 2, 2)),
		round(2, entry(2, 2, 0, 0, 4, 1), entry(3, 0, 0, 2, 1, 4)),
	}
	calc := NewCalculator(ThreeOneZero)

	first, err := calc.Compute(roster, rounds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := calc.Compute(roster, rounds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("recomputing the same history produced different tables:\n%+v\n%+v", first, second)
	}
}

func TestComputeTieBreakByPlayerID(t *testing.T) {
	// Identical records: only the player ID separates them, regardless of
	// roster or entry order.
	roster := []models.Player{fieldPlayer(7, "Late"), fieldPlayer(2, "Early")}
	rounds := []*models.Round{
		round(1, entry(7, 1, 0, 0, 2, 1), entry(2, 1, 0, 0, 2, 1)),
	}

	tables, err := NewCalculator(ThreeOneZero).Compute(roster, rounds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tables.FieldPlayers[0].PlayerID != 2 || tables.FieldPlayers[1].PlayerID != 7 {
		t.Errorf("expected order [2 7], got [%d %d]",
			tables.FieldPlayers[0].PlayerID, tables.FieldPlayers[1].PlayerID)
	}
}

func TestComputeCardTieBreak(t *testing.T) {
	roster := []models.Player{fieldPlayer(1, "Clean"), fieldPlayer(2, "Booked")}
	e1 := entry(1, 1, 0, 0, 1, 0)
	e2 := entry(2, 1, 0, 0, 1, 0)
	e2.YellowCards = 2
	// Player 2 would win the ID tie-break, but carries cards.
	tables, err := NewCalculator(ThreeOneZero).Compute(roster, []*models.Round{round(1, e2, e1)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tables.FieldPlayers[0].Name != "Clean" {
		t.Errorf("expected the player with fewer cards first, got %s", tables.FieldPlayers[0].Name)
	}
}

func TestComputeOmitsPlayersWithoutGames(t *testing.T) {
	roster := []models.Player{fieldPlayer(1, "A"), fieldPlayer(2, "Ghost")}
	rounds := []*models.Round{round(1, entry(1, 1, 0, 0, 1, 0))}

	tables, err := NewCalculator(ThreeOneZero).Compute(roster, rounds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tables.FieldPlayers) != 1 {
		t.Fatalf("expected 1 row, got %d", len(tables.FieldPlayers))
	}
	if tables.FieldPlayers[0].Name != "A" {
		t.Errorf("expected only A in the table, got %s", tables.FieldPlayers[0].Name)
	}
}

func TestComputeSplitsGoalkeepers(t *testing.T) {
	gk := models.Player{ID: 9, Name: "Luva", Role: models.RoleGoalkeeper, Active: true}
	roster := []models.Player{fieldPlayer(1, "A"), gk}
	rounds := []*models.Round{
		round(1, entry(1, 1, 0, 0, 2, 0), entry(9, 0, 1, 1, 1, 3)),
	}

	tables, err := NewCalculator(ThreeOneZero).Compute(roster, rounds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tables.FieldPlayers) != 1 || len(tables.Goalkeepers) != 1 {
		t.Fatalf("expected 1 field row and 1 goalkeeper row, got %d and %d",
			len(tables.FieldPlayers), len(tables.Goalkeepers))
	}
	if tables.Goalkeepers[0].Points != 1 {
		t.Errorf("goalkeepers share the scoring rule: expected 1 point, got %d", tables.Goalkeepers[0].Points)
	}
}

func TestComputeUnknownPlayer(t *testing.T) {
	roster := []models.Player{fieldPlayer(1, "A")}
	rounds := []*models.Round{round(4, entry(99, 1, 0, 0, 1, 0))}

	_, err := NewCalculator(ThreeOneZero).Compute(roster, rounds)
	var invalid *ErrInvalidRoundData
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidRoundData, got %v", err)
	}
	if invalid.RoundID != 4 || invalid.PlayerID != 99 {
		t.Errorf("expected round 4 / player 99, got round %d / player %d", invalid.RoundID, invalid.PlayerID)
	}
}

func TestComputeEmptyHistory(t *testing.T) {
	tables, err := NewCalculator(ThreeOneZero).Compute([]models.Player{fieldPlayer(1, "A")}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tables.FieldPlayers) != 0 || len(tables.Goalkeepers) != 0 {
		t.Errorf("expected empty tables, got %d/%d rows", len(tables.FieldPlayers), len(tables.Goalkeepers))
	}
}

func TestApplyRankDeltas(t *testing.T) {
	current := []models.StandingRow{
		{PlayerID: 1, Rank: 1},
		{PlayerID: 2, Rank: 2},
		{PlayerID: 3, Rank: 3},
	}
	previous := []models.StandingRow{
		{PlayerID: 2, Rank: 1},
		{PlayerID: 1, Rank: 2},
	}
	ApplyRankDeltas(current, previous)

	if current[0].RankDelta == nil || *current[0].RankDelta != 1 {
		t.Errorf("player 1 should have climbed one spot")
	}
	if current[1].RankDelta == nil || *current[1].RankDelta != -1 {
		t.Errorf("player 2 should have dropped one spot")
	}
	if current[2].RankDelta != nil {
		t.Errorf("player 3 is new and should have no delta")
	}
}
