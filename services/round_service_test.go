package services

import (
	"context"
	"errors"
	"testing"

	"github.com/peladahub/pelada-system/models"
	"github.com/peladahub/pelada-system/repositories"
	"github.com/peladahub/pelada-system/standings"
)

// stubRoundRepo serves a single fixed round and records CloseAll calls.
type stubRoundRepo struct {
	repositories.RoundRepository
	round     *models.Round
	rounds    []*models.Round
	closedAll bool
}

func (f *stubRoundRepo) GetByID(ctx context.Context, ownerID, roundID int) (*models.Round, error) {
	if f.round != nil && f.round.OwnerID == ownerID && f.round.ID == roundID {
		return f.round, nil
	}
	return nil, repositories.ErrRoundNotFound
}

func (f *stubRoundRepo) List(ctx context.Context, ownerID int, filter repositories.RoundFilter) ([]*models.Round, error) {
	return f.rounds, nil
}

func (f *stubRoundRepo) CloseAll(ctx context.Context, ownerID int) error {
	f.closedAll = true
	return nil
}

type stubPlayerRepo struct {
	repositories.PlayerRepository
	players map[int]*models.Player
}

func (f *stubPlayerRepo) GetByID(ctx context.Context, ownerID, id int) (*models.Player, error) {
	if p, ok := f.players[id]; ok && p.OwnerID == ownerID {
		return p, nil
	}
	return nil, repositories.ErrPlayerNotFound
}

// recordingEntryRepo records which players were written to round entries.
type recordingEntryRepo struct {
	repositories.RoundEntryRepository
	linked     []int
	carded     []int
	overridden []int
}

func (f *recordingEntryRepo) LinkPlayer(ctx context.Context, exec repositories.SQLExecutor, roundID, playerID int, teamID *int) error {
	f.linked = append(f.linked, playerID)
	return nil
}

func (f *recordingEntryRepo) SetCards(ctx context.Context, exec repositories.SQLExecutor, roundID, playerID, yellow, red int) error {
	f.carded = append(f.carded, playerID)
	return nil
}

func (f *recordingEntryRepo) SetOverride(ctx context.Context, exec repositories.SQLExecutor, entry *models.RoundEntry) error {
	f.overridden = append(f.overridden, entry.PlayerID)
	return nil
}

// A player ID from another league must never end up in a round entry: the
// entry would outlive the request and every later standings computation for
// this league would fail on the unknown player.
func TestRoundMutationsRejectForeignPlayer(t *testing.T) {
	rounds := &stubRoundRepo{round: &models.Round{ID: 10, OwnerID: 1}}
	players := &stubPlayerRepo{players: map[int]*models.Player{
		5: {ID: 5, OwnerID: 1, Name: "Zico"},
		6: {ID: 6, OwnerID: 2, Name: "Renato"},
	}}
	entries := &recordingEntryRepo{}
	svc := NewRoundService(nil, rounds, nil, entries, players, standings.ThreeOneZero)
	ctx := context.Background()

	if err := svc.AssignPlayer(ctx, 1, 10, 6, ""); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("AssignPlayer foreign player: err = %v, want ErrPlayerNotFound", err)
	}
	if err := svc.SetCards(ctx, 1, 10, 6, 1, 0); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("SetCards foreign player: err = %v, want ErrPlayerNotFound", err)
	}
	if err := svc.SetIndividualResult(ctx, 1, 10, 6, TeamResultInput{Wins: 1}); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("SetIndividualResult foreign player: err = %v, want ErrPlayerNotFound", err)
	}
	if len(entries.linked)+len(entries.carded)+len(entries.overridden) != 0 {
		t.Fatalf("foreign player reached the entry repository: %+v", entries)
	}

	if err := svc.AssignPlayer(ctx, 1, 10, 5, ""); err != nil {
		t.Fatalf("AssignPlayer own player: %v", err)
	}
	if len(entries.linked) != 1 || entries.linked[0] != 5 {
		t.Errorf("linked = %v, want [5]", entries.linked)
	}
}

func TestRecalculateAllClosesRounds(t *testing.T) {
	ctx := context.Background()

	repo := &stubRoundRepo{}
	svc := NewRoundService(nil, repo, nil, nil, nil, standings.ThreeOneZero)
	if err := svc.RecalculateAll(ctx, 1, false); err != nil {
		t.Fatalf("RecalculateAll: %v", err)
	}
	if repo.closedAll {
		t.Error("rounds closed without close_all")
	}

	if err := svc.RecalculateAll(ctx, 1, true); err != nil {
		t.Fatalf("RecalculateAll close_all: %v", err)
	}
	if !repo.closedAll {
		t.Error("close_all did not close the rounds")
	}
}

func TestBonusTeams(t *testing.T) {
	team := func(id, points int) *models.RoundTeam {
		return &models.RoundTeam{ID: id, Points: points}
	}

	tests := []struct {
		name         string
		teams        []*models.RoundTeam
		wantPhoto    int // 0 means none
		wantDeflated int
	}{
		{
			name:         "clear winner and loser",
			teams:        []*models.RoundTeam{team(1, 9), team(2, 4), team(3, 1)},
			wantPhoto:    1,
			wantDeflated: 3,
		},
		{
			name:         "tied top awards no photo",
			teams:        []*models.RoundTeam{team(1, 9), team(2, 9), team(3, 1)},
			wantPhoto:    0,
			wantDeflated: 3,
		},
		{
			name:         "tied bottom awards no deflated ball",
			teams:        []*models.RoundTeam{team(1, 9), team(2, 1), team(3, 1)},
			wantPhoto:    1,
			wantDeflated: 0,
		},
		{
			name:         "all tied awards nothing",
			teams:        []*models.RoundTeam{team(1, 3), team(2, 3), team(3, 3)},
			wantPhoto:    0,
			wantDeflated: 0,
		},
		{
			name:         "single team awards nothing",
			teams:        []*models.RoundTeam{team(1, 9)},
			wantPhoto:    0,
			wantDeflated: 0,
		},
		{
			name:         "no teams",
			teams:        nil,
			wantPhoto:    0,
			wantDeflated: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			photo, deflated := bonusTeams(tt.teams)

			gotPhoto := 0
			if photo != nil {
				gotPhoto = *photo
			}
			gotDeflated := 0
			if deflated != nil {
				gotDeflated = *deflated
			}

			if gotPhoto != tt.wantPhoto {
				t.Errorf("photo team = %d, want %d", gotPhoto, tt.wantPhoto)
			}
			if gotDeflated != tt.wantDeflated {
				t.Errorf("deflated team = %d, want %d", gotDeflated, tt.wantDeflated)
			}
		})
	}
}
