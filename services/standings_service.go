package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/peladahub/pelada-system/live"
	"github.com/peladahub/pelada-system/models"
	"github.com/peladahub/pelada-system/repositories"
	"github.com/peladahub/pelada-system/standings"
)

// StandingsQuery narrows the computation to a season or a month. The zero
// value covers the whole history.
type StandingsQuery struct {
	Season string
	Year   int
	Month  int // 1..12, requires Year
}

func (q StandingsQuery) filter() (repositories.RoundFilter, error) {
	if q.Month != 0 {
		if q.Month < 1 || q.Month > 12 || q.Year == 0 {
			return repositories.RoundFilter{}, ErrInvalidMonth
		}
		from := time.Date(q.Year, time.Month(q.Month), 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(0, 1, -1)
		return repositories.RoundFilter{From: &from, To: &to}, nil
	}
	return repositories.RoundFilter{Season: q.Season}, nil
}

// Label names the period on exported reports.
func (q StandingsQuery) Label() string {
	switch {
	case q.Month != 0:
		return fmt.Sprintf("Classificacao %02d/%d", q.Month, q.Year)
	case q.Season != "":
		return "Classificacao " + q.Season
	default:
		return "Classificacao geral"
	}
}

type StandingsService interface {
	Compute(ctx context.Context, ownerID int, query StandingsQuery) (*models.StandingsTables, error)
	NotifyUpdated(ctx context.Context, ownerID int)
	NotifyRoundClosed(ctx context.Context, ownerID, roundID int, closed bool)
}

type standingsService struct {
	playerRepo repositories.PlayerRepository
	roundRepo  repositories.RoundRepository
	entryRepo  repositories.RoundEntryRepository
	calculator *standings.Calculator
	hub        *live.Hub
}

func NewStandingsService(
	playerRepo repositories.PlayerRepository,
	roundRepo repositories.RoundRepository,
	entryRepo repositories.RoundEntryRepository,
	calculator *standings.Calculator,
	hub *live.Hub,
) StandingsService {
	return &standingsService{
		playerRepo: playerRepo,
		roundRepo:  roundRepo,
		entryRepo:  entryRepo,
		calculator: calculator,
		hub:        hub,
	}
}

// Compute builds both classification tables for the requested period and
// annotates each row with its movement since the previous round of the same
// period.
func (s *standingsService) Compute(ctx context.Context, ownerID int, query StandingsQuery) (*models.StandingsTables, error) {
	filter, err := query.filter()
	if err != nil {
		return nil, err
	}

	var (
		roster  []*models.Player
		rounds  []*models.Round
		entries []*models.RoundEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var loadErr error
		roster, loadErr = s.playerRepo.ListByOwner(gctx, ownerID, false)
		return loadErr
	})
	g.Go(func() error {
		var loadErr error
		rounds, loadErr = s.roundRepo.List(gctx, ownerID, filter)
		return loadErr
	})
	g.Go(func() error {
		var loadErr error
		entries, loadErr = s.entryRepo.ListByOwner(gctx, ownerID, filter)
		return loadErr
	})
	if err = g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load standings inputs: %w", err)
	}

	byRound := make(map[int][]*models.RoundEntry, len(rounds))
	for _, entry := range entries {
		byRound[entry.RoundID] = append(byRound[entry.RoundID], entry)
	}
	for _, round := range rounds {
		round.Entries = byRound[round.ID]
	}

	players := make([]models.Player, len(roster))
	for i, p := range roster {
		players[i] = *p
	}

	tables, err := s.calculator.Compute(players, rounds)
	if err != nil {
		return nil, err
	}

	// Movement arrows compare against the same period without its last round.
	if len(rounds) > 1 {
		previous, prevErr := s.calculator.Compute(players, rounds[:len(rounds)-1])
		if prevErr != nil {
			return nil, prevErr
		}
		standings.ApplyRankDeltas(tables.FieldPlayers, previous.FieldPlayers)
		standings.ApplyRankDeltas(tables.Goalkeepers, previous.Goalkeepers)
	}

	return tables, nil
}

// NotifyUpdated recomputes the full-history tables and pushes them to the
// league's live viewers. Failures are swallowed: a missed push only delays
// the next refresh.
func (s *standingsService) NotifyUpdated(ctx context.Context, ownerID int) {
	if s.hub == nil {
		return
	}
	tables, err := s.Compute(ctx, ownerID, StandingsQuery{})
	if err != nil {
		return
	}
	room := strconv.Itoa(ownerID)
	s.hub.BroadcastToRoom(room, live.Message{
		Type:    live.EventStandingsUpdated,
		Payload: tables,
		RoomID:  room,
	})
}

// NotifyRoundClosed tells the league's live viewers a round was closed or
// reopened.
func (s *standingsService) NotifyRoundClosed(ctx context.Context, ownerID, roundID int, closed bool) {
	if s.hub == nil {
		return
	}
	room := strconv.Itoa(ownerID)
	s.hub.BroadcastToRoom(room, live.Message{
		Type:    live.EventRoundClosed,
		Payload: map[string]interface{}{"round_id": roundID, "closed": closed},
		RoomID:  room,
	})
}
