package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/peladahub/pelada-system/models"
	"github.com/peladahub/pelada-system/repositories"
	"github.com/peladahub/pelada-system/standings"
)

type RoundService interface {
	Open(ctx context.Context, ownerID int, input RoundInput) (*models.Round, error)
	GetByID(ctx context.Context, ownerID, roundID int) (*models.Round, error)
	List(ctx context.Context, ownerID int, filter repositories.RoundFilter) ([]*models.Round, error)
	ListSeasons(ctx context.Context, ownerID int) ([]string, error)
	SetTeams(ctx context.Context, ownerID, roundID int, names []string) (*models.Round, error)
	AssignPlayer(ctx context.Context, ownerID, roundID, playerID int, teamName string) error
	RemovePlayer(ctx context.Context, ownerID, roundID, playerID int) error
	SetCards(ctx context.Context, ownerID, roundID, playerID, yellow, red int) error
	SetTeamResult(ctx context.Context, ownerID, roundID, teamID int, result TeamResultInput) error
	SetIndividualResult(ctx context.Context, ownerID, roundID, playerID int, result TeamResultInput) error
	ResetCards(ctx context.Context, ownerID, roundID int) error
	Recalculate(ctx context.Context, ownerID, roundID int) (*models.Round, error)
	RecalculateAll(ctx context.Context, ownerID int, closeAll bool) error
	Close(ctx context.Context, ownerID, roundID int, closed bool) error
	Delete(ctx context.Context, ownerID, roundID int) error
}

type RoundInput struct {
	Date   time.Time `json:"date"`
	Season string    `json:"season"`
}

type TeamResultInput struct {
	Wins         int `json:"wins"`
	Draws        int `json:"draws"`
	Losses       int `json:"losses"`
	GoalsFor     int `json:"goals_for"`
	GoalsAgainst int `json:"goals_against"`
}

type roundService struct {
	db         *sql.DB
	roundRepo  repositories.RoundRepository
	teamRepo   repositories.RoundTeamRepository
	entryRepo  repositories.RoundEntryRepository
	playerRepo repositories.PlayerRepository
	rule       standings.ScoringRule
}

func NewRoundService(
	db *sql.DB,
	roundRepo repositories.RoundRepository,
	teamRepo repositories.RoundTeamRepository,
	entryRepo repositories.RoundEntryRepository,
	playerRepo repositories.PlayerRepository,
	rule standings.ScoringRule,
) RoundService {
	return &roundService{
		db:         db,
		roundRepo:  roundRepo,
		teamRepo:   teamRepo,
		entryRepo:  entryRepo,
		playerRepo: playerRepo,
		rule:       rule,
	}
}

// Open returns the round for the given date, creating it when the date is
// new. Labels are positional and reassigned across the season afterwards.
func (s *roundService) Open(ctx context.Context, ownerID int, input RoundInput) (*models.Round, error) {
	if input.Date.IsZero() {
		return nil, ErrValidationFailed
	}
	input.Date = input.Date.Truncate(24 * time.Hour)
	if input.Season == "" {
		input.Season = fmt.Sprintf("%d", input.Date.Year())
	}

	existing, err := s.roundRepo.GetByDate(ctx, ownerID, input.Date)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repositories.ErrRoundNotFound) {
		return nil, fmt.Errorf("failed to look up round by date: %w", err)
	}

	round := &models.Round{
		OwnerID: ownerID,
		Date:    input.Date,
		Season:  input.Season,
	}
	if err = s.roundRepo.Create(ctx, nil, round); err != nil {
		if errors.Is(err, repositories.ErrRoundDateConflict) {
			return nil, ErrRoundDateTaken
		}
		return nil, fmt.Errorf("failed to create round: %w", err)
	}

	if err = s.relabelSeason(ctx, ownerID, round.Season); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, ownerID, round.ID)
}

func (s *roundService) GetByID(ctx context.Context, ownerID, roundID int) (*models.Round, error) {
	round, err := s.roundRepo.GetByID(ctx, ownerID, roundID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return nil, ErrRoundNotFound
		}
		return nil, fmt.Errorf("failed to get round: %w", err)
	}

	round.Teams, err = s.teamRepo.ListByRound(ctx, nil, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to load round teams: %w", err)
	}
	round.Entries, err = s.entryRepo.ListByRound(ctx, nil, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to load round entries: %w", err)
	}
	return round, nil
}

func (s *roundService) List(ctx context.Context, ownerID int, filter repositories.RoundFilter) ([]*models.Round, error) {
	rounds, err := s.roundRepo.List(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	return rounds, nil
}

func (s *roundService) ListSeasons(ctx context.Context, ownerID int) ([]string, error) {
	seasons, err := s.roundRepo.ListSeasons(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list seasons: %w", err)
	}
	return seasons, nil
}

// SetTeams replaces the team line-up of an open round. Entries linked to a
// removed team keep their presence but lose the team assignment.
func (s *roundService) SetTeams(ctx context.Context, ownerID, roundID int, names []string) (*models.Round, error) {
	round, err := s.writableRound(ctx, ownerID, roundID)
	if err != nil {
		return nil, err
	}

	cleaned := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, ErrTeamNameRequired
		}
		cleaned = append(cleaned, name)
	}

	err = s.inTransaction(ctx, func(tx *sql.Tx) error {
		existing, txErr := s.teamRepo.ListByRound(ctx, tx, roundID)
		if txErr != nil {
			return txErr
		}

		keep := make(map[string]bool, len(cleaned))
		for _, name := range cleaned {
			keep[name] = true
			if _, txErr = s.teamRepo.GetOrCreate(ctx, tx, roundID, name); txErr != nil {
				return txErr
			}
		}

		for _, team := range existing {
			if keep[team.Name] {
				continue
			}
			if _, txErr = tx.ExecContext(ctx,
				`UPDATE round_entries SET team_id = NULL WHERE round_id = $1 AND team_id = $2`,
				roundID, team.ID); txErr != nil {
				return txErr
			}
			if _, txErr = tx.ExecContext(ctx,
				`DELETE FROM round_teams WHERE id = $1`, team.ID); txErr != nil {
				return txErr
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set round teams: %w", err)
	}
	return s.GetByID(ctx, ownerID, round.ID)
}

func (s *roundService) AssignPlayer(ctx context.Context, ownerID, roundID, playerID int, teamName string) error {
	if _, err := s.writableRound(ctx, ownerID, roundID); err != nil {
		return err
	}
	if err := s.ownedPlayer(ctx, ownerID, playerID); err != nil {
		return err
	}

	var teamID *int
	if strings.TrimSpace(teamName) != "" {
		team, err := s.teamRepo.GetOrCreate(ctx, nil, roundID, strings.TrimSpace(teamName))
		if err != nil {
			return fmt.Errorf("failed to resolve team: %w", err)
		}
		teamID = &team.ID
	}

	if err := s.entryRepo.LinkPlayer(ctx, nil, roundID, playerID, teamID); err != nil {
		if errors.Is(err, repositories.ErrRoundEntryUnknownPlayer) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to link player to round: %w", err)
	}
	return nil
}

func (s *roundService) RemovePlayer(ctx context.Context, ownerID, roundID, playerID int) error {
	if _, err := s.writableRound(ctx, ownerID, roundID); err != nil {
		return err
	}
	if err := s.entryRepo.Unlink(ctx, nil, roundID, playerID); err != nil {
		if errors.Is(err, repositories.ErrRoundEntryNotFound) {
			return ErrUnknownRoundEntry
		}
		return fmt.Errorf("failed to unlink player from round: %w", err)
	}
	return nil
}

func (s *roundService) SetCards(ctx context.Context, ownerID, roundID, playerID, yellow, red int) error {
	if yellow < 0 || red < 0 {
		return ErrNegativeResult
	}
	if _, err := s.writableRound(ctx, ownerID, roundID); err != nil {
		return err
	}
	if err := s.ownedPlayer(ctx, ownerID, playerID); err != nil {
		return err
	}
	if err := s.entryRepo.SetCards(ctx, nil, roundID, playerID, yellow, red); err != nil {
		if errors.Is(err, repositories.ErrRoundEntryUnknownPlayer) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to set cards: %w", err)
	}
	return nil
}

// SetTeamResult records the aggregate result of one team for the day and
// triggers a recalculation of the round.
func (s *roundService) SetTeamResult(ctx context.Context, ownerID, roundID, teamID int, result TeamResultInput) error {
	if result.Wins < 0 || result.Draws < 0 || result.Losses < 0 || result.GoalsFor < 0 || result.GoalsAgainst < 0 {
		return ErrNegativeResult
	}
	if _, err := s.writableRound(ctx, ownerID, roundID); err != nil {
		return err
	}

	teams, err := s.teamRepo.ListByRound(ctx, nil, roundID)
	if err != nil {
		return fmt.Errorf("failed to load round teams: %w", err)
	}
	var team *models.RoundTeam
	for _, t := range teams {
		if t.ID == teamID {
			team = t
			break
		}
	}
	if team == nil {
		return ErrTeamNotFound
	}

	team.Wins = result.Wins
	team.Draws = result.Draws
	team.Losses = result.Losses
	team.GoalsFor = result.GoalsFor
	team.GoalsAgainst = result.GoalsAgainst
	team.Points = s.rule.Points(result.Wins, result.Draws, result.Losses)

	if err = s.teamRepo.Update(ctx, nil, team); err != nil {
		return fmt.Errorf("failed to update team result: %w", err)
	}

	_, err = s.Recalculate(ctx, ownerID, roundID)
	return err
}

// SetIndividualResult hand-enters a player's own result for the round,
// detaching them from the team propagation. Used for goalkeepers who rotate
// between teams during the day.
func (s *roundService) SetIndividualResult(ctx context.Context, ownerID, roundID, playerID int, result TeamResultInput) error {
	if result.Wins < 0 || result.Draws < 0 || result.Losses < 0 || result.GoalsFor < 0 || result.GoalsAgainst < 0 {
		return ErrNegativeResult
	}
	if _, err := s.writableRound(ctx, ownerID, roundID); err != nil {
		return err
	}
	if err := s.ownedPlayer(ctx, ownerID, playerID); err != nil {
		return err
	}

	entry := &models.RoundEntry{
		RoundID:      roundID,
		PlayerID:     playerID,
		Wins:         result.Wins,
		Draws:        result.Draws,
		Losses:       result.Losses,
		GoalsFor:     result.GoalsFor,
		GoalsAgainst: result.GoalsAgainst,
		Points:       s.rule.Points(result.Wins, result.Draws, result.Losses),
	}
	if err := s.entryRepo.SetOverride(ctx, nil, entry); err != nil {
		if errors.Is(err, repositories.ErrRoundEntryUnknownPlayer) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to set individual result: %w", err)
	}
	return nil
}

// Recalculate pushes team results down to the linked entries and reassigns
// the photo bonus and deflated ball flags. Entries with an individual
// override keep their hand-entered numbers. Everything runs in a single
// transaction so a half-applied recalculation is never visible.
func (s *roundService) Recalculate(ctx context.Context, ownerID, roundID int) (*models.Round, error) {
	round, err := s.roundRepo.GetByID(ctx, ownerID, roundID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return nil, ErrRoundNotFound
		}
		return nil, fmt.Errorf("failed to get round: %w", err)
	}

	err = s.inTransaction(ctx, func(tx *sql.Tx) error {
		teams, txErr := s.teamRepo.ListByRound(ctx, tx, roundID)
		if txErr != nil {
			return txErr
		}
		teamsByID := make(map[int]*models.RoundTeam, len(teams))
		for _, team := range teams {
			teamsByID[team.ID] = team
		}

		entries, txErr := s.entryRepo.ListByRound(ctx, tx, roundID)
		if txErr != nil {
			return txErr
		}

		for _, entry := range entries {
			if entry.IndividualOverride || entry.TeamID == nil {
				continue
			}
			team, ok := teamsByID[*entry.TeamID]
			if !ok {
				continue
			}
			entry.Wins = team.Wins
			entry.Draws = team.Draws
			entry.Losses = team.Losses
			entry.GoalsFor = team.GoalsFor
			entry.GoalsAgainst = team.GoalsAgainst
			entry.Points = team.Points
			if txErr = s.entryRepo.Update(ctx, tx, entry); txErr != nil {
				return txErr
			}
		}

		if txErr = s.entryRepo.ClearBonusFlags(ctx, tx, roundID); txErr != nil {
			return txErr
		}
		photoTeamID, deflatedTeamID := bonusTeams(teams)
		return s.entryRepo.SetBonusFlags(ctx, tx, roundID, photoTeamID, deflatedTeamID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to recalculate round: %w", err)
	}
	return s.GetByID(ctx, ownerID, round.ID)
}

// ResetCards zeroes every entry's card counts in the round, ahead of a
// sheet re-import that carries the authoritative numbers.
func (s *roundService) ResetCards(ctx context.Context, ownerID, roundID int) error {
	if _, err := s.writableRound(ctx, ownerID, roundID); err != nil {
		return err
	}
	if err := s.entryRepo.ResetCards(ctx, nil, roundID); err != nil {
		return fmt.Errorf("failed to reset cards: %w", err)
	}
	return nil
}

// RecalculateAll reruns the result propagation over the whole history,
// optionally closing every round afterwards.
func (s *roundService) RecalculateAll(ctx context.Context, ownerID int, closeAll bool) error {
	rounds, err := s.roundRepo.List(ctx, ownerID, repositories.RoundFilter{})
	if err != nil {
		return fmt.Errorf("failed to list rounds: %w", err)
	}
	for _, round := range rounds {
		if _, err = s.Recalculate(ctx, ownerID, round.ID); err != nil {
			return err
		}
	}
	if closeAll {
		if err = s.roundRepo.CloseAll(ctx, ownerID); err != nil {
			return fmt.Errorf("failed to close rounds: %w", err)
		}
	}
	return nil
}

func (s *roundService) Close(ctx context.Context, ownerID, roundID int, closed bool) error {
	round, err := s.roundRepo.GetByID(ctx, ownerID, roundID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return ErrRoundNotFound
		}
		return fmt.Errorf("failed to get round: %w", err)
	}
	round.Closed = closed
	if err = s.roundRepo.Update(ctx, nil, round); err != nil {
		return fmt.Errorf("failed to update round: %w", err)
	}
	return nil
}

func (s *roundService) Delete(ctx context.Context, ownerID, roundID int) error {
	round, err := s.roundRepo.GetByID(ctx, ownerID, roundID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return ErrRoundNotFound
		}
		return fmt.Errorf("failed to get round: %w", err)
	}

	err = s.inTransaction(ctx, func(tx *sql.Tx) error {
		if txErr := s.entryRepo.DeleteByRound(ctx, tx, roundID); txErr != nil {
			return txErr
		}
		if txErr := s.teamRepo.DeleteByRound(ctx, tx, roundID); txErr != nil {
			return txErr
		}
		return s.roundRepo.Delete(ctx, tx, ownerID, roundID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete round: %w", err)
	}

	return s.relabelSeason(ctx, ownerID, round.Season)
}

// ownedPlayer checks that the player belongs to the owner before an entry
// references them. Without it a foreign player ID would pass the foreign key
// and poison every later standings computation for this league.
func (s *roundService) ownedPlayer(ctx context.Context, ownerID, playerID int) error {
	if _, err := s.playerRepo.GetByID(ctx, ownerID, playerID); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to get player: %w", err)
	}
	return nil
}

func (s *roundService) writableRound(ctx context.Context, ownerID, roundID int) (*models.Round, error) {
	round, err := s.roundRepo.GetByID(ctx, ownerID, roundID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return nil, ErrRoundNotFound
		}
		return nil, fmt.Errorf("failed to get round: %w", err)
	}
	if round.Closed {
		return nil, ErrRoundClosed
	}
	return round, nil
}

// relabelSeason renumbers the rounds of a season chronologically, so labels
// stay dense after an insert or delete.
func (s *roundService) relabelSeason(ctx context.Context, ownerID int, season string) error {
	rounds, err := s.roundRepo.List(ctx, ownerID, repositories.RoundFilter{Season: season})
	if err != nil {
		return fmt.Errorf("failed to list rounds for relabel: %w", err)
	}
	for i, round := range rounds {
		label := fmt.Sprintf("%dª Rodada", i+1)
		if round.Label == label {
			continue
		}
		if err = s.roundRepo.SetLabel(ctx, nil, round.ID, label); err != nil {
			return fmt.Errorf("failed to relabel round %d: %w", round.ID, err)
		}
	}
	return nil
}

func (s *roundService) inTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}
	return tx.Commit()
}

// bonusTeams picks the photo bonus and deflated ball teams. Either flag is
// only awarded when a single team holds the extreme: ties award nothing.
func bonusTeams(teams []*models.RoundTeam) (photoTeamID, deflatedTeamID *int) {
	if len(teams) < 2 {
		return nil, nil
	}

	best, worst := teams[0], teams[0]
	bestTied, worstTied := false, false
	for _, team := range teams[1:] {
		switch {
		case team.Points > best.Points:
			best, bestTied = team, false
		case team.Points == best.Points:
			bestTied = true
		}
		switch {
		case team.Points < worst.Points:
			worst, worstTied = team, false
		case team.Points == worst.Points && team != worst:
			worstTied = true
		}
	}

	if !bestTied {
		photoTeamID = &best.ID
	}
	if !worstTied {
		deflatedTeamID = &worst.ID
	}
	return photoTeamID, deflatedTeamID
}
