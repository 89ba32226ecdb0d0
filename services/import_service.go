package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/peladahub/pelada-system/models"
	"github.com/peladahub/pelada-system/repositories"
)

// RowError reports why a single sheet row was skipped. Row numbers are
// 1-based and include the header row, matching what the user sees in the
// spreadsheet program.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult summarizes a partial import: valid rows are applied even when
// others fail.
type ImportResult struct {
	Imported int        `json:"imported"`
	Skipped  int        `json:"skipped"`
	Errors   []RowError `json:"errors"`
}

func (r *ImportResult) fail(row int, format string, args ...interface{}) {
	r.Skipped++
	r.Errors = append(r.Errors, RowError{Row: row, Message: fmt.Sprintf(format, args...)})
}

type ImportService interface {
	ImportPlayers(ctx context.Context, ownerID int, rows [][]string) (*ImportResult, error)
	ImportRoundTeams(ctx context.Context, ownerID int, season string, rows [][]string) (*ImportResult, error)
	ImportLinks(ctx context.Context, ownerID int, season string, rows [][]string) (*ImportResult, error)
	ImportCards(ctx context.Context, ownerID int, season string, rows [][]string) (*ImportResult, error)
	ImportGoalkeepers(ctx context.Context, ownerID int, season string, rows [][]string) (*ImportResult, error)
}

type importService struct {
	playerRepo repositories.PlayerRepository
	teamRepo   repositories.RoundTeamRepository
	rounds     RoundService
}

func NewImportService(
	playerRepo repositories.PlayerRepository,
	teamRepo repositories.RoundTeamRepository,
	rounds RoundService,
) ImportService {
	return &importService{
		playerRepo: playerRepo,
		teamRepo:   teamRepo,
		rounds:     rounds,
	}
}

// ImportPlayers upserts the roster from a registration sheet. Re-importing
// the same sheet updates positions and plans instead of duplicating names.
func (s *importService) ImportPlayers(ctx context.Context, ownerID int, rows [][]string) (*ImportResult, error) {
	header, data, err := splitHeader(rows)
	if err != nil {
		return nil, err
	}
	nameCol, err := requireColumn(header, "nome")
	if err != nil {
		return nil, err
	}
	nickCol := findColumn(header, "apelido")
	posCol := findColumn(header, "posicao")
	planCol := findColumn(header, "plano")

	result := &ImportResult{}
	for i, row := range data {
		rowNum := i + 2
		name := strings.TrimSpace(cell(row, nameCol))
		if name == "" {
			result.fail(rowNum, "missing player name")
			continue
		}

		position := models.ParsePosition(cell(row, posCol))
		player := &models.Player{
			OwnerID:  ownerID,
			Name:     name,
			Nickname: strings.TrimSpace(cell(row, nickCol)),
			Position: position,
			Role:     models.RoleForPosition(position),
			Plan:     models.ParsePlan(cell(row, planCol)),
			Active:   true,
		}
		if upErr := s.playerRepo.Upsert(ctx, player); upErr != nil {
			result.fail(rowNum, "failed to save player %q: %v", name, upErr)
			continue
		}
		result.Imported++
	}
	return result, nil
}

// ImportRoundTeams creates rounds from a results sheet, one row per team per
// date, carrying the team's wins, draws, losses and goals. The sheet is the
// authority for each date it mentions: a round's existing teams are cleared
// the first time a row targets it, so re-importing a corrected sheet never
// leaves stale teams behind.
func (s *importService) ImportRoundTeams(ctx context.Context, ownerID int, season string, rows [][]string) (*ImportResult, error) {
	header, data, err := splitHeader(rows)
	if err != nil {
		return nil, err
	}
	dateCol, err := requireColumn(header, "data")
	if err != nil {
		return nil, err
	}
	teamCol, err := requireColumn(header, "time")
	if err != nil {
		return nil, err
	}
	winsCol := findColumn(header, "v")
	drawsCol := findColumn(header, "e")
	lossesCol := findColumn(header, "d")
	gfCol := findColumn(header, "gp")
	gaCol := findColumn(header, "gc")

	result := &ImportResult{}
	cleared := make(map[int]bool)
	for i, row := range data {
		rowNum := i + 2

		round, rowErr := s.openRoundFor(ctx, ownerID, season, cell(row, dateCol))
		if rowErr != nil {
			result.fail(rowNum, "%v", rowErr)
			continue
		}
		if !cleared[round.ID] {
			if _, rowErr = s.rounds.SetTeams(ctx, ownerID, round.ID, nil); rowErr != nil {
				result.fail(rowNum, "failed to clear round teams: %v", rowErr)
				continue
			}
			cleared[round.ID] = true
		}

		teamName := strings.TrimSpace(cell(row, teamCol))
		if teamName == "" {
			result.fail(rowNum, "missing team name")
			continue
		}
		team, rowErr := s.teamRepo.GetOrCreate(ctx, nil, round.ID, teamName)
		if rowErr != nil {
			result.fail(rowNum, "failed to resolve team %q: %v", teamName, rowErr)
			continue
		}

		input := TeamResultInput{
			Wins:         intCell(row, winsCol),
			Draws:        intCell(row, drawsCol),
			Losses:       intCell(row, lossesCol),
			GoalsFor:     intCell(row, gfCol),
			GoalsAgainst: intCell(row, gaCol),
		}
		if rowErr = s.rounds.SetTeamResult(ctx, ownerID, round.ID, team.ID, input); rowErr != nil {
			result.fail(rowNum, "failed to record result for %q: %v", teamName, rowErr)
			continue
		}
		result.Imported++
	}
	return result, nil
}

// ImportLinks assigns players to the team they played for on each date.
func (s *importService) ImportLinks(ctx context.Context, ownerID int, season string, rows [][]string) (*ImportResult, error) {
	header, data, err := splitHeader(rows)
	if err != nil {
		return nil, err
	}
	dateCol, err := requireColumn(header, "data")
	if err != nil {
		return nil, err
	}
	playerCol, err := requireColumn(header, "jogador")
	if err != nil {
		return nil, err
	}
	teamCol := findColumn(header, "time")

	result := &ImportResult{}
	for i, row := range data {
		rowNum := i + 2

		round, rowErr := s.openRoundFor(ctx, ownerID, season, cell(row, dateCol))
		if rowErr != nil {
			result.fail(rowNum, "%v", rowErr)
			continue
		}
		player, rowErr := s.findPlayer(ctx, ownerID, cell(row, playerCol))
		if rowErr != nil {
			result.fail(rowNum, "%v", rowErr)
			continue
		}

		if rowErr = s.rounds.AssignPlayer(ctx, ownerID, round.ID, player.ID, cell(row, teamCol)); rowErr != nil {
			result.fail(rowNum, "failed to link %q: %v", player.Name, rowErr)
			continue
		}
		result.Imported++
	}
	return result, nil
}

// ImportCards loads yellow and red card counts per player per date. Each
// round's existing counts are zeroed before its first row applies, so the
// sheet fully replaces what was recorded for that date.
func (s *importService) ImportCards(ctx context.Context, ownerID int, season string, rows [][]string) (*ImportResult, error) {
	header, data, err := splitHeader(rows)
	if err != nil {
		return nil, err
	}
	dateCol, err := requireColumn(header, "data")
	if err != nil {
		return nil, err
	}
	playerCol, err := requireColumn(header, "jogador")
	if err != nil {
		return nil, err
	}
	yellowCol := findColumn(header, "ca")
	redCol := findColumn(header, "cv")

	result := &ImportResult{}
	reset := make(map[int]bool)
	for i, row := range data {
		rowNum := i + 2

		round, rowErr := s.openRoundFor(ctx, ownerID, season, cell(row, dateCol))
		if rowErr != nil {
			result.fail(rowNum, "%v", rowErr)
			continue
		}
		if !reset[round.ID] {
			if rowErr = s.rounds.ResetCards(ctx, ownerID, round.ID); rowErr != nil {
				result.fail(rowNum, "failed to reset round cards: %v", rowErr)
				continue
			}
			reset[round.ID] = true
		}
		player, rowErr := s.findPlayer(ctx, ownerID, cell(row, playerCol))
		if rowErr != nil {
			result.fail(rowNum, "%v", rowErr)
			continue
		}

		if rowErr = s.rounds.SetCards(ctx, ownerID, round.ID, player.ID, intCell(row, yellowCol), intCell(row, redCol)); rowErr != nil {
			result.fail(rowNum, "failed to set cards for %q: %v", player.Name, rowErr)
			continue
		}
		result.Imported++
	}
	return result, nil
}

// ImportGoalkeepers loads hand-entered goalkeeper results, one row per
// goalkeeper per date.
func (s *importService) ImportGoalkeepers(ctx context.Context, ownerID int, season string, rows [][]string) (*ImportResult, error) {
	header, data, err := splitHeader(rows)
	if err != nil {
		return nil, err
	}
	dateCol, err := requireColumn(header, "data")
	if err != nil {
		return nil, err
	}
	playerCol, err := requireColumn(header, "jogador")
	if err != nil {
		return nil, err
	}
	winsCol := findColumn(header, "v")
	drawsCol := findColumn(header, "e")
	lossesCol := findColumn(header, "d")
	gfCol := findColumn(header, "gp")
	gaCol := findColumn(header, "gc")

	result := &ImportResult{}
	for i, row := range data {
		rowNum := i + 2

		round, rowErr := s.openRoundFor(ctx, ownerID, season, cell(row, dateCol))
		if rowErr != nil {
			result.fail(rowNum, "%v", rowErr)
			continue
		}
		player, rowErr := s.findPlayer(ctx, ownerID, cell(row, playerCol))
		if rowErr != nil {
			result.fail(rowNum, "%v", rowErr)
			continue
		}

		input := TeamResultInput{
			Wins:         intCell(row, winsCol),
			Draws:        intCell(row, drawsCol),
			Losses:       intCell(row, lossesCol),
			GoalsFor:     intCell(row, gfCol),
			GoalsAgainst: intCell(row, gaCol),
		}
		if rowErr = s.rounds.SetIndividualResult(ctx, ownerID, round.ID, player.ID, input); rowErr != nil {
			result.fail(rowNum, "failed to record result for %q: %v", player.Name, rowErr)
			continue
		}
		result.Imported++
	}
	return result, nil
}

func (s *importService) openRoundFor(ctx context.Context, ownerID int, season, rawDate string) (*models.Round, error) {
	date, err := parseSheetDate(rawDate)
	if err != nil {
		return nil, err
	}
	round, err := s.rounds.Open(ctx, ownerID, RoundInput{Date: date, Season: season})
	if err != nil {
		return nil, fmt.Errorf("failed to open round for %s: %w", date.Format("02/01/2006"), err)
	}
	return round, nil
}

func (s *importService) findPlayer(ctx context.Context, ownerID int, rawName string) (*models.Player, error) {
	name := strings.TrimSpace(rawName)
	if name == "" {
		return nil, fmt.Errorf("missing player name")
	}
	player, err := s.playerRepo.FindByName(ctx, ownerID, name)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, fmt.Errorf("player %q is not registered", name)
		}
		return nil, fmt.Errorf("failed to look up player %q: %w", name, err)
	}
	return player, nil
}

var sheetDateLayouts = []string{"02/01/2006", "2006-01-02", "02-01-2006"}

func parseSheetDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range sheetDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}

// normalizeHeader lowercases a header cell and strips the accents used on
// the Portuguese sheets, so "Posição" and "posicao" address the same column.
var headerReplacer = strings.NewReplacer(
	"ç", "c", "ã", "a", "á", "a", "à", "a", "é", "e", "ê", "e",
	"í", "i", "ó", "o", "õ", "o", "ú", "u",
)

func normalizeHeader(s string) string {
	return headerReplacer.Replace(strings.ToLower(strings.TrimSpace(s)))
}

func splitHeader(rows [][]string) ([]string, [][]string, error) {
	if len(rows) < 2 {
		return nil, nil, ErrEmptySheet
	}
	return rows[0], rows[1:], nil
}

func findColumn(header []string, name string) int {
	for i, h := range header {
		if normalizeHeader(h) == name {
			return i
		}
	}
	return -1
}

func requireColumn(header []string, name string) (int, error) {
	if col := findColumn(header, name); col >= 0 {
		return col, nil
	}
	return -1, fmt.Errorf("%w: %s", ErrMissingColumns, name)
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

func intCell(row []string, col int) int {
	n, err := strconv.Atoi(strings.TrimSpace(cell(row, col)))
	if err != nil {
		return 0
	}
	return n
}
