package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/peladahub/pelada-system/models"
	"github.com/peladahub/pelada-system/repositories"
)

func TestParseSheetDate(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "07/03/2025", want: "2025-03-07"},
		{input: "2025-03-07", want: "2025-03-07"},
		{input: "07-03-2025", want: "2025-03-07"},
		{input: " 07/03/2025 ", want: "2025-03-07"},
		{input: "03/07/25", wantErr: true},
		{input: "sábado", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseSheetDate(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseSheetDate(%q) expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseSheetDate(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got.Format("2006-01-02") != tt.want {
			t.Errorf("parseSheetDate(%q) = %s, want %s", tt.input, got.Format("2006-01-02"), tt.want)
		}
	}
}

func TestFindColumnNormalizesAccents(t *testing.T) {
	header := []string{"Nome", "Posição", "Plano", "CA", "CV"}

	if got := findColumn(header, "posicao"); got != 1 {
		t.Errorf("findColumn(posicao) = %d, want 1", got)
	}
	if got := findColumn(header, "ca"); got != 3 {
		t.Errorf("findColumn(ca) = %d, want 3", got)
	}
	if got := findColumn(header, "data"); got != -1 {
		t.Errorf("findColumn(data) = %d, want -1", got)
	}
}

func TestIntCell(t *testing.T) {
	row := []string{"Zico", " 3 ", "x", ""}

	if got := intCell(row, 1); got != 3 {
		t.Errorf("intCell trimmed = %d, want 3", got)
	}
	if got := intCell(row, 2); got != 0 {
		t.Errorf("intCell non-numeric = %d, want 0", got)
	}
	if got := intCell(row, 9); got != 0 {
		t.Errorf("intCell out of range = %d, want 0", got)
	}
}

// fakePlayerRepo implements repositories.PlayerRepository in memory, failing
// upserts for names in failNames.
type fakePlayerRepo struct {
	players   map[string]*models.Player
	failNames map[string]bool
	nextID    int
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{
		players:   make(map[string]*models.Player),
		failNames: make(map[string]bool),
	}
}

func (f *fakePlayerRepo) Create(ctx context.Context, p *models.Player) error {
	return f.Upsert(ctx, p)
}

func (f *fakePlayerRepo) Upsert(ctx context.Context, p *models.Player) error {
	if f.failNames[p.Name] {
		return errors.New("storage failure")
	}
	if existing, ok := f.players[p.Name]; ok {
		p.ID = existing.ID
	} else {
		f.nextID++
		p.ID = f.nextID
	}
	clone := *p
	f.players[p.Name] = &clone
	return nil
}

func (f *fakePlayerRepo) GetByID(ctx context.Context, ownerID, id int) (*models.Player, error) {
	for _, p := range f.players {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, repositories.ErrPlayerNotFound
}

func (f *fakePlayerRepo) FindByName(ctx context.Context, ownerID int, name string) (*models.Player, error) {
	if p, ok := f.players[name]; ok {
		return p, nil
	}
	for _, p := range f.players {
		if p.Nickname == name {
			return p, nil
		}
	}
	return nil, repositories.ErrPlayerNotFound
}

func (f *fakePlayerRepo) ListByOwner(ctx context.Context, ownerID int, activeOnly bool) ([]*models.Player, error) {
	out := make([]*models.Player, 0, len(f.players))
	for _, p := range f.players {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePlayerRepo) Update(ctx context.Context, p *models.Player) error { return nil }

func (f *fakePlayerRepo) Delete(ctx context.Context, ownerID, id int) error { return nil }

// fakeRoundService records which rounds were cleared and which results and
// cards were applied, keyed by the round opened for each sheet date.
type fakeRoundService struct {
	RoundService
	nextID     int
	rounds     map[string]*models.Round
	cleared    []int
	results    []int
	cardResets []int
	cards      []int
}

func newFakeRoundService() *fakeRoundService {
	return &fakeRoundService{rounds: make(map[string]*models.Round)}
}

func (f *fakeRoundService) Open(ctx context.Context, ownerID int, input RoundInput) (*models.Round, error) {
	key := input.Date.Format("2006-01-02")
	if r, ok := f.rounds[key]; ok {
		return r, nil
	}
	f.nextID++
	r := &models.Round{ID: f.nextID, OwnerID: ownerID, Date: input.Date, Season: input.Season}
	f.rounds[key] = r
	return r, nil
}

func (f *fakeRoundService) SetTeams(ctx context.Context, ownerID, roundID int, names []string) (*models.Round, error) {
	if len(names) == 0 {
		f.cleared = append(f.cleared, roundID)
	}
	return nil, nil
}

func (f *fakeRoundService) SetTeamResult(ctx context.Context, ownerID, roundID, teamID int, result TeamResultInput) error {
	f.results = append(f.results, teamID)
	return nil
}

func (f *fakeRoundService) ResetCards(ctx context.Context, ownerID, roundID int) error {
	f.cardResets = append(f.cardResets, roundID)
	return nil
}

func (f *fakeRoundService) SetCards(ctx context.Context, ownerID, roundID, playerID, yellow, red int) error {
	f.cards = append(f.cards, playerID)
	return nil
}

type fakeTeamRepo struct {
	repositories.RoundTeamRepository
	nextID int
	teams  map[string]*models.RoundTeam
}

func (f *fakeTeamRepo) GetOrCreate(ctx context.Context, exec repositories.SQLExecutor, roundID int, name string) (*models.RoundTeam, error) {
	if f.teams == nil {
		f.teams = make(map[string]*models.RoundTeam)
	}
	key := fmt.Sprintf("%d/%s", roundID, name)
	if team, ok := f.teams[key]; ok {
		return team, nil
	}
	f.nextID++
	team := &models.RoundTeam{ID: f.nextID, RoundID: roundID, Name: name}
	f.teams[key] = team
	return team, nil
}

// A results sheet replaces each round it touches: the round's teams are
// cleared exactly once per date before that date's rows apply.
func TestImportRoundTeamsReplacesExistingTeams(t *testing.T) {
	rounds := newFakeRoundService()
	svc := NewImportService(newFakePlayerRepo(), &fakeTeamRepo{}, rounds)

	rows := [][]string{
		{"Data", "Time", "V", "E", "D", "GP", "GC"},
		{"07/03/2025", "Azul", "2", "1", "0", "7", "3"},
		{"07/03/2025", "Branco", "0", "1", "2", "3", "7"},
		{"14/03/2025", "Azul", "1", "1", "1", "4", "4"},
	}

	result, err := svc.ImportRoundTeams(context.Background(), 1, "2025", rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Imported != 3 {
		t.Errorf("Imported = %d, want 3", result.Imported)
	}
	if len(rounds.cleared) != 2 {
		t.Fatalf("cleared rounds = %v, want one clear per date", rounds.cleared)
	}
	if rounds.cleared[0] == rounds.cleared[1] {
		t.Errorf("same round cleared twice: %v", rounds.cleared)
	}
	if len(rounds.results) != 3 {
		t.Errorf("results applied = %d, want 3", len(rounds.results))
	}
}

// A cards sheet replaces each round it touches: counts are zeroed once per
// date, so players missing from the corrected sheet keep no stale cards.
func TestImportCardsResetsRoundBeforeApplying(t *testing.T) {
	players := newFakePlayerRepo()
	for _, name := range []string{"Zico", "Edmundo"} {
		if err := players.Upsert(context.Background(), &models.Player{OwnerID: 1, Name: name}); err != nil {
			t.Fatalf("seed player: %v", err)
		}
	}
	rounds := newFakeRoundService()
	svc := NewImportService(players, nil, rounds)

	rows := [][]string{
		{"Data", "Jogador", "CA", "CV"},
		{"07/03/2025", "Zico", "1", "0"},
		{"07/03/2025", "Edmundo", "0", "1"},
	}

	result, err := svc.ImportCards(context.Background(), 1, "2025", rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Imported != 2 {
		t.Errorf("Imported = %d, want 2", result.Imported)
	}
	if len(rounds.cardResets) != 1 {
		t.Fatalf("card resets = %v, want exactly one for the date", rounds.cardResets)
	}
	if len(rounds.cards) != 2 {
		t.Errorf("cards applied = %d, want 2", len(rounds.cards))
	}
}

func TestImportPlayersPartialSuccess(t *testing.T) {
	repo := newFakePlayerRepo()
	repo.failNames["Edmundo"] = true
	svc := NewImportService(repo, nil, nil)

	rows := [][]string{
		{"Nome", "Apelido", "Posição", "Plano"},
		{"Arthur Antunes Coimbra", "Zico", "MEIA", "Mensalista"},
		{"", "", "ATA", "Avulso"}, // missing name
		{"Edmundo", "", "ATA", "Avulso"},
		{"Cláudio Taffarel", "Taffarel", "GOL", "Mensalista"},
	}

	result, err := svc.ImportPlayers(context.Background(), 1, rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Imported != 2 {
		t.Errorf("Imported = %d, want 2", result.Imported)
	}
	if result.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", result.Skipped)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("len(Errors) = %d, want 2", len(result.Errors))
	}
	// Row numbers are spreadsheet rows, header included.
	if result.Errors[0].Row != 3 || result.Errors[1].Row != 4 {
		t.Errorf("error rows = %d, %d, want 3 and 4", result.Errors[0].Row, result.Errors[1].Row)
	}

	gk, err := repo.FindByName(context.Background(), 1, "Taffarel")
	if err != nil {
		t.Fatalf("goalkeeper not imported: %v", err)
	}
	if gk.Role != models.RoleGoalkeeper {
		t.Errorf("goalkeeper role = %q, want %q", gk.Role, models.RoleGoalkeeper)
	}
	if gk.Plan != models.PlanMonthly {
		t.Errorf("goalkeeper plan = %q, want %q", gk.Plan, models.PlanMonthly)
	}
}

func TestImportPlayersRequiresNameColumn(t *testing.T) {
	svc := NewImportService(newFakePlayerRepo(), nil, nil)

	rows := [][]string{
		{"Jogador", "Posição"},
		{"Zico", "MEIA"},
	}

	_, err := svc.ImportPlayers(context.Background(), 1, rows)
	if !errors.Is(err, ErrMissingColumns) {
		t.Fatalf("expected ErrMissingColumns, got %v", err)
	}
}

func TestImportPlayersEmptySheet(t *testing.T) {
	svc := NewImportService(newFakePlayerRepo(), nil, nil)

	_, err := svc.ImportPlayers(context.Background(), 1, [][]string{{"Nome"}})
	if !errors.Is(err, ErrEmptySheet) {
		t.Fatalf("expected ErrEmptySheet, got %v", err)
	}
}

func TestImportPlayersUpsertIsIdempotent(t *testing.T) {
	repo := newFakePlayerRepo()
	svc := NewImportService(repo, nil, nil)

	rows := [][]string{
		{"Nome", "Posição"},
		{"Zico", "MEIA"},
	}
	if _, err := svc.ImportPlayers(context.Background(), 1, rows); err != nil {
		t.Fatalf("first import: %v", err)
	}

	rows[1][1] = "ATA"
	result, err := svc.ImportPlayers(context.Background(), 1, rows)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if result.Imported != 1 {
		t.Errorf("Imported = %d, want 1", result.Imported)
	}
	if len(repo.players) != 1 {
		t.Errorf("players = %d, want 1 after re-import", len(repo.players))
	}

	p, _ := repo.FindByName(context.Background(), 1, "Zico")
	if p.Position != models.PositionForward {
		t.Errorf("position after re-import = %q, want %q", p.Position, models.PositionForward)
	}
}
