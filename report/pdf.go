package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/peladahub/pelada-system/models"
)

// Builder renders the ranked tables into a shareable document.
type Builder interface {
	StandingsPDF(leagueName, periodLabel string, generatedAt time.Time, tables *models.StandingsTables, useCards bool) ([]byte, error)
}

type pdfBuilder struct{}

func NewPDFBuilder() Builder {
	return pdfBuilder{}
}

func (pdfBuilder) StandingsPDF(leagueName, periodLabel string, generatedAt time.Time, tables *models.StandingsTables, useCards bool) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(leagueName, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, leagueName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	subtitle := periodLabel
	if subtitle == "" {
		subtitle = "Classificacao geral"
	}
	pdf.CellFormat(0, 6, subtitle, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, generatedAt.Format("02/01/2006 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	writeTable(pdf, "Jogadores de linha", tables.FieldPlayers, useCards)
	pdf.Ln(6)
	writeTable(pdf, "Goleiros", tables.Goalkeepers, useCards)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render standings pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTable(pdf *fpdf.Fpdf, title string, rows []models.StandingRow, useCards bool) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")

	headers := []string{"#", "Jogador", "P", "J", "V", "E", "D", "GP", "GC", "SG"}
	widths := []float64{8, 52, 12, 10, 10, 10, 10, 12, 12, 12}
	if useCards {
		headers = append(headers, "CA", "CV")
		widths = append(widths, 10, 10)
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	if len(rows) == 0 {
		pdf.CellFormat(sum(widths), 7, "Sem partidas no periodo", "1", 1, "C", false, 0, "")
		return
	}

	for _, row := range rows {
		cells := []string{
			fmt.Sprintf("%d", row.Rank),
			row.Name,
			fmt.Sprintf("%d", row.Points),
			fmt.Sprintf("%d", row.GamesPlayed),
			fmt.Sprintf("%d", row.Wins),
			fmt.Sprintf("%d", row.Draws),
			fmt.Sprintf("%d", row.Losses),
			fmt.Sprintf("%d", row.GoalsFor),
			fmt.Sprintf("%d", row.GoalsAgainst),
			fmt.Sprintf("%d", row.GoalDiff),
		}
		if useCards {
			cells = append(cells,
				fmt.Sprintf("%d", row.YellowCards),
				fmt.Sprintf("%d", row.RedCards),
			)
		}
		for i, c := range cells {
			align := "C"
			if i == 1 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 6, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func sum(widths []float64) float64 {
	var total float64
	for _, w := range widths {
		total += w
	}
	return total
}
