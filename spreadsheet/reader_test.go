package spreadsheet

import (
	"errors"
	"strings"
	"testing"
)

func TestForFilename(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		wantErr bool
	}{
		{name: "csv", file: "jogadores.csv"},
		{name: "xlsx", file: "rodadas.XLSX"},
		{name: "xlsm", file: "caixa.xlsm"},
		{name: "pdf rejected", file: "tabela.pdf", wantErr: true},
		{name: "no extension", file: "tabela", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ForFilename(tt.file)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestCSVReader(t *testing.T) {
	input := "\ufeffNome,Posicao,Plano\nZico,MEIA,Mensalista\nTaffarel,GOL,Avulso\n"

	rows, err := NewCSVReader().Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "Nome" {
		t.Errorf("BOM not stripped from header, got %q", rows[0][0])
	}
	if rows[2][1] != "GOL" {
		t.Errorf("expected GOL at row 2 col 1, got %q", rows[2][1])
	}
}

func TestCSVReaderRaggedRows(t *testing.T) {
	input := "Nome,CA,CV\nZico,1\nEdmundo,2,1\n"

	rows, err := NewCSVReader().Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ragged rows should not fail: %v", err)
	}
	if len(rows[1]) != 2 || len(rows[2]) != 3 {
		t.Errorf("unexpected row widths: %d, %d", len(rows[1]), len(rows[2]))
	}
}
