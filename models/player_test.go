package models

import "testing"

func TestParsePosition(t *testing.T) {
	tests := []struct {
		input string
		want  Position
	}{
		{"GOL", PositionGoalkeeper},
		{"goleiro", PositionGoalkeeper},
		{" gk ", PositionGoalkeeper},
		{"ZAG", PositionDefender},
		{"zagueiro", PositionDefender},
		{"MEIA", PositionMidfielder},
		{"mei", PositionMidfielder},
		{"ATA", PositionForward},
		{"", PositionForward},
		{"qualquer coisa", PositionForward},
	}

	for _, tt := range tests {
		if got := ParsePosition(tt.input); got != tt.want {
			t.Errorf("ParsePosition(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestRoleForPosition(t *testing.T) {
	if got := RoleForPosition(PositionGoalkeeper); got != RoleGoalkeeper {
		t.Errorf("RoleForPosition(GOL) = %q, want %q", got, RoleGoalkeeper)
	}
	for _, pos := range []Position{PositionForward, PositionMidfielder, PositionDefender} {
		if got := RoleForPosition(pos); got != RoleField {
			t.Errorf("RoleForPosition(%q) = %q, want %q", pos, got, RoleField)
		}
	}
}

func TestParsePlan(t *testing.T) {
	tests := []struct {
		input string
		want  PlayerPlan
	}{
		{"Avulso", PlanWalkIn},
		{"walk-in", PlanWalkIn},
		{"walkin", PlanWalkIn},
		{"Mensalista", PlanMonthly},
		{"", PlanMonthly},
	}

	for _, tt := range tests {
		if got := ParsePlan(tt.input); got != tt.want {
			t.Errorf("ParsePlan(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	p := Player{Name: "Arthur Antunes Coimbra", Nickname: "Zico"}
	if got := p.DisplayName(); got != "Zico" {
		t.Errorf("DisplayName() = %q, want Zico", got)
	}

	p.Nickname = "   "
	if got := p.DisplayName(); got != "Arthur Antunes Coimbra" {
		t.Errorf("DisplayName() without nickname = %q, want full name", got)
	}
}
