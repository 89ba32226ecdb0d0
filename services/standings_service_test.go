package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/peladahub/pelada-system/live"
)

func TestNotifyRoundClosedBroadcastsToOwnerRoom(t *testing.T) {
	hub := live.NewHub()
	go hub.Run()

	client := &live.Client{Hub: hub, Send: make(chan []byte, 1), Room: "1"}
	hub.Register <- client

	svc := NewStandingsService(nil, nil, nil, nil, hub)

	// Registration completes on the hub goroutine, so keep pushing until the
	// client sees a message.
	deadline := time.After(2 * time.Second)
	for {
		svc.NotifyRoundClosed(context.Background(), 1, 10, true)
		select {
		case msg := <-client.Send:
			if !bytes.Contains(msg, []byte(live.EventRoundClosed)) {
				t.Fatalf("message = %s, want type %s", msg, live.EventRoundClosed)
			}
			if !bytes.Contains(msg, []byte(`"round_id":10`)) {
				t.Fatalf("message = %s, missing round id", msg)
			}
			return
		case <-deadline:
			t.Fatal("no broadcast reached the owner's room")
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func TestNotifyRoundClosedWithoutHubIsNoop(t *testing.T) {
	svc := NewStandingsService(nil, nil, nil, nil, nil)
	svc.NotifyRoundClosed(context.Background(), 1, 10, false)
}

func TestStandingsQueryFilter(t *testing.T) {
	t.Run("zero value covers full history", func(t *testing.T) {
		filter, err := StandingsQuery{}.filter()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if filter.Season != "" || filter.From != nil || filter.To != nil {
			t.Errorf("expected empty filter, got %+v", filter)
		}
	})

	t.Run("season filter", func(t *testing.T) {
		filter, err := StandingsQuery{Season: "2025"}.filter()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if filter.Season != "2025" {
			t.Errorf("Season = %q, want 2025", filter.Season)
		}
	})

	t.Run("month window", func(t *testing.T) {
		filter, err := StandingsQuery{Year: 2025, Month: 2}.filter()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		wantFrom := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
		wantTo := time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC)
		if !filter.From.Equal(wantFrom) {
			t.Errorf("From = %v, want %v", filter.From, wantFrom)
		}
		if !filter.To.Equal(wantTo) {
			t.Errorf("To = %v, want %v", filter.To, wantTo)
		}
	})

	t.Run("month without year", func(t *testing.T) {
		_, err := StandingsQuery{Month: 2}.filter()
		if !errors.Is(err, ErrInvalidMonth) {
			t.Fatalf("expected ErrInvalidMonth, got %v", err)
		}
	})

	t.Run("month out of range", func(t *testing.T) {
		_, err := StandingsQuery{Year: 2025, Month: 13}.filter()
		if !errors.Is(err, ErrInvalidMonth) {
			t.Fatalf("expected ErrInvalidMonth, got %v", err)
		}
	})
}

func TestStandingsQueryLabel(t *testing.T) {
	tests := []struct {
		query StandingsQuery
		want  string
	}{
		{StandingsQuery{}, "Classificacao geral"},
		{StandingsQuery{Season: "2025"}, "Classificacao 2025"},
		{StandingsQuery{Year: 2025, Month: 3}, "Classificacao 03/2025"},
	}

	for _, tt := range tests {
		if got := tt.query.Label(); got != tt.want {
			t.Errorf("Label(%+v) = %q, want %q", tt.query, got, tt.want)
		}
	}
}
