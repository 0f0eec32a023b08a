package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/idealservice/waste-pickup/internal/core/domain"
	"github.com/idealservice/waste-pickup/internal/core/ports"
)

type stubClient struct {
	events []domain.PickupEvent
	err    error
}

func (c *stubClient) FetchEvents(context.Context, ports.FetchOptions) ([]domain.PickupEvent, error) {
	return c.events, c.err
}

func (c *stubClient) NextEvent(context.Context) (domain.PickupEvent, error) {
	return domain.PickupEvent{}, errors.New("not used")
}

func day(s string, titles ...string) domain.PickupEvent {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	types := make([]domain.PickupType, 0, len(titles))
	for _, t := range titles {
		types = append(types, domain.PickupType{Title: t})
	}
	return domain.PickupEvent{Date: d, PickupTypes: types}
}

func runCheckWith(t *testing.T, client ports.CalendarClient, limit int) (string, error) {
	t.Helper()
	color.NoColor = true

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	key := domain.CalendarKey{PlaceID: "93", CalendarID: "12"}
	now := time.Date(2024, 1, 30, 9, 0, 0, 0, time.UTC)
	err := runCheck(context.Background(), cmd, client, key, limit, now)
	return out.String(), err
}

func TestRunCheck_PrintsUpcoming(t *testing.T) {
	client := &stubClient{events: []domain.PickupEvent{
		day("2024-01-29", "Secco"),
		day("2024-01-31", "Secco", "Carta"),
		day("2024-02-02", "Carta"),
		day("2024-02-05", "Umido"),
	}}

	out, err := runCheckWith(t, client, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "next on 2024-01-31") {
		t.Errorf("expected next pickup in output:\n%s", out)
	}
	if !strings.Contains(out, "Secco, Carta") || !strings.Contains(out, "2024-02-02") {
		t.Errorf("expected upcoming pickups in output:\n%s", out)
	}
	if strings.Contains(out, "2024-02-05") || strings.Contains(out, "Mon 2024-01-29") {
		t.Errorf("expected past and over-limit pickups to be omitted:\n%s", out)
	}
}

func TestRunCheck_NoUpcoming(t *testing.T) {
	_, err := runCheckWith(t, &stubClient{events: []domain.PickupEvent{day("2024-01-29", "Secco")}}, 5)
	if !errors.Is(err, domain.ErrNoUpcomingPickup) {
		t.Fatalf("expected ErrNoUpcomingPickup, got %v", err)
	}
}

func TestRunCheck_RequestError(t *testing.T) {
	out, err := runCheckWith(t, &stubClient{err: domain.ErrRequest}, 5)
	if !errors.Is(err, domain.ErrRequest) {
		t.Fatalf("expected ErrRequest, got %v", err)
	}
	if !strings.Contains(err.Error(), domain.CodeInvalidCalendar) {
		t.Errorf("expected the invalid calendar code, got %v", err)
	}
	if !strings.Contains(out, "93, 12") {
		t.Errorf("expected the calendar in output:\n%s", out)
	}
}

func TestNewCommand_Subcommands(t *testing.T) {
	cmd := NewCommand()
	for _, name := range []string{"serve", "check", "token"} {
		if sub, _, err := cmd.Find([]string{name}); err != nil || sub.Name() != name {
			t.Errorf("expected subcommand %q", name)
		}
	}
}
