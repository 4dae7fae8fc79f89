package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"solar-app/internal/models"
	"solar-app/internal/stream"
)

func newTestFeed(t *testing.T) (*stream.Feed, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return stream.NewFeed(rdb), rdb
}

// fakeTicketRepo mirrors the Mongo repository's guarded-update semantics:
// the status constraint is part of the lookup, and a miss is ErrNotFound.
type fakeTicketRepo struct {
	tickets map[primitive.ObjectID]*models.Ticket
	writes  int
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[primitive.ObjectID]*models.Ticket)}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *models.Ticket) error {
	ticket.ID = primitive.NewObjectID()
	ticket.Status = models.StatusPending
	ticket.CreatedAt = time.Now()
	r.tickets[ticket.ID] = ticket
	r.writes++
	return nil
}

func (r *fakeTicketRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Ticket, error) {
	t, ok := r.tickets[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := *t
	return &out, nil
}

func (r *fakeTicketRepo) ByInstaller(_ context.Context, installerID string) ([]models.Ticket, error) {
	var out []models.Ticket
	for _, t := range r.tickets {
		if t.InstallerID == installerID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTicketRepo) ByClient(_ context.Context, clientID string) ([]models.Ticket, error) {
	var out []models.Ticket
	for _, t := range r.tickets {
		if t.ClientID == clientID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTicketRepo) CountPending(_ context.Context, installerID string) (int64, error) {
	var n int64
	for _, t := range r.tickets {
		if t.InstallerID == installerID && t.Status == models.StatusPending {
			n++
		}
	}
	return n, nil
}

func (r *fakeTicketRepo) MarkInProgress(_ context.Context, id primitive.ObjectID, installerID string) (*models.Ticket, error) {
	t, ok := r.tickets[id]
	if !ok || t.InstallerID != installerID || t.Status != models.StatusPending {
		return nil, models.ErrNotFound
	}
	t.Status = models.StatusInProgress
	t.UpdatedAt = time.Now()
	r.writes++
	out := *t
	return &out, nil
}

func (r *fakeTicketRepo) Resolve(_ context.Context, id primitive.ObjectID, installerID, response string) (*models.Ticket, error) {
	t, ok := r.tickets[id]
	if !ok || t.InstallerID != installerID || t.Status == models.StatusResolved {
		return nil, models.ErrNotFound
	}
	t.Status = models.StatusResolved
	t.Response = response
	t.RespondedAt = time.Now()
	r.writes++
	out := *t
	return &out, nil
}

func newTicketFixture(t *testing.T) (*TicketService, *fakeTicketRepo, primitive.ObjectID) {
	t.Helper()
	feed, _ := newTestFeed(t)
	repo := newFakeTicketRepo()
	svc := NewTicketService(repo, feed)

	ticket := &models.Ticket{
		Title:       "Inverter fault",
		Description: "Red light blinking since yesterday",
		ClientID:    "client-1",
		ClientName:  "Jordan Lee",
		InstallerID: "installer-1",
	}
	if err := svc.Create(context.Background(), ticket); err != nil {
		t.Fatalf("create: %v", err)
	}
	return svc, repo, ticket.ID
}

func TestMarkInProgressFromPending(t *testing.T) {
	svc, _, id := newTicketFixture(t)

	ticket, err := svc.MarkInProgress(context.Background(), id, "installer-1")
	if err != nil {
		t.Fatalf("MarkInProgress: %v", err)
	}
	if ticket.Status != models.StatusInProgress {
		t.Errorf("status = %s, want in-progress", ticket.Status)
	}
	if ticket.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not stamped")
	}
}

func TestMarkInProgressOnlyFromPending(t *testing.T) {
	svc, _, id := newTicketFixture(t)
	ctx := context.Background()

	if _, err := svc.MarkInProgress(ctx, id, "installer-1"); err != nil {
		t.Fatalf("first MarkInProgress: %v", err)
	}
	_, err := svc.MarkInProgress(ctx, id, "installer-1")
	if !errors.Is(err, models.ErrTicketNotPending) {
		t.Errorf("second MarkInProgress err = %v, want ErrTicketNotPending", err)
	}
}

func TestRespondAndResolve(t *testing.T) {
	cases := []struct {
		name       string
		inProgress bool
	}{
		{"from pending", false},
		{"from in-progress", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, id := newTicketFixture(t)
			ctx := context.Background()

			if tc.inProgress {
				if _, err := svc.MarkInProgress(ctx, id, "installer-1"); err != nil {
					t.Fatalf("MarkInProgress: %v", err)
				}
			}

			ticket, err := svc.RespondAndResolve(ctx, id, "installer-1", "Replaced the fuse, all good now")
			if err != nil {
				t.Fatalf("RespondAndResolve: %v", err)
			}
			if ticket.Status != models.StatusResolved {
				t.Errorf("status = %s, want resolved", ticket.Status)
			}
			if ticket.Response == "" || ticket.RespondedAt.IsZero() {
				t.Error("response or responded_at missing on resolved ticket")
			}
		})
	}
}

func TestEmptyResponseIsNoOp(t *testing.T) {
	svc, repo, id := newTicketFixture(t)
	writesBefore := repo.writes

	_, err := svc.RespondAndResolve(context.Background(), id, "installer-1", "   ")
	if !errors.Is(err, models.ErrEmptyResponse) {
		t.Fatalf("err = %v, want ErrEmptyResponse", err)
	}
	if repo.writes != writesBefore {
		t.Error("empty response reached the store")
	}
}

func TestResolvedIsTerminal(t *testing.T) {
	svc, _, id := newTicketFixture(t)
	ctx := context.Background()

	if _, err := svc.RespondAndResolve(ctx, id, "installer-1", "done"); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if _, err := svc.RespondAndResolve(ctx, id, "installer-1", "again"); !errors.Is(err, models.ErrTicketResolved) {
		t.Errorf("re-resolve err = %v, want ErrTicketResolved", err)
	}
	if _, err := svc.MarkInProgress(ctx, id, "installer-1"); !errors.Is(err, models.ErrTicketResolved) {
		t.Errorf("MarkInProgress after resolve err = %v, want ErrTicketResolved", err)
	}
}

func TestForeignInstallerCannotMutate(t *testing.T) {
	svc, _, id := newTicketFixture(t)

	_, err := svc.MarkInProgress(context.Background(), id, "installer-2")
	if !errors.Is(err, models.ErrNotTicketOwner) {
		t.Errorf("err = %v, want ErrNotTicketOwner", err)
	}
}
