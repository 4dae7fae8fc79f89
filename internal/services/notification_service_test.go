package services

import (
	"testing"

	"solar-app/internal/models"
	"solar-app/internal/stream"
)

func ticketChange(ct stream.ChangeType, status models.TicketStatus, response string) stream.Change[models.Ticket] {
	return stream.Change[models.Ticket]{
		Type: ct,
		Doc: models.Ticket{
			Title:       "Panel output low",
			ClientID:    "client-1",
			ClientName:  "Jordan Lee",
			InstallerID: "installer-1",
			Status:      status,
			Response:    response,
		},
	}
}

func TestClassifyTicketChangeInstaller(t *testing.T) {
	notif := ClassifyTicketChange(models.RoleInstaller, ticketChange(stream.Added, models.StatusPending, ""))
	if notif == nil {
		t.Fatal("added ticket produced no installer notification")
	}
	if notif.UserID != "installer-1" || notif.Title != "New support ticket" {
		t.Errorf("notification = %+v", notif)
	}

	// Status churn is the installer's own doing; no self-notification.
	if n := ClassifyTicketChange(models.RoleInstaller, ticketChange(stream.Modified, models.StatusResolved, "done")); n != nil {
		t.Errorf("modified ticket notified installer: %+v", n)
	}
}

func TestClassifyTicketChangeClient(t *testing.T) {
	cases := []struct {
		name      string
		change    stream.Change[models.Ticket]
		wantTitle string
	}{
		{"resolved with response", ticketChange(stream.Modified, models.StatusResolved, "fixed"), "Ticket resolved"},
		{"in progress", ticketChange(stream.Modified, models.StatusInProgress, ""), "Ticket update"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			notif := ClassifyTicketChange(models.RoleClient, tc.change)
			if notif == nil {
				t.Fatal("no notification")
			}
			if notif.Title != tc.wantTitle || notif.UserID != "client-1" {
				t.Errorf("notification = %+v, want title %q for client-1", notif, tc.wantTitle)
			}
		})
	}

	// Resolved without a response attached is not yet news to the client.
	if n := ClassifyTicketChange(models.RoleClient, ticketChange(stream.Modified, models.StatusResolved, "")); n != nil {
		t.Errorf("responseless resolve notified client: %+v", n)
	}
	// Newly created tickets are the client's own action.
	if n := ClassifyTicketChange(models.RoleClient, ticketChange(stream.Added, models.StatusPending, "")); n != nil {
		t.Errorf("own new ticket notified client: %+v", n)
	}
}

func TestClassifyClientChange(t *testing.T) {
	added := stream.Change[models.User]{Type: stream.Added, Doc: models.User{FullName: "Jordan Lee"}}
	notif := ClassifyClientChange("installer-1", added)
	if notif == nil || notif.UserID != "installer-1" || notif.Title != "New client joined" {
		t.Errorf("notification = %+v", notif)
	}

	modified := stream.Change[models.User]{Type: stream.Modified, Doc: models.User{FullName: "Jordan Lee"}}
	if n := ClassifyClientChange("installer-1", modified); n != nil {
		t.Errorf("profile edit notified installer: %+v", n)
	}
}
