package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"solar-app/internal/models"
	"solar-app/internal/realtime"
	"solar-app/internal/services"
	"solar-app/internal/stream"
)

// WSHandler upgrades authenticated dashboard connections and runs the live
// subscription set for each one: the installer side watches its clients,
// tickets, and guides; the client side watches its own tickets and its
// installer's guides. A chat room subscription can be joined on demand while
// the panel is open.
type WSHandler struct {
	hub     *realtime.Hub
	feed    *stream.Feed
	auth    *services.AuthService
	tickets *services.TicketService
	guides  *services.GuideService
	chat    *services.ChatService
	notifs  *services.NotificationService

	upgrader websocket.Upgrader
}

func NewWSHandler(hub *realtime.Hub, feed *stream.Feed, auth *services.AuthService, tickets *services.TicketService, guides *services.GuideService, chat *services.ChatService, notifs *services.NotificationService) *WSHandler {
	return &WSHandler{
		hub:     hub,
		feed:    feed,
		auth:    auth,
		tickets: tickets,
		guides:  guides,
		chat:    chat,
		notifs:  notifs,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *WSHandler) Serve(c *gin.Context) {
	userID := c.GetString("user_id")
	role := c.GetString("role")

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	conn := realtime.NewConnection(userID, ws)
	h.hub.Attach(conn)

	sess := &wsSession{h: h, conn: conn, userID: userID, role: role}
	go sess.run(ws)
}

// wsSession owns everything opened for one dashboard connection. All of it
// is torn down when the socket goes away, so a reconnect starts from a fresh
// INITIALIZING round on every subscription.
type wsSession struct {
	h      *WSHandler
	conn   *realtime.Connection
	userID string
	role   string

	// guideOwner is whose guides this session watches: the installer itself,
	// or a client's installer.
	guideOwner string

	mu       sync.Mutex
	chatPeer string
	chatSub  *stream.Subscription[models.ChatMessage]

	clientsSub *stream.Subscription[models.User]
	ticketsSub *stream.Subscription[models.Ticket]
	guidesSub  *stream.Subscription[models.Guide]
}

type wsEvent struct {
	Type       string      `json:"type"`
	Collection string      `json:"collection,omitempty"`
	Docs       interface{} `json:"docs,omitempty"`
	Changes    interface{} `json:"changes,omitempty"`
	Initial    bool        `json:"initial,omitempty"`
}

type wsCommand struct {
	Action string `json:"action"`
	Peer   string `json:"peer,omitempty"`
}

func (s *wsSession) run(ws *websocket.Conn) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer s.h.hub.Detach(s.conn)
	defer s.conn.Close(websocket.CloseNormalClosure, "session ended")

	if err := s.open(ctx); err != nil {
		log.Printf("ws: opening subscriptions for %s failed: %v", s.userID, err)
		return
	}

	go s.route(ctx)

	// Read loop: chat join/leave commands, plus connection liveness. Any
	// read error ends the session.
	for {
		_, payload, err := ws.ReadMessage()
		if err != nil {
			return
		}
		var cmd wsCommand
		if err := json.Unmarshal(payload, &cmd); err != nil {
			continue
		}
		switch cmd.Action {
		case "join_chat":
			s.joinChat(ctx, cmd.Peer)
		case "leave_chat":
			s.leaveChat()
		}
	}
}

// open builds the role-appropriate subscription set.
func (s *wsSession) open(ctx context.Context) error {
	if s.role == models.RoleInstaller {
		s.guideOwner = s.userID

		s.clientsSub = stream.NewSubscription(func(ctx context.Context) ([]models.User, error) {
			return s.h.auth.Clients(ctx, s.userID)
		})
		s.ticketsSub = stream.NewSubscription(func(ctx context.Context) ([]models.Ticket, error) {
			return s.h.tickets.ForInstaller(ctx, s.userID)
		})
	} else {
		profile, err := s.h.auth.Profile(ctx, s.userID)
		if err != nil {
			return err
		}
		s.guideOwner = profile.User.InstallerID

		s.ticketsSub = stream.NewSubscription(func(ctx context.Context) ([]models.Ticket, error) {
			return s.h.tickets.ForClient(ctx, s.userID)
		})
	}

	s.guidesSub = stream.NewSubscription(func(ctx context.Context) ([]models.Guide, error) {
		return s.h.guides.ForInstaller(ctx, s.guideOwner)
	})

	if s.clientsSub != nil {
		go s.clientsSub.Run(ctx)
		go s.pumpClients(ctx)
	}
	go s.ticketsSub.Run(ctx)
	go s.pumpTickets(ctx)
	go s.guidesSub.Run(ctx)
	go s.pumpGuides(ctx)

	return nil
}

// route fans feed events out to the subscriptions whose filtered sets they
// can affect. Everything else is ignored without a refetch.
func (s *wsSession) route(ctx context.Context) {
	listener := s.h.feed.Listen(ctx, stream.UsersChannel, stream.TicketsChannel, stream.GuidesChannel, stream.ChatChannel)
	defer listener.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.conn.Closed():
			return
		case received, ok := <-listener.Events():
			if !ok {
				return
			}
			s.dispatch(received)
		}
	}
}

func (s *wsSession) dispatch(received stream.Received) {
	ev := received.Event
	switch received.Channel {
	case stream.UsersChannel:
		if s.clientsSub != nil && ev.InstallerID == s.userID {
			s.clientsSub.Refresh()
		}
	case stream.TicketsChannel:
		if s.role == models.RoleInstaller && ev.InstallerID == s.userID {
			s.ticketsSub.Refresh()
		}
		if s.role == models.RoleClient && ev.ClientID == s.userID {
			s.ticketsSub.Refresh()
		}
	case stream.GuidesChannel:
		if ev.InstallerID == s.guideOwner {
			s.guidesSub.Refresh()
		}
	case stream.ChatChannel:
		s.mu.Lock()
		sub, peer := s.chatSub, s.chatPeer
		s.mu.Unlock()
		if sub != nil && ev.Room == models.ChatRoom(s.userID, peer) {
			sub.Refresh()
		}
	}
}

func (s *wsSession) pumpTickets(ctx context.Context) {
	for snap := range s.ticketsSub.Snapshots() {
		s.forward("tickets", snap.Docs, snap.Changes, snap.Initial)

		// Initial snapshots never notify, no matter how many documents they
		// carry: pre-existing tickets are not news.
		if snap.Initial {
			continue
		}
		var notifs []*models.Notification
		for _, change := range snap.Changes {
			notifs = append(notifs, services.ClassifyTicketChange(s.role, change))
		}
		s.h.notifs.RecordAll(ctx, notifs)
	}
}

func (s *wsSession) pumpClients(ctx context.Context) {
	for snap := range s.clientsSub.Snapshots() {
		s.forward("clients", snap.Docs, snap.Changes, snap.Initial)

		if snap.Initial {
			continue
		}
		var notifs []*models.Notification
		for _, change := range snap.Changes {
			notifs = append(notifs, services.ClassifyClientChange(s.userID, change))
		}
		s.h.notifs.RecordAll(ctx, notifs)
	}
}

func (s *wsSession) pumpGuides(ctx context.Context) {
	for snap := range s.guidesSub.Snapshots() {
		s.forward("guides", snap.Docs, snap.Changes, snap.Initial)
	}
}

func (s *wsSession) joinChat(ctx context.Context, peer string) {
	if peer == "" {
		return
	}
	s.leaveChat()

	sub := stream.NewSubscription(func(ctx context.Context) ([]models.ChatMessage, error) {
		return s.h.chat.Messages(ctx, s.userID, peer)
	})

	s.mu.Lock()
	s.chatPeer = peer
	s.chatSub = sub
	s.mu.Unlock()

	go sub.Run(ctx)
	go func() {
		for snap := range sub.Snapshots() {
			s.forward("messages", snap.Docs, snap.Changes, snap.Initial)
		}
	}()
}

func (s *wsSession) leaveChat() {
	s.mu.Lock()
	sub := s.chatSub
	s.chatSub = nil
	s.chatPeer = ""
	s.mu.Unlock()
	if sub != nil {
		sub.Close()
	}
}

func (s *wsSession) forward(collection string, docs, changes interface{}, initial bool) {
	payload, err := json.Marshal(wsEvent{
		Type:       "snapshot",
		Collection: collection,
		Docs:       docs,
		Changes:    changes,
		Initial:    initial,
	})
	if err != nil {
		log.Printf("ws: marshal %s snapshot failed: %v", collection, err)
		return
	}
	_ = s.conn.Send(payload)
}
