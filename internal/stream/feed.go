package stream

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

// Change-feed channels, one per collection. Writers publish an Event after
// every successful store write; open subscriptions use the events to decide
// when to re-run their query.
const (
	UsersChannel   = "feed:users"
	TicketsChannel = "feed:tickets"
	GuidesChannel  = "feed:guides"
	ChatChannel    = "feed:chat"
)

// Event scopes a collection change so listeners can skip refreshes that
// cannot affect their filtered result set.
type Event struct {
	InstallerID string `json:"installer_id,omitempty"`
	ClientID    string `json:"client_id,omitempty"`
	Room        string `json:"room,omitempty"`
}

// Feed is the Redis-backed change feed connecting writers to subscriptions.
type Feed struct {
	rdb *redis.Client
}

func NewFeed(rdb *redis.Client) *Feed {
	return &Feed{rdb: rdb}
}

// Publish broadcasts a change event. Failures are logged and dropped: a lost
// event only delays a refresh until the next write on the same channel.
func (f *Feed) Publish(ctx context.Context, channel string, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("feed: marshal event failed: %v", err)
		return
	}
	if err := f.rdb.Publish(ctx, channel, data).Err(); err != nil {
		log.Printf("feed: publish to %s failed: %v", channel, err)
	}
}

// Received pairs a decoded event with the channel it arrived on.
type Received struct {
	Channel string
	Event   Event
}

// Listener consumes change events from one or more channels.
type Listener struct {
	pubsub *redis.PubSub
	out    chan Received
}

// Listen subscribes to the given channels. Close the listener to release the
// underlying Redis subscription.
func (f *Feed) Listen(ctx context.Context, channels ...string) *Listener {
	l := &Listener{
		pubsub: f.rdb.Subscribe(ctx, channels...),
		out:    make(chan Received, 32),
	}

	go func() {
		defer close(l.out)
		for msg := range l.pubsub.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("feed: bad event on %s: %v", msg.Channel, err)
				continue
			}
			select {
			case l.out <- Received{Channel: msg.Channel, Event: ev}:
			default:
				// Listener is behind; dropping is safe because subscriptions
				// refetch the full result set on the next event.
			}
		}
	}()

	return l
}

func (l *Listener) Events() <-chan Received { return l.out }

func (l *Listener) Close() error { return l.pubsub.Close() }
