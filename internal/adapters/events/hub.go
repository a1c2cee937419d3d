package events

import (
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/clinicdesk/internal/domain/entities"
)

const subscriberBuffer = 100

// subscription is one Subscribe call. An empty resource set takes every
// event on the channel.
type subscription struct {
	events    chan *entities.ResourceEvent
	resources map[string]struct{}
}

func (s *subscription) wants(resource string) bool {
	if len(s.resources) == 0 {
		return true
	}
	_, ok := s.resources[resource]
	return ok
}

// hub keeps the subscriptions of a bus and delivers events to them. A full
// subscription misses the event instead of blocking the sender.
type hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*subscription]struct{}
	closed bool
}

func newHub() *hub {
	return &hub{subs: make(map[string]map[*subscription]struct{})}
}

// add registers a subscription on channel. first reports that channel had no
// subscriptions before. A closed hub hands back an already closed one.
func (h *hub) add(channel string, resources []string) (sub *subscription, first bool) {
	sub = &subscription{events: make(chan *entities.ResourceEvent, subscriberBuffer)}
	if len(resources) > 0 {
		sub.resources = make(map[string]struct{}, len(resources))
		for _, r := range resources {
			sub.resources[r] = struct{}{}
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(sub.events)
		return sub, false
	}
	if h.subs[channel] == nil {
		h.subs[channel] = make(map[*subscription]struct{})
		first = true
	}
	h.subs[channel][sub] = struct{}{}
	return sub, first
}

// remove closes sub. last reports that channel has no subscriptions left.
func (h *hub) remove(channel string, sub *subscription) (last bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.subs[channel]
	if !ok {
		return false
	}
	if _, ok := subs[sub]; !ok {
		return false
	}
	delete(subs, sub)
	close(sub.events)
	if len(subs) == 0 {
		delete(h.subs, channel)
		return true
	}
	return false
}

// deliver hands each interested subscription its own copy of event and
// returns how many got one.
func (h *hub) deliver(channel string, event *entities.ResourceEvent) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for sub := range h.subs[channel] {
		if !sub.wants(event.Resource) {
			continue
		}
		e := *event
		select {
		case sub.events <- &e:
			delivered++
		default:
			log.Warn().Str("channel", channel).Str("event_id", event.ID).Str("resource", event.Resource).Msg("subscriber channel full, dropping event")
		}
	}
	return delivered
}

// drop closes every subscription on channel
func (h *hub) drop(channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[channel] {
		close(sub.events)
	}
	delete(h.subs, channel)
}

// close closes every subscription and refuses new ones
func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for channel, subs := range h.subs {
		for sub := range subs {
			close(sub.events)
		}
		delete(h.subs, channel)
	}
	h.closed = true
}
