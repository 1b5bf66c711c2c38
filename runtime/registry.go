package runtime

import (
	"chat-saga/contract"
	"chat-saga/domain/event"
	"chat-saga/errors"
	"fmt"
	"sync"

	"github.com/samber/lo"
)

type subscription struct {
	filter event.Filter
	sink   contract.EventSink
}

var _ contract.IRegistry = (*Registry)(nil)

// Registry holds the external subscribers. Sinks are returned in
// subscription order.
type Registry struct {
	mu            sync.RWMutex
	subscriptions map[string]subscription
	order         []string
}

func NewRegistry() *Registry {
	return &Registry{subscriptions: make(map[string]subscription)}
}

// Subscribe registers sink under id. Subscribing an existing id replaces its
// filter and sink.
func (r *Registry) Subscribe(id string, filter event.Filter, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subscriptions[id]; !ok {
		r.order = append(r.order, id)
	}
	r.subscriptions[id] = subscription{filter: filter, sink: sink}
}

func (r *Registry) Unsubscribe(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subscriptions[id]; !ok {
		return fmt.Errorf("%w: %s", errors.ErrSubscriberMissing, id)
	}
	delete(r.subscriptions, id)
	r.order = lo.Without(r.order, id)
	return nil
}

// SinksFor returns the sinks whose filter accepts evt.
func (r *Registry) SinksFor(evt event.Event) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sinks []contract.EventSink
	for _, id := range r.order {
		sub := r.subscriptions[id]
		if sub.filter.Accept(evt) {
			sinks = append(sinks, sub.sink)
		}
	}
	return sinks
}
