package sound

import (
	"log"
	"slices"

	"github.com/lixenwraith/hushmaze/vmath"
)

// Listener receives add/remove notifications for one class
// Called synchronously on the simulation loop
type Listener interface {
	OnAdded(ev Event, class Category)
	OnRemoved(h Handle, class Category)
}

// ListenerFuncs adapts plain functions to Listener; nil fields are skipped
type ListenerFuncs struct {
	Added   func(ev Event, class Category)
	Removed func(h Handle, class Category)
}

func (l ListenerFuncs) OnAdded(ev Event, class Category) {
	if l.Added != nil {
		l.Added(ev, class)
	}
}

func (l ListenerFuncs) OnRemoved(h Handle, class Category) {
	if l.Removed != nil {
		l.Removed(h, class)
	}
}

type subscription struct {
	id       uint64
	listener Listener
}

// Router fans field notifications out to subscribers, partitioned by class
//
// Architecture:
//   - Single-threaded dispatch
//   - Subscriber lists are replaced, never mutated, so a dispatch iterates a stable snapshot
//   - Subscriptions made during dispatch take effect from the next notification
//   - No history replay
type Router struct {
	field  *Field
	subs   [CategoryCount][]subscription
	nextID uint64
}

func newRouter(f *Field) *Router {
	return &Router{field: f}
}

// Subscribe registers l for class and returns its cancel function
func (r *Router) Subscribe(class Category, l Listener) func() {
	if !class.Valid() || l == nil {
		log.Printf("sound: ignoring subscription to %s", class)
		return func() {}
	}
	r.nextID++
	id := r.nextID

	cur := r.subs[class]
	next := make([]subscription, len(cur), len(cur)+1)
	copy(next, cur)
	r.subs[class] = append(next, subscription{id: id, listener: l})

	return func() { r.unsubscribe(class, id) }
}

func (r *Router) unsubscribe(class Category, id uint64) {
	cur := r.subs[class]
	i := slices.IndexFunc(cur, func(s subscription) bool { return s.id == id })
	if i < 0 {
		return
	}
	next := make([]subscription, 0, len(cur)-1)
	next = append(next, cur[:i]...)
	r.subs[class] = append(next, cur[i+1:]...)
}

// SubscriberCount returns the number of listeners on class
func (r *Router) SubscriberCount(class Category) int {
	if !class.Valid() {
		return 0
	}
	return len(r.subs[class])
}

func (r *Router) notifyAdded(ev Event, class Category) {
	for _, s := range r.subs[class] {
		s.listener.OnAdded(ev, class)
	}
}

func (r *Router) notifyRemoved(h Handle, class Category) {
	for _, s := range r.subs[class] {
		s.listener.OnRemoved(h, class)
	}
}

// GetEventsNear returns copies of live events within maxDistance of pos, nearest first
func (r *Router) GetEventsNear(pos vmath.Vec2, maxDistance float64) []Event {
	if r.field == nil || maxDistance < 0 {
		return nil
	}
	limit := maxDistance * maxDistance
	var out []Event
	r.field.each(func(ev *Event) {
		if vmath.V2DistSq(ev.Position, pos) <= limit {
			out = append(out, *ev)
		}
	})
	slices.SortStableFunc(out, func(a, b Event) int {
		da, db := vmath.V2DistSq(a.Position, pos), vmath.V2DistSq(b.Position, pos)
		switch {
		case da < db:
			return -1
		case da > db:
			return 1
		}
		return 0
	})
	return out
}
