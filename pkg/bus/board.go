package bus

import (
	"reflect"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	logger "github.com/sirupsen/logrus"

	"github.com/ZentaChain/zentalk-bus/pkg/protocol"
)

var logBoard = logger.WithField("process", "board")

type queueSet = mapset.Set[*Queue]

// Board routes published messages to subscribed queues. It is ready for use
// once created and safe for concurrent use; subscription changes may race
// with Publish.
type Board struct {
	copyOnDelivery bool
	log            *logger.Entry

	routes   sync.Map // reflect.Type -> queueSet
	wildcard queueSet
}

// Option configures a Board.
type Option func(*Board)

// WithCopyOnDelivery makes every recipient receive its own Copy of the
// published message.
func WithCopyOnDelivery(enabled bool) Option {
	return func(b *Board) {
		b.copyOnDelivery = enabled
	}
}

// WithLogger replaces the board's log entry.
func WithLogger(entry *logger.Entry) Option {
	return func(b *Board) {
		if entry != nil {
			b.log = entry
		}
	}
}

// NewBoard returns a board with no subscribers.
func NewBoard(opts ...Option) *Board {
	b := &Board{
		log:      logBoard,
		wildcard: mapset.NewSet[*Queue](),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// CopyOnDelivery reports whether recipients get independent copies.
func (b *Board) CopyOnDelivery() bool {
	return b.copyOnDelivery
}

// TypeOf returns the routing key of m: its exact dynamic type.
func TypeOf(m protocol.Message) reflect.Type {
	return reflect.TypeOf(m)
}

// Subscribe registers q for every future message whose concrete type is T.
func Subscribe[T protocol.Message](b *Board, q *Queue) {
	b.Subscribe(reflect.TypeFor[T](), q)
}

// Unsubscribe removes the registration of q for T.
func Unsubscribe[T protocol.Message](b *Board, q *Queue) {
	b.Unsubscribe(reflect.TypeFor[T](), q)
}

func (b *Board) route(t reflect.Type, create bool) (queueSet, bool) {
	if set, ok := b.routes.Load(t); ok {
		return set.(queueSet), true
	}
	if !create {
		return nil, false
	}
	set, _ := b.routes.LoadOrStore(t, mapset.NewSet[*Queue]())
	return set.(queueSet), true
}

// Subscribe registers q for messages whose concrete type is exactly t.
// Subtypes and interface implementations are not matched.
func (b *Board) Subscribe(t reflect.Type, q *Queue) {
	if t == nil || q == nil {
		return
	}
	set, _ := b.route(t, true)
	added := set.Add(q)

	b.log.WithFields(logger.Fields{
		"added": added,
		"type":  t.String(),
	}).Traceln("subscribing")
}

// SubscribeAll registers q for every published message.
func (b *Board) SubscribeAll(q *Queue) {
	if q == nil {
		return
	}
	added := b.wildcard.Add(q)

	b.log.WithField("added", added).Traceln("subscribing to all types")
}

// Unsubscribe removes the registration of q for t. Unknown registrations are
// ignored.
func (b *Board) Unsubscribe(t reflect.Type, q *Queue) {
	if t == nil || q == nil {
		return
	}
	set, ok := b.route(t, false)
	found := ok && set.Contains(q)
	if ok {
		set.Remove(q)
	}

	b.log.WithFields(logger.Fields{
		"found": found,
		"type":  t.String(),
	}).Traceln("unsubscribing")
}

// UnsubscribeAll removes the wildcard registration of q. Type registrations
// of q are kept.
func (b *Board) UnsubscribeAll(q *Queue) {
	if q == nil {
		return
	}
	found := b.wildcard.Contains(q)
	b.wildcard.Remove(q)

	b.log.WithField("found", found).Traceln("unsubscribing from all types")
}

// Subscribers returns the number of queues registered for t, not counting
// wildcard subscribers.
func (b *Board) Subscribers(t reflect.Type) int {
	set, ok := b.route(t, false)
	if !ok {
		return 0
	}
	return set.Cardinality()
}

// Wildcards returns the number of queues registered for all types.
func (b *Board) Wildcards() int {
	return b.wildcard.Cardinality()
}

// Publish delivers m to every queue registered for its concrete type and to
// every wildcard queue, and returns the number of deliveries. A queue
// registered both ways receives m twice. Publishing nil delivers nothing.
func (b *Board) Publish(m protocol.Message) int {
	if m == nil {
		b.log.Warnln("ignoring nil message")
		return 0
	}

	var recipients []*Queue
	if set, ok := b.route(reflect.TypeOf(m), false); ok {
		recipients = set.ToSlice()
	}
	recipients = append(recipients, b.wildcard.ToSlice()...)

	for _, q := range recipients {
		if b.copyOnDelivery {
			q.Add(m.Copy())
		} else {
			q.Add(m)
		}
	}

	if b.log.Logger.IsLevelEnabled(logger.TraceLevel) {
		b.log.WithFields(logger.Fields{
			"message":    m.Name(),
			"recipients": len(recipients),
			"copy":       b.copyOnDelivery,
		}).Traceln("published")
	}
	return len(recipients)
}
