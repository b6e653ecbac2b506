package bus

import (
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZentaChain/zentalk-bus/pkg/protocol"
)

func TestBoardRoutesByExactType(t *testing.T) {
	b := NewBoard()
	qa, qb, qc := NewQueue(), NewQueue(), NewQueue()

	Subscribe[*foo](b, qa)
	Subscribe[*bar](b, qb)
	b.SubscribeAll(qc)

	n := b.Publish(&foo{N: 1})
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, qa.Size())
	assert.Equal(t, 0, qb.Size())
	assert.Equal(t, 1, qc.Size())

	n = b.Publish(&bar{Label: "x"})
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, qa.Size())
	assert.Equal(t, 1, qb.Size())
	assert.Equal(t, 2, qc.Size())
}

func TestBoardDoesNotMatchValueTypes(t *testing.T) {
	b := NewBoard()
	q := NewQueue()
	b.Subscribe(reflect.TypeOf(foo{}), q)

	assert.Equal(t, 0, b.Publish(&foo{}))
	assert.True(t, q.Empty())
}

func TestBoardTypeAndWildcardDeliverTwice(t *testing.T) {
	b := NewBoard()
	q := NewQueue()
	Subscribe[*foo](b, q)
	b.SubscribeAll(q)

	assert.Equal(t, 2, b.Publish(&foo{N: 3}))
	assert.Equal(t, 2, q.Size())
}

func TestBoardSubscribeIsIdempotent(t *testing.T) {
	b := NewBoard()
	q := NewQueue()
	Subscribe[*foo](b, q)
	Subscribe[*foo](b, q)
	b.SubscribeAll(q)
	b.SubscribeAll(q)

	assert.Equal(t, 1, b.Subscribers(TypeOf(&foo{})))
	assert.Equal(t, 1, b.Wildcards())
	assert.Equal(t, 2, b.Publish(&foo{}))
}

func TestBoardUnsubscribe(t *testing.T) {
	b := NewBoard()
	q := NewQueue()
	Subscribe[*foo](b, q)
	b.SubscribeAll(q)

	Unsubscribe[*foo](b, q)
	assert.Equal(t, 1, b.Publish(&foo{}), "wildcard registration survives")

	b.UnsubscribeAll(q)
	assert.Equal(t, 0, b.Publish(&foo{}))

	// Removing what is not registered is a no-op.
	Unsubscribe[*foo](b, q)
	Unsubscribe[*bar](b, q)
	b.UnsubscribeAll(q)
	b.Subscribe(nil, q)
	b.Unsubscribe(nil, q)
	b.SubscribeAll(nil)

	assert.Equal(t, 1, q.Size())
	assert.Equal(t, 0, b.Subscribers(TypeOf(&bar{})))
}

func TestBoardPublishNil(t *testing.T) {
	b := NewBoard()
	q := NewQueue()
	b.SubscribeAll(q)

	assert.Equal(t, 0, b.Publish(nil))
	assert.True(t, q.Empty())
}

func TestBoardCopyOnDelivery(t *testing.T) {
	tests := []struct {
		name string
		copy bool
	}{
		{"shared", false},
		{"copied", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBoard(WithCopyOnDelivery(tt.copy))
			assert.Equal(t, tt.copy, b.CopyOnDelivery())

			q1, q2 := NewQueue(), NewQueue()
			Subscribe[*foo](b, q1)
			b.SubscribeAll(q2)

			sent := &foo{N: 42}
			require.Equal(t, 2, b.Publish(sent))

			m1, ok := q1.Remove()
			require.True(t, ok)
			m2, ok := q2.Remove()
			require.True(t, ok)

			assert.Equal(t, sent, m1)
			assert.Equal(t, sent, m2)
			if tt.copy {
				assert.NotSame(t, sent, m1)
				assert.NotSame(t, sent, m2)
				assert.NotSame(t, m1, m2)
			} else {
				assert.Same(t, sent, m1)
				assert.Same(t, sent, m2)
			}
		})
	}
}

func TestBoardConcurrentUse(t *testing.T) {
	b := NewBoard(WithCopyOnDelivery(true))
	sink := NewQueue()
	b.SubscribeAll(sink)

	const publishers = 8
	const perWorker = 200

	var wg sync.WaitGroup
	for p := 0; p < publishers; p++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				b.Publish(&foo{N: int32(i)})
			}
		}()
		go func() {
			defer wg.Done()
			q := NewQueue()
			for i := 0; i < perWorker; i++ {
				Subscribe[*bar](b, q)
				b.Publish(&bar{})
				Unsubscribe[*bar](b, q)
			}
		}()
	}
	wg.Wait()

	var foos, bars int
	for _, m := range drain(sink) {
		switch m.(type) {
		case *foo:
			foos++
		case *bar:
			bars++
		}
	}
	assert.Equal(t, publishers*perWorker, foos)
	assert.Equal(t, publishers*perWorker, bars)
	assert.Equal(t, 0, b.Subscribers(TypeOf(&bar{})))
}

func TestTypeOf(t *testing.T) {
	var m protocol.Message = &foo{}
	assert.Equal(t, reflect.TypeFor[*foo](), TypeOf(m))
	assert.NotEqual(t, TypeOf(m), TypeOf(&bar{}))
}
