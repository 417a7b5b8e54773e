package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/homerun/internal/adapters/mq/queue"
	worker "github.com/okian/homerun/internal/adapters/mq/worker"
	"github.com/okian/homerun/internal/domain/types"
	logging "github.com/okian/homerun/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// mockBuilder records the players it was asked to build.
type mockBuilder struct {
	mu     sync.Mutex
	built  []string
	errors map[string]error
	delay  time.Duration
}

func newMockBuilder() *mockBuilder {
	return &mockBuilder{errors: make(map[string]error)}
}

func (b *mockBuilder) Dashboard(ctx context.Context, player string) (types.Dashboard, error) {
	if b.delay > 0 {
		select {
		case <-time.After(b.delay):
		case <-ctx.Done():
			return types.Dashboard{}, ctx.Err()
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err, ok := b.errors[player]; ok {
		return types.Dashboard{}, err
	}
	b.built = append(b.built, player)
	return types.Dashboard{Dashboard: []string{"{}"}}, nil
}

func (b *mockBuilder) builtPlayers() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.built...)
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker reading a queue", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		b := newMockBuilder()
		b.errors["broken"] = errors.New("missing field")
		w := worker.NewInMemoryWorker(q, b, worker.WithName("test"), worker.WithLogger(logging.Nop()))

		convey.Convey("When jobs are queued", func() {
			q.Enqueue(ctx, queue.Job{Player: "A"})
			q.Enqueue(ctx, queue.Job{Player: "broken"})
			q.Enqueue(ctx, queue.Job{Player: "B"})
			go w.Run(ctx)

			convey.Convey("Then successful builds and failures are counted", func() {
				convey.So(waitFor(func() bool { return w.Processed()+w.Failed() == 3 }), convey.ShouldBeTrue)
				convey.So(w.Processed(), convey.ShouldEqual, 2)
				convey.So(w.Failed(), convey.ShouldEqual, 1)
				convey.So(b.builtPlayers(), convey.ShouldResemble, []string{"A", "B"})
				convey.So(w.Shutdown(ctx), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the queue closes", func() {
			_ = q.Close()
			done := make(chan struct{})
			go func() {
				w.Run(ctx)
				close(done)
			}()

			convey.Convey("Then the worker stops", func() {
				select {
				case <-done:
					convey.So(true, convey.ShouldBeTrue)
				case <-time.After(2 * time.Second):
					convey.So("worker still running", convey.ShouldBeEmpty)
				}
			})
		})

		convey.Convey("When a build outlives the job timeout", func() {
			b.delay = time.Second
			slow := worker.NewInMemoryWorker(q, b, worker.WithJobTimeout(10*time.Millisecond))
			q.Enqueue(ctx, queue.Job{Player: "A"})
			go slow.Run(ctx)

			convey.Convey("Then it is counted as failed", func() {
				convey.So(waitFor(func() bool { return slow.Failed() == 1 }), convey.ShouldBeTrue)
				convey.So(slow.Shutdown(ctx), convey.ShouldBeNil)
			})
		})

		convey.Convey("When shutdown outlasts its context", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			convey.Convey("Then a timeout error is returned", func() {
				convey.So(w.Shutdown(cctx), convey.ShouldNotBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool of three workers", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		b := newMockBuilder()
		pool := worker.NewPool(3, q, b, worker.WithLogger(logging.Nop()))
		pool.Start(ctx)

		convey.Convey("When many jobs are queued", func() {
			for _, p := range []string{"A", "B", "C", "D", "E", "F", "G", "H"} {
				q.Enqueue(ctx, queue.Job{Player: p})
			}

			convey.Convey("Then every dashboard is built once", func() {
				convey.So(waitFor(func() bool { return pool.Processed() == 8 }), convey.ShouldBeTrue)
				convey.So(b.builtPlayers(), convey.ShouldHaveLength, 8)
				convey.So(pool.Failed(), convey.ShouldEqual, 0)
				convey.So(pool.Shutdown(ctx), convey.ShouldBeNil)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given a pool with a non-positive worker count", t, func() {
		q := queue.NewInMemoryQueue()
		pool := worker.NewPool(0, q, newMockBuilder())
		pool.Start(context.Background())

		convey.So(pool.Shutdown(context.Background()), convey.ShouldBeNil)
	})
}

// depthRecorder keeps the last size a queue reported.
type depthRecorder struct {
	mu   sync.Mutex
	last int
	seen int
}

func (d *depthRecorder) observe(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.last = n
	d.seen++
}

func (d *depthRecorder) get() (last, seen int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last, d.seen
}

func TestWorkerReportsQueueDepth(t *testing.T) {
	convey.Convey("Given a queue holding three jobs", t, func() {
		ctx := context.Background()
		depth := &depthRecorder{}
		q := queue.NewInMemoryQueue(queue.WithCapacity(10), queue.WithSizeObserver(depth.observe))
		for _, p := range []string{"A", "B", "C"} {
			q.Enqueue(ctx, queue.Job{Player: p})
		}
		last, _ := depth.get()
		convey.So(last, convey.ShouldEqual, 3)

		convey.Convey("When a worker drains it", func() {
			w := worker.NewInMemoryWorker(q, newMockBuilder(), worker.WithLogger(logging.Nop()))
			go w.Run(ctx)
			convey.So(waitFor(func() bool { return w.Processed() == 3 }), convey.ShouldBeTrue)

			convey.Convey("Then the reported depth falls back to zero", func() {
				last, seen := depth.get()
				convey.So(last, convey.ShouldEqual, 0)
				// one report at construction, three enqueues, three receives
				convey.So(seen, convey.ShouldEqual, 7)
				convey.So(w.Shutdown(ctx), convey.ShouldBeNil)
			})
		})
	})
}
