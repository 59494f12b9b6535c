package pacing

import (
	"context"
	"sync"
	"time"
)

// RenderFunc delivers one event to the surface.
type RenderFunc func(Event)

// Player plays at most one plan at a time for a single surface. Starting a
// new plan fast-forwards the pending one: its remaining frames render
// immediately and in order, so stale output never interleaves with new.
type Player struct {
	render RenderFunc

	mu  sync.Mutex
	cur *playback
}

type playback struct {
	skip chan struct{}
	done chan struct{}
}

func NewPlayer(render RenderFunc) *Player {
	return &Player{render: render}
}

// Play starts plan and returns a channel closed once it has fully rendered
// or ctx was cancelled. Cancelling ctx drops the frames not yet rendered.
func (p *Player) Play(ctx context.Context, plan Plan) <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cur != nil {
		close(p.cur.skip)
		<-p.cur.done
	}

	pb := &playback{skip: make(chan struct{}), done: make(chan struct{})}
	p.cur = pb
	go p.run(ctx, pb, plan)
	return pb.done
}

// Flush fast-forwards whatever is pending and waits for it.
func (p *Player) Flush() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cur != nil {
		close(p.cur.skip)
		<-p.cur.done
		p.cur = nil
	}
}

func (p *Player) run(ctx context.Context, pb *playback, plan Plan) {
	defer close(pb.done)

	skipping := false
	for _, f := range plan {
		if f.Delay > 0 && !skipping {
			timer := time.NewTimer(f.Delay)
			select {
			case <-timer.C:
			case <-pb.skip:
				timer.Stop()
				skipping = true
			case <-ctx.Done():
				timer.Stop()
				return
			}
		}
		if ctx.Err() != nil {
			return
		}
		p.render(f.Event)
	}
}
