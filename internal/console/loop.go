package console

import (
	"context"
	"errors"
	"log"
	"sync"
)

var ErrLoopStopped = errors.New("event loop stopped")

type task struct {
	fn   func(*Page)
	done chan struct{}
}

// EventLoop owns a Page and runs every mutation of it on a single goroutine.
type EventLoop struct {
	page     *Page
	tasks    chan task
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewEventLoop(page *Page) *EventLoop {
	return &EventLoop{
		page:     page,
		tasks:    make(chan task, 16),
		stopChan: make(chan struct{}),
	}
}

func (l *EventLoop) Start() {
	l.wg.Add(1)
	go l.run()
	log.Println("✅ Console event loop started")
}

func (l *EventLoop) Stop() {
	l.stopOnce.Do(func() {
		close(l.stopChan)
	})
	l.wg.Wait()
	log.Println("✅ Console event loop stopped")
}

// Do runs fn against the page on the loop goroutine and waits for it to finish.
// It must not be called from inside another task.
func (l *EventLoop) Do(ctx context.Context, fn func(*Page)) error {
	t := task{fn: fn, done: make(chan struct{})}

	select {
	case l.tasks <- t:
	case <-l.stopChan:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-t.done:
		return nil
	case <-l.stopChan:
		// The loop may still have picked the task up before exiting.
		select {
		case <-t.done:
			return nil
		default:
			return ErrLoopStopped
		}
	}
}

func (l *EventLoop) run() {
	defer l.wg.Done()

	for {
		select {
		case <-l.stopChan:
			return
		case t := <-l.tasks:
			l.execute(t)
		}
	}
}

func (l *EventLoop) execute(t task) {
	defer close(t.done)
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Console task panicked: %v\n", r)
		}
	}()
	t.fn(l.page)
}
