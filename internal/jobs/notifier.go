package jobs

import (
	"context"
	"log"
	"time"
)

// Runner is one dispatcher pass; *notify.Dispatcher implements it.
type Runner interface {
	Run(ctx context.Context) error
}

// Notifier triggers dispatcher passes on an interval. Runs are sequential:
// a tick that arrives while a pass is still going waits for it. The daily
// cache and the last-notified date make extra passes within a day cheap and
// duplicate-free.
type Notifier struct {
	dispatcher Runner
	interval   time.Duration
}

// NewNotifier creates a notifier job.
func NewNotifier(dispatcher Runner, interval time.Duration) *Notifier {
	return &Notifier{
		dispatcher: dispatcher,
		interval:   interval,
	}
}

// Start begins the background notification loop. Runs immediately on start,
// then on every tick, until the context is cancelled.
func (n *Notifier) Start(ctx context.Context) {
	log.Printf("Notifier started (interval: %v)", n.interval)

	if err := n.dispatcher.Run(ctx); err != nil {
		log.Printf("Notifier: run failed: %v", err)
	}

	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Notifier stopped")
			return
		case <-ticker.C:
			if err := n.dispatcher.Run(ctx); err != nil {
				log.Printf("Notifier: run failed: %v", err)
			}
		}
	}
}
