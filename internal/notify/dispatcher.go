// Package notify iterates subscriptions, runs the matching engine for each,
// and emails a digest to every subscriber with matches, at most once per day.
package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	"diningwatch/internal/email"
	"diningwatch/internal/metrics"
	"diningwatch/internal/models"
)

// SubscriptionStore is the persistence collaborator.
type SubscriptionStore interface {
	ListSubscriptions(ctx context.Context) ([]models.Subscription, error)
	SetLastNotified(ctx context.Context, email string, day time.Time) error
}

// Matcher is the keyword matching engine collaborator.
type Matcher interface {
	Match(ctx context.Context, keywords, hallsFilter []string) models.MatchResult
}

// Mailer is the email sink collaborator.
type Mailer interface {
	IsEnabled() bool
	Send(to []string, subject, htmlBody, textBody string) error
}

// Dispatcher runs one notification pass over all subscriptions. It is meant
// to be invoked once per day by an external trigger (cron or the in-process
// scheduler).
type Dispatcher struct {
	store     SubscriptionStore
	engine    Matcher
	mailer    Mailer
	templates *email.Templates

	// Force re-notifies subscribers already notified today (debugging aid).
	Force bool

	// Now is the clock for "today"; overridable in tests.
	Now func() time.Time
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(store SubscriptionStore, engine Matcher, mailer Mailer, templates *email.Templates) *Dispatcher {
	return &Dispatcher{
		store:     store,
		engine:    engine,
		mailer:    mailer,
		templates: templates,
		Now:       time.Now,
	}
}

// Run processes every subscription once. Per-subscriber failures are logged
// and skipped; only a failure to list subscriptions aborts the pass.
//
// The last-notified date advances only after a confirmed send: a failed send
// leaves the subscriber eligible for the next run.
func (d *Dispatcher) Run(ctx context.Context) error {
	today := d.Now()
	subs, err := d.store.ListSubscriptions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list subscriptions: %w", err)
	}

	log.Printf("Dispatcher: processing %d subscriptions", len(subs))

	for i := range subs {
		sub := &subs[i]

		if len(sub.Keywords) == 0 {
			log.Printf("Dispatcher: %s has no keywords, skipping", sub.Email)
			continue
		}
		if !d.Force && sub.NotifiedOn(today) {
			continue
		}

		result := d.engine.Match(ctx, sub.Keywords, sub.Halls)
		if result.Empty() {
			log.Printf("Dispatcher: no matches today for %s", sub.Email)
			continue
		}

		if !d.mailer.IsEnabled() {
			log.Printf("Dispatcher: email disabled, would notify %s about %d halls", sub.Email, len(result))
			continue
		}

		subject, htmlBody, textBody := d.templates.Digest(result, today)
		if err := d.mailer.Send([]string{sub.Email}, subject, htmlBody, textBody); err != nil {
			metrics.RecordDigestEmail("failed")
			log.Printf("Dispatcher: failed to email %s: %v", sub.Email, err)
			continue
		}
		metrics.RecordDigestEmail("sent")
		log.Printf("Dispatcher: emailed %s about %d halls", sub.Email, len(result))

		if err := d.store.SetLastNotified(ctx, sub.Email, today); err != nil {
			log.Printf("Dispatcher: failed to record last-notified for %s: %v", sub.Email, err)
		}
	}

	return nil
}
