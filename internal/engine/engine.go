// Package engine answers "for these keywords and these halls, which
// (hall, keyword) pairs match today's menus, and under which meals?"
package engine

import (
	"context"
	"log"
	"time"

	"diningwatch/internal/menu"
	"diningwatch/internal/metrics"
	"diningwatch/internal/models"
	"diningwatch/internal/textmatch"
)

// MenuSource yields raw menu documents per hall; *menu.Fetcher implements it.
type MenuSource interface {
	Halls() []models.Hall
	Menu(ctx context.Context, hall models.Hall) (string, error)
}

// Engine is the keyword matching engine. It owns no persistent state: a run
// is a pure function of the keywords, the hall filter, and today's documents.
type Engine struct {
	source MenuSource

	// Now is the clock for "today"; overridable in tests.
	Now func() time.Time
}

// New creates an engine over a menu source.
func New(source MenuSource) *Engine {
	return &Engine{source: source, Now: time.Now}
}

// Match checks the given keyword phrases against today's menus.
//
// Keywords are deduplicated preserving first-occurrence order and blank
// entries dropped; with nothing left the result is empty and no fetch
// happens. A non-empty hallsFilter restricts the run to those halls,
// otherwise all configured halls are checked, in configured order. A single
// hall's fetch or parse failure is logged and skipped, never aborting the
// batch. Halls with no matches are omitted from the result.
func (e *Engine) Match(ctx context.Context, keywords, hallsFilter []string) models.MatchResult {
	result := models.MatchResult{}

	keywords = textmatch.DedupKeywords(keywords)
	if len(keywords) == 0 {
		return result
	}

	phrases := make([][]string, len(keywords))
	for i, kw := range keywords {
		phrases[i] = textmatch.Tokens(kw)
	}

	var wanted map[string]bool
	if len(hallsFilter) > 0 {
		wanted = make(map[string]bool, len(hallsFilter))
		for _, name := range hallsFilter {
			wanted[name] = true
		}
	}

	today := e.Now()
	matches := 0

	for _, hall := range e.source.Halls() {
		if wanted != nil && !wanted[hall.Name] {
			continue
		}

		raw, err := e.source.Menu(ctx, hall)
		if err != nil {
			log.Printf("[WARN] failed to fetch menu for %s: %v", hall.Name, err)
			continue
		}

		m, err := menu.Extract(raw, today)
		if err != nil {
			log.Printf("[WARN] failed to parse menu for %s: %v", hall.Name, err)
			continue
		}
		if m.Empty() {
			m = menu.ScanLines(raw)
		}

		for meal, items := range m {
			for _, item := range items {
				tokens := textmatch.Tokens(item)
				for i, phrase := range phrases {
					if textmatch.ContainsPhrase(tokens, phrase) {
						result.Add(hall.Name, keywords[i], meal)
						matches++
					}
				}
			}
		}
	}

	metrics.RecordKeywordMatches(matches)
	return result
}
