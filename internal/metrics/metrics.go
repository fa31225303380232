package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	menuFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "diningwatch_menu_fetches_total",
			Help: "Menu page fetches by hall and outcome",
		},
		[]string{"hall", "outcome"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "diningwatch_cache_lookups_total",
			Help: "Daily cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	keywordMatches = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "diningwatch_keyword_matches_total",
			Help: "Total (hall, keyword) matches found",
		},
	)

	digestEmails = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "diningwatch_digest_emails_total",
			Help: "Digest emails by outcome",
		},
		[]string{"outcome"},
	)
)

var registerOnce sync.Once

// Init registers all collectors with the default registry.
// Must be called once at startup.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(menuFetches, cacheLookups, keywordMatches, digestEmails)
	})
}

// RecordMenuFetch records one menu fetch attempt ("ok" or "error").
func RecordMenuFetch(hall, outcome string) {
	menuFetches.WithLabelValues(hall, outcome).Inc()
}

// RecordCacheLookup records one daily-cache lookup ("hit" or "miss").
func RecordCacheLookup(outcome string) {
	cacheLookups.WithLabelValues(outcome).Inc()
}

// RecordKeywordMatches records matches found in one engine run.
func RecordKeywordMatches(n int) {
	keywordMatches.Add(float64(n))
}

// RecordDigestEmail records one digest send attempt ("sent" or "failed").
func RecordDigestEmail(outcome string) {
	digestEmails.WithLabelValues(outcome).Inc()
}
