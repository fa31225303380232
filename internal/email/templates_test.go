package email

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diningwatch/internal/config"
	"diningwatch/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{SiteTitle: "Dining Watch", BaseURL: "http://localhost:3000"}
}

func sampleResult() models.MatchResult {
	r := models.MatchResult{}
	r.Add("Simmons Hall", "shrimp", models.MealBrunch)
	r.Add("Simmons Hall", "shrimp", models.MealDinner)
	r.Add("Simmons Hall", "jalapeno poppers", models.MealBreakfast)
	r.Add("Baker House", "shrimp", models.MealLunch)
	return r
}

func TestDigest_SubjectCarriesDay(t *testing.T) {
	tpl := NewTemplates(testConfig())
	day := time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)

	subject, _, _ := tpl.Digest(sampleResult(), day)
	assert.Equal(t, "[Dining Watch] Your tracked items are on the menu today! (2025-03-14)", subject)
}

func TestDigest_TextBodyOrdering(t *testing.T) {
	tpl := NewTemplates(testConfig())
	day := time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)

	_, _, text := tpl.Digest(sampleResult(), day)

	// halls alphabetical, keywords alphabetical within hall, meals sorted
	wantOrder := []string{
		"Baker House:",
		"  shrimp:",
		"    - Lunch",
		"Simmons Hall:",
		"  jalapeno poppers:",
		"    - Breakfast",
		"  shrimp:",
		"    - Brunch",
		"    - Dinner",
	}
	// duplicate lines ("  shrimp:" appears under both halls) mean each match
	// has to be searched for after the previous one
	pos := 0
	for _, line := range wantOrder {
		idx := strings.Index(text[pos:], line)
		require.True(t, idx >= 0, "missing or out-of-order line %q in:\n%s", line, text)
		pos += idx + len(line)
	}
}

func TestDigest_Deterministic(t *testing.T) {
	tpl := NewTemplates(testConfig())
	day := time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)

	s1, h1, t1 := tpl.Digest(sampleResult(), day)
	s2, h2, t2 := tpl.Digest(sampleResult(), day)
	assert.Equal(t, s1, s2)
	assert.Equal(t, h1, h2)
	assert.Equal(t, t1, t2)
}

func TestDigest_EscapesHTML(t *testing.T) {
	tpl := NewTemplates(testConfig())
	r := models.MatchResult{}
	r.Add("Simmons Hall", "<script>alert(1)</script>", models.MealLunch)

	_, html, _ := tpl.Digest(r, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC))
	assert.NotContains(t, html, "<script>alert(1)</script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestWelcome_ListsKeywords(t *testing.T) {
	tpl := NewTemplates(testConfig())

	subject, html, text := tpl.Welcome([]string{"shrimp", "jalapeno poppers"})

	assert.Equal(t, "[Dining Watch] Subscription confirmed", subject)
	assert.Contains(t, html, "shrimp, jalapeno poppers")
	assert.Contains(t, text, "shrimp, jalapeno poppers")
	assert.Contains(t, text, "at most one email per day")
}
