package menu

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"diningwatch/internal/models"
)

// maxItemLength excludes paragraph-level text from the markup heuristics.
const maxItemLength = 120

// Strategy turns a parsed menu page into a meal->items mapping. Strategies
// return an empty menu when they recognize nothing; the caller tries the next
// one in the chain.
type Strategy func(doc *goquery.Document, today time.Time) models.Menu

// Strategies is the default extraction chain, tried in order until one yields
// a non-empty result. The line-scan degraded mode is deliberately not part of
// it; callers opt into it via ScanLines when the chain comes up empty.
func Strategies() []Strategy {
	return []Strategy{ExtractStructured, ExtractMarkup}
}

// Extract parses a raw menu document and runs the default strategy chain.
// A document with no recognizable items yields an empty menu, not an error.
func Extract(raw string, today time.Time) (models.Menu, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse menu document: %w", err)
	}
	for _, strategy := range Strategies() {
		if m := strategy(doc, today); !m.Empty() {
			return m, nil
		}
	}
	return models.Menu{}, nil
}

// --- strategy 1: embedded structured data ---

var assignmentRe = regexp.MustCompile(`=\s*([\[{])`)

// ExtractStructured scans script blobs for embedded JSON payloads (bare, or
// wrapped in a variable assignment the way Bon Appetit pages embed their
// daypart data) and walks them for daypart labels and item names.
func ExtractStructured(doc *goquery.Document, _ time.Time) models.Menu {
	m := models.Menu{}
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		for _, payload := range jsonPayloads(s.Text()) {
			var node any
			if err := json.Unmarshal([]byte(payload), &node); err != nil {
				continue
			}
			walkStructured(node, "", m)
		}
	})
	return m
}

// jsonPayloads extracts candidate JSON documents from a script body: the
// whole body when it is bare JSON, otherwise every balanced object or array
// on the right-hand side of an assignment.
func jsonPayloads(script string) []string {
	trimmed := strings.TrimSpace(script)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return []string{trimmed}
	}

	var payloads []string
	for _, loc := range assignmentRe.FindAllStringSubmatchIndex(script, -1) {
		start := loc[2] // position of the opening brace/bracket
		if payload, ok := balancedJSON(script[start:]); ok {
			payloads = append(payloads, payload)
		}
	}
	return payloads
}

// balancedJSON returns the prefix of s forming one balanced JSON object or
// array, skipping brackets inside string literals.
func balancedJSON(s string) (string, bool) {
	depth := 0
	inString := false
	escaped := false
	for i, r := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
			if depth < 0 {
				return "", false
			}
		}
	}
	return "", false
}

// daypartKeys are the node keys whose list entries carry a meal label that
// becomes the context for everything nested beneath them.
var daypartKeys = map[string]bool{
	"dayparts":     true,
	"daypart":      true,
	"meal_periods": true,
	"mealPeriods":  true,
	"meals":        true,
}

// itemKeys are the node keys whose list entries are menu items.
var itemKeys = map[string]bool{
	"items":      true,
	"menu_items": true,
	"menuItems":  true,
}

// walkStructured accumulates items into m, carrying the current meal label
// down the traversal. Map keys are visited in sorted order so extraction is
// deterministic.
func walkStructured(node any, meal string, m models.Menu) {
	switch v := node.(type) {
	case []any:
		for _, child := range v {
			walkStructured(child, meal, m)
		}
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			child := v[key]
			switch {
			case daypartKeys[key]:
				list, ok := child.([]any)
				if !ok {
					walkStructured(child, meal, m)
					continue
				}
				for _, entry := range list {
					entryMeal := meal
					if em, ok := entry.(map[string]any); ok {
						if label := firstString(em, "label", "name", "title"); label != "" {
							entryMeal = canonicalMeal(label)
						}
					}
					walkStructured(entry, entryMeal, m)
				}
			case itemKeys[key]:
				collectItems(child, meal, m)
			default:
				walkStructured(child, meal, m)
			}
		}
	}
}

// collectItems pulls item display names out of an "items" node.
func collectItems(node any, meal string, m models.Menu) {
	list, ok := node.([]any)
	if !ok {
		// some payloads key items by id rather than listing them
		byID, ok := node.(map[string]any)
		if !ok {
			return
		}
		keys := make([]string, 0, len(byID))
		for key := range byID {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			list = append(list, byID[key])
		}
	}

	if meal == "" {
		meal = models.MealUnspecified
	}
	for _, entry := range list {
		switch item := entry.(type) {
		case string:
			if name := cleanItemText(item); name != "" {
				m.Add(meal, name)
			}
		case map[string]any:
			name := firstString(item, "label", "name", "display_name", "title")
			if name = cleanItemText(name); name != "" {
				m.Add(meal, name)
			}
		}
	}
}

// firstString returns the first non-empty string field among the given keys.
func firstString(node map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := node[key].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}

// --- strategy 2: markup heuristics ---

// itemSelectors are item-like selectors tried in priority order within the
// "today" subtree.
var itemSelectors = []string{
	".site-panel__daypart-item-title",
	".menu-item__name",
	".menu-item-name",
	".recipe__title",
	"li.menu-item",
	".menu-item",
}

// genericSelectors is the fallback scan when no item-like selector matches.
const genericSelectors = "li, td"

// ExtractMarkup walks the markup of a menu page: it narrows to the subtree
// for today when one can be found, selects item-like elements, and resolves
// each item's meal from a bracketed meal code or the nearest preceding
// daypart heading.
func ExtractMarkup(doc *goquery.Document, today time.Time) models.Menu {
	m := models.Menu{}
	root := todaySection(doc, today)

	candidates := emptySelection(doc)
	for _, sel := range itemSelectors {
		if found := root.Find(sel); found.Length() > 0 {
			candidates = found
			break
		}
	}
	if candidates.Length() == 0 {
		candidates = root.Find(genericSelectors)
	}

	candidates.Each(func(_ int, s *goquery.Selection) {
		text := collapseSpace(s.Text())
		if text == "" || utf8.RuneCountInString(text) > maxItemLength {
			return
		}
		// a bare daypart heading swept up by the generic scan is not an item
		if mealFromText(text) != "" && len(strings.Fields(text)) == 1 {
			return
		}

		name, meal := stripMealCode(text)
		if meal == "" {
			meal = precedingMeal(s)
		}
		if meal == "" {
			meal = models.MealUnspecified
		}

		if name = cleanItemText(name); name != "" {
			m.Add(meal, name)
		}
	})
	return m
}

// dateFormats are the textual date renderings recognized when hunting for
// the "today" subtree.
var dateFormats = []string{
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"1/2/2006",
	"01/02/2006",
}

// todaySection narrows the document to the subtree covering today. It tries
// a date attribute, then a day-label attribute, then headings whose text
// carries today's date or the literal word "Today". Without any signal the
// whole document is used.
func todaySection(doc *goquery.Document, today time.Time) *goquery.Selection {
	for _, format := range dateFormats {
		sel := fmt.Sprintf("[data-date=%q]", today.Format(format))
		if s := doc.Find(sel); s.Length() > 0 {
			return s.First()
		}
	}
	if s := doc.Find(`[data-day="today"], [data-day="Today"]`); s.Length() > 0 {
		return s.First()
	}

	var found *goquery.Selection
	doc.Find("h1, h2, h3, h4, header, .date, .day").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := collapseSpace(s.Text())
		if text == "" {
			return true
		}
		if !textMentionsDay(text, today) {
			return true
		}
		if parent := s.Parent(); parent.Length() > 0 {
			found = parent
		} else {
			found = s
		}
		return false
	})
	if found != nil {
		return found
	}

	return doc.Selection
}

func textMentionsDay(text string, today time.Time) bool {
	for _, format := range dateFormats {
		if strings.Contains(text, today.Format(format)) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(text), "today")
}

// mealCodeRe matches a bracketed meal-code tag at either end of an item name,
// e.g. "[b] Scrambled Eggs" or "Pad Thai (d)".
var mealCodeRe = regexp.MustCompile(`^\s*[\[(]([A-Za-z]{1,3})[\])]\s*|\s*[\[(]([A-Za-z]{1,3})[\])]\s*$`)

// stripMealCode removes a bracketed meal-code tag from an item name and
// returns the meal it implies, if any.
func stripMealCode(text string) (name, meal string) {
	match := mealCodeRe.FindStringSubmatch(text)
	if match == nil {
		return text, ""
	}
	code := match[1]
	if code == "" {
		code = match[2]
	}
	if meal = mealFromCode(code); meal == "" {
		// bracketed tag but not a meal code; leave the name alone
		return text, ""
	}
	return strings.TrimSpace(mealCodeRe.ReplaceAllString(text, "")), meal
}

// mealFromCode decodes a meal-code tag: a code containing "br" means Brunch,
// otherwise "b" Breakfast, "l" Lunch, "d" Dinner.
func mealFromCode(code string) string {
	code = strings.ToLower(code)
	switch {
	case strings.Contains(code, "br"):
		return models.MealBrunch
	case strings.Contains(code, "b"):
		return models.MealBreakfast
	case strings.Contains(code, "l"):
		return models.MealLunch
	case strings.Contains(code, "d"):
		return models.MealDinner
	}
	return ""
}

const headingSelector = "h1, h2, h3, h4, h5"

// precedingMeal resolves an item's meal from the nearest preceding heading
// whose text names a daypart, climbing ancestors when the current level has
// no preceding siblings left.
func precedingMeal(s *goquery.Selection) string {
	for cur := s; cur.Length() > 0; cur = cur.Parent() {
		meal := ""
		cur.PrevAll().EachWithBreak(func(_ int, sib *goquery.Selection) bool {
			heading := sib
			if !sib.Is(headingSelector) {
				heading = sib.Find(headingSelector).Last()
				if heading.Length() == 0 {
					return true
				}
			}
			if found := mealFromText(heading.Text()); found != "" {
				meal = found
				return false
			}
			return true
		})
		if meal != "" {
			return meal
		}
		if cur.Is("body, html") {
			break
		}
	}
	return ""
}

// mealFromText maps free text to a canonical daypart label.
func mealFromText(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "brunch"):
		return models.MealBrunch
	case strings.Contains(lower, "breakfast"):
		return models.MealBreakfast
	case strings.Contains(lower, "lunch"):
		return models.MealLunch
	case strings.Contains(lower, "dinner"):
		return models.MealDinner
	}
	return ""
}

// canonicalMeal keeps known daypart labels canonical and passes anything
// else through as-is.
func canonicalMeal(label string) string {
	if meal := mealFromText(label); meal != "" {
		return meal
	}
	return strings.TrimSpace(label)
}

// --- degraded mode: line scan ---

// ScanLines is the last-resort degraded mode: every non-empty line of
// visible text becomes an "Unspecified" item. Callers engage it only when
// the strategy chain produced nothing.
func ScanLines(raw string) models.Menu {
	m := models.Menu{}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return m
	}
	doc.Find("script, noscript, style").Each(func(_ int, s *goquery.Selection) {
		s.Remove()
	})

	for _, line := range strings.Split(doc.Text(), "\n") {
		if line = collapseSpace(line); line != "" {
			m.Add(models.MealUnspecified, line)
		}
	}
	return m
}

// --- shared text cleanup ---

var whitespaceRe = regexp.MustCompile(`\s+`)

func collapseSpace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// boilerplateSuffixes are trailing fragments menu sites append to item names.
var boilerplateSuffixes = []string{
	"nutrition + ingredients",
	"nutrition & ingredients",
	"nutrition and ingredients",
	"nutrition information",
	"view nutrition",
}

// cleanItemText collapses whitespace and strips trailing site boilerplate
// from an item name.
func cleanItemText(s string) string {
	s = collapseSpace(s)
	lower := strings.ToLower(s)
	for _, suffix := range boilerplateSuffixes {
		if strings.HasSuffix(lower, suffix) {
			s = strings.TrimSpace(s[:len(s)-len(suffix)])
			lower = strings.ToLower(s)
		}
	}
	return s
}

// emptySelection returns a selection with no nodes from the given document.
func emptySelection(doc *goquery.Document) *goquery.Selection {
	return doc.Find("__none__")
}
