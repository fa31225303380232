package models

import "sort"

// Meal labels recognized by the extractor. Anything without a daypart signal
// lands under MealUnspecified.
const (
	MealBreakfast   = "Breakfast"
	MealBrunch      = "Brunch"
	MealLunch       = "Lunch"
	MealDinner      = "Dinner"
	MealUnspecified = "Unspecified"
)

// Hall is a dining location with a configured menu source URL.
// The hall table is static configuration, read-only at runtime.
type Hall struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Menu maps a meal label to the ordered list of item names served under it.
type Menu map[string][]string

// Add appends an item under a meal label.
func (m Menu) Add(meal, item string) {
	m[meal] = append(m[meal], item)
}

// Empty reports whether the menu holds no items at all.
func (m Menu) Empty() bool {
	for _, items := range m {
		if len(items) > 0 {
			return false
		}
	}
	return true
}

// Meals returns the meal labels in sorted order.
func (m Menu) Meals() []string {
	meals := make([]string, 0, len(m))
	for meal := range m {
		meals = append(meals, meal)
	}
	sort.Strings(meals)
	return meals
}

// MealSet is a set of meal labels.
type MealSet map[string]struct{}

// Sorted returns the meal labels in sorted order.
func (s MealSet) Sorted() []string {
	meals := make([]string, 0, len(s))
	for meal := range s {
		meals = append(meals, meal)
	}
	sort.Strings(meals)
	return meals
}

// MatchResult maps hall name -> keyword phrase -> meals where the keyword
// matched. A keyword appears for a hall only if at least one meal under that
// hall contained it as a contiguous token phrase; halls with no matches are
// absent entirely.
type MatchResult map[string]map[string]MealSet

// Add records that keyword matched in the given hall and meal.
func (r MatchResult) Add(hall, keyword, meal string) {
	byKeyword, ok := r[hall]
	if !ok {
		byKeyword = make(map[string]MealSet)
		r[hall] = byKeyword
	}
	meals, ok := byKeyword[keyword]
	if !ok {
		meals = make(MealSet)
		byKeyword[keyword] = meals
	}
	meals[meal] = struct{}{}
}

// Empty reports whether no hall matched anything.
func (r MatchResult) Empty() bool {
	return len(r) == 0
}

// Halls returns the matched hall names in sorted order.
func (r MatchResult) Halls() []string {
	halls := make([]string, 0, len(r))
	for hall := range r {
		halls = append(halls, hall)
	}
	sort.Strings(halls)
	return halls
}

// Keywords returns the matched keywords for a hall in sorted order.
func (r MatchResult) Keywords(hall string) []string {
	keywords := make([]string, 0, len(r[hall]))
	for kw := range r[hall] {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)
	return keywords
}
