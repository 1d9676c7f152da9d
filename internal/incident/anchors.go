package incident

import (
	"strings"
)

// Anchor is a named predicate over flattened row text. All set conditions
// must hold; AnyOf, when present, replaces them with a disjunction.
type Anchor struct {
	Name        string   `yaml:"name"`
	ContainsAll []string `yaml:"contains_all"`
	Prefix      string   `yaml:"prefix"`
	Equals      string   `yaml:"equals"`
	AnyOf       []Anchor `yaml:"any_of"`
}

func (a Anchor) hasCondition() bool {
	return len(a.ContainsAll) > 0 || a.Prefix != "" || a.Equals != "" || len(a.AnyOf) > 0
}

// Match reports whether the row text satisfies the anchor
func (a Anchor) Match(line string) bool {
	if len(a.AnyOf) > 0 {
		for _, alt := range a.AnyOf {
			if alt.Match(line) {
				return true
			}
		}
		return false
	}

	if !a.hasCondition() {
		return false
	}
	for _, word := range a.ContainsAll {
		if !strings.Contains(line, word) {
			return false
		}
	}
	if a.Prefix != "" && !strings.HasPrefix(line, a.Prefix) {
		return false
	}
	if a.Equals != "" && line != a.Equals {
		return false
	}
	return true
}

// AnchorIndex maps anchor names to the ascending row indexes they match.
// Anchors that match nothing are absent.
type AnchorIndex map[string][]int

// IndexAnchors evaluates every anchor once against the page lines
func IndexAnchors(anchors []Anchor, lines []string) AnchorIndex {
	index := make(AnchorIndex)
	for _, anchor := range anchors {
		for i, line := range lines {
			if anchor.Match(line) {
				index[anchor.Name] = append(index[anchor.Name], i)
			}
		}
	}
	return index
}

// First returns the first row matching the anchor
func (ix AnchorIndex) First(name string) (int, bool) {
	rows := ix[name]
	if len(rows) == 0 {
		return 0, false
	}
	return rows[0], true
}

// After returns the first row matching the anchor strictly below row from
func (ix AnchorIndex) After(name string, from int) (int, bool) {
	for _, row := range ix[name] {
		if row > from {
			return row, true
		}
	}
	return 0, false
}
