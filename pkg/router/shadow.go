package router

import "fmt"

// Shadow reports a pattern that can never be selected because an earlier
// pattern matches every path it matches.
type Shadow struct {
	// Pattern is the unreachable pattern.
	Pattern *Pattern

	// By is the earlier pattern that wins every time.
	By *Pattern

	// Index and ByIndex are the table positions of both patterns.
	Index   int
	ByIndex int
}

func (s Shadow) String() string {
	return fmt.Sprintf("route %d %s (%s) is shadowed by route %d %s (%s)",
		s.Index, s.Pattern.Raw, s.Pattern.ViewID, s.ByIndex, s.By.Raw, s.By.ViewID)
}

// Shadowed returns every pattern made unreachable by table order.
//
// Pattern B is shadowed by an earlier pattern A when both have the same
// segment count and, position by position, A has a parameter or the same
// literal as B. Declaring a literal route after a parameter route with the
// same shape is the usual cause:
//
//	/app/edit/:appId
//	/app/edit/new      ← never selected
func (t *Table) Shadowed() []Shadow {
	var out []Shadow
	for j, b := range t.patterns {
		for i := 0; i < j; i++ {
			a := t.patterns[i]
			if covers(a, b) {
				out = append(out, Shadow{Pattern: b, By: a, Index: j, ByIndex: i})
				break
			}
		}
	}
	return out
}

// covers reports whether every path matched by b is also matched by a.
func covers(a, b *Pattern) bool {
	if len(a.Segments) != len(b.Segments) {
		return false
	}
	for i, sa := range a.Segments {
		if sa.Param {
			continue
		}
		sb := b.Segments[i]
		if sb.Param || sb.Text != sa.Text {
			return false
		}
	}
	return true
}
