package policy

// Selector is a predicate over a resource's tag map. Selectors are pure and
// safe for concurrent use; compose them with And and Or.
type Selector interface {
	Matches(tags map[string]string) bool
}

type selectorFunc func(tags map[string]string) bool

func (f selectorFunc) Matches(tags map[string]string) bool { return f(tags) }

// TagEquals matches when the tag key exists with exactly value.
func TagEquals(key, value string) Selector {
	return selectorFunc(func(tags map[string]string) bool {
		v, ok := tags[key]
		return ok && v == value
	})
}

// TagExists matches when the tag key is present, regardless of value.
func TagExists(key string) Selector {
	return selectorFunc(func(tags map[string]string) bool {
		_, ok := tags[key]
		return ok
	})
}

// And matches when every sub-selector matches. And() with no arguments
// matches everything; callers guard against that at load time.
func And(selectors ...Selector) Selector {
	return selectorFunc(func(tags map[string]string) bool {
		for _, s := range selectors {
			if !s.Matches(tags) {
				return false
			}
		}
		return true
	})
}

// Or matches when at least one sub-selector matches. Or() with no arguments
// matches nothing.
func Or(selectors ...Selector) Selector {
	return selectorFunc(func(tags map[string]string) bool {
		for _, s := range selectors {
			if s.Matches(tags) {
				return true
			}
		}
		return false
	})
}

// compileSelector turns a validated SelectorSpec into a Selector.
// match_tags compiles to an AND of equality checks; match_any to an OR of
// such ANDs. When both are present the result is their conjunction.
func compileSelector(spec SelectorSpec) Selector {
	var parts []Selector

	if len(spec.MatchTags) > 0 {
		parts = append(parts, andOfEquals(spec.MatchTags))
	}

	if len(spec.MatchAny) > 0 {
		alts := make([]Selector, 0, len(spec.MatchAny))
		for _, alt := range spec.MatchAny {
			alts = append(alts, andOfEquals(alt))
		}
		parts = append(parts, Or(alts...))
	}

	if len(parts) == 1 {
		return parts[0]
	}
	return And(parts...)
}

func andOfEquals(m map[string]string) Selector {
	sels := make([]Selector, 0, len(m))
	for k, v := range m {
		sels = append(sels, TagEquals(k, v))
	}
	return And(sels...)
}
