package slots

import (
	"fmt"
	"sort"
	"strings"
)

// MergeSlots resolves every declared slot: the override when present,
// non-null and shaped for the slot's kind, else the default. Ids that are
// not declared never appear in the result.
func MergeSlots(cfg Config, overrides Overrides) Values {
	values := make(Values, len(cfg.slots))
	for _, s := range cfg.slots {
		if o, ok := overrides[s.ID]; ok && o != nil && o.fits(s.Kind) {
			values[s.ID] = *o
			continue
		}
		values[s.ID] = s.Default
	}
	return values
}

// Defaults returns the compiled-in value of every declared slot.
func Defaults(cfg Config) Values {
	return MergeSlots(cfg, nil)
}

// CheckOverrides reports override ids that are not declared or whose value
// does not fit the declared kind. Merging tolerates both; writers should not.
func CheckOverrides(cfg Config, overrides Overrides) error {
	var problems []string
	for id, v := range overrides {
		s, ok := cfg.Lookup(id)
		if !ok {
			problems = append(problems, fmt.Sprintf("%s: not a declared slot", id))
			continue
		}
		if v != nil && !v.fits(s.Kind) {
			problems = append(problems, fmt.Sprintf("%s: value does not fit kind %s", id, s.Kind))
		}
	}
	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return fmt.Errorf("invalid slot overrides: %s", strings.Join(problems, "; "))
}
