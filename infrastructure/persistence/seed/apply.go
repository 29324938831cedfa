package seed

import (
	"context"
	"fmt"
	"sort"

	"loopsite/application/designed"
	"loopsite/application/ports"
	"loopsite/domain/slots"
)

// Check validates a bundle against the designed pages: stored pages may not
// sit on designed paths, and overrides must target a designed page and fit
// its declared slots.
func (b *Bundle) Check(registry *designed.Registry) error {
	var problems []string
	for _, p := range b.Pages {
		if registry.Contains(p.Path) {
			problems = append(problems, fmt.Sprintf("page %q is served by a designed page", "/"+p.Path))
		}
	}
	for _, path := range b.slotPaths() {
		page, ok := registry.Lookup(path)
		if !ok || page.Path() != path {
			problems = append(problems, fmt.Sprintf("slots for %q: no designed page at that path", "/"+path))
			continue
		}
		if err := slots.CheckOverrides(page.Slots(), b.Slots[path]); err != nil {
			problems = append(problems, fmt.Sprintf("slots for %q: %v", "/"+path, err))
		}
	}
	if len(problems) > 0 {
		return &CheckError{Problems: problems}
	}
	return nil
}

// CheckError lists every problem Check found
type CheckError struct {
	Problems []string
}

func (e *CheckError) Error() string {
	if len(e.Problems) == 1 {
		return e.Problems[0]
	}
	return fmt.Sprintf("%d seed problems, first: %s", len(e.Problems), e.Problems[0])
}

func (b *Bundle) slotPaths() []string {
	paths := make([]string, 0, len(b.Slots))
	for p := range b.Slots {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Apply writes the bundle through a store's write port. Existing content
// that the bundle does not mention is left in place.
func Apply(ctx context.Context, store ports.PageWriter, b *Bundle) error {
	for _, p := range b.Pages {
		if err := store.SavePage(ctx, p); err != nil {
			return fmt.Errorf("failed to seed page %q: %w", "/"+p.Path, err)
		}
	}
	for _, path := range b.slotPaths() {
		if err := store.SaveSlotOverrides(ctx, path, b.Slots[path]); err != nil {
			return fmt.Errorf("failed to seed slots for %q: %w", "/"+path, err)
		}
	}
	return nil
}
