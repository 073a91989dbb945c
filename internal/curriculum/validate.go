package curriculum

import (
	"fmt"
	"strings"
)

// validate performs structural checks on a decoded catalog and returns a
// combined error describing every problem found.
func validate(doc document) error {
	var errs []string

	subjects := make(map[string]bool, len(doc.Subjects))
	for _, s := range doc.Subjects {
		if subjects[s.ID] {
			errs = append(errs, fmt.Sprintf("duplicate subject ID: %q", s.ID))
		}
		subjects[s.ID] = true
	}

	concepts := make(map[string]bool, len(doc.Concepts))
	for _, c := range doc.Concepts {
		if concepts[c.ID] {
			errs = append(errs, fmt.Sprintf("duplicate concept ID: %q", c.ID))
		}
		concepts[c.ID] = true
		if !subjects[c.Subject] {
			errs = append(errs, fmt.Sprintf("concept %q references unknown subject %q", c.ID, c.Subject))
		}
	}

	slugs := make(map[string]bool, len(doc.Lessons))
	for _, l := range doc.Lessons {
		if l.Slug == "" {
			errs = append(errs, fmt.Sprintf("lesson %q has no slug", l.Title))
			continue
		}
		if slugs[l.Slug] {
			errs = append(errs, fmt.Sprintf("duplicate lesson slug: %q", l.Slug))
		}
		slugs[l.Slug] = true
		if !concepts[l.ConceptID] {
			errs = append(errs, fmt.Sprintf("lesson %q references unknown concept %q", l.Slug, l.ConceptID))
		}
		if len(l.Checks) == 0 {
			errs = append(errs, fmt.Sprintf("lesson %q has no checks", l.Slug))
		}
		for i, ch := range l.Checks {
			if strings.TrimSpace(ch.Question) == "" || strings.TrimSpace(ch.Answer) == "" {
				errs = append(errs, fmt.Sprintf("lesson %q check %d is missing a question or answer", l.Slug, i))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("curriculum validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
