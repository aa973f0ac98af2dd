package content

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// Source is the decoded, unvalidated content set.
type Source struct {
	Site        Site
	Properties  []Property
	Activities  []Activity
	Events      []Event
	Comparisons []Comparison
	BestOf      []BestOfList
	Months      []MonthlyGuide
	Lifestyle   []LifestyleScenario
	Places      []Place
}

// Snapshot is the validated, read-only content set shared by every request.
type Snapshot struct {
	Site        Site
	Properties  *Collection[Property]
	Activities  *Collection[Activity]
	Events      *Collection[Event]
	Comparisons *Collection[Comparison]
	BestOf      *Collection[BestOfList]
	Months      *Collection[MonthlyGuide]
	Lifestyle   *Collection[LifestyleScenario]
	Places      *Collection[Place]
}

// Build validates src and indexes every kind. All problems found are
// returned together.
func Build(src Source) (*Snapshot, error) {
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	if src.Site.Name == "" {
		collect(errors.New("site: empty name"))
	}

	s := &Snapshot{Site: src.Site}
	var err error
	s.Properties, err = NewCollection(KindProperty, src.Properties)
	collect(err)
	s.Activities, err = NewCollection(KindActivity, src.Activities)
	collect(err)
	s.Events, err = NewCollection(KindEvent, src.Events)
	collect(err)
	s.Comparisons, err = NewCollection(KindComparison, src.Comparisons)
	collect(err)
	s.BestOf, err = NewCollection(KindBestOf, src.BestOf)
	collect(err)
	s.Months, err = NewCollection(KindMonthlyGuide, src.Months)
	collect(err)
	s.Lifestyle, err = NewCollection(KindLifestyle, src.Lifestyle)
	collect(err)
	s.Places, err = NewCollection(KindPlace, src.Places)
	collect(err)

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := s.checkReferences(); err != nil {
		return nil, err
	}
	return s, nil
}

// checkReferences verifies kind-specific fields and cross-kind links.
func (s *Snapshot) checkReferences() error {
	var errs []error
	for _, e := range s.Events.items {
		start, err := time.Parse(DateLayout, e.StartDate)
		if err != nil {
			errs = append(errs, fmt.Errorf("event %q: start_date %q: want YYYY-MM-DD", e.Slug, e.StartDate))
			continue
		}
		if e.EndDate == "" {
			continue
		}
		end, err := time.Parse(DateLayout, e.EndDate)
		if err != nil {
			errs = append(errs, fmt.Errorf("event %q: end_date %q: want YYYY-MM-DD", e.Slug, e.EndDate))
			continue
		}
		if end.Before(start) {
			errs = append(errs, fmt.Errorf("event %q: end_date before start_date", e.Slug))
		}
	}
	for _, c := range s.Comparisons.items {
		if c.OptionA.Name == "" || c.OptionB.Name == "" {
			errs = append(errs, fmt.Errorf("comparison %q: both options need a name", c.Slug))
		}
	}
	for _, b := range s.BestOf.items {
		for _, item := range b.Items {
			if key, ok := item.PlaceKey(); ok {
				if _, found := s.Places.Lookup(key); !found {
					errs = append(errs, fmt.Errorf("best_of %q: item %q links unknown place %q", b.Slug, item.Name, key))
				}
			}
		}
	}
	for _, m := range s.Months.items {
		for _, slug := range m.Events {
			if _, ok := s.Events.BySlug(slug); !ok {
				errs = append(errs, fmt.Errorf("monthly_guide %q: unknown event %q", m.Slug, slug))
			}
		}
	}
	for _, l := range s.Lifestyle.items {
		for _, slug := range l.Properties {
			if _, ok := s.Properties.BySlug(slug); !ok {
				errs = append(errs, fmt.Errorf("lifestyle %q: unknown property %q", l.Slug, slug))
			}
		}
		for _, slug := range l.Activities {
			if _, ok := s.Activities.BySlug(slug); !ok {
				errs = append(errs, fmt.Errorf("lifestyle %q: unknown activity %q", l.Slug, slug))
			}
		}
	}
	return errors.Join(errs...)
}

// Keys lists the keys of one kind.
func (s *Snapshot) Keys(kind Kind) []Key {
	switch kind {
	case KindProperty:
		return s.Properties.Keys()
	case KindActivity:
		return s.Activities.Keys()
	case KindEvent:
		return s.Events.Keys()
	case KindComparison:
		return s.Comparisons.Keys()
	case KindBestOf:
		return s.BestOf.Keys()
	case KindMonthlyGuide:
		return s.Months.Keys()
	case KindLifestyle:
		return s.Lifestyle.Keys()
	case KindPlace:
		return s.Places.Keys()
	}
	return nil
}

// EntityPaths returns the URL path of every entity of every kind, kind by kind
// in Kinds() order.
func (s *Snapshot) EntityPaths() []string {
	var paths []string
	for _, kind := range Kinds() {
		for _, key := range s.Keys(kind) {
			paths = append(paths, kind.Path(key))
		}
	}
	return paths
}

// FeaturedProperties returns listings flagged as featured, in content order.
func (s *Snapshot) FeaturedProperties() []Property {
	var out []Property
	for _, p := range s.Properties.items {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out
}

// PropertiesFor resolves property slugs, skipping unknown ones.
func (s *Snapshot) PropertiesFor(slugs []string) []Property {
	out := make([]Property, 0, len(slugs))
	for _, slug := range slugs {
		if p, ok := s.Properties.BySlug(slug); ok {
			out = append(out, p)
		}
	}
	return out
}

// ActivitiesFor resolves activity slugs, skipping unknown ones.
func (s *Snapshot) ActivitiesFor(slugs []string) []Activity {
	out := make([]Activity, 0, len(slugs))
	for _, slug := range slugs {
		if a, ok := s.Activities.BySlug(slug); ok {
			out = append(out, a)
		}
	}
	return out
}

// EventsFor resolves event slugs, skipping unknown ones.
func (s *Snapshot) EventsFor(slugs []string) []Event {
	out := make([]Event, 0, len(slugs))
	for _, slug := range slugs {
		if e, ok := s.Events.BySlug(slug); ok {
			out = append(out, e)
		}
	}
	return out
}

// PlaceCategories returns the distinct place categories in first-seen order.
func (s *Snapshot) PlaceCategories() []string {
	var cats []string
	for _, p := range s.Places.items {
		if !slices.Contains(cats, p.Category) {
			cats = append(cats, p.Category)
		}
	}
	return cats
}

// PlacesInCategory returns the places filed under category (exact match).
func (s *Snapshot) PlacesInCategory(category string) []Place {
	var out []Place
	for _, p := range s.Places.items {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}
