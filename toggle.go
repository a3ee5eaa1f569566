package unleash

import (
	"sort"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Toggle holds the state of a single feature toggle as resolved by the proxy.
type Toggle struct {
	Name           string
	Enabled        bool
	ImpressionData bool
	Variant        Variant
}

// Variant describes the variant assigned to a toggle.
type Variant struct {
	Name    string
	Enabled bool
	Payload *Payload
}

// Payload is the optional data attached to a variant.
type Payload struct {
	Type  string
	Value string
}

// clone returns a copy that doesn't share the payload.
func (t Toggle) clone() Toggle {
	if t.Variant.Payload != nil {
		p := *t.Variant.Payload
		t.Variant.Payload = &p
	}
	return t
}

// DisabledVariant is returned for toggles that are unknown or carry no variant.
var DisabledVariant = Variant{Name: "disabled"}

// ToggleSet holds an immutable snapshot of all toggles known at one point
// in time, keyed by toggle name. Toggles go in and come out as copies,
// so changing a returned payload doesn't change the set.
//
// A nil ToggleSet is OK to use and acts like a set with no toggles.
type ToggleSet struct {
	toggles map[string]Toggle
}

// NewToggleSet returns a snapshot holding the given toggles. If the
// same name appears more than once, the last one wins.
func NewToggleSet(toggles ...Toggle) ToggleSet {
	if len(toggles) == 0 {
		return ToggleSet{}
	}
	m := make(map[string]Toggle, len(toggles))
	for _, t := range toggles {
		m[t.Name] = t.clone()
	}
	return ToggleSet{toggles: m}
}

// Get returns the toggle with the given name.
func (s ToggleSet) Get(name string) (Toggle, bool) {
	t, ok := s.toggles[name]
	return t.clone(), ok
}

// IsEnabled reports whether the named toggle exists and is enabled.
func (s ToggleSet) IsEnabled(name string) bool {
	return s.toggles[name].Enabled
}

// Variant returns the variant of the named toggle, or DisabledVariant
// if the toggle is unknown or has no variant.
func (s ToggleSet) Variant(name string) Variant {
	t, ok := s.toggles[name]
	if !ok || t.Variant.Name == "" {
		return DisabledVariant
	}
	return t.clone().Variant
}

// Len returns the number of toggles in the set.
func (s ToggleSet) Len() int {
	return len(s.toggles)
}

// Names returns the names of all toggles in sorted order.
func (s ToggleSet) Names() []string {
	names := make([]string, 0, len(s.toggles))
	for name := range s.toggles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Toggles returns all toggles sorted by name.
func (s ToggleSet) Toggles() []Toggle {
	toggles := make([]Toggle, 0, len(s.toggles))
	for _, name := range s.Names() {
		toggles = append(toggles, s.toggles[name].clone())
	}
	return toggles
}

// Equal reports whether both sets hold exactly the same toggles with the
// same values. An empty set equals a nil set.
func (s ToggleSet) Equal(other ToggleSet) bool {
	return cmp.Equal(s.toggles, other.toggles, cmpopts.EquateEmpty())
}
