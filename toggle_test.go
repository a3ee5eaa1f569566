package unleash

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestToggleSet_Lookup(t *testing.T) {
	c := qt.New(t)
	set := NewToggleSet(
		Toggle{Name: "b", Enabled: false},
		Toggle{Name: "a", Enabled: true, Variant: Variant{Name: "blue", Enabled: true}},
		Toggle{Name: "b", Enabled: true},
	)
	c.Assert(set.Len(), qt.Equals, 2)
	c.Assert(set.Names(), qt.DeepEquals, []string{"a", "b"})
	c.Assert(set.IsEnabled("b"), qt.IsTrue)
	c.Assert(set.IsEnabled("missing"), qt.IsFalse)
	c.Assert(set.Variant("a"), qt.DeepEquals, Variant{Name: "blue", Enabled: true})
	c.Assert(set.Variant("b"), qt.DeepEquals, DisabledVariant)
	c.Assert(set.Variant("missing"), qt.DeepEquals, DisabledVariant)

	toggle, ok := set.Get("a")
	c.Assert(ok, qt.IsTrue)
	c.Assert(toggle.Enabled, qt.IsTrue)
	_, ok = set.Get("missing")
	c.Assert(ok, qt.IsFalse)

	toggles := set.Toggles()
	c.Assert(toggles, qt.HasLen, 2)
	c.Assert(toggles[0].Name, qt.Equals, "a")
	c.Assert(toggles[1].Name, qt.Equals, "b")
}

func TestToggleSet_ZeroValue(t *testing.T) {
	c := qt.New(t)
	var set ToggleSet
	c.Assert(set.Len(), qt.Equals, 0)
	c.Assert(set.Names(), qt.HasLen, 0)
	c.Assert(set.IsEnabled("a"), qt.IsFalse)
	c.Assert(set.Variant("a"), qt.DeepEquals, DisabledVariant)
	c.Assert(set.Equal(NewToggleSet()), qt.IsTrue)
}

var equalTests = []struct {
	testName string
	a, b     ToggleSet
	equal    bool
}{{
	testName: "BothEmpty",
	a:        ToggleSet{},
	b:        NewToggleSet(),
	equal:    true,
}, {
	testName: "SameToggles",
	a:        NewToggleSet(enabled("a", true), enabled("b", false)),
	b:        NewToggleSet(enabled("b", false), enabled("a", true)),
	equal:    true,
}, {
	testName: "DistinctButEqualPayloads",
	a:        NewToggleSet(Toggle{Name: "a", Variant: Variant{Name: "v", Payload: &Payload{Type: "string", Value: "x"}}}),
	b:        NewToggleSet(Toggle{Name: "a", Variant: Variant{Name: "v", Payload: &Payload{Type: "string", Value: "x"}}}),
	equal:    true,
}, {
	testName: "DifferentPayloads",
	a:        NewToggleSet(Toggle{Name: "a", Variant: Variant{Name: "v", Payload: &Payload{Type: "string", Value: "x"}}}),
	b:        NewToggleSet(Toggle{Name: "a", Variant: Variant{Name: "v", Payload: &Payload{Type: "string", Value: "y"}}}),
	equal:    false,
}, {
	testName: "EnabledFlipped",
	a:        NewToggleSet(enabled("a", true)),
	b:        NewToggleSet(enabled("a", false)),
	equal:    false,
}, {
	testName: "ImpressionDataChanged",
	a:        NewToggleSet(Toggle{Name: "a"}),
	b:        NewToggleSet(Toggle{Name: "a", ImpressionData: true}),
	equal:    false,
}, {
	testName: "ToggleAdded",
	a:        NewToggleSet(enabled("a", true)),
	b:        NewToggleSet(enabled("a", true), enabled("b", true)),
	equal:    false,
}, {
	testName: "EmptyAgainstNonEmpty",
	a:        ToggleSet{},
	b:        NewToggleSet(enabled("a", false)),
	equal:    false,
}}

func TestToggleSet_Equal(t *testing.T) {
	c := qt.New(t)
	for _, test := range equalTests {
		c.Run(test.testName, func(c *qt.C) {
			c.Assert(test.a.Equal(test.b), qt.Equals, test.equal)
			c.Assert(test.b.Equal(test.a), qt.Equals, test.equal)
			c.Assert(togglesChanged(test.a, test.b), qt.Equals, !test.equal)
		})
	}
}

func TestInMemoryToggleCache(t *testing.T) {
	c := qt.New(t)
	cache := NewInMemoryToggleCache()
	c.Assert(cache.Read().Len(), qt.Equals, 0)
	cache.Write(NewToggleSet(enabled("a", true)))
	c.Assert(cache.Read().IsEnabled("a"), qt.IsTrue)
}

func TestToggleSet_CopiesPayloads(t *testing.T) {
	c := qt.New(t)
	in := Toggle{Name: "a", Variant: Variant{Name: "v", Payload: &Payload{Type: "string", Value: "x"}}}
	set := NewToggleSet(in)
	in.Variant.Payload.Value = "changed by builder"

	got, _ := set.Get("a")
	got.Variant.Payload.Value = "changed by Get"
	set.Variant("a").Payload.Value = "changed by Variant"
	set.Toggles()[0].Variant.Payload.Value = "changed by Toggles"

	c.Assert(set.Variant("a").Payload, qt.DeepEquals, &Payload{Type: "string", Value: "x"})
	c.Assert(set.Equal(NewToggleSet(Toggle{Name: "a", Variant: Variant{Name: "v", Payload: &Payload{Type: "string", Value: "x"}}})), qt.IsTrue)
}
