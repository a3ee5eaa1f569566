package unleashtest

import (
	"fmt"

	"github.com/Unleash/unleash-proxy-client-go/internal/wiretoggles"
)

// Toggle represents a toggle as resolved by the proxy for a client.
type Toggle struct {
	Enabled        bool
	ImpressionData bool

	// Variant holds the name of the variant served for the toggle.
	// If it's empty, the "disabled" variant is served.
	Variant string

	// Payload holds an optional string payload for the variant.
	// It requires Variant to be set.
	Payload string
}

func (t *Toggle) entry(name string) (wiretoggles.Toggle, error) {
	if t.Payload != "" && t.Variant == "" {
		return wiretoggles.Toggle{}, fmt.Errorf("payload %q given without a variant", t.Payload)
	}
	e := wiretoggles.Toggle{
		Name:           name,
		Enabled:        t.Enabled,
		ImpressionData: t.ImpressionData,
		Variant: &wiretoggles.Variant{
			Name: "disabled",
		},
	}
	if t.Variant != "" {
		e.Variant.Name = t.Variant
		e.Variant.Enabled = true
	}
	if t.Payload != "" {
		e.Variant.Payload = &wiretoggles.Payload{
			Type:  wiretoggles.PayloadString,
			Value: t.Payload,
		}
	}
	return e, nil
}
