package unleash

import (
	"encoding/json"
	"fmt"

	"github.com/Unleash/unleash-proxy-client-go/internal/wiretoggles"
)

// parseToggles decodes a proxy response body into a toggle set.
func parseToggles(body []byte) (ToggleSet, error) {
	var root wiretoggles.Response
	if err := json.Unmarshal(body, &root); err != nil {
		return ToggleSet{}, fmt.Errorf("cannot decode toggles: %v", err)
	}
	toggles := make([]Toggle, 0, len(root.Toggles))
	seen := make(map[string]bool, len(root.Toggles))
	for i, wt := range root.Toggles {
		if wt.Name == "" {
			return ToggleSet{}, fmt.Errorf("toggle at index %d has no name", i)
		}
		if seen[wt.Name] {
			return ToggleSet{}, fmt.Errorf("duplicate toggle %q", wt.Name)
		}
		seen[wt.Name] = true
		toggles = append(toggles, fromWireToggle(wt))
	}
	return NewToggleSet(toggles...), nil
}

func fromWireToggle(wt wiretoggles.Toggle) Toggle {
	t := Toggle{
		Name:           wt.Name,
		Enabled:        wt.Enabled,
		ImpressionData: wt.ImpressionData,
	}
	if wt.Variant != nil {
		t.Variant = Variant{
			Name:    wt.Variant.Name,
			Enabled: wt.Variant.Enabled,
		}
		if wt.Variant.Payload != nil {
			t.Variant.Payload = &Payload{
				Type:  wt.Variant.Payload.Type,
				Value: wt.Variant.Payload.Value,
			}
		}
	}
	return t
}
