// Package wiretoggles holds types that define the representation of
// the toggle set as transmitted over the wire by the Unleash proxy
// and frontend API.
package wiretoggles

type Response struct {
	Toggles []Toggle `json:"toggles"`
}

type Toggle struct {
	Name           string   `json:"name"`
	Enabled        bool     `json:"enabled"`
	ImpressionData bool     `json:"impressionData"`
	Variant        *Variant `json:"variant,omitempty"`
}

type Variant struct {
	Name    string   `json:"name"`
	Enabled bool     `json:"enabled"`
	Payload *Payload `json:"payload,omitempty"`
}

// Payload types known to the proxy. Others are passed through unchanged.
const (
	PayloadString = "string"
	PayloadJSON   = "json"
	PayloadCSV    = "csv"
	PayloadNumber = "number"
)

type Payload struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}
