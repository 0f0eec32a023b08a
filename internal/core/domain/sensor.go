package domain

// SensorState is the flat display view of a calendar: the next pickup date as
// state, plus descriptive attributes.
type SensorState struct {
	UniqueID   string         `json:"unique_id"`
	Name       string         `json:"name"`
	Icon       string         `json:"icon"`
	Available  bool           `json:"available"`
	State      string         `json:"state"`
	Attributes map[string]any `json:"attributes"`
}
