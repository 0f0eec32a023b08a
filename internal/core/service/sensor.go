package service

import (
	"strings"
	"sync"
	"time"

	"github.com/idealservice/waste-pickup/internal/core/domain"
)

const (
	AttrAttribution           = "attribution"
	AttrNextPickupDate        = "next_pickup_date"
	AttrNextPickupTypes       = "next_pickup_types"
	AttrNextPickupTypesString = "next_pickup_types_string"

	DefaultAttribution = "Pickup data provided by IdealService Waste"
	DefaultSensorName  = "idealservice_waste"
	DefaultSensorIcon  = "mdi:trash-can-outline"
)

// Sensor flattens a coordinator's data into a display state: the date of the
// next pickup plus its waste types as attributes.
type Sensor struct {
	key domain.CalendarKey
	now func() time.Time

	mu    sync.RWMutex
	state domain.SensorState
}

// NewSensor returns a sensor with no state until the first refresh.
func NewSensor(key domain.CalendarKey, now func() time.Time) *Sensor {
	if now == nil {
		now = time.Now
	}
	return &Sensor{
		key: key,
		now: now,
		state: domain.SensorState{
			UniqueID:   key.PlaceID + key.CalendarID,
			Name:       DefaultSensorName,
			Icon:       DefaultSensorIcon,
			Attributes: map[string]any{AttrAttribution: DefaultAttribution},
		},
	}
}

// OnRefresh implements ports.Observer.
func (s *Sensor) OnRefresh(st domain.RefreshState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Available = st.LastSuccess

	next, ok := domain.NextPickup(st.Events, s.now())
	if !ok {
		// Keep what was displayed last when a refresh fails.
		if st.LastSuccess {
			s.state.State = ""
			s.state.Attributes = map[string]any{AttrAttribution: DefaultAttribution}
		}
		return
	}

	names := next.TypeTitles()
	date := next.Date.Format(time.DateOnly)
	s.state.State = date
	s.state.Attributes = map[string]any{
		AttrAttribution:           DefaultAttribution,
		AttrNextPickupDate:        date,
		AttrNextPickupTypes:       names,
		AttrNextPickupTypesString: strings.Join(names, ", "),
	}
}

// State returns a copy of the current display state.
func (s *Sensor) State() domain.SensorState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.state
	out.Attributes = make(map[string]any, len(s.state.Attributes))
	for k, v := range s.state.Attributes {
		if names, ok := v.([]string); ok {
			v = append([]string(nil), names...)
		}
		out.Attributes[k] = v
	}
	return out
}
