package mongo

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/idealservice/waste-pickup/internal/core/domain"
)

func TestEntryDocument_BSONRoundTrip(t *testing.T) {
	created := time.Date(2024, 1, 30, 8, 0, 0, 0, time.UTC)
	entry := domain.NewCalendarEntry(domain.CalendarKey{PlaceID: "93", CalendarID: "12"}, created)

	raw, err := bson.Marshal(toDocument(entry))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var fields bson.M
	if err := bson.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, name := range []string{"place_id", "calendar_id", "title", "created_at"} {
		if _, ok := fields[name]; !ok {
			t.Errorf("missing field %q in %v", name, fields)
		}
	}

	var doc entryDocument
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got := doc.entry()
	if got.Key != entry.Key || got.Title != "93, 12" || !got.CreatedAt.Equal(created) {
		t.Errorf("unexpected entry: %+v", got)
	}
}

func TestKeyFilter(t *testing.T) {
	f := keyFilter(domain.CalendarKey{PlaceID: "93", CalendarID: "12"})
	if f["place_id"] != "93" || f["calendar_id"] != "12" || len(f) != 2 {
		t.Errorf("unexpected filter: %v", f)
	}
}
