package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/idealservice/waste-pickup/internal/core/domain"
	"github.com/idealservice/waste-pickup/internal/core/ports"
)

const collectionEntries = "calendar_entries"

type entryDocument struct {
	PlaceID    string    `bson:"place_id"`
	CalendarID string    `bson:"calendar_id"`
	Title      string    `bson:"title"`
	CreatedAt  time.Time `bson:"created_at"`
}

func toDocument(e domain.CalendarEntry) entryDocument {
	return entryDocument{
		PlaceID:    e.Key.PlaceID,
		CalendarID: e.Key.CalendarID,
		Title:      e.Title,
		CreatedAt:  e.CreatedAt,
	}
}

func (d entryDocument) entry() domain.CalendarEntry {
	return domain.CalendarEntry{
		Key:       domain.CalendarKey{PlaceID: d.PlaceID, CalendarID: d.CalendarID},
		Title:     d.Title,
		CreatedAt: d.CreatedAt.UTC(),
	}
}

func keyFilter(key domain.CalendarKey) bson.M {
	return bson.M{"place_id": key.PlaceID, "calendar_id": key.CalendarID}
}

// EntryRepository persists configured calendars. A unique index on
// (place_id, calendar_id) enforces one entry per pair across replicas.
type EntryRepository struct {
	col *mongo.Collection
}

func NewEntryRepository(db *mongo.Database) *EntryRepository {
	return &EntryRepository{col: db.Collection(collectionEntries)}
}

var _ ports.EntryRepository = (*EntryRepository)(nil)

// Create inserts a new entry document.
func (r *EntryRepository) Create(ctx context.Context, e domain.CalendarEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toDocument(e)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAlreadyConfigured
		}
		return fmt.Errorf("insert calendar entry: %w", err)
	}
	return nil
}

// Delete removes the entry of key.
func (r *EntryRepository) Delete(ctx context.Context, key domain.CalendarKey) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, keyFilter(key))
	if err != nil {
		return fmt.Errorf("delete calendar entry: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrCalendarNotFound
	}
	return nil
}

// List returns every entry, oldest first.
func (r *EntryRepository) List(ctx context.Context) ([]domain.CalendarEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "place_id", Value: 1}, {Key: "calendar_id", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find calendar entries: %w", err)
	}
	defer cur.Close(ctx)

	var docs []entryDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode calendar entries: %w", err)
	}

	out := make([]domain.CalendarEntry, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.entry())
	}
	return out, nil
}

// EnsureIndexes creates the unique pair index on the entries collection.
func (r *EntryRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "place_id", Value: 1}, {Key: "calendar_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
