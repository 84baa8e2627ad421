package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/certprep/backend/internal/config"
	"github.com/certprep/backend/internal/models"
)

// CollectionKey is the key prefix under which each user's saved tests are
// stored as one JSON array.
const CollectionKey = "savedTests"

// LocalBackend keeps every saved test of a user in a single JSON blob.
type LocalBackend struct {
	kv KeyValue
}

func NewLocalBackend(kv KeyValue) *LocalBackend {
	return &LocalBackend{kv: kv}
}

func collectionKey(userID int64) string {
	return fmt.Sprintf("%s:%d", CollectionKey, userID)
}

func (b *LocalBackend) Synced() bool { return false }

// ErrCorruptCollection is returned by writes when the stored collection is
// not a JSON array. The blob is left alone so it can be recovered by hand.
var ErrCorruptCollection = errors.New("saved test collection is corrupt")

// entry is one element of the stored array. Items that do not decode keep
// their raw bytes so rewriting the collection never drops them.
type entry struct {
	rec *models.SavedTest
	id  string
	raw json.RawMessage
}

func (b *LocalBackend) Load(ctx context.Context, userID int64) ([]models.SavedTest, error) {
	entries, err := b.read(ctx, userID)
	if errors.Is(err, ErrCorruptCollection) {
		config.WithContext(ctx).WithError(err).Warn("Saved test collection is not a JSON array, treating as empty")
		return []models.SavedTest{}, nil
	}
	if err != nil {
		return nil, err
	}

	recs := make([]models.SavedTest, 0, len(entries))
	for _, e := range entries {
		if e.rec != nil {
			recs = append(recs, *e.rec)
		}
	}
	return recs, nil
}

func (b *LocalBackend) read(ctx context.Context, userID int64) ([]entry, error) {
	raw, ok, err := b.kv.Get(ctx, collectionKey(userID))
	if err != nil {
		return nil, fmt.Errorf("read collection: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptCollection, err)
	}

	entries := make([]entry, 0, len(items))
	for i, item := range items {
		var rec models.SavedTest
		if err := json.Unmarshal(item, &rec); err != nil {
			var head struct {
				ID string `json:"id"`
			}
			_ = json.Unmarshal(item, &head)
			config.WithContext(ctx).WithError(err).
				WithField("index", i).
				WithField("saved_test_id", head.ID).
				Warn("Keeping undecodable saved test as is")
			entries = append(entries, entry{id: head.ID, raw: item})
			continue
		}
		entries = append(entries, entry{rec: &rec, id: rec.ID})
	}
	return entries, nil
}

func (b *LocalBackend) Put(ctx context.Context, userID int64, rec models.SavedTest) error {
	entries, err := b.read(ctx, userID)
	if err != nil {
		return err
	}

	replaced := false
	for i := range entries {
		if entries[i].id == rec.ID {
			entries[i] = entry{rec: &rec, id: rec.ID}
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, entry{rec: &rec, id: rec.ID})
	}
	return b.write(ctx, userID, entries)
}

func (b *LocalBackend) Remove(ctx context.Context, userID int64, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	entries, err := b.read(ctx, userID)
	if err != nil {
		return err
	}

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := entries[:0]
	for _, e := range entries {
		if e.id == "" || !drop[e.id] {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return nil
	}
	return b.write(ctx, userID, kept)
}

func (b *LocalBackend) Clear(ctx context.Context, userID int64) error {
	if err := b.kv.Remove(ctx, collectionKey(userID)); err != nil {
		return fmt.Errorf("clear collection: %w", err)
	}
	return nil
}

func (b *LocalBackend) write(ctx context.Context, userID int64, entries []entry) error {
	items := make([]json.RawMessage, len(entries))
	for i, e := range entries {
		if e.rec == nil {
			items[i] = e.raw
			continue
		}
		data, err := json.Marshal(e.rec)
		if err != nil {
			return fmt.Errorf("encode saved test %s: %w", e.id, err)
		}
		items[i] = data
	}

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}
	if err := b.kv.Set(ctx, collectionKey(userID), string(data)); err != nil {
		return fmt.Errorf("write collection: %w", err)
	}
	return nil
}
