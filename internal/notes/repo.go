package notes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repo is the MongoDB-backed note store.
type Repo struct {
	coll *mongo.Collection
}

var _ Store = (*Repo)(nil)

func NewRepo(db *mongo.Database) *Repo {
	return &Repo{coll: db.Collection("notes")}
}

// EnsureIndexes creates the indexes backing the owner-scoped listing.
func (r *Repo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "last_update", Value: -1},
			},
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("create note indexes: %w", err)
	}
	return nil
}

// ListByOwner returns all notes for userID, newest update first.
func (r *Repo) ListByOwner(ctx context.Context, userID string) ([]Note, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "last_update", Value: -1}})

	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer cursor.Close(ctx)

	var result []Note
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("decode notes: %w", err)
	}
	return result, nil
}

// Insert persists a new note, assigning its id and timestamps.
func (r *Repo) Insert(ctx context.Context, userID string, draft Draft) (Note, error) {
	now := time.Now().UTC()
	n := Note{
		ID:         uuid.NewString(),
		UserID:     userID,
		Title:      draft.Title,
		Content:    draft.Content,
		CreatedOn:  now,
		LastUpdate: now,
	}

	if _, err := r.coll.InsertOne(ctx, n); err != nil {
		return Note{}, fmt.Errorf("insert note: %w", err)
	}
	return n, nil
}

// Update writes title/content and bumps last_update. A zero-row match is
// treated as success.
func (r *Repo) Update(ctx context.Context, noteID string, draft Draft) error {
	update := bson.M{"$set": bson.M{
		"note_title":   draft.Title,
		"note_content": draft.Content,
		"last_update":  time.Now().UTC(),
	}}

	if _, err := r.coll.UpdateOne(ctx, bson.M{"_id": noteID}, update); err != nil {
		return fmt.Errorf("update note %s: %w", noteID, err)
	}
	return nil
}

// Delete removes a note by id. A zero-row match is treated as success.
func (r *Repo) Delete(ctx context.Context, noteID string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": noteID}); err != nil {
		return fmt.Errorf("delete note %s: %w", noteID, err)
	}
	return nil
}

// Get returns a single note by id.
func (r *Repo) Get(ctx context.Context, noteID string) (Note, error) {
	var n Note
	err := r.coll.FindOne(ctx, bson.M{"_id": noteID}).Decode(&n)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Note{}, ErrNoteNotFound
	}
	if err != nil {
		return Note{}, fmt.Errorf("find note %s: %w", noteID, err)
	}
	return n, nil
}
