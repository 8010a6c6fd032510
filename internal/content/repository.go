// Package content stores the storefront's editable page copy.
package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// aboutDocID keys the single about-page document.
const aboutDocID = "about"

var ErrNotFound = errors.New("content not found")

// AboutPage is the store's about copy. A single document holds it; there is
// no history.
type AboutPage struct {
	ID        string    `json:"-" bson:"_id"`
	Title     string    `json:"title" bson:"title"`
	Body      string    `json:"body" bson:"body"`
	Image     string    `json:"image,omitempty" bson:"image,omitempty"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

type Repository interface {
	GetAbout(ctx context.Context) (*AboutPage, error)
	UpdateAbout(ctx context.Context, page *AboutPage) error
}

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{
		collection: db.Collection("content"),
	}
}

func (m *mongoRepository) GetAbout(ctx context.Context) (*AboutPage, error) {
	var page AboutPage

	filter := bson.M{"_id": aboutDocID}
	err := m.collection.FindOne(ctx, filter).Decode(&page)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get about page: %w", err)
	}

	return &page, nil
}

func (m *mongoRepository) UpdateAbout(ctx context.Context, page *AboutPage) error {
	page.ID = aboutDocID
	page.UpdatedAt = time.Now()

	filter := bson.M{"_id": aboutDocID}
	opts := options.Replace().SetUpsert(true)
	if _, err := m.collection.ReplaceOne(ctx, filter, page, opts); err != nil {
		return fmt.Errorf("failed to update about page: %w", err)
	}
	return nil
}
