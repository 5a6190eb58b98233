package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/Rrens/article-hub/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type analysisDocument struct {
	WordCount  int `bson:"word_count"`
	UniqueTags int `bson:"unique_tags"`
}

type articleDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Content   string             `bson:"content"`
	Tags      []string           `bson:"tags"`
	Author    string             `bson:"author"`
	CreatedAt time.Time          `bson:"created_at"`
	Analysis  *analysisDocument  `bson:"analysis,omitempty"`
}

func (d *articleDocument) toDomain() domain.Article {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}

	article := domain.Article{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Content:   d.Content,
		Tags:      tags,
		Author:    d.Author,
		CreatedAt: d.CreatedAt.UTC(),
	}
	if d.Analysis != nil {
		article.Analysis = &domain.Analysis{
			WordCount:  d.Analysis.WordCount,
			UniqueTags: d.Analysis.UniqueTags,
		}
	}
	return article
}

// ArticleRepository handles article persistence
type ArticleRepository struct {
	coll *mongo.Collection
}

// NewArticleRepository creates a new article repository
func NewArticleRepository(c *Client) *ArticleRepository {
	return &ArticleRepository{coll: c.db.Collection(articlesCollection)}
}

// Create inserts a new article and sets its ID
func (r *ArticleRepository) Create(ctx context.Context, article *domain.Article) error {
	doc := articleDocument{
		Title:     article.Title,
		Content:   article.Content,
		Tags:      article.Tags,
		Author:    article.Author,
		CreatedAt: article.CreatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to insert article: %w", err)
	}

	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		article.ID = id.Hex()
	}
	return nil
}

// GetByID retrieves an article by ID. A malformed ID is reported as missing.
func (r *ArticleRepository) GetByID(ctx context.Context, id string) (*domain.Article, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var doc articleDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find article: %w", err)
	}

	article := doc.toDomain()
	return &article, nil
}

// List returns every article matching the filter, oldest first
func (r *ArticleRepository) List(ctx context.Context, filter domain.ArticleFilter) ([]domain.Article, error) {
	cursor, err := r.coll.Find(ctx, listQuery(filter), options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer cursor.Close(ctx)

	articles := []domain.Article{}
	for cursor.Next(ctx) {
		var doc articleDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode article: %w", err)
		}
		articles = append(articles, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate articles: %w", err)
	}

	return articles, nil
}

// listQuery builds the find filter: a case-insensitive literal substring on
// title or content, and any-of membership on tags.
func listQuery(filter domain.ArticleFilter) bson.M {
	query := bson.M{}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"content": pattern},
		}
	}
	if filter.Tags != nil {
		query["tags"] = bson.M{"$in": filter.Tags}
	}
	return query
}

// Update sets the supplied fields and returns the article after the change,
// or nil when it does not exist
func (r *ArticleRepository) Update(ctx context.Context, id string, update domain.ArticleUpdate) (*domain.Article, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	set := bson.M{}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Content != nil {
		set["content"] = *update.Content
	}
	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc articleDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update article: %w", err)
	}

	article := doc.toDomain()
	return &article, nil
}

// Delete removes an article. Deleting a missing article is not an error.
func (r *ArticleRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}

	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	return nil
}

// SetAnalysis stores the analysis result. It reports false when the article
// does not exist.
func (r *ArticleRepository) SetAnalysis(ctx context.Context, id string, analysis domain.Analysis) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"analysis": analysisDocument{
			WordCount:  analysis.WordCount,
			UniqueTags: analysis.UniqueTags,
		},
	}})
	if err != nil {
		return false, fmt.Errorf("failed to set analysis: %w", err)
	}
	return res.MatchedCount > 0, nil
}

// Count returns the number of stored articles
func (r *ArticleRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return n, nil
}
