package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/prediction-pool/internal/domain/competition"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CompetitionsCollection = "competitions"

// CompetitionRepository reads the catalog by its (category, competition_id)
// key. Documents are never picked by collection order.
type CompetitionRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewCompetitionRepository(db *mongo.Database, timeout time.Duration) *CompetitionRepository {
	return newCompetitionRepository(db.Collection(CompetitionsCollection), timeout)
}

func newCompetitionRepository(coll *mongo.Collection, timeout time.Duration) *CompetitionRepository {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &CompetitionRepository{coll: coll, timeout: timeout}
}

// EnsureIndexes creates the unique catalog key index. It is safe to call on
// every start.
func (r *CompetitionRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "category", Value: 1}, {Key: "competition_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("category_competition_id"),
	})
	if err != nil {
		return fmt.Errorf("create competition key index: %w", err)
	}
	return nil
}

func (r *CompetitionRepository) Get(ctx context.Context, key competition.Key) (competition.Competition, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var doc competitionDocument
	err := r.coll.FindOne(ctx, keyFilter(key)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return competition.Competition{}, false, nil
	}
	if err != nil {
		return competition.Competition{}, false, fmt.Errorf("find competition %s: %w", key, err)
	}
	return competitionFromDocument(doc), true, nil
}

func (r *CompetitionRepository) ListByCategory(ctx context.Context, category string) ([]competition.Competition, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cursor, err := r.coll.Find(ctx,
		bson.D{{Key: "category", Value: category}},
		options.Find().SetSort(bson.D{{Key: "competition_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find competitions category=%s: %w", category, err)
	}
	defer cursor.Close(ctx)

	var docs []competitionDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode competitions category=%s: %w", category, err)
	}

	out := make([]competition.Competition, 0, len(docs))
	for _, doc := range docs {
		out = append(out, competitionFromDocument(doc))
	}
	return out, nil
}

func (r *CompetitionRepository) Upsert(ctx context.Context, c competition.Competition) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.coll.UpdateOne(ctx,
		keyFilter(c.Key()),
		bson.D{{Key: "$set", Value: competitionToDocument(c)}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert competition %s: %w", c.Key(), err)
	}
	return nil
}

func keyFilter(key competition.Key) bson.D {
	return bson.D{
		{Key: "category", Value: key.Category},
		{Key: "competition_id", Value: key.ID},
	}
}
