// Package mongostore implements store.Store on the official MongoDB driver,
// using the camelCase collection names the web app wrote.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vflfantasy/vfl-data/internal/config"
	"github.com/vflfantasy/vfl-data/internal/model"
	"github.com/vflfantasy/vfl-data/internal/store"
)

// Store is the Mongo-backed store.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	// transactions is set for replica sets and mongos.
	transactions bool
}

// Connect dials uri and pings the primary.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &Store{
		client:       client,
		db:           client.Database(database),
		transactions: supportsTransactions(ctx, client),
	}, nil
}

func supportsTransactions(ctx context.Context, client *mongo.Client) bool {
	var hello struct {
		SetName string `bson:"setName"`
		Msg     string `bson:"msg"`
	}
	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello); err != nil {
		return false
	}
	return hello.SetName != "" || hello.Msg == "isdbgrid"
}

func (s *Store) coll(name string) *mongo.Collection {
	return s.db.Collection(name)
}

func findAll[T any](ctx context.Context, c *mongo.Collection, filter bson.M, opts ...*options.FindOptions) ([]T, error) {
	cur, err := c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func byID() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
}

func (s *Store) ListCanonicalPlayers(ctx context.Context) ([]model.CanonicalPlayer, error) {
	players, err := findAll[model.CanonicalPlayer](ctx, s.coll(config.PlayersCollection), bson.M{}, byID())
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return players, nil
}

func (s *Store) GetCanonicalPlayer(ctx context.Context, id string) (model.CanonicalPlayer, error) {
	var p model.CanonicalPlayer
	err := s.coll(config.PlayersCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return p, fmt.Errorf("canonical player %q: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return p, fmt.Errorf("get player %q: %w", id, err)
	}
	return p, nil
}

func (s *Store) CreateCanonicalPlayer(ctx context.Context, p model.CanonicalPlayer) error {
	if p.Aliases == nil {
		p.Aliases = []string{}
	}
	_, err := s.coll(config.PlayersCollection).InsertOne(ctx, p)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("canonical player %q: %w", p.ID, store.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert player %q: %w", p.ID, err)
	}
	return nil
}

func (s *Store) ListFantasyPlayers(ctx context.Context) ([]model.FantasyPlayer, error) {
	players, err := findAll[model.FantasyPlayer](ctx, s.coll(config.FantasyPlayersCollection), bson.M{}, byID())
	if err != nil {
		return nil, fmt.Errorf("list fantasy players: %w", err)
	}
	return players, nil
}

func (s *Store) ListPlayerStats(ctx context.Context) ([]model.PlayerStat, error) {
	stats, err := findAll[model.PlayerStat](ctx, s.coll(config.PlayerStatsCollection), bson.M{}, byID())
	if err != nil {
		return nil, fmt.Errorf("list player stats: %w", err)
	}
	return stats, nil
}

// SavePlayerStats upserts rows by (matchId, playerName, team, quarter). A
// reconciled playerId already on the document is kept when the incoming row
// has none.
func (s *Store) SavePlayerStats(ctx context.Context, rows []model.PlayerStat) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	models := make([]mongo.WriteModel, 0, len(rows))
	for _, st := range rows {
		filter := bson.M{
			"matchId":    st.MatchID,
			"playerName": st.PlayerName,
			"team":       st.Team,
			"quarter":    st.Quarter,
		}
		set := bson.M{
			"season":        st.Season,
			"round":         st.Round,
			"kicks":         st.Kicks,
			"handballs":     st.Handballs,
			"marks":         st.Marks,
			"tackles":       st.Tackles,
			"hitOuts":       st.HitOuts,
			"goals":         st.Goals,
			"behinds":       st.Behinds,
			"fantasyPoints": st.FantasyPoints,
		}
		if st.PlayerID != "" {
			set["playerId"] = st.PlayerID
		}
		id := st.ID
		if id == "" {
			id = uuid.NewString()
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(filter).
			SetUpdate(bson.M{"$set": set, "$setOnInsert": bson.M{"_id": id}}).
			SetUpsert(true))
	}
	res, err := s.coll(config.PlayerStatsCollection).BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true))
	if err != nil {
		return 0, fmt.Errorf("save player stats: %w", err)
	}
	return int(res.MatchedCount + res.UpsertedCount), nil
}

func (s *Store) MarkMatchHasStats(ctx context.Context, matchID string) error {
	res, err := s.coll(config.MatchesCollection).UpdateOne(ctx,
		bson.M{"_id": matchID}, bson.M{"$set": bson.M{"hasStats": true}})
	if err != nil {
		return fmt.Errorf("mark match %q: %w", matchID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("match %q: %w", matchID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) ListHistoricalMatches(ctx context.Context, year int) ([]model.HistoricalMatch, error) {
	filter := bson.M{}
	if year != 0 {
		filter["year"] = year
	}
	opts := options.Find().SetSort(bson.D{{Key: "year", Value: -1}, {Key: "_id", Value: 1}})
	out, err := findAll[model.HistoricalMatch](ctx, s.coll(config.HistoricalMatchesCollection), filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list historical matches: %w", err)
	}
	return out, nil
}

func (s *Store) NewBatch() store.Batch {
	return &batch{s: s}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close() {
	_ = s.client.Disconnect(context.Background())
}

// batch turns queued rewrites into one ordered BulkWrite per collection. An
// ordered bulk stops at the first failing document. Both bulks share one
// transaction when the deployment supports it.
type batch struct {
	s       *Store
	fantasy []mongo.WriteModel
	stats   []mongo.WriteModel
}

func setField(id, field, value string) mongo.WriteModel {
	return mongo.NewUpdateOneModel().
		SetFilter(bson.M{"_id": id}).
		SetUpdate(bson.M{"$set": bson.M{field: value}})
}

func (b *batch) SetFantasyRegistryID(fantasyID, canonicalID string) {
	b.fantasy = append(b.fantasy, setField(fantasyID, "registryId", canonicalID))
}

func (b *batch) SetStatPlayerID(statID, canonicalID string) {
	b.stats = append(b.stats, setField(statID, "playerId", canonicalID))
}

func (b *batch) Len() int { return len(b.fantasy) + len(b.stats) }

func (b *batch) Commit(ctx context.Context) error {
	if b.Len() == 0 {
		return nil
	}
	if b.s.transactions {
		err := b.s.client.UseSession(ctx, func(sc mongo.SessionContext) error {
			_, err := sc.WithTransaction(sc, func(tc mongo.SessionContext) (interface{}, error) {
				if err := b.bulk(tc, config.FantasyPlayersCollection, b.fantasy); err != nil {
					return nil, err
				}
				return nil, b.bulk(tc, config.PlayerStatsCollection, b.stats)
			})
			return err
		})
		if err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		b.fantasy, b.stats = nil, nil
		return nil
	}

	// Standalone server: no rollback, so report what landed.
	if err := b.bulk(ctx, config.FantasyPlayersCollection, b.fantasy); err != nil {
		return &store.PartialCommitError{Fantasy: appliedBefore(err), Err: err}
	}
	done := len(b.fantasy)
	b.fantasy = nil
	if err := b.bulk(ctx, config.PlayerStatsCollection, b.stats); err != nil {
		return &store.PartialCommitError{Fantasy: done, Stats: appliedBefore(err), Err: err}
	}
	b.stats = nil
	return nil
}

func (b *batch) bulk(ctx context.Context, coll string, models []mongo.WriteModel) error {
	if len(models) == 0 {
		return nil
	}
	if _, err := b.s.coll(coll).BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true)); err != nil {
		return fmt.Errorf("bulk update %s: %w", coll, err)
	}
	return nil
}

// appliedBefore returns how many operations of a failed ordered bulk were
// written: everything before the first write error. Errors without write
// errors (network, write concern) count as nothing written.
func appliedBefore(err error) int {
	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) || len(bwe.WriteErrors) == 0 {
		return 0
	}
	first := bwe.WriteErrors[0].Index
	for _, we := range bwe.WriteErrors[1:] {
		if we.Index < first {
			first = we.Index
		}
	}
	return first
}

// EnsureIndexes creates the indexes the store relies on. It is idempotent.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		config.PlayerStatsCollection: {
			{
				Keys: bson.D{
					{Key: "matchId", Value: 1},
					{Key: "playerName", Value: 1},
					{Key: "team", Value: 1},
					{Key: "quarter", Value: 1},
				},
				Options: options.Index().SetUnique(true).SetName("match_player_quarter"),
			},
			{Keys: bson.D{{Key: "playerId", Value: 1}}, Options: options.Index().SetName("player_id")},
		},
		config.FantasyPlayersCollection: {
			{Keys: bson.D{{Key: "registryId", Value: 1}}, Options: options.Index().SetName("registry_id")},
		},
		config.HistoricalMatchesCollection: {
			{Keys: bson.D{{Key: "year", Value: 1}}, Options: options.Index().SetName("year")},
		},
	}
	for coll, models := range indexes {
		if _, err := s.coll(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}
