package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/agentdesk/agentdesk/internal/domain"
)

const conversationsCollection = "conversations"

// MongoConversationStore implements ConversationStore on MongoDB with
// messages embedded in the conversation document.
type MongoConversationStore struct {
	database *mongo.Database
}

func NewMongoConversationStore(database *mongo.Database) *MongoConversationStore {
	store := &MongoConversationStore{database: database}
	store.ensureIndexes()
	return store
}

func (s *MongoConversationStore) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	collection := s.database.Collection(conversationsCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "updated_at", Value: -1},
			},
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Warn().Err(err).Msg("Failed to create conversation indexes")
	}
}

func (s *MongoConversationStore) GetOrCreateConversation(ctx context.Context, id, userID string) (*domain.Conversation, error) {
	collection := s.database.Collection(conversationsCollection)

	if id != "" {
		var conv domain.Conversation
		err := collection.FindOne(ctx, bson.M{"id": id}).Decode(&conv)
		if err == nil {
			return &conv, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.E(domain.KindPersistence, fmt.Errorf("failed to load conversation: %w", err))
		}
	}

	now := time.Now()
	conv := domain.Conversation{
		ID:        xid.New().String(),
		UserID:    userID,
		Messages:  []domain.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := collection.InsertOne(ctx, conv); err != nil {
		return nil, domain.E(domain.KindPersistence, fmt.Errorf("failed to create conversation: %w", err))
	}

	return &conv, nil
}

func (s *MongoConversationStore) GetConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	collection := s.database.Collection(conversationsCollection)

	var conv domain.Conversation
	err := collection.FindOne(ctx, bson.M{"id": id}).Decode(&conv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.E(domain.KindNotFound, fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound))
	}
	if err != nil {
		return nil, domain.E(domain.KindPersistence, fmt.Errorf("failed to load conversation: %w", err))
	}

	return &conv, nil
}

func (s *MongoConversationStore) CreateMessage(ctx context.Context, conversationID string, role domain.MessageRole, content string, agentType domain.AgentType) (domain.Message, error) {
	collection := s.database.Collection(conversationsCollection)

	now := time.Now()
	msg := domain.Message{
		ID:             xid.New().String(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		AgentType:      agentType,
		CreatedAt:      now,
	}

	result, err := collection.UpdateOne(ctx,
		bson.M{"id": conversationID},
		bson.M{
			"$push": bson.M{"messages": msg},
			"$set":  bson.M{"updated_at": now},
		},
	)
	if err != nil {
		return domain.Message{}, domain.E(domain.KindPersistence, fmt.Errorf("failed to append message: %w", err))
	}
	if result.MatchedCount == 0 {
		return domain.Message{}, domain.E(domain.KindNotFound, fmt.Errorf("conversation %s: %w", conversationID, domain.ErrNotFound))
	}

	return msg, nil
}

func (s *MongoConversationStore) ListConversations(ctx context.Context, userID string) ([]*domain.Conversation, error) {
	collection := s.database.Collection(conversationsCollection)

	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetLimit(listConversationsLimit)

	cursor, err := collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, domain.E(domain.KindPersistence, fmt.Errorf("failed to list conversations: %w", err))
	}
	defer cursor.Close(ctx)

	var result []*domain.Conversation
	for cursor.Next(ctx) {
		var conv domain.Conversation
		if err := cursor.Decode(&conv); err != nil {
			return nil, domain.E(domain.KindPersistence, fmt.Errorf("failed to decode conversation: %w", err))
		}
		result = append(result, &conv)
	}

	if err := cursor.Err(); err != nil {
		return nil, domain.E(domain.KindPersistence, fmt.Errorf("cursor error: %w", err))
	}

	return result, nil
}

func (s *MongoConversationStore) DeleteConversation(ctx context.Context, id string) error {
	collection := s.database.Collection(conversationsCollection)

	result, err := collection.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return domain.E(domain.KindPersistence, fmt.Errorf("failed to delete conversation: %w", err))
	}
	if result.DeletedCount == 0 {
		return domain.E(domain.KindNotFound, fmt.Errorf("conversation %s: %w", id, domain.ErrNotFound))
	}

	return nil
}

func (s *MongoConversationStore) Ping(ctx context.Context) error {
	return s.database.Client().Ping(ctx, nil)
}
