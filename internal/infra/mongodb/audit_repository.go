package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/LuanMakohin/api-simples/internal/gateway"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const auditCollection = "settlement_audit"

// auditDocument is the stored shape of a gateway.AuditEntry.
type auditDocument struct {
	EntityID    string    `bson:"entity_id"`
	Kind        string    `bson:"kind"`
	Status      string    `bson:"status"`
	Reason      string    `bson:"reason,omitempty"`
	Value       string    `bson:"value"`
	Attempt     int       `bson:"attempt"`
	ProcessedAt time.Time `bson:"processed_at"`
}

type AuditRepository struct {
	collection *mongo.Collection
}

var _ gateway.AuditRepository = (*AuditRepository)(nil)

func NewAuditRepository(client *mongo.Client, dbName string) *AuditRepository {
	return &AuditRepository{collection: client.Database(dbName).Collection(auditCollection)}
}

func (r *AuditRepository) Save(ctx context.Context, entry gateway.AuditEntry) error {
	if entry.ProcessedAt.IsZero() {
		entry.ProcessedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, toDocument(entry))
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

func toDocument(entry gateway.AuditEntry) auditDocument {
	return auditDocument{
		EntityID:    entry.EntityID,
		Kind:        entry.Kind,
		Status:      entry.Status,
		Reason:      entry.Reason,
		Value:       entry.Value,
		Attempt:     entry.Attempt,
		ProcessedAt: entry.ProcessedAt.UTC(),
	}
}

// Connect opens a client and pings the deployment.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to create mongodb client: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return client, nil
}
