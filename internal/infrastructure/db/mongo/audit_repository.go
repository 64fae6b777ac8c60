package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/astroline/admin-gateway/internal/core/domain"
	"github.com/astroline/admin-gateway/internal/core/ports"
)

const auditCollection = "audit_log"

// AuditRepository persists the admin audit trail in MongoDB.
type AuditRepository struct {
	coll *mongo.Collection
}

var _ ports.AuditRecorder = (*AuditRepository)(nil)

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

type auditDoc struct {
	Actor     string `bson:"actor,omitempty"`
	Action    string `bson:"action"`
	Resource  string `bson:"resource,omitempty"`
	Detail    string `bson:"detail,omitempty"`
	IP        string `bson:"ip,omitempty"`
	CreatedAt int64  `bson:"created_at"`
}

func (r *AuditRepository) Record(ctx context.Context, entry domain.AuditEntry) error {
	doc := auditDoc{
		Actor:     entry.Actor,
		Action:    entry.Action,
		Resource:  entry.Resource,
		Detail:    entry.Detail,
		IP:        entry.IP,
		CreatedAt: entry.CreatedAt.Unix(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// Recent returns the newest audit entries, most recent first.
func (r *AuditRepository) Recent(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find audit entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []domain.AuditEntry
	for cursor.Next(ctx) {
		var doc auditDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode audit entry: %w", err)
		}
		entries = append(entries, domain.AuditEntry{
			Actor:     doc.Actor,
			Action:    doc.Action,
			Resource:  doc.Resource,
			Detail:    doc.Detail,
			IP:        doc.IP,
			CreatedAt: unixToTime(doc.CreatedAt),
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}
