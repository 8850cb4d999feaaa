package store

import (
	"context"
	"fmt"

	"github.com/luxcert/cert-services/internal/certsvc/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const certificateCollection = "certificates"

type CertificateStore struct {
	coll *mongo.Collection
}

func NewCertificateStore(db *mongo.Database) *CertificateStore {
	return &CertificateStore{coll: db.Collection(certificateCollection)}
}

// Append adds a record under the owner wallet key. The ObjectID is
// the push-unique-key: allocated client-side, collision free, so no
// read-modify-write is needed to extend the collection.
func (s *CertificateStore) Append(ctx context.Context, wallet string, rec models.CertificateRecord) (string, error) {
	rec.ID = primitive.NewObjectID().Hex()
	rec.Wallet = wallet

	_, err := s.coll.InsertOne(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("could not append certificate for %s: %v", wallet, err)
	}

	return rec.ID, nil
}

// ListByWallet returns every record under the wallet key in arrival
// order from the store. Ordering for display is decided at read time.
func (s *CertificateStore) ListByWallet(ctx context.Context, wallet string) ([]models.CertificateRecord, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"wallet": wallet})
	if err != nil {
		return nil, fmt.Errorf("could not list certificates for %s: %v", wallet, err)
	}
	defer cursor.Close(ctx)

	var records []models.CertificateRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("could not decode certificates for %s: %v", wallet, err)
	}

	return records, nil
}
