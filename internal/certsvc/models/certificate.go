package models

// CertificateRecord is one issued certificate stored under the owner
// wallet key. Records are append-only, never updated or deleted.
type CertificateRecord struct {
	ID          string `bson:"_id,omitempty" json:"id"`
	Wallet      string `bson:"wallet" json:"wallet"`
	Signature   string `bson:"signature" json:"signature"`
	MetadataURI string `bson:"metadata_uri" json:"metadataUri"`
	Timestamp   string `bson:"timestamp" json:"timestamp"` // RFC 3339
}
