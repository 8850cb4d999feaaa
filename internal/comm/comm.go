package comm

import (
	"encoding/json"
	"time"
)

type WSMessage struct {
	Type     string          `json:"type"` // e.g. "watch-certificates"
	Data     json.RawMessage `json:"data"`
	SocketId string          `json:"socketid"`
}

// WatchCertificates is sent by a web client that wants live
// certificate updates for a wallet.
type WatchCertificates struct {
	Wallet string `json:"wallet"`
}

// CertificateRow is one rendered registry entry, ready for display.
type CertificateRow struct {
	Image           string `json:"image"`
	Brand           string `json:"brand"`
	Model           string `json:"model"`
	SerialNumber    string `json:"serial_number"`
	ExplorerLink    string `json:"explorer_link"`
	MetadataURI     string `json:"metadata_uri"`
	PriceEstimation string `json:"price_estimation"`
}

// CertificateRows is the full rebuilt row set for a wallet. The client
// replaces its table with this, it never appends.
type CertificateRows struct {
	Wallet string           `json:"wallet"`
	Rows   []CertificateRow `json:"rows"`
}

// CertificatesChanged notifies that the keyed collection for a wallet
// gained a record and watchers need a fresh snapshot.
type CertificatesChanged struct {
	Wallet    string    `json:"wallet"`
	Timestamp time.Time `json:"timestamp"`
}

type ServiceHeartbeat struct {
	ID        string    `json:"id"` // service id
	Timestamp time.Time `json:"timestamp"`
}
