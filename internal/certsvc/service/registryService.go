package service

import (
	"context"
	"strings"

	"github.com/luxcert/cert-services/internal/certsvc/models"
	"github.com/luxcert/cert-services/internal/comm"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type MetadataResolver interface {
	Fetch(ctx context.Context, uri string) (*models.MetadataDocument, error)
}

// RegistryService rebuilds the displayed certificate rows for a
// wallet. Every snapshot is built from scratch, so rendering the same
// state twice yields the same row set.
type RegistryService struct {
	certificates CertificateStore
	resolver     MetadataResolver
}

func NewRegistryService(certificates CertificateStore, resolver MetadataResolver) *RegistryService {
	return &RegistryService{
		certificates: certificates,
		resolver:     resolver,
	}
}

// Snapshot lists the wallet's records and resolves each metadata
// document sequentially. Records whose metadata does not resolve are
// omitted without an error row. No wallet means no work, not an error.
func (s *RegistryService) Snapshot(ctx context.Context, wallet string) ([]comm.CertificateRow, error) {
	if wallet == "" || wallet == models.WalletSentinel {
		return nil, nil
	}

	records, err := s.certificates.ListByWallet(ctx, wallet)
	if err != nil {
		return nil, &StoreReadError{Key: "NFTs/" + wallet, Err: err}
	}

	rows := make([]comm.CertificateRow, 0, len(records))
	for _, rec := range records {
		meta, err := s.resolver.Fetch(ctx, rec.MetadataURI)
		if err != nil {
			log.Errorf("Failed to fetch metadata %s: %v", rec.MetadataURI, err)
			continue
		}

		rows = append(rows, comm.CertificateRow{
			Image:           meta.Image,
			Brand:           meta.Brand,
			Model:           meta.Model,
			SerialNumber:    meta.SerialNumber,
			ExplorerLink:    ExplorerLink(rec.Signature),
			MetadataURI:     rec.MetadataURI,
			PriceEstimation: formatPrice(meta.Price),
		})
	}

	return rows, nil
}

// formatPrice normalizes the free-text estimate for display; values
// that are not numeric are shown as submitted.
func formatPrice(raw string) string {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return raw + " €"
	}
	return d.StringFixed(2) + " €"
}
