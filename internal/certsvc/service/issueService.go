package service

import (
	"context"
	"fmt"
	"time"

	"github.com/luxcert/cert-services/internal/certsvc/models"

	log "github.com/sirupsen/logrus"
)

// fixed 5% royalty on every issued certificate
const sellerFeeBasisPoints = 500

type Uploader interface {
	Upload(ctx context.Context, data []byte, name string) (string, error)
	UploadJSON(ctx context.Context, v any) (string, error)
}

type Minter interface {
	// CreateAndSubmitToken returns the base58 transaction signature.
	// An empty signature with a nil error is the decode-failure
	// outcome and is not treated as an error.
	CreateAndSubmitToken(ctx context.Context, name, symbol, uri string, sellerFeeBasisPoints uint16) (string, error)
}

type CertificateStore interface {
	Append(ctx context.Context, wallet string, rec models.CertificateRecord) (string, error)
	ListByWallet(ctx context.Context, wallet string) ([]models.CertificateRecord, error)
}

// Notifier announces that a wallet's certificate collection changed.
type Notifier interface {
	CertificatesChanged(wallet string)
}

// IssueInput carries the submitted form: the image bytes plus the
// descriptive fields. Collection is decoupled from orchestration.
type IssueInput struct {
	Image   []byte
	Details models.WatchDetails
}

// IssueResult is what the submitting client gets back. An empty
// Signature means the mint confirmation could not be decoded; the
// client restores its controls either way.
type IssueResult struct {
	Signature    string `json:"signature"`
	MetadataURI  string `json:"metadata_uri"`
	ExplorerLink string `json:"explorer_link,omitempty"`
	RecordID     string `json:"record_id,omitempty"`
}

// IssueService runs the four-stage issuance pipeline: image upload,
// metadata build and upload, mint, persistence. Stages run strictly
// in sequence and the first failing stage aborts the rest.
type IssueService struct {
	uploader     Uploader
	minter       Minter
	certificates CertificateStore
	notifier     Notifier

	now func() time.Time
}

func NewIssueService(uploader Uploader, minter Minter, certificates CertificateStore, notifier Notifier) *IssueService {
	return &IssueService{
		uploader:     uploader,
		minter:       minter,
		certificates: certificates,
		notifier:     notifier,
		now:          time.Now,
	}
}

func (s *IssueService) Issue(ctx context.Context, sess *models.Session, in IssueInput) (*IssueResult, error) {
	// stage 1: image upload
	if len(in.Image) == 0 {
		return nil, ErrNoImage
	}

	blobName := in.Details.Brand + "-" + in.Details.Model
	imageURI, err := s.uploader.Upload(ctx, in.Image, blobName)
	if err != nil {
		return nil, &UploadError{Stage: "image", Err: err}
	}
	log.Infof("Image URI: %s", imageURI)

	// stage 2: metadata build and upload
	doc := models.NewMetadataDocument(in.Details, imageURI, sess.Wallet, s.now())
	metadataURI, err := s.uploader.UploadJSON(ctx, doc)
	if err != nil {
		return nil, &UploadError{Stage: "metadata", Err: err}
	}
	log.Infof("Metadata URI: %s", metadataURI)

	// stage 3: mint
	sig, err := s.minter.CreateAndSubmitToken(ctx, models.TokenName, models.TokenSymbol, metadataURI, sellerFeeBasisPoints)
	if err != nil {
		return nil, err
	}

	res := &IssueResult{MetadataURI: metadataURI}
	if sig == "" {
		// decode-failure outcome: nothing to persist, the caller
		// still gets its controls back
		return res, nil
	}
	res.Signature = sig
	res.ExplorerLink = ExplorerLink(sig)
	log.Infof("Signature: %s", sig)

	// stage 4: persistence, awaited but its failure only logged; the
	// mint is the source of truth, the store is a convenience index
	rec := models.CertificateRecord{
		Signature:   sig,
		MetadataURI: metadataURI,
		Timestamp:   s.now().UTC().Format(time.RFC3339),
	}
	recordID, err := s.certificates.Append(ctx, in.Details.Owner, rec)
	if err != nil {
		log.Errorf("Error saving certificate for %s: %v", in.Details.Owner, err)
	} else {
		res.RecordID = recordID
		log.Infof("Certificate %s saved for %s", recordID, in.Details.Owner)
	}

	if s.notifier != nil {
		s.notifier.CertificatesChanged(in.Details.Owner)
	}

	return res, nil
}

// ExplorerLink builds the blockchain-explorer URL for a signature.
func ExplorerLink(signature string) string {
	return fmt.Sprintf("https://explorer.solana.com/tx/%s?cluster=devnet", signature)
}
