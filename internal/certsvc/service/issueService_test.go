package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/luxcert/cert-services/internal/certsvc/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	uploadCalls []string // blob names in call order
	jsonDocs    []models.MetadataDocument

	imageURI    string
	metadataURI string
	uploadErr   error
	jsonErr     error
}

func (f *fakeUploader) Upload(ctx context.Context, data []byte, name string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploadCalls = append(f.uploadCalls, name)
	return f.imageURI, nil
}

func (f *fakeUploader) UploadJSON(ctx context.Context, v any) (string, error) {
	if f.jsonErr != nil {
		return "", f.jsonErr
	}
	doc, ok := v.(models.MetadataDocument)
	if !ok {
		return "", errors.New("unexpected payload type")
	}
	f.jsonDocs = append(f.jsonDocs, doc)
	return f.metadataURI, nil
}

type fakeMinter struct {
	name, symbol, uri string
	bps               uint16
	calls             int

	signature string
	err       error
}

func (f *fakeMinter) CreateAndSubmitToken(ctx context.Context, name, symbol, uri string, sellerFeeBasisPoints uint16) (string, error) {
	f.calls++
	f.name, f.symbol, f.uri, f.bps = name, symbol, uri, sellerFeeBasisPoints
	return f.signature, f.err
}

type fakeCertStore struct {
	appended map[string][]models.CertificateRecord
	nextID   int
	err      error
}

func newFakeCertStore() *fakeCertStore {
	return &fakeCertStore{appended: map[string][]models.CertificateRecord{}}
}

func (f *fakeCertStore) Append(ctx context.Context, wallet string, rec models.CertificateRecord) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.nextID++
	rec.ID = string(rune('a' + f.nextID - 1))
	rec.Wallet = wallet
	f.appended[wallet] = append(f.appended[wallet], rec)
	return rec.ID, nil
}

func (f *fakeCertStore) ListByWallet(ctx context.Context, wallet string) ([]models.CertificateRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.appended[wallet], nil
}

type fakeNotifier struct {
	wallets []string
}

func (f *fakeNotifier) CertificatesChanged(wallet string) {
	f.wallets = append(f.wallets, wallet)
}

func testInput() IssueInput {
	return IssueInput{
		Image: []byte("jpeg-bytes"),
		Details: models.WatchDetails{
			Description:  "chronograph, original box",
			Brand:        "Omega",
			Model:        "Speedmaster",
			SerialNumber: "123",
			Year:         "1969",
			Status:       "mint",
			Price:        "5000",
			Owner:        "ABC123",
		},
	}
}

func testSession() *models.Session {
	return &models.Session{UserID: 1, Email: "owner@example.com", Wallet: "ABC123"}
}

func TestIssueEndToEnd(t *testing.T) {
	up := &fakeUploader{imageURI: "https://gateway/img1", metadataURI: "https://gateway/meta1"}
	minter := &fakeMinter{signature: "5ig"}
	certs := newFakeCertStore()
	notifier := &fakeNotifier{}

	svc := NewIssueService(up, minter, certs, notifier)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	result, err := svc.Issue(context.Background(), testSession(), testInput())
	require.NoError(t, err)

	// one image upload named brand-model
	require.Len(t, up.uploadCalls, 1)
	assert.Equal(t, "Omega-Speedmaster", up.uploadCalls[0])

	// one metadata upload whose image matches the image upload result
	require.Len(t, up.jsonDocs, 1)
	doc := up.jsonDocs[0]
	assert.Equal(t, "https://gateway/img1", doc.Image)
	assert.Equal(t, "ABC123", doc.Owner)

	// one mint with the fixed name and symbol
	assert.Equal(t, 1, minter.calls)
	assert.Equal(t, "Lux Cert NFT", minter.name)
	assert.Equal(t, "LXC", minter.symbol)
	assert.Equal(t, "https://gateway/meta1", minter.uri)
	assert.Equal(t, uint16(500), minter.bps)

	// exactly one record under the owner key
	require.Len(t, certs.appended["ABC123"], 1)
	rec := certs.appended["ABC123"][0]
	assert.Equal(t, "5ig", rec.Signature)
	assert.Equal(t, "https://gateway/meta1", rec.MetadataURI)
	assert.Equal(t, "2026-03-01T12:00:00Z", rec.Timestamp)

	assert.Equal(t, "5ig", result.Signature)
	assert.Equal(t, "https://explorer.solana.com/tx/5ig?cluster=devnet", result.ExplorerLink)
	assert.Equal(t, []string{"ABC123"}, notifier.wallets)
}

func TestIssueWithoutImage(t *testing.T) {
	up := &fakeUploader{}
	minter := &fakeMinter{}
	svc := NewIssueService(up, minter, newFakeCertStore(), nil)

	in := testInput()
	in.Image = nil

	_, err := svc.Issue(context.Background(), testSession(), in)
	require.ErrorIs(t, err, ErrNoImage)
	assert.Empty(t, up.uploadCalls)
	assert.Zero(t, minter.calls)
}

func TestIssueImageUploadFailureAborts(t *testing.T) {
	up := &fakeUploader{uploadErr: errors.New("node unreachable")}
	minter := &fakeMinter{}
	certs := newFakeCertStore()
	svc := NewIssueService(up, minter, certs, nil)

	_, err := svc.Issue(context.Background(), testSession(), testInput())

	var upErr *UploadError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, "image", upErr.Stage)
	assert.Zero(t, minter.calls)
	assert.Empty(t, certs.appended)
}

func TestIssueMetadataUploadFailureAborts(t *testing.T) {
	up := &fakeUploader{imageURI: "https://gateway/img1", jsonErr: errors.New("node refused")}
	minter := &fakeMinter{}
	svc := NewIssueService(up, minter, newFakeCertStore(), nil)

	_, err := svc.Issue(context.Background(), testSession(), testInput())

	var upErr *UploadError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, "metadata", upErr.Stage)
	assert.Zero(t, minter.calls)
}

func TestIssueDecodeFailureYieldsNullSignature(t *testing.T) {
	up := &fakeUploader{imageURI: "https://gateway/img1", metadataURI: "https://gateway/meta1"}
	minter := &fakeMinter{signature: ""} // decode-failure outcome
	certs := newFakeCertStore()
	svc := NewIssueService(up, minter, certs, nil)

	result, err := svc.Issue(context.Background(), testSession(), testInput())
	require.NoError(t, err)

	// no crash, a null signature, and nothing persisted
	assert.Empty(t, result.Signature)
	assert.Empty(t, result.ExplorerLink)
	assert.Equal(t, "https://gateway/meta1", result.MetadataURI)
	assert.Empty(t, certs.appended)
}

func TestIssuePersistenceFailureIsSilent(t *testing.T) {
	up := &fakeUploader{imageURI: "https://gateway/img1", metadataURI: "https://gateway/meta1"}
	minter := &fakeMinter{signature: "5ig"}
	certs := newFakeCertStore()
	certs.err = errors.New("store down")
	notifier := &fakeNotifier{}
	svc := NewIssueService(up, minter, certs, notifier)

	// the mint is the source of truth: the caller still sees success
	result, err := svc.Issue(context.Background(), testSession(), testInput())
	require.NoError(t, err)
	assert.Equal(t, "5ig", result.Signature)
	assert.Empty(t, result.RecordID)
	assert.Equal(t, []string{"ABC123"}, notifier.wallets)
}

func TestIssueAuthorAttributeUsesSessionWallet(t *testing.T) {
	up := &fakeUploader{imageURI: "https://gateway/img1", metadataURI: "https://gateway/meta1"}
	minter := &fakeMinter{signature: "5ig"}
	svc := NewIssueService(up, minter, newFakeCertStore(), nil)

	sess := testSession()
	sess.Wallet = "CERTIFIER-WALLET"

	_, err := svc.Issue(context.Background(), sess, testInput())
	require.NoError(t, err)

	require.Len(t, up.jsonDocs, 1)
	attrs := up.jsonDocs[0].Attributes
	require.Len(t, attrs, 2)
	assert.Equal(t, "Author", attrs[1].TraitType)
	assert.Equal(t, "CERT-CERTIFIER-WALLET", attrs[1].Value)
}
