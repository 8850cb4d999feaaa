package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetadataDocument(t *testing.T) {
	details := WatchDetails{
		Description:  "chronograph, original box",
		Brand:        "Omega",
		Model:        "Speedmaster",
		SerialNumber: "123",
		Year:         "1969",
		Status:       "mint",
		Price:        "5000",
		Owner:        "ABC123",
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	doc := NewMetadataDocument(details, "https://gateway/img1", "CERT-WALLET", now)

	assert.Equal(t, TokenName, doc.Name)
	assert.Equal(t, TokenSymbol, doc.Symbol)
	assert.Equal(t, "Omega", doc.Brand)
	assert.Equal(t, "ABC123", doc.Owner)
	assert.Equal(t, "2026-03-01T12:00:00Z", doc.Date)

	// the document must point at the URI the image upload returned
	assert.Equal(t, "https://gateway/img1", doc.Image)
	require.Len(t, doc.Properties.Files, 1)
	assert.Equal(t, "https://gateway/img1", doc.Properties.Files[0].URI)
	assert.Equal(t, "image/jpeg", doc.Properties.Files[0].Type)

	require.Len(t, doc.Attributes, 2)
	assert.Equal(t, MetadataAttribute{TraitType: "Rarity", Value: "Common"}, doc.Attributes[0])
	assert.Equal(t, MetadataAttribute{TraitType: "Author", Value: "CERT-CERT-WALLET"}, doc.Attributes[1])
}

func TestSessionWallet(t *testing.T) {
	sess := NewSession(7, "owner@example.com")
	assert.Equal(t, WalletSentinel, sess.Wallet)
	assert.False(t, sess.HasWallet())

	sess.Wallet = "ABC123"
	assert.True(t, sess.HasWallet())
}
