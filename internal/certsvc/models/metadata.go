package models

import (
	"time"
)

const (
	// TokenName and TokenSymbol are fixed for every issued certificate.
	TokenName   = "Lux Cert NFT"
	TokenSymbol = "LXC"

	rarityCommon = "Common"
	imageMIME    = "image/jpeg"
)

type MetadataAttribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

type MetadataFile struct {
	Type string `json:"type"`
	URI  string `json:"uri"`
}

type MetadataProperties struct {
	Files []MetadataFile `json:"files"`
}

// MetadataDocument is the JSON document uploaded to decentralized
// storage and referenced by URI from the mint onwards.
type MetadataDocument struct {
	Name         string              `json:"name"`
	Symbol       string              `json:"symbol"`
	Description  string              `json:"description"`
	Image        string              `json:"image"`
	Brand        string              `json:"brand"`
	Model        string              `json:"model"`
	SerialNumber string              `json:"serialNumber"`
	Year         string              `json:"year"`
	Status       string              `json:"status"`
	Price        string              `json:"price"`
	Owner        string              `json:"owner"`
	Date         string              `json:"date"`
	Attributes   []MetadataAttribute `json:"attributes"`
	Properties   MetadataProperties  `json:"properties"`
}

// WatchDetails are the free-text form fields describing the item. No
// format validation is applied, values are kept as submitted.
type WatchDetails struct {
	Description  string
	Brand        string
	Model        string
	SerialNumber string
	Year         string
	Status       string
	Price        string
	Owner        string
}

// NewMetadataDocument builds the document for one issuance. The image
// field carries the URI returned by the prior image upload, so the
// document can only be built after that upload completed.
func NewMetadataDocument(d WatchDetails, imageURI, authorWallet string, now time.Time) MetadataDocument {
	return MetadataDocument{
		Name:         TokenName,
		Symbol:       TokenSymbol,
		Description:  d.Description,
		Image:        imageURI,
		Brand:        d.Brand,
		Model:        d.Model,
		SerialNumber: d.SerialNumber,
		Year:         d.Year,
		Status:       d.Status,
		Price:        d.Price,
		Owner:        d.Owner,
		Date:         now.UTC().Format(time.RFC3339),
		Attributes: []MetadataAttribute{
			{TraitType: "Rarity", Value: rarityCommon},
			{TraitType: "Author", Value: "CERT-" + authorWallet},
		},
		Properties: MetadataProperties{
			Files: []MetadataFile{
				{Type: imageMIME, URI: imageURI},
			},
		},
	}
}
