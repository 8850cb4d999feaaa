package uploader

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/luxcert/cert-services/internal/certsvc/models"
)

// Resolver fetches metadata documents back from their gateway URIs.
type Resolver struct {
	httpClient *http.Client
}

func NewResolver() *Resolver {
	return &Resolver{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (r *Resolver) Fetch(ctx context.Context, uri string) (*models.MetadataDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metadata fetch returned status %d", resp.StatusCode)
	}

	doc := &models.MetadataDocument{}
	if err := json.NewDecoder(resp.Body).Decode(doc); err != nil {
		return nil, fmt.Errorf("could not decode metadata document: %v", err)
	}

	return doc, nil
}
