package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to an Irys-style upload node. Uploaded content is
// addressed by the id the node returns and served from the gateway.
type Client struct {
	nodeURL    string
	gatewayURL string
	httpClient *http.Client
}

func New(nodeURL, gatewayURL string) *Client {
	return &Client{
		nodeURL:    strings.TrimRight(nodeURL, "/"),
		gatewayURL: strings.TrimRight(gatewayURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type uploadReceipt struct {
	ID string `json:"id"`
}

// Upload sends raw bytes to the node and returns the gateway URI the
// content is reachable at. Single shot, no retry.
func (c *Client) Upload(ctx context.Context, data []byte, name string) (string, error) {
	if len(data) == 0 {
		return "", errors.New("no content to upload")
	}

	endpoint := c.nodeURL + "/tx"
	if name != "" {
		endpoint += "?name=" + url.QueryEscape(name)
	}

	return c.post(ctx, endpoint, "application/octet-stream", data)
}

// UploadJSON marshals v and uploads it as a JSON document.
func (c *Client) UploadJSON(ctx context.Context, v any) (string, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("could not marshal document: %v", err)
	}

	return c.post(ctx, c.nodeURL+"/tx", "application/json", payload)
}

func (c *Client) post(ctx context.Context, endpoint, contentType string, payload []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("upload node returned status %d", resp.StatusCode)
	}

	var receipt uploadReceipt
	if err := json.Unmarshal(body, &receipt); err != nil {
		return "", fmt.Errorf("could not decode upload receipt: %v", err)
	}
	if receipt.ID == "" {
		return "", errors.New("upload receipt missing id")
	}

	return c.gatewayURL + "/" + receipt.ID, nil
}
