package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"time"

	"shadowsync/internal/logger"
	"shadowsync/internal/ratelimit"
)

const (
	apiVersion = "2023-10"
	pageSize   = 250
)

// Client wraps the commerce platform's Admin API. Every request consumes one
// token from the shared rate-limit bucket before it is issued.
type Client struct {
	shopDomain  string
	accessToken string
	httpClient  *http.Client
	limiter     *ratelimit.Bucket
	logger      *logger.Logger
}

func NewClient(shopDomain, accessToken string, limiter *ratelimit.Bucket, logger *logger.Logger) *Client {
	return &Client{
		shopDomain:  shopDomain,
		accessToken: accessToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: limiter,
		logger:  logger,
	}
}

// GetProducts fetches one page of products from the platform
func (c *Client) GetProducts(ctx context.Context, limit int, pageInfo string) (*ProductsResponse, string, error) {
	if err := c.limiter.Consume(ctx, 1); err != nil {
		return nil, "", fmt.Errorf("rate limiter interrupted: %w", err)
	}

	url := fmt.Sprintf("https://%s.myshopify.com/admin/api/%s/products.json", c.shopDomain, apiVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	q := req.URL.Query()
	q.Set("limit", fmt.Sprintf("%d", limit))
	if pageInfo != "" {
		q.Set("page_info", pageInfo)
	}
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, "", fmt.Errorf("API request failed: %d - %s", resp.StatusCode, string(body))
	}

	var productsResp ProductsResponse
	if err := json.NewDecoder(resp.Body).Decode(&productsResp); err != nil {
		return nil, "", fmt.Errorf("failed to decode response: %w", err)
	}

	return &productsResp, nextPageInfo(resp.Header.Get("Link")), nil
}

// ListAllProducts walks all pages and returns the full product set. Used once
// per batch pass to build the sku snapshot.
func (c *Client) ListAllProducts(ctx context.Context) ([]Product, error) {
	var all []Product
	pageInfo := ""

	for {
		page, next, err := c.GetProducts(ctx, pageSize, pageInfo)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Products...)

		if next == "" {
			break
		}
		pageInfo = next
	}

	c.logger.Debug("Listed %d products from platform", len(all))
	return all, nil
}

// CreateProduct creates a single product on the platform. Validation errors
// reported by the platform come back inside the CreateResult; a non-nil Go
// error means the request itself could not be completed.
func (c *Client) CreateProduct(ctx context.Context, input *ProductInput) (*CreateResult, error) {
	if err := c.limiter.Consume(ctx, 1); err != nil {
		return nil, fmt.Errorf("rate limiter interrupted: %w", err)
	}

	url := fmt.Sprintf("https://%s.myshopify.com/admin/api/%s/products.json", c.shopDomain, apiVersion)

	payload := struct {
		Product *ProductInput `json:"product"`
	}{
		Product: input,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal product: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusOK:
		var productResp struct {
			Product Product `json:"product"`
		}
		if err := json.Unmarshal(body, &productResp); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return &CreateResult{Product: &productResp.Product}, nil

	case resp.StatusCode == http.StatusUnprocessableEntity:
		return &CreateResult{UserErrors: parseUserErrors(body)}, nil

	default:
		return nil, fmt.Errorf("API request failed: %d - %s", resp.StatusCode, string(body))
	}
}

// parseUserErrors flattens the platform's 422 body, which maps field names to
// lists of messages, into ordered field/message pairs.
func parseUserErrors(body []byte) []UserError {
	var errResp struct {
		Errors map[string]interface{} `json:"errors"`
	}
	if err := json.Unmarshal(body, &errResp); err != nil || len(errResp.Errors) == 0 {
		return []UserError{{Field: "base", Message: string(body)}}
	}

	fields := make([]string, 0, len(errResp.Errors))
	for field := range errResp.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var userErrors []UserError
	for _, field := range fields {
		switch v := errResp.Errors[field].(type) {
		case []interface{}:
			for _, msg := range v {
				userErrors = append(userErrors, UserError{Field: field, Message: fmt.Sprintf("%v", msg)})
			}
		default:
			userErrors = append(userErrors, UserError{Field: field, Message: fmt.Sprintf("%v", v)})
		}
	}
	return userErrors
}

var pageInfoPattern = regexp.MustCompile(`page_info=([^&>]+)>;\s*rel="next"`)

// nextPageInfo extracts the next-page cursor from a Link response header.
func nextPageInfo(linkHeader string) string {
	if linkHeader == "" {
		return ""
	}
	match := pageInfoPattern.FindStringSubmatch(linkHeader)
	if len(match) < 2 {
		return ""
	}
	return match[1]
}
