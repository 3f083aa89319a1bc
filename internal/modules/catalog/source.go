package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Source resolves barcodes the local catalog does not know. Fetch returns
// (nil, nil) when the source has no record of the product.
type Source interface {
	Fetch(ctx context.Context, barcode string) (*ExternalProduct, error)
}

const (
	offFields      = "code,product_name,brands,categories,image_url,image_front_url"
	unknownProduct = "Unknown Product"
)

// OpenFoodFacts looks products up in the Open Food Facts v2 API. Requests
// are throttled to the configured rate, and concurrent lookups of one
// barcode share a single upstream call.
type OpenFoodFacts struct {
	baseURL   string
	userAgent string
	client    *http.Client
	timeout   time.Duration
	limiter   *rate.Limiter
	inflight  singleflight.Group
}

const defaultLookupTimeout = 15 * time.Second

func NewOpenFoodFacts(baseURL, userAgent string, perSecond float64, burst int, timeout time.Duration) *OpenFoodFacts {
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}
	return &OpenFoodFacts{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
		timeout:   timeout,
		limiter:   rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

type offResponse struct {
	Status  int `json:"status"`
	Product struct {
		Code          string `json:"code"`
		ProductName   string `json:"product_name"`
		Brands        string `json:"brands"`
		Categories    string `json:"categories"`
		ImageURL      string `json:"image_url"`
		ImageFrontURL string `json:"image_front_url"`
	} `json:"product"`
}

// Fetch returns when the shared lookup finishes or ctx is done. The shared
// lookup is detached from any one caller and bounded by the source timeout,
// so a caller that gives up does not fail the others waiting on it.
func (o *OpenFoodFacts) Fetch(ctx context.Context, barcode string) (*ExternalProduct, error) {
	ch := o.inflight.DoChan(barcode, func() (interface{}, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.timeout)
		defer cancel()
		return o.fetch(shared, barcode)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*ExternalProduct), nil
	}
}

func (o *OpenFoodFacts) fetch(ctx context.Context, barcode string) (*ExternalProduct, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/api/v2/product/%s.json?fields=%s",
		o.baseURL, url.PathEscape(barcode), url.QueryEscape(offFields))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", o.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open food facts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("open food facts: unexpected status %d", resp.StatusCode)
	}

	var body offResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("open food facts: decode: %w", err)
	}
	if body.Status == 0 {
		return nil, nil
	}

	p := body.Product
	ext := &ExternalProduct{
		Barcode:  barcode,
		Name:     strings.TrimSpace(p.ProductName),
		Brand:    strings.TrimSpace(p.Brands),
		Category: firstCategory(p.Categories),
		ImageURL: p.ImageURL,
	}
	if ext.Name == "" {
		ext.Name = unknownProduct
	}
	if ext.ImageURL == "" {
		ext.ImageURL = p.ImageFrontURL
	}
	return ext, nil
}

func firstCategory(categories string) string {
	first, _, _ := strings.Cut(categories, ",")
	return strings.TrimSpace(first)
}
