package exchange

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

// Source fetches the current USD to VES rate from one provider.
type Source interface {
	Name() string
	FetchUSD(ctx context.Context) (decimal.Decimal, error)
}

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/143.0.0.0 Safari/537.36"

// BCV scrapes the official rate from the Banco Central de Venezuela home
// page, where it is shown as "36,1234" inside div#dolar.
type BCV struct {
	url    string
	client *http.Client
}

func NewBCV(url string, timeout time.Duration, skipTLSVerify bool) *BCV {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if skipTLSVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return &BCV{url: url, client: &http.Client{Timeout: timeout, Transport: transport}}
}

func (b *BCV) Name() string { return "BCV" }

func (b *BCV) FetchUSD(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.url, nil)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := b.client.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return decimal.Zero, err
	}
	sel := doc.Find("div#dolar strong").First()
	if sel.Length() == 0 {
		return decimal.Zero, fmt.Errorf("dolar rate not found on page")
	}
	return parseRate(strings.ReplaceAll(strings.TrimSpace(sel.Text()), ",", "."))
}

// DolarAPI reads the official average from the DolarAPI JSON service.
type DolarAPI struct {
	url    string
	client *http.Client
}

func NewDolarAPI(url string, timeout time.Duration) *DolarAPI {
	return &DolarAPI{url: url, client: &http.Client{Timeout: timeout}}
}

func (d *DolarAPI) Name() string { return "DolarAPI" }

func (d *DolarAPI) FetchUSD(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.url, nil)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Promedio *decimal.Decimal `json:"promedio"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, err
	}
	if body.Promedio == nil {
		return decimal.Zero, fmt.Errorf("response has no promedio")
	}
	return checkRate(*body.Promedio)
}

func parseRate(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse rate %q: %w", s, err)
	}
	return checkRate(d)
}

func checkRate(d decimal.Decimal) (decimal.Decimal, error) {
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("rate must be positive, got %s", d)
	}
	return d, nil
}
