package cpe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// catalogBaseURL is the NVD CPE catalog endpoint (spec §6).
const catalogBaseURL = "https://services.nvd.nist.gov/rest/json/cpes/2.0"

// resultsPerPage is fixed per spec §6.
const resultsPerPage = 10

// catalogEnvelope mirrors the subset of the NVD response JSON this client
// consumes (spec §4.F): totalResults, products[].cpe.{cpeName, cpeNameId,
// deprecated, titles[]}. Everything else passes through unread.
type catalogEnvelope struct {
	TotalResults int `json:"totalResults"`
	Products     []struct {
		CPE struct {
			CPEName    string `json:"cpeName"`
			CPENameID  string `json:"cpeNameId"`
			Deprecated bool   `json:"deprecated"`
			Titles     []struct {
				Title string `json:"title"`
				Lang  string `json:"lang"`
			} `json:"titles"`
		} `json:"cpe"`
	} `json:"products"`
}

// Client is the NVD Catalog Client of spec §4.F, gated through a Gate for
// rate limiting and caching (§4.E).
type Client struct {
	httpClient *http.Client
	gate       *Gate
	apiKey     string
	baseURL    string
	logger     *zap.Logger
}

// NewClient constructs a Client. gate is shared process-wide (spec §9
// "process-wide state... passed into the pipeline constructor").
func NewClient(httpClient *http.Client, gate *Gate, apiKey string, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: httpClient,
		gate:       gate,
		apiKey:     apiKey,
		baseURL:    catalogBaseURL,
		logger:     logger,
	}
}

// QueryExact issues a cpeMatchString query (spec §4.F, §6), returning at
// most 10 records.
func (c *Client) QueryExact(ctx context.Context, cpeURI string) (CatalogResult, error) {
	return c.gate.Fetch(ctx, cpeURI, "", func(ctx context.Context) (CatalogResult, error) {
		return c.doQuery(ctx, "cpeMatchString", cpeURI)
	})
}

// QueryKeyword issues a keywordSearch query (spec §4.F, §6), returning at
// most 10 records.
func (c *Client) QueryKeyword(ctx context.Context, keyword string) (CatalogResult, error) {
	return c.gate.Fetch(ctx, "", keyword, func(ctx context.Context) (CatalogResult, error) {
		return c.doQuery(ctx, "keywordSearch", keyword)
	})
}

// doQuery performs the actual HTTP round trip and envelope parse.
func (c *Client) doQuery(ctx context.Context, param, value string) (CatalogResult, error) {
	reqURL, err := url.Parse(c.baseURL)
	if err != nil {
		return CatalogResult{}, newError(KindUpstreamUnavailable, "invalid base URL", err)
	}

	q := reqURL.Query()
	q.Set(param, value)
	q.Set("resultsPerPage", fmt.Sprintf("%d", resultsPerPage))
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return CatalogResult{}, newError(KindUpstreamUnavailable, "failed to build request", err)
	}
	if c.apiKey != "" {
		req.Header.Set("apiKey", c.apiKey)
	}

	c.logger.Debug("querying NVD catalog", zap.String("param", param), zap.String("value", value))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return CatalogResult{}, newError(KindUpstreamUnavailable, "NVD request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return CatalogResult{}, newError(KindUpstreamUnavailable,
			fmt.Sprintf("NVD returned status %d: %s", resp.StatusCode, string(body)), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return CatalogResult{}, newError(KindUpstreamUnavailable, "failed to read NVD response", err)
	}

	var envelope catalogEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return CatalogResult{}, newError(KindUpstreamMalformed, "failed to decode NVD response", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields["totalResults"] == nil || fields["products"] == nil {
		return CatalogResult{}, newError(KindUpstreamMalformed, "NVD response is missing totalResults or products", err)
	}

	return convertEnvelope(envelope), nil
}

// convertEnvelope maps the raw JSON envelope onto the fields this client
// exposes downstream, preferring an English title and falling back to the
// first title present.
func convertEnvelope(envelope catalogEnvelope) CatalogResult {
	result := CatalogResult{
		TotalResults: envelope.TotalResults,
		Products:     make([]CatalogProduct, 0, len(envelope.Products)),
	}

	for _, p := range envelope.Products {
		title := ""
		if len(p.CPE.Titles) > 0 {
			title = p.CPE.Titles[0].Title
			for _, t := range p.CPE.Titles {
				if t.Lang == "en" {
					title = t.Title
					break
				}
			}
		}

		result.Products = append(result.Products, CatalogProduct{
			CPEName:    p.CPE.CPEName,
			CPENameID:  p.CPE.CPENameID,
			Deprecated: p.CPE.Deprecated,
			Title:      title,
		})
	}

	return result
}
