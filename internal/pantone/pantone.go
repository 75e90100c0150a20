// Package pantone talks to the external color-formula service. The core
// treats it as an opaque, possibly-failing lookup: given a Pantone-style
// code it returns the mixing formula in base-ink percentages.
package pantone

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Component is one base ink of a formula, with its share of the mix.
type Component struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
	Hex        string  `json:"hex"`
	Role       string  `json:"role"`
}

// FormulaResult is the structured answer of the formula service.
type FormulaResult struct {
	PantoneName string      `json:"pantoneName"`
	Hex         string      `json:"hex"`
	Description string      `json:"description"`
	Components  []Component `json:"components"`
}

// LookupFunc resolves a Pantone-style code to a formula. The store depends
// on this signature rather than on the HTTP client, so tests can stub it.
type LookupFunc func(ctx context.Context, code string) (FormulaResult, error)

// Client is the HTTP implementation of the formula lookup.
type Client struct {
	http *resty.Client
}

// NewClient builds a client against the formula service base URL. The API
// key is optional; when set it is sent as a bearer token.
func NewClient(baseURL, apiKey string) *Client {
	c := resty.New().
		SetTimeout(30 * time.Second).
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json")
	if apiKey != "" {
		c.SetAuthToken(apiKey)
	}
	return &Client{http: c}
}

// Formula fetches the mixing formula for a Pantone Solid Coated code.
func (c *Client) Formula(ctx context.Context, code string) (FormulaResult, error) {
	result := FormulaResult{}
	res, err := c.http.R().
		SetContext(ctx).
		SetPathParam("code", code).
		SetResult(&result).
		Get("/formulas/{code}")
	if err != nil {
		return FormulaResult{}, fmt.Errorf("consultar fórmula pantone %s: %w", code, err)
	}
	if res.StatusCode() == http.StatusNotFound {
		return FormulaResult{}, fmt.Errorf("fórmula no encontrada para %s", code)
	}
	if res.StatusCode() != http.StatusOK {
		return FormulaResult{}, fmt.Errorf("servicio de fórmulas respondió %d para %s", res.StatusCode(), code)
	}
	if len(result.Components) == 0 {
		return FormulaResult{}, fmt.Errorf("fórmula no encontrada para %s", code)
	}
	return result, nil
}
