package scryfall

import "fmt"

// Card is the subset of a Scryfall card object used for valuation and display.
type Card struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	ReleasedAt string  `json:"released_at"`
	ManaCost   string  `json:"mana_cost,omitempty"`
	CMC        float64 `json:"cmc"`
	TypeLine   string  `json:"type_line"`
	SetCode    string  `json:"set"`
	SetName    string  `json:"set_name"`
	Rarity     string  `json:"rarity"`
	Prices     Prices  `json:"prices"`
}

// Prices holds Scryfall market prices. Values are decimal strings or null.
type Prices struct {
	USD       *string `json:"usd"`
	USDFoil   *string `json:"usd_foil"`
	USDEtched *string `json:"usd_etched"`
	EUR       *string `json:"eur"`
	EURFoil   *string `json:"eur_foil"`
	Tix       *string `json:"tix"`
}

// APIError is the error object Scryfall returns for failed requests.
type APIError struct {
	Object   string   `json:"object"`
	Code     string   `json:"code"`
	Status   int      `json:"status"`
	Details  string   `json:"details"`
	Type     string   `json:"type,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Error implements the error interface for APIError.
func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("scryfall API error (HTTP %d): %s", e.Status, e.Details)
	}
	return fmt.Sprintf("scryfall API error (HTTP %d): %s", e.Status, e.Code)
}

// NotFoundError is returned when Scryfall answers 404.
type NotFoundError struct {
	URL string
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource not found: %s", e.URL)
}

// RateLimitError is returned when Scryfall answers 429.
type RateLimitError struct {
	RetryAfter string
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter != "" {
		return fmt.Sprintf("rate limited (HTTP 429), retry after %ss", e.RetryAfter)
	}
	return "rate limited (HTTP 429)"
}
