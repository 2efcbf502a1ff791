// Package models defines the persisted record types.
package models

import "time"

// AnalysisJob is the audit record of a valuation job.
type AnalysisJob struct {
	ID             string     `json:"id"`
	Status         string     `json:"status"`
	DeckIDs        []string   `json:"deckIds"`
	TotalUnits     int        `json:"totalUnits"`
	CompletedUnits int        `json:"completedUnits"`
	ErrorMessage   *string    `json:"errorMessage,omitempty"`
	StartedAt      time.Time  `json:"startedAt"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// PriceHint is the last price seen for a card. It is display data for price
// comparisons only.
type PriceHint struct {
	CardKey   string    `json:"cardKey"`
	PriceUSD  float64   `json:"priceUsd"`
	UpdatedAt time.Time `json:"updatedAt"`
}
