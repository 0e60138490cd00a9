package privacy

import (
	"errors"
	"time"
)

var ErrUnknownCategory = errors.New("unknown consent category")

// Category names a kind of data collection a user can consent to.
type Category string

const (
	CategoryEssential     Category = "essential"
	CategoryAnalytics     Category = "analytics"
	CategoryPerformance   Category = "performance"
	CategoryFunctionality Category = "functionality"
	CategoryMarketing     Category = "marketing"
)

func ParseCategory(s string) (Category, error) {
	switch c := Category(s); c {
	case CategoryEssential, CategoryAnalytics, CategoryPerformance, CategoryFunctionality, CategoryMarketing:
		return c, nil
	}
	return "", ErrUnknownCategory
}

// Consent holds one flag per category. Essential is always true once it has passed
// through the store.
type Consent struct {
	Essential     bool `json:"essential"`
	Analytics     bool `json:"analytics"`
	Performance   bool `json:"performance"`
	Functionality bool `json:"functionality"`
	Marketing     bool `json:"marketing"`
}

// EssentialOnly is the default and the post-erasure consent.
var EssentialOnly = Consent{Essential: true}

func (c Consent) Allows(cat Category) bool {
	switch cat {
	case CategoryEssential:
		return c.Essential
	case CategoryAnalytics:
		return c.Analytics
	case CategoryPerformance:
		return c.Performance
	case CategoryFunctionality:
		return c.Functionality
	case CategoryMarketing:
		return c.Marketing
	}
	return false
}

// ConsentUpdate is merged into the current consent; nil fields keep their value.
type ConsentUpdate struct {
	Essential     *bool `json:"essential,omitempty"`
	Analytics     *bool `json:"analytics,omitempty"`
	Performance   *bool `json:"performance,omitempty"`
	Functionality *bool `json:"functionality,omitempty"`
	Marketing     *bool `json:"marketing,omitempty"`
}

func (u ConsentUpdate) apply(c Consent) Consent {
	if u.Analytics != nil {
		c.Analytics = *u.Analytics
	}
	if u.Performance != nil {
		c.Performance = *u.Performance
	}
	if u.Functionality != nil {
		c.Functionality = *u.Functionality
	}
	if u.Marketing != nil {
		c.Marketing = *u.Marketing
	}
	c.Essential = true
	return c
}

// Event is one recorded data collection.
type Event struct {
	ID          string         `json:"id"`
	Type        Category       `json:"type"`
	Timestamp   time.Time      `json:"timestamp"`
	Description string         `json:"description"`
	Data        map[string]any `json:"data,omitempty"`
}

type EventInput struct {
	Type        Category
	Description string
	Data        map[string]any
}

type ConsentState string

const (
	StateUnset   ConsentState = "unset"
	StateGranted ConsentState = "granted"
	StateExpired ConsentState = "expired"
)

// ClientInfo describes the client requesting an export.
type ClientInfo struct {
	UserAgent string `json:"userAgent"`
	Language  string `json:"language"`
	Platform  string `json:"platform"`
}

type persistedState struct {
	Consent           Consent    `json:"consent"`
	ConsentTimestamp  *time.Time `json:"consentTimestamp"`
	CollectionHistory []Event    `json:"collectionHistory"`
	ShowNotification  bool       `json:"showConsentNotification"`
}

type persisted struct {
	State   persistedState `json:"state"`
	Version int            `json:"version"`
}

type export struct {
	Consent           Consent    `json:"consent"`
	ConsentTimestamp  *time.Time `json:"consentTimestamp"`
	CollectionHistory []Event    `json:"collectionHistory"`
	UserAgent         string     `json:"userAgent"`
	Language          string     `json:"language"`
	Platform          string     `json:"platform"`
	ExportDate        time.Time  `json:"exportDate"`
}
