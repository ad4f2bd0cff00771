package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// PageKind identifies which screen the caller is looking at.
type PageKind string

const (
	PageDashboard  PageKind = "dashboard"
	PageCalculator PageKind = "calculator"
	PageProfile    PageKind = "profile"
	PageScanner    PageKind = "scanner"
)

// ErrUnknownPage is returned when a page context names a kind the assistant does not render.
var ErrUnknownPage = errors.New("unknown page kind")

// PageData is the kind-specific payload of a PageContext. The set of
// implementations is closed: DashboardPage, CalculatorPage, ProfilePage, ScannerPage.
type PageData interface {
	Kind() PageKind
	isPageData()
}

// PageContext is a snapshot of what the caller currently sees.
type PageContext struct {
	Name string
	Data PageData
}

// Kind returns the page kind, empty for a nil context.
func (p *PageContext) Kind() PageKind {
	if p == nil || p.Data == nil {
		return ""
	}
	return p.Data.Kind()
}

// ----- dashboard -----

type PositionSummary struct {
	TaxYear       int     `json:"taxYear"`
	TotalIncome   float64 `json:"totalIncome"`
	TaxableIncome float64 `json:"taxableIncome"`
	TotalTax      float64 `json:"totalTax"`
	TaxWithheld   float64 `json:"taxWithheld"`
	// Balance is positive for an expected refund and negative for an amount owing.
	Balance float64 `json:"balance"`
}

type BracketSummary struct {
	FederalRate    float64 `json:"federalRate"`
	ProvincialRate float64 `json:"provincialRate"`
	MarginalRate   float64 `json:"marginalRate"`
	AverageRate    float64 `json:"averageRate"`
	NextBracketAt  float64 `json:"nextBracketAt"`
	RoomInBracket  float64 `json:"roomInBracket"`
}

type Opportunity struct {
	Title            string  `json:"title"`
	Category         string  `json:"category"`
	EstimatedSavings float64 `json:"estimatedSavings"`
}

type ScoreComponent struct {
	Label  string  `json:"label"`
	Points float64 `json:"points"`
	Max    float64 `json:"max"`
}

type ScoreBreakdown struct {
	Score      float64          `json:"score"`
	Max        float64          `json:"max"`
	Components []ScoreComponent `json:"components"`
}

type Deadline struct {
	Title         string `json:"title"`
	Date          string `json:"date"`
	DaysRemaining *int   `json:"daysRemaining"`
}

type DashboardPage struct {
	Position      *PositionSummary `json:"position"`
	Bracket       *BracketSummary  `json:"bracket"`
	Opportunities []Opportunity    `json:"opportunities"`
	Score         *ScoreBreakdown  `json:"score"`
	Deadlines     []Deadline       `json:"deadlines"`
}

func (DashboardPage) Kind() PageKind { return PageDashboard }
func (DashboardPage) isPageData()    {}

// ----- calculator -----

type CalculatorPage struct {
	Calculator string         `json:"calculator"`
	Inputs     map[string]any `json:"inputs"`
	Outputs    map[string]any `json:"outputs"`
}

func (CalculatorPage) Kind() PageKind { return PageCalculator }
func (CalculatorPage) isPageData()    {}

// ----- profile -----

type ProfileSnippet struct {
	Province     string   `json:"province"`
	Age          *int     `json:"age"`
	AnnualIncome *float64 `json:"annualIncome"`
	RRSPRoom     *float64 `json:"rrspRoom"`
	TFSARoom     *float64 `json:"tfsaRoom"`
	FHSARoom     *float64 `json:"fhsaRoom"`
	Employment   string   `json:"employment"`
	Dependents   *int     `json:"dependents"`
}

type ProfilePage struct {
	Profile *ProfileSnippet `json:"profile"`
}

func (ProfilePage) Kind() PageKind { return PageProfile }
func (ProfilePage) isPageData()    {}

// ----- scanner -----

type ScannedDocument struct {
	DocumentType string         `json:"documentType"`
	Issuer       string         `json:"issuer"`
	TaxYear      int            `json:"taxYear"`
	Summary      string         `json:"summary"`
	Fields       map[string]any `json:"fields"`
}

type ScannerPage struct {
	Document *ScannedDocument `json:"document"`
}

func (ScannerPage) Kind() PageKind { return PageScanner }
func (ScannerPage) isPageData()    {}

// ----- decoding -----

type pageContextWire struct {
	Page     string          `json:"page"`
	PageName string          `json:"pageName"`
	Data     json.RawMessage `json:"data"`
}

// ParsePageKind maps the wire name (and its aliases) to a PageKind.
func ParsePageKind(v string) (PageKind, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "dashboard", "summary":
		return PageDashboard, true
	case "calculator", "calculators":
		return PageCalculator, true
	case "profile":
		return PageProfile, true
	case "scanner", "document", "scanned-document":
		return PageScanner, true
	default:
		return "", false
	}
}

// UnmarshalJSON decodes {page, pageName, data} into the matching variant.
func (p *PageContext) UnmarshalJSON(b []byte) error {
	var wire pageContextWire
	if err := json.Unmarshal(b, &wire); err != nil {
		return fmt.Errorf("decode page context: %w", err)
	}
	kind, ok := ParsePageKind(wire.Page)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPage, wire.Page)
	}

	var data PageData
	var err error
	switch kind {
	case PageDashboard:
		var d DashboardPage
		err = decodeData(wire.Data, &d)
		data = d
	case PageCalculator:
		var d CalculatorPage
		err = decodeData(wire.Data, &d)
		data = d
	case PageProfile:
		var d ProfilePage
		err = decodeData(wire.Data, &d)
		data = d
	case PageScanner:
		var d ScannerPage
		err = decodeData(wire.Data, &d)
		data = d
	}
	if err != nil {
		return fmt.Errorf("decode %s page data: %w", kind, err)
	}

	p.Name = strings.TrimSpace(wire.PageName)
	p.Data = data
	return nil
}

func decodeData(raw json.RawMessage, dst any) error {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

// DecodePageContext decodes an optional page context. Absent or null input
// yields nil without error.
func DecodePageContext(raw json.RawMessage) (*PageContext, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var pc PageContext
	if err := json.Unmarshal(trimmed, &pc); err != nil {
		return nil, err
	}
	return &pc, nil
}
