package model

import "strings"

// EmploymentType is the caller's employment category.
type EmploymentType string

const (
	EmploymentEmployee     EmploymentType = "employee"
	EmploymentSelfEmployed EmploymentType = "self_employed"
	EmploymentRetired      EmploymentType = "retired"
	EmploymentStudent      EmploymentType = "student"
	EmploymentUnemployed   EmploymentType = "unemployed"
)

// Label returns the phrase used for the employment category in prompts and queries.
func (e EmploymentType) Label() string {
	switch e {
	case EmploymentEmployee:
		return "employee"
	case EmploymentSelfEmployed:
		return "self-employed"
	case EmploymentRetired:
		return "retired"
	case EmploymentStudent:
		return "student"
	case EmploymentUnemployed:
		return "unemployed"
	default:
		return ""
	}
}

// AccountType is a registered or tax-advantaged account the caller holds.
type AccountType string

const (
	AccountRRSP AccountType = "RRSP"
	AccountTFSA AccountType = "TFSA"
	AccountFHSA AccountType = "FHSA"
	AccountRESP AccountType = "RESP"
	AccountRRIF AccountType = "RRIF"
	AccountLIRA AccountType = "LIRA"
)

// AccountOrder is the canonical rendering order of account types.
var AccountOrder = []AccountType{AccountRRSP, AccountTFSA, AccountFHSA, AccountRESP, AccountRRIF, AccountLIRA}

var provinceNames = map[string]string{
	"AB": "Alberta",
	"BC": "British Columbia",
	"MB": "Manitoba",
	"NB": "New Brunswick",
	"NL": "Newfoundland and Labrador",
	"NS": "Nova Scotia",
	"NT": "Northwest Territories",
	"NU": "Nunavut",
	"ON": "Ontario",
	"PE": "Prince Edward Island",
	"QC": "Quebec",
	"SK": "Saskatchewan",
	"YT": "Yukon",
}

// ProvinceName resolves a province code ("ON") or name to its display name.
// Unknown values are returned trimmed.
func ProvinceName(v string) string {
	v = strings.TrimSpace(v)
	if name, ok := provinceNames[strings.ToUpper(v)]; ok {
		return name
	}
	return v
}

// UserProfile holds the caller's known attributes. The pipeline only reads it.
type UserProfile struct {
	UserID             string         `json:"userId,omitempty"`
	Province           string         `json:"province,omitempty"`
	Employment         EmploymentType `json:"employment,omitempty"`
	Married            bool           `json:"married,omitempty"`
	Dependents         int            `json:"dependents,omitempty"`
	FirstTimeHomeBuyer bool           `json:"firstTimeHomeBuyer,omitempty"`
	Student            bool           `json:"student,omitempty"`
	Retired            bool           `json:"retired,omitempty"`
	Disability         bool           `json:"disability,omitempty"`
	Accounts           []AccountType  `json:"accounts,omitempty"`
}

// HasAccount reports whether the profile lists the account type.
func (p *UserProfile) HasAccount(a AccountType) bool {
	if p == nil {
		return false
	}
	for _, held := range p.Accounts {
		if strings.EqualFold(string(held), string(a)) {
			return true
		}
	}
	return false
}

// SortedAccounts returns held accounts in AccountOrder, unknown types dropped.
func (p *UserProfile) SortedAccounts() []AccountType {
	var out []AccountType
	for _, a := range AccountOrder {
		if p.HasAccount(a) {
			out = append(out, a)
		}
	}
	return out
}
