package prompts

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Magnitudes from here on do not fit int64 once scaled to cents.
const maxExact = 1e15

// FormatCurrency renders dollars with thousands grouping. Whole amounts drop
// the cents: 12000 -> "$12,000", 1234.56 -> "$1,234.56", -80 -> "-$80".
func FormatCurrency(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	if v >= maxExact {
		return sign + "$" + printer.Sprintf("%.0f", v)
	}
	cents := int64(math.Round(v * 100))
	if cents == 0 {
		sign = ""
	}
	whole, frac := cents/100, cents%100
	if frac == 0 {
		return sign + "$" + printer.Sprintf("%d", whole)
	}
	return fmt.Sprintf("%s$%s.%02d", sign, printer.Sprintf("%d", whole), frac)
}

// FormatPercent renders a value already expressed in percent: 29.65 -> "29.65%".
func FormatPercent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return FormatNumber(v) + "%"
}

// FormatNumber renders a plain number with grouping and at most two decimals.
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	if math.Abs(v) >= maxExact {
		return printer.Sprintf("%.0f", v)
	}
	rounded := math.Round(v*100) / 100
	if rounded == math.Trunc(rounded) {
		return printer.Sprintf("%d", int64(rounded))
	}
	s := printer.Sprintf("%.2f", rounded)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

type unit int

const (
	unitNumber unit = iota
	unitYear
	unitCurrency
	unitPercent
)

var (
	percentWords  = map[string]bool{"rate": true, "rates": true, "percent": true, "percentage": true, "pct": true, "ratio": true}
	yearWords     = map[string]bool{"year": true, "years": true}
	plainWords    = map[string]bool{"age": true, "count": true, "dependents": true, "months": true, "days": true, "number": true, "score": true, "box": true}
	currencyHints = []string{
		"amount", "income", "room", "tax", "contribution", "refund", "saving",
		"deduction", "credit", "balance", "cost", "payment", "salary", "wage", "limit", "value",
		"withheld", "owing", "earnings", "benefit", "premium", "price", "rent", "expense",
		"dividend", "gain", "loss", "pension", "deposit", "withdrawal", "total", "mortgage",
	}
)

// inferUnit guesses how a calculator value should be rendered from its key.
func inferUnit(key string) unit {
	words := strings.Fields(strings.ToLower(Humanize(key)))
	for _, w := range words {
		if percentWords[w] {
			return unitPercent
		}
	}
	for _, w := range words {
		if yearWords[w] {
			return unitYear
		}
		if plainWords[w] {
			return unitNumber
		}
	}
	for _, w := range words {
		for _, h := range currencyHints {
			if strings.Contains(w, h) {
				return unitCurrency
			}
		}
	}
	return unitNumber
}

// FormatValue renders a loosely typed value for key. Unsupported values
// return ok=false and are left out of the prompt.
func FormatValue(key string, v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case bool:
		if val {
			return "Yes", true
		}
		return "No", true
	case string:
		val = strings.TrimSpace(val)
		return val, val != ""
	case float64:
		switch inferUnit(key) {
		case unitCurrency:
			return FormatCurrency(val), true
		case unitPercent:
			return FormatPercent(val), true
		case unitYear:
			return strconv.FormatFloat(val, 'f', -1, 64), true
		default:
			return FormatNumber(val), true
		}
	case int:
		return FormatValue(key, float64(val))
	case int64:
		return FormatValue(key, float64(val))
	default:
		return "", false
	}
}

var acronyms = map[string]string{
	"rrsp": "RRSP", "tfsa": "TFSA", "fhsa": "FHSA", "resp": "RESP", "rrif": "RRIF",
	"lira": "LIRA", "cpp": "CPP", "qpp": "QPP", "ei": "EI", "oas": "OAS", "gis": "GIS",
	"ccb": "CCB", "gst": "GST", "hst": "HST", "pst": "PST", "qst": "QST", "cra": "CRA",
	"t4": "T4", "t5": "T5", "rpp": "RPP", "dtc": "DTC", "amt": "AMT", "ytd": "YTD",
}

// Humanize turns a camelCase or snake_case key into a label:
// "rrspRoom" -> "RRSP Room", "marginal_tax_rate" -> "Marginal Tax Rate".
func Humanize(key string) string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	runes := []rune(key)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == ' ' || r == '.':
			flush()
		case unicode.IsUpper(r) && i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()

	for i, w := range words {
		lw := strings.ToLower(w)
		if a, ok := acronyms[lw]; ok {
			words[i] = a
			continue
		}
		rs := []rune(lw)
		rs[0] = unicode.ToUpper(rs[0])
		words[i] = string(rs)
	}
	return strings.Join(words, " ")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
