package prompts

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Chative-core-poc-v1/assistant/internal/agent/model"
)

// section is one labelled block of prompt context.
type section struct {
	title string
	lines []string
}

func (s *section) add(label, value string) {
	if value == "" {
		return
	}
	s.lines = append(s.lines, label+": "+value)
}

func (s *section) addLine(line string) {
	s.lines = append(s.lines, line)
}

func writeSections(b *strings.Builder, heading string, sections []section) {
	b.WriteString("\n## ")
	b.WriteString(heading)
	b.WriteString("\n")
	for _, s := range sections {
		if len(s.lines) == 0 {
			continue
		}
		b.WriteString("\n### ")
		b.WriteString(s.title)
		b.WriteString("\n")
		for _, l := range s.lines {
			b.WriteString(l)
			b.WriteString("\n")
		}
	}
}

// renderPage renders each populated sub-structure of the page context as its
// own section. A nil page renders nothing.
func renderPage(pc *model.PageContext) string {
	if pc == nil || pc.Data == nil {
		return ""
	}

	var sections []section
	switch page := pc.Data.(type) {
	case model.DashboardPage:
		sections = dashboardSections(page)
	case model.CalculatorPage:
		sections = calculatorSections(page)
	case model.ProfilePage:
		sections = profileSnippetSections(page)
	case model.ScannerPage:
		sections = scannerSections(page)
	}

	heading := "Page context"
	if pc.Name != "" {
		heading += " (" + pc.Name + ")"
	}

	var b strings.Builder
	writeSections(&b, heading, sections)
	return b.String()
}

func dashboardSections(d model.DashboardPage) []section {
	var out []section

	if p := d.Position; p != nil {
		s := section{title: "Tax position"}
		if p.TaxYear > 0 {
			s.add("Tax Year", strconv.Itoa(p.TaxYear))
		}
		s.add("Total Income", FormatCurrency(p.TotalIncome))
		s.add("Taxable Income", FormatCurrency(p.TaxableIncome))
		s.add("Total Tax", FormatCurrency(p.TotalTax))
		s.add("Tax Withheld", FormatCurrency(p.TaxWithheld))
		switch {
		case p.Balance > 0:
			s.add("Estimated Refund", FormatCurrency(p.Balance))
		case p.Balance < 0:
			s.add("Estimated Balance Owing", FormatCurrency(-p.Balance))
		default:
			s.add("Estimated Balance", FormatCurrency(0))
		}
		out = append(out, s)
	}

	if br := d.Bracket; br != nil {
		s := section{title: "Tax bracket"}
		s.add("Federal Marginal Rate", FormatPercent(br.FederalRate))
		s.add("Provincial Marginal Rate", FormatPercent(br.ProvincialRate))
		s.add("Combined Marginal Rate", FormatPercent(br.MarginalRate))
		s.add("Average Tax Rate", FormatPercent(br.AverageRate))
		if br.NextBracketAt > 0 {
			s.add("Next Bracket Starts At", FormatCurrency(br.NextBracketAt))
		}
		if br.RoomInBracket > 0 {
			s.add("Room Left In Bracket", FormatCurrency(br.RoomInBracket))
		}
		out = append(out, s)
	}

	if len(d.Opportunities) > 0 {
		s := section{title: "Savings opportunities"}
		total := 0.0
		for _, o := range d.Opportunities {
			title := strings.TrimSpace(o.Title)
			if title == "" {
				continue
			}
			if o.Category != "" {
				title += " (" + o.Category + ")"
			}
			s.addLine("- " + title + ": " + FormatCurrency(o.EstimatedSavings))
			total += o.EstimatedSavings
		}
		if len(s.lines) > 0 {
			s.add("Total Potential Savings", FormatCurrency(total))
		}
		out = append(out, s)
	}

	if sc := d.Score; sc != nil {
		s := section{title: "Tax score"}
		s.add("Score", outOf(sc.Score, sc.Max))
		for _, c := range sc.Components {
			if c.Label == "" {
				continue
			}
			s.addLine("- " + c.Label + ": " + outOf(c.Points, c.Max))
		}
		out = append(out, s)
	}

	if len(d.Deadlines) > 0 {
		s := section{title: "Upcoming deadlines"}
		for _, dl := range d.Deadlines {
			if dl.Title == "" {
				continue
			}
			line := "- " + dl.Title
			if dl.Date != "" {
				line += ": " + dl.Date
			}
			if dl.DaysRemaining != nil {
				line += fmt.Sprintf(" (%d days left)", *dl.DaysRemaining)
			}
			s.addLine(line)
		}
		out = append(out, s)
	}

	return out
}

func outOf(v, max float64) string {
	if max > 0 {
		return FormatNumber(v) + " / " + FormatNumber(max)
	}
	return FormatNumber(v)
}

func calculatorSections(c model.CalculatorPage) []section {
	title := "Calculator"
	if c.Calculator != "" {
		title += ": " + c.Calculator
	}
	inputs := section{title: title + " inputs"}
	for _, k := range sortedKeys(c.Inputs) {
		if v, ok := FormatValue(k, c.Inputs[k]); ok {
			inputs.add(Humanize(k), v)
		}
	}
	outputs := section{title: title + " results"}
	for _, k := range sortedKeys(c.Outputs) {
		if v, ok := FormatValue(k, c.Outputs[k]); ok {
			outputs.add(Humanize(k), v)
		}
	}
	return []section{inputs, outputs}
}

func profileSnippetSections(p model.ProfilePage) []section {
	if p.Profile == nil {
		return nil
	}
	ps := p.Profile
	s := section{title: "Profile on screen"}
	s.add("Province", model.ProvinceName(ps.Province))
	if ps.Age != nil {
		s.add("Age", strconv.Itoa(*ps.Age))
	}
	if ps.AnnualIncome != nil {
		s.add("Annual Income", FormatCurrency(*ps.AnnualIncome))
	}
	if ps.RRSPRoom != nil {
		s.add("RRSP Room", FormatCurrency(*ps.RRSPRoom))
	}
	if ps.TFSARoom != nil {
		s.add("TFSA Room", FormatCurrency(*ps.TFSARoom))
	}
	if ps.FHSARoom != nil {
		s.add("FHSA Room", FormatCurrency(*ps.FHSARoom))
	}
	if label := model.EmploymentType(ps.Employment).Label(); label != "" {
		s.add("Employment", label)
	} else {
		s.add("Employment", ps.Employment)
	}
	if ps.Dependents != nil {
		s.add("Dependents", strconv.Itoa(*ps.Dependents))
	}
	return []section{s}
}

func scannerSections(sp model.ScannerPage) []section {
	if sp.Document == nil {
		return nil
	}
	d := sp.Document
	title := "Scanned document"
	if d.DocumentType != "" {
		title += ": " + d.DocumentType
	}
	s := section{title: title}
	s.add("Issuer", d.Issuer)
	if d.TaxYear > 0 {
		s.add("Tax Year", strconv.Itoa(d.TaxYear))
	}
	s.add("Summary", strings.TrimSpace(d.Summary))
	for _, k := range sortedKeys(d.Fields) {
		if v, ok := FormatValue(k, d.Fields[k]); ok {
			s.add(Humanize(k), v)
		}
	}
	return []section{s}
}

// renderProfile summarises the caller's stored profile.
func renderProfile(p *model.UserProfile) string {
	if p == nil {
		return ""
	}

	s := section{title: "About the user"}
	s.add("Province", model.ProvinceName(p.Province))
	s.add("Employment", p.Employment.Label())
	if p.Married {
		s.add("Marital Status", "married or common-law")
	}
	if p.Dependents > 0 {
		s.add("Dependents", strconv.Itoa(p.Dependents))
	}
	var situation []string
	if p.FirstTimeHomeBuyer {
		situation = append(situation, "first-time home buyer")
	}
	if p.Student {
		situation = append(situation, "student")
	}
	if p.Retired {
		situation = append(situation, "retired")
	}
	if p.Disability {
		situation = append(situation, "eligible for the disability tax credit")
	}
	s.add("Situation", strings.Join(situation, ", "))

	accounts := p.SortedAccounts()
	names := make([]string, 0, len(accounts))
	for _, a := range accounts {
		names = append(names, string(a))
	}
	s.add("Accounts Held", strings.Join(names, ", "))

	if len(s.lines) == 0 {
		return ""
	}
	var b strings.Builder
	writeSections(&b, "User profile", []section{s})
	return b.String()
}

// renderFragments lists knowledge base fragments with their sources.
func renderFragments(fragments []model.Fragment) string {
	var b strings.Builder
	b.WriteString("\n## Knowledge base\n")
	if len(fragments) == 0 {
		b.WriteString("\nNo knowledge base articles were retrieved for this question.\n")
		return b.String()
	}
	for i, f := range fragments {
		b.WriteString(fmt.Sprintf("\n[%d] %s", i+1, sourceLabel(f)))
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(f.Text))
		b.WriteString("\n")
	}
	return b.String()
}

func sourceLabel(f model.Fragment) string {
	title := strings.TrimSpace(f.SourceTitle)
	if title == "" {
		title = "Untitled"
	}
	var meta []string
	if f.SourceKind != "" {
		meta = append(meta, f.SourceKind)
	}
	if f.SourceLocator != "" {
		meta = append(meta, f.SourceLocator)
	}
	if len(meta) == 0 {
		return title
	}
	return title + " (" + strings.Join(meta, ", ") + ")"
}
