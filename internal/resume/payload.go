package resume

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Canonical payload shapes, one per section key. The stored blob is a tagged
// variant: the parent section's key selects which of these the data decodes
// into.

// Link is a labelled URL in the basics contact block.
type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// ContactBlock groups the reachable coordinates of the basics payload.
type ContactBlock struct {
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Website string `json:"website,omitempty"`
}

// LocationBlock collapses either a free-text label or a city/country pair.
type LocationBlock struct {
	Label   string `json:"label,omitempty"`
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
}

// BasicsPayload is the singleton payload of the basics section.
type BasicsPayload struct {
	FullName string        `json:"fullName"`
	Headline string        `json:"headline,omitempty"`
	Contact  ContactBlock  `json:"contact"`
	Location LocationBlock `json:"location"`
	Links    []Link        `json:"links"`
}

// TextPayload backs summary and highlight items.
type TextPayload struct {
	Text string `json:"text"`
}

// DeclarationPayload is the singleton payload of the declaration section.
type DeclarationPayload struct {
	Text  string `json:"text"`
	Place string `json:"place,omitempty"`
	Name  string `json:"name,omitempty"`
}

// ExperiencePayload is one dated work entry.
type ExperiencePayload struct {
	Role      string   `json:"role"`
	Company   string   `json:"company,omitempty"`
	Location  string   `json:"location,omitempty"`
	DateRange          // flattened start/end/present fields
	Summary   string   `json:"summary,omitempty"`
	Bullets   []string `json:"bullets"`
	Tags      []string `json:"tags"`
}

// ProjectPayload is one dated project entry.
type ProjectPayload struct {
	Name      string   `json:"name"`
	Link      string   `json:"link,omitempty"`
	DateRange          // flattened start/end/present fields
	Summary   string   `json:"summary,omitempty"`
	Bullets   []string `json:"bullets"`
	Tags      []string `json:"tags"`
}

// EducationPayload is one education entry; no ongoing notion here.
type EducationPayload struct {
	Degree    string   `json:"degree"`
	School    string   `json:"school,omitempty"`
	Location  string   `json:"location,omitempty"`
	DateRange          // flattened start/end fields
	Grade     string   `json:"grade,omitempty"`
	Bullets   []string `json:"bullets"`
}

// SkillPayload is a named skill with an optional level.
type SkillPayload struct {
	Name     string   `json:"name"`
	Level    string   `json:"level,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

// LanguagePayload is a language with an optional proficiency.
type LanguagePayload struct {
	Name        string `json:"name"`
	Proficiency string `json:"proficiency,omitempty"`
}

// CertificationPayload is an achievement issued by an organization.
type CertificationPayload struct {
	Name    string `json:"name"`
	Issuer  string `json:"issuer,omitempty"`
	Year    int    `json:"year,omitempty"`
	Link    string `json:"link,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// AwardPayload is an award or recognition entry.
type AwardPayload struct {
	Title   string `json:"title"`
	By      string `json:"by,omitempty"`
	Year    int    `json:"year,omitempty"`
	Link    string `json:"link,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// NormalizeItemData reshapes an arbitrary client payload into the canonical
// form for the section key and re-serializes it. Unrecognized keys pass the
// data through unchanged.
func NormalizeItemData(sectionKey string, raw json.RawMessage) (json.RawMessage, error) {
	payload := rawPayload{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			return nil, fieldErr("data", "must be a JSON object")
		}
	}

	var (
		canonical any
		err       error
	)

	switch sectionKey {
	case SectionBasics:
		canonical, err = normalizeBasics(payload)
	case SectionSummary:
		canonical, err = normalizeSummary(payload)
	case SectionDeclaration:
		canonical, err = normalizeDeclaration(payload)
	case SectionExperience:
		canonical, err = normalizeExperience(payload)
	case SectionProjects:
		canonical, err = normalizeProject(payload)
	case SectionEducation:
		canonical, err = normalizeEducation(payload)
	case SectionSkills:
		canonical, err = normalizeSkill(payload)
	case SectionLanguages:
		canonical, err = normalizeLanguage(payload)
	case SectionCertifications:
		canonical, err = normalizeCertification(payload)
	case SectionAwards:
		canonical, err = normalizeAward(payload)
	case SectionHighlights:
		canonical, err = normalizeHighlight(payload)
	default:
		if len(raw) == 0 {
			return json.RawMessage("{}"), nil
		}
		return raw, nil
	}
	if err != nil {
		return nil, err
	}

	out, err := json.Marshal(canonical)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", sectionKey, err)
	}
	return out, nil
}

func normalizeBasics(p rawPayload) (BasicsPayload, error) {
	var out BasicsPayload
	var err error

	if out.FullName, err = requiredText("fullName", p.str("fullName", "name"), MaxFullName); err != nil {
		return out, err
	}
	if out.Headline, err = optionalText("headline", p.str("headline"), MaxHeadline); err != nil {
		return out, err
	}

	contact := p.object("contact")
	if out.Contact.Email, err = NormalizeEmail("email", firstNonEmpty(contact.str("email"), p.str("email"))); err != nil {
		return out, err
	}
	if out.Contact.Phone, err = optionalText("phone", firstNonEmpty(contact.str("phone"), p.str("phone")), MaxPhone); err != nil {
		return out, err
	}

	location := p.object("location")
	if out.Location.Label, err = optionalText("location.label", firstNonEmpty(location.str("label"), p.str("location")), MaxLocationLabel); err != nil {
		return out, err
	}
	if out.Location.City, err = optionalText("location.city", location.str("city"), MaxCity); err != nil {
		return out, err
	}
	if out.Location.Country, err = optionalText("location.country", location.str("country"), MaxCountry); err != nil {
		return out, err
	}
	if out.Location.Label == "" && (out.Location.City != "" || out.Location.Country != "") {
		parts := make([]string, 0, 2)
		if out.Location.City != "" {
			parts = append(parts, out.Location.City)
		}
		if out.Location.Country != "" {
			parts = append(parts, out.Location.Country)
		}
		out.Location.Label = strings.Join(parts, ", ")
	}

	links, err := normalizeLinks(p.list("links"))
	if err != nil {
		return out, err
	}
	out.Links = links

	// The printable contact block shows a single website: the explicit
	// field wins, the first link fills in otherwise.
	website, err := NormalizeURL("website", firstNonEmpty(contact.str("website"), p.str("website")), MaxWebsite)
	if err != nil {
		return out, err
	}
	if website == "" && len(out.Links) > 0 {
		website = out.Links[0].URL
	}
	out.Contact.Website = website

	return out, nil
}

// normalizeLinks validates each {label, url} pair and drops duplicates,
// comparing the label+url pair case-insensitively.
func normalizeLinks(entries []any) ([]Link, error) {
	out := make([]Link, 0, len(entries))
	seen := make(map[string]bool, len(entries))

	for _, entry := range entries {
		obj, ok := entry.(map[string]any)
		if !ok {
			return nil, fieldErr("links", "entries must be objects with label and url")
		}
		raw := rawPayload(obj)

		label, err := optionalText("links.label", raw.str("label"), MaxLinkLabel)
		if err != nil {
			return nil, err
		}
		url, err := NormalizeURL("links.url", raw.str("url"), MaxLinkURL)
		if err != nil {
			return nil, err
		}
		if url == "" {
			continue
		}

		dedupKey := strings.ToLower(label) + "\x00" + strings.ToLower(url)
		if seen[dedupKey] {
			continue
		}
		seen[dedupKey] = true
		out = append(out, Link{Label: label, URL: url})
	}

	return out, nil
}

func normalizeSummary(p rawPayload) (TextPayload, error) {
	text, err := requiredText("text", p.str("text", "summary"), MaxSummary)
	if err != nil {
		return TextPayload{}, err
	}
	return TextPayload{Text: text}, nil
}

func normalizeDeclaration(p rawPayload) (DeclarationPayload, error) {
	var out DeclarationPayload
	var err error
	if out.Text, err = requiredText("text", p.str("text"), MaxDeclaration); err != nil {
		return out, err
	}
	if out.Place, err = optionalText("place", p.str("place"), MaxDeclarationPlace); err != nil {
		return out, err
	}
	if out.Name, err = optionalText("name", p.str("name"), MaxDeclarationName); err != nil {
		return out, err
	}
	return out, nil
}

func normalizeExperience(p rawPayload) (ExperiencePayload, error) {
	var out ExperiencePayload
	var err error

	if out.Role, err = requiredText("role", p.str("role", "title"), MaxRole); err != nil {
		return out, err
	}
	if out.Company, err = optionalText("company", p.str("company", "organization"), MaxCompany); err != nil {
		return out, err
	}
	if out.Location, err = optionalText("location", p.str("location"), MaxLocation); err != nil {
		return out, err
	}

	out.DateRange = p.dateRange()
	if err = ValidateChronology(out.DateRange, true); err != nil {
		return out, err
	}

	if out.Summary, err = optionalText("summary", p.str("summary"), MaxExperienceNote); err != nil {
		return out, err
	}
	if out.Bullets, err = NormalizeBullets("bullets", p["bullets"]); err != nil {
		return out, err
	}
	if out.Tags, err = NormalizeTags("tags", p["tags"]); err != nil {
		return out, err
	}
	return out, nil
}

func normalizeProject(p rawPayload) (ProjectPayload, error) {
	var out ProjectPayload
	var err error

	if out.Name, err = requiredText("name", p.str("name", "title"), MaxProjectName); err != nil {
		return out, err
	}
	if out.Link, err = NormalizeURL("link", p.str("link", "url"), MaxLinkURL); err != nil {
		return out, err
	}

	out.DateRange = p.dateRange()
	if err = ValidateChronology(out.DateRange, true); err != nil {
		return out, err
	}

	if out.Summary, err = optionalText("summary", p.str("summary"), MaxProjectNote); err != nil {
		return out, err
	}
	if out.Bullets, err = NormalizeBullets("bullets", p["bullets"]); err != nil {
		return out, err
	}
	if out.Tags, err = NormalizeTags("tags", p["tags"]); err != nil {
		return out, err
	}
	return out, nil
}

func normalizeEducation(p rawPayload) (EducationPayload, error) {
	var out EducationPayload
	var err error

	if out.Degree, err = requiredText("degree", p.str("degree", "title", "program", "name"), MaxDegree); err != nil {
		return out, err
	}
	if out.School, err = optionalText("school", p.str("school"), MaxSchool); err != nil {
		return out, err
	}
	if out.Location, err = optionalText("location", p.str("location"), MaxLocation); err != nil {
		return out, err
	}

	out.DateRange = p.dateRange()
	if err = ValidateChronology(out.DateRange, false); err != nil {
		return out, err
	}

	if out.Grade, err = optionalText("grade", p.str("grade"), MaxGrade); err != nil {
		return out, err
	}
	if out.Bullets, err = NormalizeBullets("bullets", p["bullets"]); err != nil {
		return out, err
	}
	return out, nil
}

func normalizeSkill(p rawPayload) (SkillPayload, error) {
	var out SkillPayload
	var err error
	if out.Name, err = requiredText("name", p.str("name"), MaxSkill); err != nil {
		return out, err
	}
	if out.Level, err = optionalText("level", p.str("level"), MaxSkillLevel); err != nil {
		return out, err
	}
	if out.Keywords, err = NormalizeTags("keywords", p["keywords"]); err != nil {
		return out, err
	}
	return out, nil
}

func normalizeLanguage(p rawPayload) (LanguagePayload, error) {
	var out LanguagePayload
	var err error
	if out.Name, err = requiredText("name", p.str("name"), MaxLanguage); err != nil {
		return out, err
	}
	if out.Proficiency, err = optionalText("proficiency", p.str("proficiency", "level"), MaxProficiency); err != nil {
		return out, err
	}
	return out, nil
}

func normalizeCertification(p rawPayload) (CertificationPayload, error) {
	var out CertificationPayload
	var err error
	if out.Name, err = requiredText("name", p.str("name", "title"), MaxCertification); err != nil {
		return out, err
	}
	if out.Issuer, err = optionalText("issuer", p.str("issuer", "by"), MaxIssuer); err != nil {
		return out, err
	}
	if year := p.num("year"); year != 0 {
		if out.Year, err = NormalizeYear("year", year); err != nil {
			return out, err
		}
	}
	if out.Link, err = NormalizeURL("link", p.str("link", "url"), MaxLinkURL); err != nil {
		return out, err
	}
	if out.Summary, err = optionalText("summary", p.str("summary"), MaxAwardNote); err != nil {
		return out, err
	}
	return out, nil
}

func normalizeAward(p rawPayload) (AwardPayload, error) {
	var out AwardPayload
	var err error
	if out.Title, err = requiredText("title", p.str("title", "name"), MaxAwardTitle); err != nil {
		return out, err
	}
	if out.By, err = optionalText("by", p.str("by", "issuer"), MaxAwardBy); err != nil {
		return out, err
	}
	if year := p.num("year"); year != 0 {
		if out.Year, err = NormalizeYear("year", year); err != nil {
			return out, err
		}
	}
	if out.Link, err = NormalizeURL("link", p.str("link", "url"), MaxLinkURL); err != nil {
		return out, err
	}
	if out.Summary, err = optionalText("summary", p.str("summary"), MaxAwardNote); err != nil {
		return out, err
	}
	return out, nil
}

func normalizeHighlight(p rawPayload) (TextPayload, error) {
	text, err := requiredText("text", p.str("text"), MaxHighlight)
	if err != nil {
		return TextPayload{}, err
	}
	return TextPayload{Text: text}, nil
}

// rawPayload gives loose, coercing access to a decoded client payload.
// Clients send both flat (startYear) and nested (start: {year}) shapes.
type rawPayload map[string]any

func (p rawPayload) str(keys ...string) string {
	for _, key := range keys {
		if value, ok := p[key]; ok && value != nil {
			switch v := value.(type) {
			case string:
				if v != "" {
					return v
				}
			case float64, int, bool:
				return fmt.Sprint(v)
			}
		}
	}
	return ""
}

func (p rawPayload) num(key string) int {
	value, ok := p[key]
	if !ok || value == nil {
		return 0
	}
	switch v := value.(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}

func (p rawPayload) boolean(keys ...string) bool {
	for _, key := range keys {
		if value, ok := p[key]; ok {
			if b, ok := value.(bool); ok {
				return b
			}
		}
	}
	return false
}

func (p rawPayload) object(key string) rawPayload {
	if value, ok := p[key]; ok {
		if obj, ok := value.(map[string]any); ok {
			return rawPayload(obj)
		}
	}
	return rawPayload{}
}

func (p rawPayload) list(key string) []any {
	if value, ok := p[key]; ok {
		if entries, ok := value.([]any); ok {
			return entries
		}
	}
	return nil
}

// dateRange reads the start/end pair from either the flat or the nested shape.
func (p rawPayload) dateRange() DateRange {
	start := p.object("start")
	end := p.object("end")
	r := DateRange{
		StartYear:  p.num("startYear"),
		StartMonth: p.num("startMonth"),
		EndYear:    p.num("endYear"),
		EndMonth:   p.num("endMonth"),
		Present:    p.boolean("present", "isPresent"),
	}
	if r.StartYear == 0 {
		r.StartYear = start.num("year")
	}
	if r.StartMonth == 0 {
		r.StartMonth = start.num("month")
	}
	if r.EndYear == 0 {
		r.EndYear = end.num("year")
	}
	if r.EndMonth == 0 {
		r.EndMonth = end.num("month")
	}
	return r
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
