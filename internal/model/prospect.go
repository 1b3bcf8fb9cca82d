package model

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Prospect is one outreach target: a contact plus their company.
// Construct with NewProspect so normalization is applied once.
type Prospect struct {
	Email       string `json:"email" csv:"Email"`
	FirstName   string `json:"first_name" csv:"First name"`
	LastName    string `json:"last_name" csv:"Last name"`
	LinkedIn    string `json:"linkedin" csv:"LinkedIn"`
	JobPosition string `json:"job_position" csv:"Job position"`
	Country     string `json:"country" csv:"Country"`
	CompanyName string `json:"company_name" csv:"Company name"`
	CompanyURL  string `json:"company_url" csv:"Company URL"`
}

// ProspectFields is the raw input for NewProspect, keyed the same way as the
// input columns.
type ProspectFields struct {
	Email       string
	FirstName   string
	LastName    string
	LinkedIn    string
	JobPosition string
	Country     string
	CompanyName string
	CompanyURL  string
}

var (
	emailRe    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	titleCaser = cases.Title(language.Und)
)

// NewProspect trims every field, lowercases the email, title-cases the names
// and normalizes the company URL.
func NewProspect(f ProspectFields) Prospect {
	return Prospect{
		Email:       strings.ToLower(strings.TrimSpace(f.Email)),
		FirstName:   titleCaser.String(strings.TrimSpace(f.FirstName)),
		LastName:    titleCaser.String(strings.TrimSpace(f.LastName)),
		LinkedIn:    strings.TrimSpace(f.LinkedIn),
		JobPosition: strings.TrimSpace(f.JobPosition),
		Country:     strings.TrimSpace(f.Country),
		CompanyName: strings.TrimSpace(f.CompanyName),
		CompanyURL:  NormalizeURL(f.CompanyURL),
	}
}

// NormalizeURL adds an https scheme when none is present and strips the
// trailing slash. Empty input stays empty.
func NormalizeURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return ""
	}
	lower := strings.ToLower(u)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		u = "https://" + u
	}
	return strings.TrimRight(u, "/")
}

// IsValid reports whether the required fields are present, the email matches
// the address grammar and the company URL parses with a scheme and host.
func (p Prospect) IsValid() bool {
	required := []string{p.Email, p.FirstName, p.LastName, p.CompanyName, p.CompanyURL}
	for _, v := range required {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return ValidEmail(p.Email) && ValidURL(p.CompanyURL)
}

// FullName joins first and last name.
func (p Prospect) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// ValidEmail checks an address against the basic grammar.
func ValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// ValidURL checks that raw parses with an http(s) scheme and a host.
func ValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// InvalidRow records an input row that failed validation.
type InvalidRow struct {
	RowIndex int               `json:"row_index"`
	Data     map[string]string `json:"data"`
	Reason   string            `json:"reason"`
}
