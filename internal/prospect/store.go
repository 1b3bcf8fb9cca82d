// Package prospect loads, validates and reports on outreach contact lists.
package prospect

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
)

// Input column headers.
const (
	ColEmail       = "Email"
	ColFirstName   = "First name"
	ColLastName    = "Last name"
	ColLinkedIn    = "LinkedIn"
	ColJobPosition = "Job position"
	ColCountry     = "Country"
	ColCompanyName = "Company name"
	ColCompanyURL  = "Company URL"
)

// RequiredColumns lists the headers every input must carry.
var RequiredColumns = []string{
	ColEmail, ColFirstName, ColLastName, ColLinkedIn,
	ColJobPosition, ColCountry, ColCompanyName, ColCompanyURL,
}

// ReasonInvalidFormat is recorded for rows that fail validation.
const ReasonInvalidFormat = "Invalid data format"

// ErrMissingColumns is returned when the input lacks a required header.
var ErrMissingColumns = eris.New("prospect: missing required columns")

const topCountriesN = 5

// Store holds the valid prospects and rejected rows from one load.
type Store struct {
	valid   []model.Prospect
	invalid []model.InvalidRow
}

// Load reads prospects from path. Files ending in .xlsx are read from their
// first sheet; anything else is parsed as CSV.
func Load(ctx context.Context, path string) (*Store, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		rows, errs := streamXLSX(ctx, path)
		return build(rows, errs)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "prospect: open %s", path)
	}
	defer func() { _ = f.Close() }()

	return LoadReader(ctx, f)
}

// LoadReader parses CSV prospects from r.
func LoadReader(ctx context.Context, r io.Reader) (*Store, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	rows, errs := streamCSV(ctx, r)
	return build(rows, errs)
}

func build(rows <-chan []string, errs <-chan error) (*Store, error) {
	header, ok := <-rows
	if !ok {
		if err := <-errs; err != nil {
			return nil, err
		}
		return nil, eris.Wrap(ErrMissingColumns, "prospect: empty input")
	}

	idx := headerIndex(header)
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := idx[normalizeHeader(col)]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, eris.Wrapf(ErrMissingColumns, "prospect: %s", strings.Join(missing, ", "))
	}

	s := &Store{valid: []model.Prospect{}, invalid: []model.InvalidRow{}}
	rowIndex := 0
	for record := range rows {
		raw := make(map[string]string, len(RequiredColumns))
		for _, col := range RequiredColumns {
			i := idx[normalizeHeader(col)]
			if i < len(record) {
				raw[col] = record[i]
			} else {
				raw[col] = ""
			}
		}
		if isBlank(raw) {
			continue
		}
		s.add(rowIndex, raw)
		rowIndex++
	}
	if err := <-errs; err != nil {
		return nil, err
	}

	zap.L().Info("prospect: loaded",
		zap.Int("valid", len(s.valid)),
		zap.Int("invalid", len(s.invalid)),
	)
	return s, nil
}

func (s *Store) add(rowIndex int, raw map[string]string) {
	p := model.NewProspect(fieldsFromMap(raw))
	if !p.IsValid() {
		zap.L().Warn("prospect: invalid row",
			zap.Int("row", rowIndex),
			zap.String("email", raw[ColEmail]),
		)
		s.invalid = append(s.invalid, model.InvalidRow{
			RowIndex: rowIndex,
			Data:     raw,
			Reason:   ReasonInvalidFormat,
		})
		return
	}
	s.valid = append(s.valid, p)
}

func fieldsFromMap(raw map[string]string) model.ProspectFields {
	return model.ProspectFields{
		Email:       raw[ColEmail],
		FirstName:   raw[ColFirstName],
		LastName:    raw[ColLastName],
		LinkedIn:    raw[ColLinkedIn],
		JobPosition: raw[ColJobPosition],
		Country:     raw[ColCountry],
		CompanyName: raw[ColCompanyName],
		CompanyURL:  raw[ColCompanyURL],
	}
}

func isBlank(raw map[string]string) bool {
	for _, v := range raw {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Valid returns the accepted prospects in input order.
func (s *Store) Valid() []model.Prospect { return s.valid }

// Invalid returns the rejected rows in input order.
func (s *Store) Invalid() []model.InvalidRow { return s.invalid }

// FilterByCountry returns prospects whose country equals country, ignoring case.
func (s *Store) FilterByCountry(country string) []model.Prospect {
	var out []model.Prospect
	for _, p := range s.valid {
		if strings.EqualFold(p.Country, strings.TrimSpace(country)) {
			out = append(out, p)
		}
	}
	return out
}

// FilterByCompany returns prospects whose company name contains name, ignoring case.
func (s *Store) FilterByCompany(name string) []model.Prospect {
	needle := strings.ToLower(strings.TrimSpace(name))
	var out []model.Prospect
	for _, p := range s.valid {
		if strings.Contains(strings.ToLower(p.CompanyName), needle) {
			out = append(out, p)
		}
	}
	return out
}

// CountryCount is one entry of the country frequency table.
type CountryCount struct {
	Country string `json:"country"`
	Count   int    `json:"count"`
}

// Stats summarizes one load.
type Stats struct {
	TotalProspects        int            `json:"total_prospects"`
	InvalidProspects      int            `json:"invalid_prospects"`
	UniqueCountries       int            `json:"unique_countries"`
	UniqueCompanies       int            `json:"unique_companies"`
	TopCountries          []CountryCount `json:"top_countries"`
	ValidationSuccessRate float64        `json:"validation_success_rate"`
}

// Stats computes counts and the validation success rate. The rate is 0
// when nothing was loaded.
func (s *Store) Stats() Stats {
	counts := map[string]int{}
	var order []string
	companies := map[string]struct{}{}
	for _, p := range s.valid {
		if p.Country != "" {
			if _, ok := counts[p.Country]; !ok {
				order = append(order, p.Country)
			}
			counts[p.Country]++
		}
		companies[p.CompanyName] = struct{}{}
	}

	top := make([]CountryCount, 0, len(order))
	for _, c := range order {
		top = append(top, CountryCount{Country: c, Count: counts[c]})
	}
	sort.SliceStable(top, func(i, j int) bool { return top[i].Count > top[j].Count })
	if len(top) > topCountriesN {
		top = top[:topCountriesN]
	}

	st := Stats{
		TotalProspects:   len(s.valid),
		InvalidProspects: len(s.invalid),
		UniqueCountries:  len(order),
		UniqueCompanies:  len(companies),
		TopCountries:     top,
	}
	if total := len(s.valid) + len(s.invalid); total > 0 {
		st.ValidationSuccessRate = float64(len(s.valid)) / float64(total) * 100
	}
	return st
}

type invalidExportRow struct {
	model.Prospect
	ValidationError string `csv:"validation_error"`
}

// Export writes the valid prospects as CSV using the input headers. With
// includeInvalid the rejected rows follow, with a validation_error column.
func (s *Store) Export(w io.Writer, includeInvalid bool) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	if !includeInvalid {
		if err := enc.EncodeHeader(model.Prospect{}); err != nil {
			return eris.Wrap(err, "prospect: encode header")
		}
		for _, p := range s.valid {
			if err := enc.Encode(p); err != nil {
				return eris.Wrap(err, "prospect: encode row")
			}
		}
	} else {
		if err := enc.EncodeHeader(invalidExportRow{}); err != nil {
			return eris.Wrap(err, "prospect: encode header")
		}
		for _, p := range s.valid {
			if err := enc.Encode(invalidExportRow{Prospect: p}); err != nil {
				return eris.Wrap(err, "prospect: encode row")
			}
		}
		for _, row := range s.invalid {
			f := fieldsFromMap(row.Data)
			raw := model.Prospect{
				Email:       f.Email,
				FirstName:   f.FirstName,
				LastName:    f.LastName,
				LinkedIn:    f.LinkedIn,
				JobPosition: f.JobPosition,
				Country:     f.Country,
				CompanyName: f.CompanyName,
				CompanyURL:  f.CompanyURL,
			}
			if err := enc.Encode(invalidExportRow{Prospect: raw, ValidationError: row.Reason}); err != nil {
				return eris.Wrap(err, "prospect: encode invalid row")
			}
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "prospect: flush csv")
}

// ExportFile writes Export output to path.
func (s *Store) ExportFile(path string, includeInvalid bool) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "prospect: create %s", path)
	}
	defer func() { _ = f.Close() }()

	if err := s.Export(f, includeInvalid); err != nil {
		return err
	}
	zap.L().Info("prospect: exported", zap.String("path", path), zap.Int("valid", len(s.valid)))
	return nil
}
