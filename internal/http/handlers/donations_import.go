package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"studio/internal/money"
	"studio/internal/validation"
)

const maxImportBytes = 5 << 20

var importDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

var importColumns = map[string]string{
	"name":       "name",
	"donor":      "name",
	"donor_name": "name",
	"amount":     "amount",
	"method":     "method",
	"payment":    "method",
	"note":       "note",
	"notes":      "note",
	"date":       "date",
	"counted":    "counted",
	"order":      "order",
	"photoshoot": "photoshoot",
}

type importError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type importResult struct {
	Imported int           `json:"imported"`
	Failed   int           `json:"failed"`
	Errors   []importError `json:"errors"`
}

// DonationsImport reads a CSV upload (multipart field "file") row by row.
// Bad rows are reported by line number and never stop the import.
func (a *App) DonationsImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes+1<<20)
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		a.error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		a.error(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		a.error(w, http.StatusBadRequest, "csv header is required")
		return
	}
	cols := importHeader(header)
	if _, ok := cols["name"]; !ok {
		a.error(w, http.StatusBadRequest, "csv must have a name column")
		return
	}
	if _, ok := cols["amount"]; !ok {
		a.error(w, http.StatusBadRequest, "csv must have an amount column")
		return
	}

	result := importResult{Errors: []importError{}}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line := 0
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				line = perr.StartLine
			}
			result.Failed++
			result.Errors = append(result.Errors, importError{Row: line, Error: err.Error()})
			continue
		}
		line, _ := reader.FieldPos(0)
		if blankRecord(record) {
			continue
		}
		if err := a.importRow(r, cols, record); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, importError{Row: line, Error: err.Error()})
			continue
		}
		result.Imported++
	}
	a.Logger.Info().Int("imported", result.Imported).Int("failed", result.Failed).Msg("donations imported")
	a.json(w, http.StatusOK, result)
}

func (a *App) importRow(r *http.Request, cols map[string]int, record []string) error {
	field := func(name string) string {
		if i, ok := cols[name]; ok && i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}
	amount, err := money.ParseAmount(field("amount"))
	if err != nil {
		return fmt.Errorf("invalid amount %q", field("amount"))
	}
	date, err := parseImportDate(field("date"), a.now())
	if err != nil {
		return err
	}
	counted, err := parseCounted(field("counted"))
	if err != nil {
		return err
	}
	method := field("method")
	if method == "" {
		method = "other"
	}
	order, photoshoot := field("order"), field("photoshoot")
	d, err := a.donation(donationRequest{
		DonorName:         field("name"),
		Amount:            amount,
		PaymentMethod:     method,
		Note:              field("note"),
		TransactionDate:   date,
		CountsTowardTotal: &counted,
		OrderDescription:  &order,
		PhotoshootType:    &photoshoot,
	})
	if err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			return errors.New(verr.Error())
		}
		return err
	}
	if err := a.Donations.Create(r.Context(), d); err != nil {
		a.Logger.Error().Err(err).Msg("import donation")
		return errors.New("failed to save row")
	}
	return nil
}

func importHeader(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		h = strings.ReplaceAll(h, " ", "_")
		if name, ok := importColumns[h]; ok {
			if _, seen := cols[name]; !seen {
				cols[name] = i
			}
		}
	}
	return cols
}

func blankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parseImportDate normalizes the accepted layouts to 2006-01-02. An empty
// date means today.
func parseImportDate(raw string, now time.Time) (string, error) {
	if raw == "" {
		return now.Format(dateLayout), nil
	}
	for _, layout := range importDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(dateLayout), nil
		}
	}
	return "", fmt.Errorf("invalid date %q", raw)
}

func parseCounted(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "", "yes", "y", "true", "1", "x":
		return true, nil
	case "no", "n", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid counted value %q", raw)
}
