package repository

import (
	"context"
	"encoding/csv"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/suistat/pkg/domain/interfaces"
	"github.com/secmon-lab/suistat/pkg/domain/model"
)

// CSVSource reads the dataset from a local CSV file or an HTTP(S) URL
type CSVSource struct {
	pathOrURL string
	client    *http.Client
}

var _ interfaces.TabularSource = (*CSVSource)(nil)

// NewCSVSource creates a CSV source. Paths starting with http:// or https:// are fetched.
func NewCSVSource(pathOrURL string) *CSVSource {
	return &CSVSource{pathOrURL: pathOrURL, client: http.DefaultClient}
}

// WithHTTPClient replaces the HTTP client used for URLs
func (s *CSVSource) WithHTTPClient(client *http.Client) *CSVSource {
	s.client = client
	return s
}

func isURL(pathOrURL string) bool {
	return strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://")
}

// ReadRows reads all rows
func (s *CSVSource) ReadRows(ctx context.Context) ([]model.Row, error) {
	var reader io.Reader
	if isURL(s.pathOrURL) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.pathOrURL, nil)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create CSV request", goerr.V("url", s.pathOrURL))
		}
		resp, err := s.client.Do(req)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to GET CSV", goerr.V("url", s.pathOrURL))
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, goerr.New("unexpected CSV response status",
				goerr.V("url", s.pathOrURL),
				goerr.V("status", resp.StatusCode))
		}
		reader = resp.Body
	} else {
		file, err := os.Open(s.pathOrURL)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open CSV file", goerr.V("path", s.pathOrURL))
		}
		defer file.Close()
		reader = file
	}

	rows, err := ReadCSV(reader)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse CSV", goerr.V("source", s.pathOrURL))
	}

	ctxlog.From(ctx).Debug("CSV rows read", "source", s.pathOrURL, "rows", len(rows))
	return rows, nil
}

// Close does nothing for CSV sources
func (s *CSVSource) Close() error {
	return nil
}

// ReadCSV parses CSV text with a header line into rows keyed by lowercased header
func ReadCSV(r io.Reader) ([]model.Row, error) {
	csvReader := csv.NewReader(r)
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	headers, err := csvReader.Read()
	if err == io.EOF {
		return nil, goerr.New("CSV has no header")
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read CSV header")
	}
	for i, h := range headers {
		headers[i] = normalizeColumn(h)
	}

	var rows []model.Row
	for line := 2; ; line++ {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "CSV read error", goerr.V("line", line))
		}

		row := make(model.Row, len(headers))
		for i, h := range headers {
			if i < len(record) {
				row[h] = record[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// normalizeColumn trims whitespace, quotes and a byte order mark, then lowercases
func normalizeColumn(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	name = strings.ReplaceAll(name, `"`, "")
	return strings.ToLower(strings.TrimSpace(name))
}
