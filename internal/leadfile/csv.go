package leadfile

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/model"
)

// ErrNoCompanyColumn is returned when a table has no company_name header.
var ErrNoCompanyColumn = eris.New("leadfile: missing company_name column")

// DecodeCSV reads lead records from r. The first row must be a header.
func DecodeCSV(r io.Reader) ([]Record, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "leadfile: read header")
	}
	if !hasColumn(dec.Header(), "company_name") {
		return nil, ErrNoCompanyColumn
	}

	var records []Record
	for {
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, eris.Wrapf(err, "leadfile: decode row %d", len(records)+1)
		}
		records = append(records, rec)
	}

	if unused := dec.Unused(); len(unused) > 0 {
		header := dec.Header()
		names := make([]string, 0, len(unused))
		for _, i := range unused {
			names = append(names, header[i])
		}
		zap.L().Debug("leadfile: ignoring unknown columns", zap.Strings("columns", names))
	}
	return records, nil
}

// ReadCSV reads leads from r.
func ReadCSV(r io.Reader) ([]model.Lead, error) {
	records, err := DecodeCSV(r)
	if err != nil {
		return nil, err
	}
	return toLeads(records), nil
}

// WriteCSV writes records to w with a header row.
func WriteCSV(w io.Writer, records []Record) error {
	b, err := encode(records)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return eris.Wrap(err, "leadfile: write csv")
}

// ReadCSVFile reads leads from the CSV file at path.
func ReadCSVFile(path string) ([]model.Lead, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "leadfile: open csv")
	}
	defer f.Close() //nolint:errcheck
	return ReadCSV(f)
}

// WriteCSVFile writes records to a CSV file at path, replacing it.
func WriteCSVFile(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "leadfile: create csv")
	}
	if err := WriteCSV(f, records); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	return eris.Wrap(f.Close(), "leadfile: close csv")
}

func encode(records []Record) ([]byte, error) {
	if len(records) == 0 {
		header, err := csvutil.Header(Record{}, "csv")
		if err != nil {
			return nil, eris.Wrap(err, "leadfile: header")
		}
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.Write(header); err != nil {
			return nil, eris.Wrap(err, "leadfile: write header")
		}
		w.Flush()
		return buf.Bytes(), eris.Wrap(w.Error(), "leadfile: flush header")
	}
	b, err := csvutil.Marshal(records)
	return b, eris.Wrap(err, "leadfile: encode csv")
}

func toLeads(records []Record) []model.Lead {
	leads := make([]model.Lead, len(records))
	for i, r := range records {
		leads[i] = r.Lead()
	}
	return leads
}

func hasColumn(header []string, name string) bool {
	for _, h := range header {
		if h == name {
			return true
		}
	}
	return false
}
