package leadfile

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/prospect-cli/internal/model"
)

func TestReadCSV_HeaderOrderIrrelevant(t *testing.T) {
	in := "contact_email,company_name,industry\n" +
		"jane@acme.com,Acme Corp,Manufacturing\n" +
		",Globex,\n"

	leads, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, leads, 2)

	assert.Equal(t, "Acme Corp", leads[0].CompanyName)
	require.NotNil(t, leads[0].ContactEmail)
	assert.Equal(t, "jane@acme.com", *leads[0].ContactEmail)
	assert.Equal(t, "Manufacturing", *leads[0].Industry)

	assert.Equal(t, "Globex", leads[1].CompanyName)
	assert.Nil(t, leads[1].ContactEmail)
	assert.Nil(t, leads[1].Industry)
}

func TestReadCSV_UnknownColumnsIgnored(t *testing.T) {
	in := "company_name,favorite_color,tone\nAcme,blue,Friendly\n"

	leads, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "Friendly", *leads[0].Tone)
}

func TestReadCSV_MissingCompanyColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("website\nacme.com\n"))
	assert.ErrorIs(t, err, ErrNoCompanyColumn)
}

func TestReadCSV_Empty(t *testing.T) {
	leads, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, leads)
}

func TestReadCSV_EmailColumnsFlattenContent(t *testing.T) {
	in := "company_name,email_subject,email_body,email_sent\nAcme,Hello,Body text,true\n"

	leads, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, leads, 1)
	require.NotNil(t, leads[0].EmailContent)
	assert.Equal(t, "Hello", leads[0].EmailContent.Subject)
	assert.Equal(t, "Body text", leads[0].EmailContent.Content)
	assert.True(t, leads[0].EmailSent)
}

func TestWriteCSV_ReadBack(t *testing.T) {
	ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	lead := model.Lead{
		CompanyName:  "Acme",
		Website:      model.Str("https://acme.com"),
		ContactEmail: model.Str("ops@acme.com"),
		Research:     &model.Research{Data: "Company Overview: x", Scoring: "9/10", Timestamp: ts},
		EmailContent: &model.EmailContent{Subject: "Hi", Content: "Line one\nLine two"},
		EmailSent:    true,
		Timestamp:    &ts,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []Record{FromLead(lead)}))

	leads, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	got := leads[0]
	assert.Equal(t, "Acme", got.CompanyName)
	assert.Equal(t, "ops@acme.com", *got.ContactEmail)
	require.NotNil(t, got.Research)
	assert.Equal(t, "9/10", got.Research.Scoring)
	assert.True(t, ts.Equal(got.Research.Timestamp))
	assert.Equal(t, "Line one\nLine two", got.EmailContent.Content)
	assert.True(t, got.EmailSent)
	require.NotNil(t, got.Timestamp)
}

func TestWriteCSV_NoRecordsWritesHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.True(t, strings.HasPrefix(buf.String(), "company_name,"))
}

func TestFromReport_CarriesStateAndError(t *testing.T) {
	rep := &model.Report{Rows: []model.ReportRow{
		{Index: 0, Lead: model.Lead{CompanyName: "A"}, State: model.StateSent},
		{Index: 1, Lead: model.Lead{CompanyName: "B"}, State: model.StateOutreachSkipped, Error: "no contact email"},
	}}

	recs := FromReport(rep)
	require.Len(t, recs, 2)
	assert.Equal(t, "sent", recs[0].State)
	assert.Equal(t, "outreach_skipped", recs[1].State)
	assert.Equal(t, "no contact email", recs[1].Error)
}

func TestXLSX_WriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.xlsx")
	recs := []Record{
		FromLead(model.Lead{CompanyName: "Acme", Industry: model.Str("Retail")}),
		FromLead(model.Lead{CompanyName: "Globex"}),
	}
	require.NoError(t, WriteFile(path, recs))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)
	assert.Equal(t, SheetName, f.Sheets[0].Name)

	leads, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, "Acme", leads[0].CompanyName)
	assert.Equal(t, "Retail", *leads[0].Industry)
	assert.Equal(t, "Globex", leads[1].CompanyName)
}

func TestReadFile_CSVByExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.csv")
	require.NoError(t, WriteFile(path, []Record{FromLead(model.Lead{CompanyName: "Initech"})}))

	leads, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "Initech", leads[0].CompanyName)
}
