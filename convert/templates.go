package convert

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	sprig "github.com/go-task/slim-sprig/v3"

	"tocidx/config"
	"tocidx/pdf"
	"tocidx/records"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context string
	// Title of the body document, may be empty
	Title string
	// Source is body file name without extension
	Source string
	// Pages in the body document
	Pages int
	// Entries in contents and Terms in index
	Entries int
	Terms   int
	RunID   string
	Date    string
}

func buildValues(ds *records.Dataset, body *pdf.Body, runID string, now time.Time) Values {
	v := Values{
		RunID: runID,
		Date:  now.Format("2006-01-02"),
	}
	if ds != nil {
		v.Entries, v.Terms = len(ds.Outline), len(ds.Index)
	}
	if body != nil {
		v.Title = body.Title
		v.Source = strings.TrimSuffix(filepath.Base(body.Path), filepath.Ext(body.Path))
		v.Pages = body.PageCount()
	}
	return v
}

func expandTemplate(name config.TemplateFieldName, field string, values Values) (string, error) {
	tmpl, err := template.New(string(name)).Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values.Context = string(name)

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
