// Package export writes entities to .xlsx workbooks.
package export

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/sakif/softdesk/internal/model"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	IssuesSheet = "Issues"

	timeLayout = "2006-01-02 15:04"
)

// WriteSheet writes a slice of structs to sheet: one header row taken from
// the `excel` tags (field name when absent, "-" to skip), then one row per
// element. Embedded structs are flattened. Nil pointers become empty cells.
func WriteSheet(f *excelize.File, sheet string, data any) error {
	v := reflect.ValueOf(data)
	if v.Kind() != reflect.Slice {
		return fmt.Errorf("export: %T is not a slice", data)
	}

	elemType := v.Type().Elem()
	if elemType.Kind() == reflect.Pointer {
		elemType = elemType.Elem()
	}
	if elemType.Kind() != reflect.Struct {
		return fmt.Errorf("export: %T is not a slice of structs", data)
	}

	if sheet == "" {
		sheet = "Sheet1"
	}
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("export: creating sheet %q: %w", sheet, err)
	}

	fields := columns(elemType, nil)

	for i, fi := range fields {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, fi.header); err != nil {
			return fmt.Errorf("export: writing header %q: %w", fi.header, err)
		}
	}

	row := 2
	for i := range v.Len() {
		elem := v.Index(i)
		if elem.Kind() == reflect.Pointer {
			if elem.IsNil() {
				continue
			}
			elem = elem.Elem()
		}

		for col, fi := range fields {
			fv := elem.FieldByIndex(fi.index)

			var value any
			if fv.Kind() == reflect.Pointer {
				if fv.IsNil() {
					value = ""
				} else {
					value = fv.Elem().Interface()
				}
			} else {
				value = fv.Interface()
			}

			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("export: writing %s: %w", cell, err)
			}
		}
		row++
	}

	return nil
}

type column struct {
	index  []int
	header string
}

func columns(t reflect.Type, parent []int) []column {
	var out []column
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}

		idx := append(append([]int(nil), parent...), i)

		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			out = append(out, columns(sf.Type, idx)...)
			continue
		}

		tag := sf.Tag.Get("excel")
		if tag == "-" {
			continue
		}
		if tag == "" {
			tag = sf.Name
		}
		out = append(out, column{index: idx, header: tag})
	}
	return out
}

// IssueRow is one line of the issue export. Enums are written as labels.
type IssueRow struct {
	ID          string  `excel:"ID"`
	Title       string  `excel:"Title"`
	Description string  `excel:"Description"`
	Priority    string  `excel:"Priority"`
	Tag         string  `excel:"Tag"`
	Status      string  `excel:"Status"`
	AuthorID    string  `excel:"Author"`
	AssigneeID  *string `excel:"Assignee"`
	Created     string  `excel:"Created"`
}

func issueRows(issues []model.Issue) []IssueRow {
	rows := make([]IssueRow, 0, len(issues))
	for _, i := range issues {
		rows = append(rows, IssueRow{
			ID:          i.ID,
			Title:       i.Title,
			Description: i.Description,
			Priority:    i.Priority.Label(),
			Tag:         i.Tag.Label(),
			Status:      i.Status.Label(),
			AuthorID:    i.AuthorID,
			AssigneeID:  i.AssigneeID,
			Created:     i.CreatedAt.UTC().Format(timeLayout),
		})
	}
	return rows
}

// IssuesWorkbook builds a workbook holding the project's issues on one sheet.
// The caller closes the returned file.
func IssuesWorkbook(project *model.Project, issues []model.Issue) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", IssuesSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("export: naming sheet: %w", err)
	}
	if err := WriteSheet(f, IssuesSheet, issueRows(issues)); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   project.Name + " issues",
		Creator: "softdesk",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("export: setting document properties: %w", err)
	}
	return f, nil
}

// WriteIssues streams the issue workbook to w.
func WriteIssues(w io.Writer, project *model.Project, issues []model.Issue) error {
	f, err := IssuesWorkbook(project, issues)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export: writing workbook: %w", err)
	}
	return nil
}

// Filename is the download name for a project's issue export.
func Filename(project *model.Project) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '-'
		}
		return -1
	}, project.Name)
	if name == "" {
		name = project.ID
	}
	return strings.ToLower(name) + "-issues.xlsx"
}
