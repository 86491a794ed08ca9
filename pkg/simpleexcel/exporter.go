package simpleexcel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// Constants & Types
// =============================================================================

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeCSV  = "text/csv"
)

// DataExporter is the main entry point for exporting data.
type DataExporter struct {
	template *ReportTemplate
	// data holds data bound to specific section IDs (for YAML flow)
	data map[string]interface{}
	// sheets holds manually added sheets (for programmatic flow)
	sheets []*SheetBuilder
}

// ReportTemplate represents the YAML structure.
type ReportTemplate struct {
	Sheets []SheetTemplate `yaml:"sheets"`
}

// SheetTemplate represents a sheet in the YAML.
type SheetTemplate struct {
	Name     string          `yaml:"name"`
	Sections []SectionConfig `yaml:"sections"`
}

// SectionConfig defines a block of rows in a sheet.
type SectionConfig struct {
	ID          string         `yaml:"id"`
	Title       string         `yaml:"title"`
	Data        interface{}    `yaml:"-"` // Data is bound at runtime
	Locked      bool           `yaml:"locked"`
	ShowHeader  bool           `yaml:"show_header"`
	TitleStyle  *StyleTemplate `yaml:"title_style"`
	HeaderStyle *StyleTemplate `yaml:"header_style"`
	Columns     []ColumnConfig `yaml:"columns"`
}

// ColumnConfig defines a column in a section.
type ColumnConfig struct {
	// FieldName is a struct field name, map key, or dotted path ("Department.Name").
	FieldName string  `yaml:"field_name"`
	Header    string  `yaml:"header"`
	Width     float64 `yaml:"width"`
}

// StyleTemplate defines basic styling.
type StyleTemplate struct {
	Font *FontTemplate `yaml:"font"`
	Fill *FillTemplate `yaml:"fill"`
}

type FontTemplate struct {
	Bold  bool   `yaml:"bold"`
	Color string `yaml:"color"` // Hex color
}

type FillTemplate struct {
	Color string `yaml:"color"` // Hex color
}

// =============================================================================
// Constructors
// =============================================================================

func NewDataExporter() *DataExporter {
	return &DataExporter{
		data:   make(map[string]interface{}),
		sheets: []*SheetBuilder{},
	}
}

// NewDataExporterFromYAML parses a report template.
func NewDataExporterFromYAML(raw []byte) (*DataExporter, error) {
	var tmpl ReportTemplate
	if err := yaml.Unmarshal(raw, &tmpl); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if len(tmpl.Sheets) == 0 {
		return nil, fmt.Errorf("template has no sheets")
	}

	return &DataExporter{
		template: &tmpl,
		data:     make(map[string]interface{}),
	}, nil
}

// =============================================================================
// Fluent API
// =============================================================================

// AddSheet starts a new sheet builder.
func (e *DataExporter) AddSheet(name string) *SheetBuilder {
	sb := &SheetBuilder{
		exporter: e,
		name:     name,
		sections: []*SectionConfig{},
	}
	e.sheets = append(e.sheets, sb)
	return sb
}

// BindSectionData binds data to a section ID (for YAML-based export).
func (e *DataExporter) BindSectionData(id string, data interface{}) *DataExporter {
	e.data[id] = data
	return e
}

type SheetBuilder struct {
	exporter *DataExporter
	name     string
	sections []*SectionConfig
}

func (sb *SheetBuilder) AddSection(config *SectionConfig) *SheetBuilder {
	sb.sections = append(sb.sections, config)
	return sb
}

func (sb *SheetBuilder) Build() *DataExporter {
	return sb.exporter
}

// resolvedSheet is a sheet with its data bound, whichever flow built it.
type resolvedSheet struct {
	name     string
	sections []*SectionConfig
}

func (e *DataExporter) resolveSheets() []resolvedSheet {
	var out []resolvedSheet
	for _, sb := range e.sheets {
		out = append(out, resolvedSheet{name: sb.name, sections: sb.sections})
	}
	if e.template != nil {
		for _, sheetTmpl := range e.template.Sheets {
			sections := make([]*SectionConfig, len(sheetTmpl.Sections))
			for j := range sheetTmpl.Sections {
				sec := sheetTmpl.Sections[j]
				if data, ok := e.data[sec.ID]; ok {
					sec.Data = data
				}
				sections[j] = &sec
			}
			out = append(out, resolvedSheet{name: sheetTmpl.Name, sections: sections})
		}
	}
	return out
}

// =============================================================================
// Output
// =============================================================================

// ToBytes exports the Excel file to an in-memory byte slice.
func (e *DataExporter) ToBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := e.StreamTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// StreamTo writes the workbook to w.
func (e *DataExporter) StreamTo(w io.Writer) error {
	f, err := e.buildExcel()
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteTo(w)
	return err
}

// ToCSV writes the first sheet as CSV. Titles and headers become rows and a
// blank row separates sections, matching the sheet layout.
func (e *DataExporter) ToCSV(w io.Writer) error {
	sheets := e.resolveSheets()
	if len(sheets) == 0 {
		return fmt.Errorf("no sheets found")
	}

	csvWriter := csv.NewWriter(w)
	for i, sec := range sheets[0].sections {
		if i > 0 {
			if err := csvWriter.Write([]string{}); err != nil {
				return fmt.Errorf("error writing CSV row: %w", err)
			}
		}
		for _, row := range sectionRows(sec) {
			record := make([]string, len(row))
			for j, v := range row {
				record[j] = formatCell(v)
			}
			if err := csvWriter.Write(record); err != nil {
				return fmt.Errorf("error writing CSV row: %w", err)
			}
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// =============================================================================
// Rendering Logic
// =============================================================================

func (e *DataExporter) buildExcel() (*excelize.File, error) {
	sheets := e.resolveSheets()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found")
	}

	f := excelize.NewFile()
	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(sheet.name); err != nil {
			return nil, err
		}
		if err := renderSections(f, sheet.name, sheet.sections); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func renderSections(f *excelize.File, sheet string, sections []*SectionConfig) error {
	currentRow := 1
	hasLockedSections := false

	for _, sec := range sections {
		if sec.Locked {
			hasLockedSections = true
		}

		lockStyle, err := createStyle(f, nil, sec.Locked)
		if err != nil {
			return err
		}

		// Render Title
		if sec.Title != "" {
			cell, _ := excelize.CoordinatesToCellName(1, currentRow)
			if err := f.SetCellValue(sheet, cell, sec.Title); err != nil {
				return err
			}
			styleID, err := createStyle(f, sec.TitleStyle, sec.Locked)
			if err != nil {
				return err
			}
			endCell := cell
			if len(sec.Columns) > 1 {
				endCell, _ = excelize.CoordinatesToCellName(len(sec.Columns), currentRow)
				if err := f.MergeCell(sheet, cell, endCell); err != nil {
					return err
				}
			}
			if err := f.SetCellStyle(sheet, cell, endCell, styleID); err != nil {
				return err
			}
			currentRow++
		}

		// Render Header
		if sec.ShowHeader {
			styleID, err := createStyle(f, sec.HeaderStyle, sec.Locked)
			if err != nil {
				return err
			}
			for i, col := range sec.Columns {
				cell, _ := excelize.CoordinatesToCellName(1+i, currentRow)
				if err := f.SetCellValue(sheet, cell, col.Header); err != nil {
					return err
				}
				if err := f.SetCellStyle(sheet, cell, cell, styleID); err != nil {
					return err
				}
				if col.Width > 0 {
					colName, _ := excelize.ColumnNumberToName(1 + i)
					if err := f.SetColWidth(sheet, colName, colName, col.Width); err != nil {
						return err
					}
				}
			}
			currentRow++
		}

		// Render Data
		for _, row := range dataRows(sec) {
			for j, val := range row {
				cell, _ := excelize.CoordinatesToCellName(1+j, currentRow)
				if err := f.SetCellValue(sheet, cell, val); err != nil {
					return err
				}
			}
			if len(row) > 0 {
				first, _ := excelize.CoordinatesToCellName(1, currentRow)
				last, _ := excelize.CoordinatesToCellName(len(row), currentRow)
				if err := f.SetCellStyle(sheet, first, last, lockStyle); err != nil {
					return err
				}
			}
			currentRow++
		}

		// Blank row between sections
		currentRow++
	}

	// Locked cells only take effect on a protected sheet.
	if hasLockedSections {
		return f.ProtectSheet(sheet, &excelize.SheetProtectionOptions{
			SelectLockedCells:   true,
			SelectUnlockedCells: true,
		})
	}
	return nil
}

// sectionRows returns title, header and data rows in render order.
func sectionRows(sec *SectionConfig) [][]interface{} {
	var rows [][]interface{}
	if sec.Title != "" {
		rows = append(rows, []interface{}{sec.Title})
	}
	if sec.ShowHeader {
		header := make([]interface{}, len(sec.Columns))
		for i, col := range sec.Columns {
			header[i] = col.Header
		}
		rows = append(rows, header)
	}
	return append(rows, dataRows(sec)...)
}

func dataRows(sec *SectionConfig) [][]interface{} {
	dataVal := reflect.ValueOf(sec.Data)
	if dataVal.Kind() != reflect.Slice {
		return nil
	}
	rows := make([][]interface{}, 0, dataVal.Len())
	for i := 0; i < dataVal.Len(); i++ {
		item := dataVal.Index(i)
		row := make([]interface{}, len(sec.Columns))
		for j, col := range sec.Columns {
			row[j] = extractValue(item, col.FieldName)
		}
		rows = append(rows, row)
	}
	return rows
}

// extractValue walks a dotted field path through structs, maps and pointers.
// Missing fields and nil pointers yield "".
func extractValue(item reflect.Value, fieldPath string) interface{} {
	cur := item
	for _, name := range strings.Split(fieldPath, ".") {
		for cur.Kind() == reflect.Ptr || cur.Kind() == reflect.Interface {
			if cur.IsNil() {
				return ""
			}
			cur = cur.Elem()
		}
		switch cur.Kind() {
		case reflect.Struct:
			cur = cur.FieldByName(name)
		case reflect.Map:
			cur = cur.MapIndex(reflect.ValueOf(name))
		default:
			return ""
		}
		if !cur.IsValid() {
			return ""
		}
	}
	for cur.Kind() == reflect.Ptr || cur.Kind() == reflect.Interface {
		if cur.IsNil() {
			return ""
		}
		cur = cur.Elem()
	}
	if s, ok := cur.Interface().(fmt.Stringer); ok {
		return s.String()
	}
	return cur.Interface()
}

func formatCell(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", t), "0"), ".")
	default:
		return fmt.Sprint(t)
	}
}

func createStyle(f *excelize.File, tmpl *StyleTemplate, locked bool) (int, error) {
	style := &excelize.Style{Protection: &excelize.Protection{Locked: locked}}
	if tmpl != nil && tmpl.Font != nil {
		style.Font = &excelize.Font{
			Bold:  tmpl.Font.Bold,
			Color: strings.TrimPrefix(tmpl.Font.Color, "#"),
		}
	}
	if tmpl != nil && tmpl.Fill != nil {
		style.Fill = excelize.Fill{
			Type:    "pattern",
			Color:   []string{strings.TrimPrefix(tmpl.Fill.Color, "#")},
			Pattern: 1,
		}
	}
	return f.NewStyle(style)
}
