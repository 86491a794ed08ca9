package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ==================== DATES ====================

const dateLayout = "2006-01-02"

// Date is a calendar day. It renders as YYYY-MM-DD and accepts either
// YYYY-MM-DD or RFC 3339 on input.
type Date struct {
	time.Time
}

// NewDate builds a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses YYYY-MM-DD or RFC 3339.
func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Date{Time: t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	y, m, d := t.Date()
	return NewDate(y, m, d), nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value stores the day as a midnight UTC timestamp.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC), nil
}

// Scan accepts time.Time from lib/pq and go-sqlite3, and text for
// columns sqlite did not type as a date.
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
	case time.Time:
		y, m, day := v.Date()
		*d = NewDate(y, m, day)
	case string:
		return d.scanText(v)
	case []byte:
		return d.scanText(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
	return nil
}

func (d *Date) scanText(s string) error {
	if len(s) >= len(dateLayout) {
		s = s[:len(dateLayout)]
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return err
	}
	*d = Date{Time: t}
	return nil
}

// AgeAt returns whole calendar years between dob and now. A birthday not yet
// reached in now's year counts one year less.
func AgeAt(dob Date, now time.Time) int {
	if dob.IsZero() {
		return 0
	}
	by, bm, bd := dob.Date()
	ny, nm, nd := now.Date()
	age := ny - by
	if nm < bm || (nm == bm && nd < bd) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// ==================== RECORDS ====================

// Person holds the fields shared by every person record. It is never stored
// on its own.
type Person struct {
	ID          int64  `json:"id"`
	Name        string `json:"name" validate:"required"`
	DateOfBirth Date   `json:"dateOfBirth" validate:"required,past"`
}

// Department represents the departments table
type Department struct {
	ID   int64  `json:"id"`
	Name string `json:"name" validate:"required,max=100,alphaonly"`
}

// Employee represents the employees table. DepartmentID is the stored
// reference; Department is resolved on read.
type Employee struct {
	Person
	EmployeeID   string      `json:"employeeId" validate:"required,max=10"`
	DepartmentID int64       `json:"departmentId,omitempty"`
	Department   *Department `json:"department,omitempty" validate:"-"`
	Salary       *float64    `json:"salary,omitempty" validate:"omitempty,gte=0,lte=1000000"`
	Age          int         `json:"age"`
}

// SalaryOrZero treats a missing salary as zero.
func (e Employee) SalaryOrZero() float64 {
	if e.Salary == nil {
		return 0
	}
	return *e.Salary
}

// DepartmentName returns the resolved department name, or "" when unresolved.
func (e Employee) DepartmentName() string {
	if e.Department == nil {
		return ""
	}
	return e.Department.Name
}

// EmployeePatch carries the fields an update may overwrite. The department is
// addressed by name.
type EmployeePatch struct {
	Name           string   `json:"name" validate:"required"`
	DateOfBirth    Date     `json:"dateOfBirth" validate:"required,past"`
	DepartmentName string   `json:"departmentName"`
	Salary         *float64 `json:"salary,omitempty" validate:"omitempty,gte=0,lte=1000000"`
}

// ==================== CHANGE LOG ====================

// ChangeAction names a write applied to a record.
type ChangeAction string

const (
	ChangeCreated ChangeAction = "created"
	ChangeUpdated ChangeAction = "updated"
	ChangeDeleted ChangeAction = "deleted"
)

// ChangeRecord represents a change log document in GCP Datastore ONLY
type ChangeRecord struct {
	Entity    string       `datastore:"Entity" json:"entity"`
	Key       string       `datastore:"Key" json:"key"`
	Action    ChangeAction `datastore:"Action" json:"action"`
	Principal string       `datastore:"Principal" json:"principal,omitempty"`
	At        time.Time    `datastore:"At" json:"at"`
}

// ==================== PAGING ====================

// PageRequest is a zero-based page index and a page size.
type PageRequest struct {
	Page int
	Size int
}

// Offset returns the number of rows preceding the page.
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// Page is a bounded window over an ordered result set.
type Page[T any] struct {
	Content          []T   `json:"content"`
	TotalElements    int64 `json:"totalElements"`
	TotalPages       int   `json:"totalPages"`
	Number           int   `json:"number"`
	Size             int   `json:"size"`
	NumberOfElements int   `json:"numberOfElements"`
	First            bool  `json:"first"`
	Last             bool  `json:"last"`
	Empty            bool  `json:"empty"`
}

// NewPage builds a page from its content and the total element count of the
// set it was cut from.
func NewPage[T any](content []T, req PageRequest, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if req.Size > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return Page[T]{
		Content:          content,
		TotalElements:    total,
		TotalPages:       totalPages,
		Number:           req.Page,
		Size:             req.Size,
		NumberOfElements: len(content),
		First:            req.Page == 0,
		Last:             req.Page+1 >= totalPages,
		Empty:            len(content) == 0,
	}
}
