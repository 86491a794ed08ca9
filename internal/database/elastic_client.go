package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/locvowork/employee_records/internal/domain"
	"github.com/olivere/elastic/v7"
)

const EmployeeIndex = "employees"

// EmployeeDoc mirrors domain.Employee for ES storage.
type EmployeeDoc struct {
	ID           int64    `json:"id"`
	EmployeeID   string   `json:"employee_id"`
	Name         string   `json:"name"`
	DateOfBirth  string   `json:"date_of_birth,omitempty"`
	DepartmentID int64    `json:"department_id,omitempty"`
	Department   string   `json:"department,omitempty"`
	Salary       *float64 `json:"salary,omitempty"`
}

func NewEmployeeDoc(e domain.Employee) EmployeeDoc {
	doc := EmployeeDoc{
		ID:           e.ID,
		EmployeeID:   e.EmployeeID,
		Name:         e.Name,
		DepartmentID: e.DepartmentID,
		Department:   e.DepartmentName(),
		Salary:       e.Salary,
	}
	if !e.DateOfBirth.IsZero() {
		doc.DateOfBirth = e.DateOfBirth.String()
	}
	if doc.DepartmentID == 0 && e.Department != nil {
		doc.DepartmentID = e.Department.ID
	}
	return doc
}

// ElasticSearchClient wraps olivere/elastic client.
type ElasticSearchClient struct {
	client *elastic.Client
	index  string
}

// NewElasticSearchClient creates a new client for Elasticsearch 7.x.
func NewElasticSearchClient(url string) (*ElasticSearchClient, error) {
	client, err := elastic.NewClient(
		elastic.SetURL(url),
		elastic.SetSniff(false), // Essential when using Docker or cloud
		elastic.SetHealthcheck(false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	return &ElasticSearchClient{client: client, index: EmployeeIndex}, nil
}

// IndexEmployee indexes an employee document using employee_id as ID.
func (es *ElasticSearchClient) IndexEmployee(ctx context.Context, e domain.Employee) error {
	_, err := es.client.Index().
		Index(es.index).
		Id(e.EmployeeID).
		BodyJson(NewEmployeeDoc(e)).
		Refresh("true"). // Make changes immediately searchable
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to index employee %s: %w", e.EmployeeID, err)
	}
	return nil
}

// DeleteEmployee removes an employee document. A missing document is not an error.
func (es *ElasticSearchClient) DeleteEmployee(ctx context.Context, employeeID string) error {
	_, err := es.client.Delete().
		Index(es.index).
		Id(employeeID).
		Refresh("true").
		Do(ctx)
	if err != nil && !elastic.IsNotFound(err) {
		return fmt.Errorf("failed to delete employee %s: %w", employeeID, err)
	}
	return nil
}

// SearchEmployees performs a full-text match on name, employee id and department.
func (es *ElasticSearchClient) SearchEmployees(ctx context.Context, text string, size int) ([]EmployeeDoc, error) {
	query := elastic.NewMultiMatchQuery(text, "name", "employee_id", "department").
		Fuzziness("AUTO")

	searchResult, err := es.client.Search().
		Index(es.index).
		Query(query).
		Size(size).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	employees := make([]EmployeeDoc, 0, len(searchResult.Hits.Hits))
	for _, item := range searchResult.Hits.Hits {
		var emp EmployeeDoc
		if err := json.Unmarshal(item.Source, &emp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal hit %s: %w", item.Id, err)
		}
		employees = append(employees, emp)
	}

	return employees, nil
}

// BulkIndexEmployees indexes docs in one bulk request, keyed by business id.
func (es *ElasticSearchClient) BulkIndexEmployees(ctx context.Context, docs []EmployeeDoc) error {
	bulkRequest := es.client.Bulk()

	for _, doc := range docs {
		req := elastic.NewBulkIndexRequest().
			Index(es.index).
			Id(doc.EmployeeID).
			Doc(doc)
		bulkRequest = bulkRequest.Add(req)
	}

	if bulkRequest.NumberOfActions() == 0 {
		return nil
	}

	bulkResponse, err := bulkRequest.Refresh("true").Do(ctx)
	if err != nil {
		return fmt.Errorf("bulk index failed: %w", err)
	}

	if failed := bulkResponse.Failed(); len(failed) > 0 && failed[0].Error != nil {
		return fmt.Errorf("bulk item %s failed: %s", failed[0].Id, failed[0].Error.Reason)
	}

	return nil
}

// ResetIndex drops the employee index if it exists.
func (es *ElasticSearchClient) ResetIndex(ctx context.Context) error {
	exists, err := es.client.IndexExists(es.index).Do(ctx)
	if err != nil {
		return fmt.Errorf("check index %s: %w", es.index, err)
	}
	if !exists {
		return nil
	}
	if _, err := es.client.DeleteIndex(es.index).Do(ctx); err != nil {
		return fmt.Errorf("delete index %s: %w", es.index, err)
	}
	return nil
}

// Ping reports whether the cluster answers on url.
func (es *ElasticSearchClient) Ping(ctx context.Context, url string) error {
	_, _, err := es.client.Ping(url).Do(ctx)
	return err
}
