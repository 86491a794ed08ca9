package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

type resourceEndpoints struct {
	GetURL      string `yaml:"get_url"`
	GetGroupURL string `yaml:"get_group_url,omitempty"`
	CreateURL   string `yaml:"create_url"`
	UpdateURL   string `yaml:"update_url"`
	DeleteURL   string `yaml:"delete_url"`
}

type endpointsFile struct {
	Employee   resourceEndpoints `yaml:"employee"`
	Department resourceEndpoints `yaml:"department"`
}

// ExternalAPIConfig is the directory of public endpoint URLs handed to
// clients. It is built once at startup and only read afterwards.
type ExternalAPIConfig struct {
	endpoints map[string]string
}

// LoadExternalAPIConfig reads the endpoint directory from a YAML file. Entries
// missing from the file, or the whole file when path is empty, are derived
// from baseURL.
func LoadExternalAPIConfig(path, baseURL string) (*ExternalAPIConfig, error) {
	var file endpointsFile
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read endpoints config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return nil, fmt.Errorf("failed to parse endpoints config: %w", err)
		}
	}
	return newExternalAPIConfig(file, baseURL), nil
}

func newExternalAPIConfig(file endpointsFile, baseURL string) *ExternalAPIConfig {
	employees := baseURL + "/api/v1/employees"
	departments := baseURL + "/api/v1/departments"

	pick := func(v, fallback string) string {
		if v != "" {
			return v
		}
		return fallback
	}

	return &ExternalAPIConfig{endpoints: map[string]string{
		"getEmployees":        pick(file.Employee.GetURL, employees),
		"getGroupedEmployees": pick(file.Employee.GetGroupURL, employees+"/group"),
		"createEmployee":      pick(file.Employee.CreateURL, employees+"/create"),
		"updateEmployee":      pick(file.Employee.UpdateURL, employees+"/update"),
		"deleteEmployee":      pick(file.Employee.DeleteURL, employees+"/delete"),
		"getDepartments":      pick(file.Department.GetURL, departments),
		"createDepartment":    pick(file.Department.CreateURL, departments),
		"updateDepartment":    pick(file.Department.UpdateURL, departments),
		"deleteDepartment":    pick(file.Department.DeleteURL, departments),
	}}
}

// Endpoints returns a copy of the directory keyed by operation name.
func (c *ExternalAPIConfig) Endpoints() map[string]string {
	out := make(map[string]string, len(c.endpoints))
	for k, v := range c.endpoints {
		out[k] = v
	}
	return out
}

// Endpoint returns the URL for one operation.
func (c *ExternalAPIConfig) Endpoint(name string) (string, bool) {
	v, ok := c.endpoints[name]
	return v, ok
}
