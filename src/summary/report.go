package summary

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/kaptinlin/jsonschema"
)

// ReportKeys are the facets of a correlation report, in output order.
var ReportKeys = []string{"impactful", "alignment", "patterns", "synergy", "significance"}

var (
	// ErrIncompleteReport means the reply was not valid JSON and fewer than
	// all report keys could be recovered from it.
	ErrIncompleteReport = errors.New("failed to extract all report fields")
	// ErrEmptyReport means the reply parsed but carried no report text.
	ErrEmptyReport = errors.New("report reply contained no text")
)

// reportSchemaJSON only requires an object. Facets that are null, numbers or
// missing are skipped after decoding.
const reportSchemaJSON = `{"type": "object"}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func reportSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		schema, schemaErr = compiler.Compile([]byte(reportSchemaJSON))
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile report schema: %w", schemaErr)
		}
	})
	return schema, schemaErr
}

var reportPatterns = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(ReportKeys))
	for _, k := range ReportKeys {
		m[k] = regexp.MustCompile(`"` + k + `":\s*"([^"]*)"`)
	}
	return m
}()

// ParseReport decodes the five-facet report object and joins the facet
// values with single spaces in ReportKeys order, skipping absent ones.
// Non-string facets are skipped. Replies that are not a JSON object are
// scanned per key; all five keys must then be recovered.
func ParseReport(raw string) (string, error) {
	values, err := strictReport(raw)
	if err != nil {
		values, err = recoverReport(raw)
		if err != nil {
			return "", err
		}
	}

	var parts []string
	for _, k := range ReportKeys {
		if v, ok := values[k]; ok && strings.TrimSpace(v) != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return "", ErrEmptyReport
	}
	return strings.Join(parts, " "), nil
}

func strictReport(raw string) (map[string]string, error) {
	data, ok := compact(raw)
	if !ok {
		return nil, errors.New("reply is not valid JSON")
	}

	s, err := reportSchema()
	if err != nil {
		return nil, err
	}
	result := s.ValidateJSON(data)
	if !result.IsValid() {
		return nil, fmt.Errorf("schema validation failed: %v", result.Errors)
	}

	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	values := make(map[string]string, len(ReportKeys))
	for _, k := range ReportKeys {
		if v, ok := obj[k].(string); ok {
			values[k] = v
		}
	}
	return values, nil
}

func recoverReport(raw string) (map[string]string, error) {
	values := make(map[string]string, len(ReportKeys))
	for _, k := range ReportKeys {
		if m := reportPatterns[k].FindStringSubmatch(raw); m != nil {
			values[k] = m[1]
		}
	}
	if len(values) < len(ReportKeys) {
		return nil, fmt.Errorf("%w: recovered %d of %d", ErrIncompleteReport, len(values), len(ReportKeys))
	}
	return values, nil
}
