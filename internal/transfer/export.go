package transfer

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/siddu-catalog/internal/model"
)

// Scope picks which movies an export covers.
type Scope string

const (
	ScopeAll      Scope = "all"
	ScopeFiltered Scope = "filtered"
	ScopeSelected Scope = "selected"
)

// ParseScope accepts all, filtered or selected; empty means all.
func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case "", ScopeAll:
		return ScopeAll, nil
	case ScopeFiltered:
		return ScopeFiltered, nil
	case ScopeSelected:
		return ScopeSelected, nil
	}
	return "", &ValidationError{Index: -1, Field: "scope", Message: fmt.Sprintf("unknown export scope %q", s)}
}

// ExportOptions shape the export document.
type ExportOptions struct {
	Scope            Scope
	IncludeMetadata  bool
	IncludeRelations bool
	Pretty           bool
}

// DefaultExportOptions matches the export dialog defaults.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{Scope: ScopeAll, IncludeMetadata: true, IncludeRelations: true, Pretty: true}
}

var (
	metadataFields = []string{"createdAt", "updatedAt"}
	relationFields = []string{"cast", "crew", "awards", "streamingLinks"}
)

type exportDoc struct {
	ExportDate string           `json:"exportDate"`
	Type       string           `json:"type"`
	Count      int              `json:"count"`
	Data       []map[string]any `json:"data"`
}

// Export renders movies as an export document.  The caller resolves the
// scope into the movie list.
func Export(movies []model.Movie, opts ExportOptions, now time.Time) ([]byte, error) {
	data := make([]map[string]any, 0, len(movies))
	for _, m := range movies {
		raw, err := json.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("export movie %s: %w", m.ID, err)
		}
		var obj map[string]any
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, fmt.Errorf("export movie %s: %w", m.ID, err)
		}
		if !opts.IncludeMetadata {
			for _, k := range metadataFields {
				delete(obj, k)
			}
		}
		if !opts.IncludeRelations {
			for _, k := range relationFields {
				delete(obj, k)
			}
		}
		data = append(data, obj)
	}
	doc := exportDoc{
		ExportDate: now.UTC().Format("2006-01-02T15:04:05.000Z"),
		Type:       "movies",
		Count:      len(data),
		Data:       data,
	}
	if opts.Pretty {
		return json.MarshalIndent(doc, "", "  ")
	}
	return json.Marshal(doc)
}

// FileName is the download name of an export made at now.
func FileName(now time.Time) string {
	return "movies-export-" + now.UTC().Format("2006-01-02") + ".json"
}
