package service

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/ludo-technologies/ccgate/domain"
	"github.com/ludo-technologies/ccgate/internal/textenc"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

// schemaBaseURL only names the embedded resources; nothing is fetched from it
const schemaBaseURL = "https://ccgate.dev/schemas/"

// schemaFiles maps each layout to its embedded schema
var schemaFiles = map[domain.ReportLayout]string{
	domain.LayoutFlat:   "report_flat.schema.json",
	domain.LayoutNested: "report_nested.schema.json",
}

// ReportLoaderImpl implements domain.ReportLoader
type ReportLoaderImpl struct {
	layout         domain.ReportLayout
	detectEncoding bool
	schema         *jsonschema.Schema
}

// NewReportLoader creates a loader for the given layout
func NewReportLoader(layout domain.ReportLayout, detectEncoding bool) (*ReportLoaderImpl, error) {
	schema, err := compileReportSchema(layout)
	if err != nil {
		return nil, err
	}

	return &ReportLoaderImpl{
		layout:         layout,
		detectEncoding: detectEncoding,
		schema:         schema,
	}, nil
}

// compileReportSchema compiles the embedded schema of layout
func compileReportSchema(layout domain.ReportLayout) (*jsonschema.Schema, error) {
	name, ok := schemaFiles[layout]
	if !ok {
		return nil, domain.NewConfigError(fmt.Sprintf("unknown report layout '%s'", layout), nil)
	}

	raw, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		return nil, fmt.Errorf("failed to read report schema: %w", err)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid report schema %s: %w", name, err)
	}

	url := schemaBaseURL + name
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("invalid report schema %s: %w", name, err)
	}
	return compiler.Compile(url)
}

// Load reads, decodes and validates the report at path
func (l *ReportLoaderImpl) Load(ctx context.Context, path string) (*domain.MetricsReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.NewFileNotFoundError(path, err)
		}
		return nil, domain.NewInvalidInputError(fmt.Sprintf("cannot read report %s", path), err)
	}

	data, encoding, err := textenc.ToUTF8(raw, l.detectEncoding)
	if err != nil {
		return nil, domain.NewEncodingError(path, err)
	}

	if err := l.validate(data); err != nil {
		return nil, domain.NewParseError(path, err)
	}

	entries, err := l.decode(data)
	if err != nil {
		return nil, domain.NewParseError(path, err)
	}

	return &domain.MetricsReport{
		Source:   path,
		Layout:   l.layout,
		Entries:  entries,
		Encoding: encoding,
	}, nil
}

// validate checks data is well-formed JSON matching the layout's schema
func (l *ReportLoaderImpl) validate(data []byte) error {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := l.schema.Validate(inst); err != nil {
		return fmt.Errorf("report does not match the %s layout: %w", l.layout, err)
	}
	return nil
}

// decode walks the document with a token decoder so entries keep their document order
func (l *ReportLoaderImpl) decode(data []byte) ([]domain.FileEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	if l.layout == domain.LayoutFlat {
		return decodeFileMapping(dec)
	}

	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	var entries []domain.FileEntry
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		if key != domain.NestedFilesKey {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, err
			}
			continue
		}
		if entries, err = decodeFileMapping(dec); err != nil {
			return nil, err
		}
	}

	return entries, expectDelim(dec, '}')
}

// decodeFileMapping reads a {path: metrics} object. A repeated path keeps its
// first position and its last record.
func decodeFileMapping(dec *json.Decoder) ([]domain.FileEntry, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	entries := []domain.FileEntry{}
	index := make(map[string]int)

	for dec.More() {
		path, err := readKey(dec)
		if err != nil {
			return nil, err
		}

		var record map[string]json.RawMessage
		if err := dec.Decode(&record); err != nil {
			return nil, fmt.Errorf("metrics of %s: %w", path, err)
		}

		entry := domain.FileEntry{
			Path:    path,
			Metrics: numericMetrics(record),
			Fields:  len(record),
		}

		if i, seen := index[path]; seen {
			entries[i] = entry
			continue
		}
		index[path] = len(entries)
		entries = append(entries, entry)
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return entries, nil
}

// numericMetrics keeps the numeric values of record. Nulls count as absent.
func numericMetrics(record map[string]json.RawMessage) domain.FileMetrics {
	metrics := make(domain.FileMetrics, len(record))
	for name, raw := range record {
		var v *float64
		if err := json.Unmarshal(raw, &v); err != nil || v == nil {
			continue
		}
		metrics[name] = *v
	}
	return metrics
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("unexpected end of report, expected %q", want)
		}
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}
