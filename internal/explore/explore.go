// Package explore prints the shape of raw API responses, as a tool for
// learning how endpoints are represented.
package explore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/okian/roboscout/internal/domain/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Sentinel error kinds for this package.
var (
	ErrUnknownEndpoint = errors.New("unknown endpoint")
	ErrMissingID       = errors.New("endpoint requires an id")
	ErrNoResponse      = errors.New("no response received")
)

const maxDepth = 3

// Getter fetches one raw API resource.
type Getter interface {
	Get(ctx context.Context, path string, query url.Values) ([]byte, model.FetchReason, error)
}

// Request selects an endpoint and its filters.
type Request struct {
	Endpoint string
	ID       string
	Filters  map[string]string
	Save     bool
}

// Summary is what an exploration found.
type Summary struct {
	Path      string
	Meta      map[string]any
	Items     int
	FirstKeys []string
	SavedTo   string
}

// Explorer prints response structure to out and optionally saves responses.
type Explorer struct {
	getter Getter
	out    io.Writer
	dir    string
	now    func() time.Time
}

// New creates an Explorer saving responses under dir.
func New(getter Getter, out io.Writer, dir string) *Explorer {
	return &Explorer{getter: getter, out: out, dir: dir, now: time.Now}
}

// WithClock replaces the clock used for saved file names.
func (e *Explorer) WithClock(now func() time.Time) *Explorer {
	e.now = now
	return e
}

// Explore fetches the first page of an endpoint and describes it.
func (e *Explorer) Explore(ctx context.Context, req Request) (Summary, error) {
	ep, found := endpoints[req.Endpoint]
	if !found {
		return Summary{}, fmt.Errorf("%w: %q (known: %s)", ErrUnknownEndpoint, req.Endpoint, strings.Join(Endpoints(), ", "))
	}
	if ep.needsID && strings.TrimSpace(req.ID) == "" {
		return Summary{}, fmt.Errorf("%w: %s", ErrMissingID, req.Endpoint)
	}

	query := url.Values{}
	var filterNames []string
	for _, name := range ep.filters {
		if v := strings.TrimSpace(req.Filters[name]); v != "" {
			query.Set(name, v)
			filterNames = append(filterNames, name)
		}
	}

	sum := Summary{Path: ep.resolve(strings.TrimSpace(req.ID))}
	e.printf("Exploring endpoint: %s\n", strings.TrimPrefix(sum.Path, "/"))
	if len(filterNames) > 0 {
		parts := make([]string, 0, len(filterNames))
		for _, name := range filterNames {
			parts = append(parts, name+"="+query.Get(name))
		}
		e.printf("Parameters: %s\n", strings.Join(parts, ", "))
	}

	body, reason, err := e.getter.Get(ctx, sum.Path, query)
	if reason != model.FetchOK {
		e.printf("No response received (%s).\n", reason)
		if err == nil {
			err = fmt.Errorf("%w: %s", ErrNoResponse, reason)
		}
		return sum, err
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return sum, fmt.Errorf("decode response: %w", err)
	}
	obj, _ := doc.(map[string]any)

	if meta, ok := obj["meta"].(map[string]any); ok {
		sum.Meta = meta
		for _, k := range []string{"total", "per_page", "current_page", "last_page", "first_page_url"} {
			e.printf("%s: %v\n", strings.ReplaceAll(k, "_", " "), meta[k])
		}
	}

	first := obj
	if data, ok := obj["data"].([]any); ok {
		sum.Items = len(data)
		first = nil
		if len(data) > 0 {
			first, _ = data[0].(map[string]any)
		}
	}
	if first != nil {
		e.printf("\nData structure (first item):\n")
		sum.FirstKeys = sortedKeys(first)
		e.printKeys(first, "", 0)
	}

	if req.Save {
		path, err := e.save(req.Endpoint, sum.Path, query, filterNames, doc)
		if err != nil {
			return sum, err
		}
		sum.SavedTo = path
		e.printf("Response saved to %s\n", path)
	}
	return sum, nil
}

func (e *Explorer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(e.out, format, args...)
}

// printKeys prints nested keys with their JSON kind, up to maxDepth levels.
func (e *Explorer) printKeys(v any, prefix string, depth int) {
	if depth >= maxDepth {
		e.printf("%s...\n", prefix)
		return
	}
	switch t := v.(type) {
	case map[string]any:
		for _, k := range sortedKeys(t) {
			child := t[k]
			if nonEmptyContainer(child) {
				e.printf("%s%s:\n", prefix, k)
				e.printKeys(child, prefix+"  ", depth+1)
				continue
			}
			e.printf("%s%s: %s\n", prefix, k, kind(child))
		}
	case []any:
		if len(t) > 0 {
			e.printf("%s[0]:\n", prefix)
			e.printKeys(t[0], prefix+"  ", depth+1)
		}
	}
}

func (e *Explorer) save(name, path string, query url.Values, filterNames []string, doc any) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	file := strings.ReplaceAll(strings.TrimPrefix(path, "/"), "/", "_")
	for _, n := range filterNames {
		file += "_" + n + "_" + query.Get(n)
	}
	file += "_" + e.now().Format("20060102_150405") + ".json"
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode %s response: %w", name, err)
	}
	full := filepath.Join(e.dir, file)
	if err := os.WriteFile(full, out, 0o644); err != nil {
		return "", fmt.Errorf("save %s response: %w", name, err)
	}
	return full, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func nonEmptyContainer(v any) bool {
	switch t := v.(type) {
	case map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	}
	return false
}

func kind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "bool"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}
