// Package differ provides semantic comparison of CloudFormation templates.
package differ

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"sort"

	"gopkg.in/yaml.v3"

	cdk "github.com/cbroompearson/cdk"
)

// Options configures the differ.
type Options struct {
	// IgnoreOrder ignores array element order in comparisons
	IgnoreOrder bool
}

// Result contains the difference between two templates.
type Result struct {
	Diff    cdk.TemplateDiff
	Summary cdk.DiffSummary
}

// Empty reports whether the templates were equivalent.
func (r *Result) Empty() bool {
	return r.Summary.Total == 0 && len(r.Diff.Outputs) == 0
}

// Compare compares two CloudFormation templates and returns differences.
// old is the deployed or previous template, updated the newly synthesized one.
func Compare(old, updated *cdk.Template, opts Options) (*Result, error) {
	if old == nil || updated == nil {
		return nil, fmt.Errorf("compare: nil template")
	}
	result := &Result{}

	for name, def := range updated.Resources {
		if _, exists := old.Resources[name]; !exists {
			result.Diff.Added = append(result.Diff.Added, cdk.DiffEntry{Resource: name, Type: def.Type})
		}
	}

	for name, def := range old.Resources {
		def2, exists := updated.Resources[name]
		if !exists {
			result.Diff.Removed = append(result.Diff.Removed, cdk.DiffEntry{Resource: name, Type: def.Type})
			continue
		}
		if changes := compareResources(def, def2, opts); len(changes) > 0 {
			result.Diff.Modified = append(result.Diff.Modified, cdk.DiffEntry{
				Resource: name,
				Type:     def2.Type,
				Changes:  changes,
			})
		}
	}

	result.Diff.Outputs = compareOutputs(old.Outputs, updated.Outputs, opts)

	sortEntries(result.Diff.Added)
	sortEntries(result.Diff.Removed)
	sortEntries(result.Diff.Modified)

	result.Summary = cdk.DiffSummary{
		Added:    len(result.Diff.Added),
		Removed:  len(result.Diff.Removed),
		Modified: len(result.Diff.Modified),
	}
	result.Summary.Total = result.Summary.Added + result.Summary.Removed + result.Summary.Modified

	return result, nil
}

// CompareFiles compares two template files.
func CompareFiles(file1, file2 string, opts Options) (*Result, error) {
	t1, err := LoadTemplate(file1)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", file1, err)
	}

	t2, err := LoadTemplate(file2)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", file2, err)
	}

	return Compare(t1, t2, opts)
}

// LoadTemplate loads a CloudFormation template from a file.
func LoadTemplate(path string) (*cdk.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseTemplate(data)
}

// ParseTemplate decodes a JSON or YAML template body.
func ParseTemplate(data []byte) (*cdk.Template, error) {
	var template cdk.Template
	if err := json.Unmarshal(data, &template); err != nil {
		template = cdk.Template{}
		if err := yaml.Unmarshal(data, &template); err != nil {
			return nil, fmt.Errorf("failed to parse as JSON or YAML: %w", err)
		}
		// YAML decodes integers as int; align with the JSON form.
		for name, def := range template.Resources {
			def.Properties, _ = jsonRoundTrip(def.Properties).(map[string]any)
			template.Resources[name] = def
		}
		for name, out := range template.Outputs {
			out.Value = jsonRoundTrip(out.Value)
			template.Outputs[name] = out
		}
	}
	return &template, nil
}

func jsonRoundTrip(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

func compareResources(def1, def2 cdk.ResourceDef, opts Options) []string {
	var changes []string

	if def1.Type != def2.Type {
		changes = append(changes, fmt.Sprintf("Type changed: %s → %s", def1.Type, def2.Type))
	}

	changes = append(changes, compareProperties("", def1.Properties, def2.Properties, opts)...)

	if !equalStringSlices(sortedCopy(def1.DependsOn), sortedCopy(def2.DependsOn)) {
		changes = append(changes, "DependsOn changed")
	}
	if def1.DeletionPolicy != def2.DeletionPolicy {
		changes = append(changes, fmt.Sprintf("DeletionPolicy changed: %q → %q", def1.DeletionPolicy, def2.DeletionPolicy))
	}

	return changes
}

// compareProperties recursively compares property maps. Nested maps are
// reported by dotted path; any other difference is reported at its key.
func compareProperties(prefix string, props1, props2 map[string]any, opts Options) []string {
	var changes []string

	for key, val2 := range props2 {
		path := joinPath(prefix, key)
		val1, exists := props1[key]
		if !exists {
			changes = append(changes, path+" added")
			continue
		}
		m1, ok1 := val1.(map[string]any)
		m2, ok2 := val2.(map[string]any)
		if ok1 && ok2 && !isIntrinsic(m1) && !isIntrinsic(m2) {
			changes = append(changes, compareProperties(path, m1, m2, opts)...)
			continue
		}
		if !deepEqual(val1, val2, opts) {
			changes = append(changes, path+" modified")
		}
	}

	for key := range props1 {
		if _, exists := props2[key]; !exists {
			changes = append(changes, joinPath(prefix, key)+" removed")
		}
	}

	sort.Strings(changes)
	return changes
}

func compareOutputs(old, updated map[string]cdk.Output, opts Options) []string {
	var changes []string
	for name, out := range updated {
		prev, ok := old[name]
		switch {
		case !ok:
			changes = append(changes, name+" added")
		case !deepEqual(prev.Value, out.Value, opts) || !reflect.DeepEqual(prev.Export, out.Export):
			changes = append(changes, name+" modified")
		}
	}
	for name := range old {
		if _, ok := updated[name]; !ok {
			changes = append(changes, name+" removed")
		}
	}
	sort.Strings(changes)
	return changes
}

// isIntrinsic reports whether m is a single-key intrinsic function such as
// {"Ref": ...} or {"Fn::GetAtt": ...}, which is compared as a whole.
func isIntrinsic(m map[string]any) bool {
	if len(m) != 1 {
		return false
	}
	for k := range m {
		return k == "Ref" || len(k) > 4 && k[:4] == "Fn::"
	}
	return false
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func deepEqual(a, b any, opts Options) bool {
	if opts.IgnoreOrder {
		a = normalizeValue(a)
		b = normalizeValue(b)
	}
	return reflect.DeepEqual(a, b)
}

// normalizeValue sorts every slice by the JSON encoding of its elements.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case []any:
		result := make([]any, len(val))
		keys := make([]string, len(val))
		for i, item := range val {
			result[i] = normalizeValue(item)
		}
		order := make([]int, len(val))
		for i := range order {
			order[i] = i
			data, _ := json.Marshal(result[i])
			keys[i] = string(data)
		}
		sort.SliceStable(order, func(i, j int) bool { return keys[order[i]] < keys[order[j]] })
		sorted := make([]any, len(val))
		for i, idx := range order {
			sorted[i] = result[idx]
		}
		return sorted
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, v := range val {
			result[k] = normalizeValue(v)
		}
		return result
	default:
		return v
	}
}

func sortedCopy(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}

func equalStringSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sortEntries(entries []cdk.DiffEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Resource < entries[j].Resource
	})
}
