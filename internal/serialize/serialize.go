// Package serialize provides CloudFormation-specific serialization utilities.
package serialize

import (
	"encoding/json"
	"reflect"
	"sort"
	"strings"
	"unicode"
)

// Resource serializes a resource struct to CloudFormation properties.
// Field names come from json tags, zero values are omitted, and values
// implementing json.Marshaler (intrinsics, policy documents) are embedded
// in their marshaled form.
func Resource(v any) (map[string]any, error) {
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return nil, nil
	}

	result := make(map[string]any)
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		fieldVal := val.Field(i)

		// Skip unexported fields
		if !field.IsExported() {
			continue
		}

		// Get the JSON tag or use field name
		name := getFieldName(field)
		if name == "-" {
			continue
		}

		// Skip zero values unless explicitly required
		if isZeroValue(fieldVal) {
			continue
		}

		// Serialize the field value
		serialized, err := serializeValue(fieldVal)
		if err != nil {
			return nil, err
		}

		if serialized != nil {
			result[name] = serialized
		}
	}

	return result, nil
}

// getFieldName returns the JSON field name for a struct field.
func getFieldName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" {
		return field.Name
	}

	parts := strings.Split(tag, ",")
	name := parts[0]
	if name == "" {
		return field.Name
	}
	return name
}

// isZeroValue returns true if the value is the zero value for its type.
func isZeroValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Slice, reflect.Map:
		return v.IsNil() || v.Len() == 0
	case reflect.String:
		return v.String() == ""
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Struct:
		// Check if it has an IsZero method
		if v.CanInterface() {
			if zeroer, ok := v.Interface().(interface{ IsZero() bool }); ok {
				return zeroer.IsZero()
			}
		}
		return false
	default:
		return false
	}
}

// serializeValue converts a reflect.Value to a JSON-compatible value.
func serializeValue(v reflect.Value) (any, error) {
	if !v.IsValid() {
		return nil, nil
	}

	// Handle pointers
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, nil
		}
		return serializeValue(v.Elem())
	}

	// Handle interfaces
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, nil
		}
		return serializeValue(v.Elem())
	}

	// Check if the value implements json.Marshaler
	if v.CanInterface() {
		if marshaler, ok := v.Interface().(json.Marshaler); ok {
			data, err := marshaler.MarshalJSON()
			if err != nil {
				return nil, err
			}
			var result any
			if err := json.Unmarshal(data, &result); err != nil {
				return nil, err
			}
			return result, nil
		}
	}

	switch v.Kind() {
	case reflect.Struct:
		return Resource(v.Interface())

	case reflect.Slice:
		if v.Len() == 0 {
			return nil, nil
		}
		result := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			elem, err := serializeValue(v.Index(i))
			if err != nil {
				return nil, err
			}
			result[i] = elem
		}
		return result, nil

	case reflect.Map:
		if v.Len() == 0 {
			return nil, nil
		}
		result := make(map[string]any)
		iter := v.MapRange()
		for iter.Next() {
			key := iter.Key().String()
			val, err := serializeValue(iter.Value())
			if err != nil {
				return nil, err
			}
			result[key] = val
		}
		return result, nil

	case reflect.String:
		return v.String(), nil

	case reflect.Bool:
		return v.Bool(), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint(), nil

	case reflect.Float32, reflect.Float64:
		return v.Float(), nil

	default:
		// Fall back to JSON marshaling
		data, err := json.Marshal(v.Interface())
		if err != nil {
			return nil, err
		}
		var result any
		if err := json.Unmarshal(data, &result); err != nil {
			return nil, err
		}
		return result, nil
	}
}

// ToPascalCase converts snake_case or kebab-case to PascalCase.
// e.g., "oculus-dev-vpc" -> "OculusDevVpc"
func ToPascalCase(s string) string {
	var result strings.Builder
	capitalizeNext := true

	for _, r := range s {
		if r == '_' || r == '-' || r == '.' || r == '/' || unicode.IsSpace(r) {
			capitalizeNext = true
			continue
		}
		if capitalizeNext {
			result.WriteRune(unicode.ToUpper(r))
			capitalizeNext = false
		} else {
			result.WriteRune(r)
		}
	}

	return result.String()
}

// References walks serialized properties and returns the logical IDs named
// by Ref and by Fn::GetAtt, each sorted and de-duplicated. Pseudo-parameters
// (AWS::Region, ...) are skipped.
func References(props map[string]any) (refs, atts []string) {
	refSet := make(map[string]bool)
	attSet := make(map[string]bool)
	collectReferences(props, refSet, attSet)
	return sortedKeys(refSet), sortedKeys(attSet)
}

func collectReferences(v any, refs, atts map[string]bool) {
	switch val := v.(type) {
	case map[string]any:
		if name, ok := val["Ref"].(string); ok && len(val) == 1 {
			if !strings.HasPrefix(name, "AWS::") {
				refs[name] = true
			}
			return
		}
		if args, ok := val["Fn::GetAtt"]; ok && len(val) == 1 {
			switch a := args.(type) {
			case []any:
				if len(a) > 0 {
					if name, ok := a[0].(string); ok {
						atts[name] = true
					}
				}
			case []string:
				if len(a) > 0 {
					atts[a[0]] = true
				}
			case string:
				name, _, _ := strings.Cut(a, ".")
				atts[name] = true
			}
			return
		}
		for _, child := range val {
			collectReferences(child, refs, atts)
		}
	case []any:
		for _, child := range val {
			collectReferences(child, refs, atts)
		}
	}
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Normalize round-trips props through encoding/json so that the result is
// identical to a template read back from disk (numbers become float64).
func Normalize(props map[string]any) (map[string]any, error) {
	if props == nil {
		return nil, nil
	}
	data, err := json.Marshal(props)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
