// Package config resolves the per-stage parameters of a stack.
//
// A Source is the raw context mapping read from a cdk.json-style file: global
// scalars (serviceName, appId, ...) next to one mapping per stage. Keys are
// matched case-insensitively because viper folds them to lower case.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding global keys,
// e.g. CDK_SERVICENAME or CDK_STAGE.
const EnvPrefix = "CDK"

// Source is a raw configuration mapping.
type Source map[string]any

// globalKeys may be overridden from the environment.
var globalKeys = []string{
	"stage", "serviceName", "appId", "costCentre", "dcl", "Name",
	"trustedCidr", "certificateArn", "account", "region",
}

// Load reads a context file (JSON or YAML, optionally wrapped in a top-level
// "context" key) and applies overrides given as key=value pairs. Dotted keys
// address nested values, e.g. "dev.cidr=10.1.0.0/16".
func Load(path string, overrides []string) (Source, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var parseErr viper.ConfigParseError
		if errors.As(err, &parseErr) {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if v.IsSet("context") {
		v = v.Sub("context")
		if v == nil {
			return nil, fmt.Errorf("%s: \"context\" must be a mapping", path)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	src := Source(v.AllSettings())
	for _, key := range globalKeys {
		if val := v.Get(key); val != nil {
			src[strings.ToLower(key)] = val
		}
	}

	for _, kv := range overrides {
		if err := src.Set(kv); err != nil {
			return nil, err
		}
	}
	return src, nil
}

// Set applies one key=value override.
func (s Source) Set(kv string) error {
	key, value, ok := strings.Cut(kv, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("invalid context override %q: expected key=value", kv)
	}

	parts := strings.Split(strings.ToLower(key), ".")
	m := s
	for _, p := range parts[:len(parts)-1] {
		next, ok := m.lookup(p)
		child, isMap := asMap(next)
		if !ok || !isMap {
			child = Source{}
		}
		m[p] = map[string]any(child)
		m = child
	}
	m[parts[len(parts)-1]] = value
	return nil
}

// Get returns the value stored under key, ignoring case.
func (s Source) Get(key string) (any, bool) {
	return s.lookup(key)
}

// Sub returns the nested mapping stored under key.
func (s Source) Sub(key string) (Source, bool) {
	v, ok := s.lookup(key)
	if !ok {
		return nil, false
	}
	return asMap(v)
}

func (s Source) lookup(key string) (any, bool) {
	if v, ok := s[key]; ok {
		return v, true
	}
	for k, v := range s {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

func asMap(v any) (Source, bool) {
	switch m := v.(type) {
	case Source:
		return m, true
	case map[string]any:
		return Source(m), true
	case map[any]any:
		out := make(Source, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}
