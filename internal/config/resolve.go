package config

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/spf13/cast"
)

// MaxAzCount is the largest vpcAzCount accepted.
const MaxAzCount = 6

// StageProperties is the merged stage and global configuration of one stack.
// It is passed by value and never mutated after Resolve returns.
type StageProperties struct {
	Stage       string
	ServiceName string
	AppID       string
	CostCentre  string
	DCL         string
	Name        string

	CIDR          string
	VpcAzCount    int
	ZoneDomain    string
	SiteDomain    string
	APIHealthPath string
	TCAHealthPath string

	TrustedCIDR    string
	CertificateARN string

	// Region and Account are optional; empty means "whatever the
	// provisioning credentials resolve to".
	Region  string
	Account string
}

// stageKeys must be present in the stage mapping or globally.
var stageKeys = []string{
	"cidr", "vpcAzCount", "zoneDomain", "siteDomain", "apiHealthPath", "tcaHealthPath",
}

// sharedKeys are usually global but may be overridden per stage.
var sharedKeys = []string{
	"serviceName", "appId", "costCentre", "dcl", "Name", "trustedCidr", "certificateArn",
}

// Resolve merges the stage mapping of src with its global keys. An empty
// stage falls back to the "stage" key of src. Stage-level values win.
func Resolve(src Source, stage string) (StageProperties, error) {
	if stage == "" {
		if v, ok := src.Get("stage"); ok {
			stage = strings.TrimSpace(cast.ToString(v))
		}
	}
	if stage == "" {
		return StageProperties{}, &MissingParameterError{Key: "stage"}
	}

	stageSrc, ok := src.Sub(stage)
	if !ok {
		return StageProperties{}, &MissingParameterError{Key: stage, Stage: stage}
	}

	r := resolver{global: src, stage: stageSrc, name: stage}
	for _, key := range append(append([]string{}, stageKeys...), sharedKeys...) {
		if _, err := r.require(key); err != nil {
			return StageProperties{}, err
		}
	}

	props := StageProperties{
		Stage:          stage,
		ServiceName:    r.str("serviceName"),
		AppID:          r.str("appId"),
		CostCentre:     r.str("costCentre"),
		DCL:            r.str("dcl"),
		Name:           r.str("Name"),
		CIDR:           r.str("cidr"),
		ZoneDomain:     strings.TrimSuffix(r.str("zoneDomain"), "."),
		SiteDomain:     r.str("siteDomain"),
		APIHealthPath:  r.str("apiHealthPath"),
		TCAHealthPath:  r.str("tcaHealthPath"),
		TrustedCIDR:    r.str("trustedCidr"),
		CertificateARN: r.str("certificateArn"),
		Region:         r.str("region"),
		Account:        r.str("account"),
	}

	raw, _ := r.value("vpcAzCount")
	count, err := cast.ToIntE(raw)
	if err != nil {
		return StageProperties{}, &InvalidParameterError{Key: "vpcAzCount", Value: raw, Reason: "not an integer"}
	}
	if count < 1 || count > MaxAzCount {
		return StageProperties{}, &InvalidParameterError{
			Key: "vpcAzCount", Value: raw, Reason: fmt.Sprintf("must be between 1 and %d", MaxAzCount),
		}
	}
	props.VpcAzCount = count

	if err := validateCIDR("cidr", props.CIDR, 16, 28); err != nil {
		return StageProperties{}, err
	}
	if err := validateCIDR("trustedCidr", props.TrustedCIDR, 0, 32); err != nil {
		return StageProperties{}, err
	}
	return props, nil
}

// HealthPath returns the stage health-check path named by key
// ("apiHealthPath" or "tcaHealthPath").
func (p StageProperties) HealthPath(key string) (string, bool) {
	switch strings.ToLower(key) {
	case "apihealthpath":
		return p.APIHealthPath, true
	case "tcahealthpath":
		return p.TCAHealthPath, true
	}
	return "", false
}

type resolver struct {
	global Source
	stage  Source
	name   string
}

func (r resolver) value(key string) (any, bool) {
	if v, ok := r.stage.Get(key); ok && !isEmpty(v) {
		return v, true
	}
	if v, ok := r.global.Get(key); ok && !isEmpty(v) {
		return v, true
	}
	return nil, false
}

func (r resolver) require(key string) (any, error) {
	v, ok := r.value(key)
	if !ok {
		return nil, &MissingParameterError{Key: key, Stage: r.name}
	}
	return v, nil
}

func (r resolver) str(key string) string {
	v, _ := r.value(key)
	return strings.TrimSpace(cast.ToString(v))
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func validateCIDR(key, value string, minBits, maxBits int) error {
	prefix, err := netip.ParsePrefix(value)
	if err != nil || !prefix.Addr().Is4() {
		return &InvalidParameterError{Key: key, Value: value, Reason: "not an IPv4 CIDR block"}
	}
	if prefix.Bits() < minBits || prefix.Bits() > maxBits {
		return &InvalidParameterError{
			Key: key, Value: value, Reason: fmt.Sprintf("prefix length must be between /%d and /%d", minBits, maxBits),
		}
	}
	if prefix.Masked() != prefix {
		return &InvalidParameterError{Key: key, Value: value, Reason: "host bits set"}
	}
	return nil
}
