package config

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Defaults applied to microservice entries that leave a field unset.
const (
	DefaultDesiredCount     = 1
	DefaultMaxCapacity      = 5
	DefaultTargetCPUPercent = 50
	DefaultCPU              = 256
	DefaultMemoryMiB        = 512
	DefaultImageTag         = "latest"
	DefaultHealthCheckPath  = "/"
)

// MicroserviceSpec describes one container service behind the load balancer.
//
// An empty PathPattern marks the default (catch-all) rule of the listener;
// ListenerPriority must then be zero.
type MicroserviceSpec struct {
	ID               string `mapstructure:"id"`
	ContainerPort    int    `mapstructure:"containerPort"`
	DesiredCount     int    `mapstructure:"desiredCount"`
	MaxCapacity      int    `mapstructure:"maxCapacity"`
	TargetCPUPercent int    `mapstructure:"targetCpuPercent"`
	CPU              int    `mapstructure:"cpu"`
	MemoryMiB        int    `mapstructure:"memoryMiB"`
	ImageRepository  string `mapstructure:"imageRepository"`
	ImageTag         string `mapstructure:"imageTag"`
	PathPattern      string `mapstructure:"pathPattern"`
	HealthCheckPath  string `mapstructure:"healthCheckPath"`
	ListenerPriority int    `mapstructure:"listenerPriority"`
}

// IsDefault reports whether the service takes the listener default rule.
func (m MicroserviceSpec) IsDefault() bool {
	return m.PathPattern == ""
}

// ResolveMicroservices decodes the "microservices" list of src. A stage
// mapping may carry its own list, which replaces the global one. Health-check
// paths of the form "$apiHealthPath" are read from props.
func ResolveMicroservices(src Source, props StageProperties) ([]MicroserviceSpec, error) {
	raw, ok := microservicesRaw(src, props.Stage)
	if !ok {
		return nil, &MissingParameterError{Key: "microservices", Stage: props.Stage}
	}
	items, ok := raw.([]any)
	if !ok || len(items) == 0 {
		return nil, &InvalidParameterError{Key: "microservices", Value: raw, Reason: "must be a non-empty list"}
	}

	specs := make([]MicroserviceSpec, 0, len(items))
	for i, item := range items {
		var spec MicroserviceSpec
		if err := mapstructure.WeakDecode(item, &spec); err != nil {
			return nil, fmt.Errorf("decoding microservices[%d]: %w", i, err)
		}
		spec, err := normalize(spec, i, props)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func microservicesRaw(src Source, stage string) (any, bool) {
	if stageSrc, ok := src.Sub(stage); ok {
		if v, ok := stageSrc.Get("microservices"); ok && v != nil {
			return v, true
		}
	}
	v, ok := src.Get("microservices")
	return v, ok && v != nil
}

func normalize(spec MicroserviceSpec, i int, props StageProperties) (MicroserviceSpec, error) {
	key := func(field string) string { return fmt.Sprintf("microservices[%d].%s", i, field) }

	spec.ID = strings.TrimSpace(spec.ID)
	if spec.ID == "" {
		return spec, &MissingParameterError{Key: key("id"), Stage: props.Stage}
	}
	if spec.ImageRepository == "" {
		return spec, &MissingParameterError{Key: key("imageRepository"), Stage: props.Stage}
	}
	if spec.ContainerPort < 1 || spec.ContainerPort > 65535 {
		return spec, &InvalidParameterError{Key: key("containerPort"), Value: spec.ContainerPort, Reason: "must be a TCP port"}
	}

	if spec.DesiredCount == 0 {
		spec.DesiredCount = DefaultDesiredCount
	}
	if spec.MaxCapacity == 0 {
		spec.MaxCapacity = DefaultMaxCapacity
	}
	if spec.TargetCPUPercent == 0 {
		spec.TargetCPUPercent = DefaultTargetCPUPercent
	}
	if spec.CPU == 0 {
		spec.CPU = DefaultCPU
	}
	if spec.MemoryMiB == 0 {
		spec.MemoryMiB = DefaultMemoryMiB
	}
	if spec.ImageTag == "" {
		spec.ImageTag = DefaultImageTag
	}

	if spec.DesiredCount < 1 {
		return spec, &InvalidParameterError{Key: key("desiredCount"), Value: spec.DesiredCount, Reason: "must be at least 1"}
	}
	if spec.MaxCapacity < spec.DesiredCount {
		return spec, &InvalidParameterError{Key: key("maxCapacity"), Value: spec.MaxCapacity, Reason: "must not be below desiredCount"}
	}
	if spec.TargetCPUPercent < 1 || spec.TargetCPUPercent > 100 {
		return spec, &InvalidParameterError{Key: key("targetCpuPercent"), Value: spec.TargetCPUPercent, Reason: "must be between 1 and 100"}
	}

	switch {
	case spec.HealthCheckPath == "":
		spec.HealthCheckPath = DefaultHealthCheckPath
	case strings.HasPrefix(spec.HealthCheckPath, "$"):
		path, ok := props.HealthPath(strings.TrimPrefix(spec.HealthCheckPath, "$"))
		if !ok {
			return spec, &InvalidParameterError{Key: key("healthCheckPath"), Value: spec.HealthCheckPath, Reason: "unknown stage health path"}
		}
		spec.HealthCheckPath = path
	}
	if !strings.HasPrefix(spec.HealthCheckPath, "/") {
		return spec, &InvalidParameterError{Key: key("healthCheckPath"), Value: spec.HealthCheckPath, Reason: "must start with /"}
	}
	return spec, nil
}
