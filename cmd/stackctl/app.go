package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	cdk "github.com/cbroompearson/cdk"
	"github.com/cbroompearson/cdk/internal/awsenv"
	"github.com/cbroompearson/cdk/internal/config"
	"github.com/cbroompearson/cdk/internal/lookup"
	"github.com/cbroompearson/cdk/internal/topology"
)

type rootOptions struct {
	configPath string
	stages     []string
	context    []string
	region     string
	profile    string
	logLevel   string
	logFormat  string

	logger *slog.Logger
	// identity builds the STS client used to check pinned accounts.
	identity func(aws.Config) awsenv.CallerIdentityAPI
}

// lookups pairs the two boundary lookups used during synthesis.
type lookups interface {
	lookup.ZoneLookup
	lookup.AZLookup
}

// synthesized is one assembled stack and its rendered template.
type synthesized struct {
	stack    *topology.Stack
	template *cdk.Template
}

func (o *rootOptions) log() *slog.Logger {
	if o.logger == nil {
		return slog.Default()
	}
	return o.logger
}

// awsConfig loads SDK config for region, falling back to the --region flag.
func (o *rootOptions) awsConfig(ctx context.Context, region string) (aws.Config, error) {
	if o.region != "" {
		region = o.region
	}
	return awsenv.Load(ctx, awsenv.FromEnv(region, o.profile))
}

// stackConfig loads SDK config for the stage of s and refuses credentials of
// an account other than the one the stage is pinned to.
func (o *rootOptions) stackConfig(ctx context.Context, s synthesized) (aws.Config, error) {
	props := s.stack.Props
	cfg, err := o.awsConfig(ctx, props.Region)
	if err != nil {
		return aws.Config{}, err
	}
	newClient := o.identity
	if newClient == nil {
		newClient = func(cfg aws.Config) awsenv.CallerIdentityAPI { return sts.NewFromConfig(cfg) }
	}
	if props.Account != "" {
		if err := awsenv.CheckAccount(ctx, newClient(cfg), props.Account); err != nil {
			return aws.Config{}, fmt.Errorf("%s: %w", s.stack.Name, err)
		}
	}
	return cfg, nil
}

// synthesize resolves every requested stage and assembles its stack. All
// stages of one call share a role registry, so two stages deriving the same
// role name fail with an IdentityCollisionError.
func (o *rootOptions) synthesize(ctx context.Context) ([]synthesized, error) {
	src, err := config.Load(o.configPath, o.context)
	if err != nil {
		return nil, err
	}

	static, hasStatic, err := lookup.NewStatic(src)
	if err != nil {
		return nil, err
	}

	stages := o.stages
	if len(stages) == 0 {
		stages = []string{""}
	}

	roles := topology.NewRoleRegistry()
	out := make([]synthesized, 0, len(stages))
	for _, stage := range stages {
		props, err := config.Resolve(src, stage)
		if err != nil {
			return nil, err
		}
		specs, err := config.ResolveMicroservices(src, props)
		if err != nil {
			return nil, err
		}

		var l lookups = static
		if !hasStatic {
			cfg, err := o.awsConfig(ctx, props.Region)
			if err != nil {
				return nil, err
			}
			l = lookup.NewAWS(cfg, o.log())
		}

		in, err := resolveInputs(ctx, l, props)
		if err != nil {
			return nil, err
		}
		in.Microservices = specs
		in.Roles = roles

		stack, err := topology.Assemble(props, in)
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", props.Stage, err)
		}
		tmpl, err := stack.Template()
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", props.Stage, err)
		}

		o.log().Debug("stack synthesized", "stack", stack.Name, "resources", len(tmpl.Resources))
		out = append(out, synthesized{stack: stack, template: tmpl})
	}
	return out, nil
}

// resolveInputs runs the lookups of one stage. A missing zone is left nil so
// that assembly reports it as a ZoneNotFoundError.
func resolveInputs(ctx context.Context, l lookups, props config.StageProperties) (topology.Inputs, error) {
	var in topology.Inputs

	zone, err := l.LookupZone(ctx, props.ZoneDomain)
	if err != nil {
		var notFound *topology.ZoneNotFoundError
		if !errors.As(err, &notFound) {
			return in, err
		}
	}
	in.Zone = zone

	azs, err := l.AvailabilityZones(ctx)
	if err != nil {
		return in, err
	}
	in.AvailabilityZones = azs
	return in, nil
}
