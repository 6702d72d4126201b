// Package awsenv loads the AWS SDK configuration shared by the lookups and
// the CloudFormation backend.
package awsenv

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/spf13/viper"

	appconfig "github.com/cbroompearson/cdk/internal/config"
)

// Environment keys for static credentials, read with the CDK_ prefix:
// CDK_ACCESS_KEY_ID, CDK_SECRET_ACCESS_KEY and CDK_SESSION_TOKEN.
const (
	KeyAccessKeyID     = "access_key_id"
	KeySecretAccessKey = "secret_access_key"
	KeySessionToken    = "session_token"
)

// Options selects the region and credentials. Empty fields fall back to the
// SDK default chain (environment, shared config, instance role).
type Options struct {
	Region          string
	Profile         string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// FromEnv returns Options for region and profile with static credentials
// taken from the CDK_ environment, when set.
func FromEnv(region, profile string) Options {
	v := viper.New()
	v.SetEnvPrefix(appconfig.EnvPrefix)
	for _, key := range []string{KeyAccessKeyID, KeySecretAccessKey, KeySessionToken} {
		_ = v.BindEnv(key)
	}
	return Options{
		Region:          region,
		Profile:         profile,
		AccessKeyID:     v.GetString(KeyAccessKeyID),
		SecretAccessKey: v.GetString(KeySecretAccessKey),
		SessionToken:    v.GetString(KeySessionToken),
	}
}

// Load resolves an aws.Config for opts.
func Load(ctx context.Context, opts Options) (aws.Config, error) {
	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if opts.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(opts.Profile))
	}
	if opts.AccessKeyID != "" {
		if opts.SecretAccessKey == "" {
			return aws.Config{}, fmt.Errorf("access key %s has no secret key", opts.AccessKeyID)
		}
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, opts.SessionToken),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("loading AWS config: %w", err)
	}
	if cfg.Region == "" {
		return aws.Config{}, fmt.Errorf("no AWS region configured")
	}
	return cfg, nil
}

// CallerIdentityAPI is the STS call used to identify the credentials.
type CallerIdentityAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// AccountMismatchError is returned when the credentials belong to an account
// other than the one the stage is pinned to.
type AccountMismatchError struct {
	Want string
	Got  string
}

func (e *AccountMismatchError) Error() string {
	return fmt.Sprintf("credentials belong to account %s, stage is pinned to %s", e.Got, e.Want)
}

// CheckAccount verifies that client's credentials belong to want. An empty
// want accepts any account.
func CheckAccount(ctx context.Context, client CallerIdentityAPI, want string) error {
	if want == "" {
		return nil
	}
	out, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return fmt.Errorf("identifying caller account: %w", err)
	}
	if got := aws.ToString(out.Account); got != want {
		return &AccountMismatchError{Want: want, Got: got}
	}
	return nil
}
