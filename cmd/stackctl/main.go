// Command stackctl synthesizes and deploys the container service stack.
//
// Usage:
//
//	stackctl synth                   Write cdk.out/<stack>.template.json
//	stackctl deploy --stage prod     Apply the stack through CloudFormation
//	stackctl diff                    Compare against the deployed stack
//	stackctl graph -f mermaid        Show resource dependencies
//	stackctl version                 Show version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "stackctl",
		Short: "Synthesize and deploy the container service stack",
		Long: `stackctl derives the CloudFormation stack of a containerized service from
a cdk.json-style context file: VPC, security groups, IAM roles, Fargate
services with autoscaling, the HTTPS load balancer and the DNS alias.

    stackctl synth --stage dev
    stackctl deploy --stage dev`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := SetupLogger(opts.logLevel, opts.logFormat, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "cdk.json", "Context file (JSON or YAML)")
	flags.StringSliceVarP(&opts.stages, "stage", "s", nil, "Stage to synthesize; repeat for several (default: the \"stage\" key)")
	flags.StringArrayVarP(&opts.context, "context", "c", nil, "Context override key=value; dotted keys address stage values")
	flags.StringVar(&opts.region, "region", "", "AWS region (default: stage region, then SDK chain)")
	flags.StringVar(&opts.profile, "profile", "", "AWS shared config profile")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(
		newSynthCmd(opts),
		newDeployCmd(opts),
		newDiffCmd(opts),
		newGraphCmd(opts),
		newValidateCmd(opts),
		newListCmd(opts),
		newWatchCmd(opts),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "stackctl %s\n", getVersion())
		},
	}
}
