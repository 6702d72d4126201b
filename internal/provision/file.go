package provision

import (
	"context"
	"fmt"
	"log/slog"

	cdk "github.com/cbroompearson/cdk"
	"github.com/cbroompearson/cdk/internal/template"
)

// DefaultOutDir is the cloud assembly directory used by synth.
const DefaultOutDir = "cdk.out"

// FileBackend writes the template to <Dir>/<stack>.template.json instead of
// deploying it. Format "yaml" writes <stack>.template.yaml.
type FileBackend struct {
	Dir    string
	Format string
	Logger *slog.Logger
}

// Apply implements Backend.
func (b *FileBackend) Apply(ctx context.Context, target Target) (Outcome, error) {
	if err := target.validate(); err != nil {
		return aborted(target, "", err.Error()), err
	}
	if err := ctx.Err(); err != nil {
		return aborted(target, "", err.Error()), err
	}

	dir := b.Dir
	if dir == "" {
		dir = DefaultOutDir
	}
	var write func(*cdk.Template, string, string) (string, error)
	switch b.Format {
	case "", "json":
		write = template.WriteFile
	case "yaml":
		write = template.WriteYAMLFile
	default:
		err := fmt.Errorf("unknown template format: %s", b.Format)
		return aborted(target, "", err.Error()), err
	}
	path, err := write(target.Template, dir, target.StackName)
	if err != nil {
		return aborted(target, "", err.Error()), err
	}

	if b.Logger != nil {
		b.Logger.Info("template written", "stack", target.StackName, "path", path, "resources", len(target.Template.Resources))
	}
	return Outcome{Status: StatusWritten, StackName: target.StackName, Location: path}, nil
}
