// Package validation runs cfn-lint-go over synthesized templates.
//
// Templates are written to a JSON file first so that lint findings carry a
// filename and line numbers the user can open.
package validation

import (
	"fmt"
	"os"
	"strings"

	"github.com/lex00/cfn-lint-go/pkg/lint"

	cdk "github.com/cbroompearson/cdk"
	"github.com/cbroompearson/cdk/internal/template"
)

// CfnLintResult contains the result of running cfn-lint.
type CfnLintResult struct {
	Passed        bool     `json:"passed"`
	Errors        []string `json:"errors"`
	Warnings      []string `json:"warnings"`
	Informational []string `json:"informational"`
	TemplatePath  string   `json:"template_path,omitempty"`
}

// TotalIssues returns the total number of issues found.
func (r CfnLintResult) TotalIssues() int {
	return len(r.Errors) + len(r.Warnings) + len(r.Informational)
}

// Summary converts r into the validate command's JSON result.
func (r CfnLintResult) Summary(resources int) cdk.ValidateResult {
	out := cdk.ValidateResult{
		Success:   r.Passed,
		Resources: resources,
		Errors:    r.Errors,
		Warnings:  append(append([]string(nil), r.Warnings...), r.Informational...),
	}
	if len(out.Warnings) == 0 {
		out.Warnings = nil
	}
	return out
}

// RunCfnLint runs cfn-lint-go on the given template file.
func RunCfnLint(templatePath string) (*CfnLintResult, error) {
	if _, err := os.Stat(templatePath); err != nil {
		return &CfnLintResult{
			Passed: false,
			Errors: []string{fmt.Sprintf("Template file not found: %s", templatePath)},
		}, nil
	}

	linter := lint.New(lint.Options{})
	matches, err := linter.LintFile(templatePath)
	if err != nil {
		return &CfnLintResult{
			Passed:       false,
			Errors:       []string{fmt.Sprintf("Linter error: %v", err)},
			TemplatePath: templatePath,
		}, nil
	}

	result := &CfnLintResult{
		Errors:        []string{},
		Warnings:      []string{},
		Informational: []string{},
		TemplatePath:  templatePath,
	}

	for _, match := range matches {
		formatted := formatMatch(match)

		switch match.Level {
		case "Error":
			result.Errors = append(result.Errors, formatted)
		case "Warning":
			result.Warnings = append(result.Warnings, formatted)
		default:
			result.Informational = append(result.Informational, formatted)
		}
	}

	// Warnings do not fail validation.
	result.Passed = len(result.Errors) == 0

	return result, nil
}

// ValidateTemplate lints an in-memory template. The template is written to
// a temporary directory that is removed afterwards.
func ValidateTemplate(t *cdk.Template, name string) (*CfnLintResult, error) {
	dir, err := os.MkdirTemp("", "stackctl-validate-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	path, err := template.WriteFile(t, dir, name)
	if err != nil {
		return nil, err
	}
	result, err := RunCfnLint(path)
	if err != nil {
		return nil, err
	}
	result.TemplatePath = ""
	return result, nil
}

func formatMatch(match lint.Match) string {
	pathStr := ""
	if len(match.Location.Path) > 0 {
		parts := make([]string, len(match.Location.Path))
		for i, p := range match.Location.Path {
			parts[i] = fmt.Sprintf("%v", p)
		}
		pathStr = strings.Join(parts, "/")
	}

	if pathStr != "" {
		return fmt.Sprintf("%s: %s (at %s)", match.Rule.ID, match.Message, pathStr)
	}
	return fmt.Sprintf("%s: %s", match.Rule.ID, match.Message)
}
