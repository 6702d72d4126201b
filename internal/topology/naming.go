// Package topology derives the target state of one service stack: the
// network, the IAM roles, one Fargate service per microservice, the load
// balancer routing and the DNS alias.
//
// Builders are pure functions of their inputs. Each returns a typed result
// holding the CloudFormation entities it produced; the next builder takes that
// result as input, so the call order mirrors the dependency order of the
// resources themselves.
package topology

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/cbroompearson/cdk/internal/config"
	"github.com/cbroompearson/cdk/internal/serialize"
)

// Namer derives resource names and logical IDs for one service and stage.
//
// Pattern: {service}-{stage}[-{part}...]
type Namer struct {
	Service string
	Stage   string
}

// NewNamer returns the Namer for props.
func NewNamer(props config.StageProperties) Namer {
	return Namer{Service: props.ServiceName, Stage: props.Stage}
}

// Prefix returns "{service}-{stage}".
func (n Namer) Prefix() string {
	return n.Service + "-" + n.Stage
}

// Name joins parts onto the prefix.
// Example: Name("api") = "oculus-dev-api"
func (n Namer) Name(parts ...string) string {
	return strings.Join(append([]string{n.Prefix()}, parts...), "-")
}

// LogicalID returns a CloudFormation logical ID for the named resource.
// Example: LogicalID("api", "service") = "OculusDevApiService"
func (n Namer) LogicalID(parts ...string) string {
	pascal := serialize.ToPascalCase(n.Name(parts...))
	return strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return r
		}
		return -1
	}, pascal)
}

// Indexed returns part followed by a 1-based index, e.g. "public-subnet-1".
func Indexed(part string, i int) string {
	return part + "-" + strconv.Itoa(i+1)
}
