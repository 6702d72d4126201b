package intrinsics

// Pseudo-parameter names, usable inside Sub strings as ${AWS::Region} or
// wrapped in a Ref.
const (
	AccountID = "AWS::AccountId"
	Partition = "AWS::Partition"
	Region    = "AWS::Region"
	StackName = "AWS::StackName"
	URLSuffix = "AWS::URLSuffix"
)

// IsPseudo reports whether name is a pseudo-parameter rather than a logical ID.
func IsPseudo(name string) bool {
	return len(name) > 5 && name[:5] == "AWS::"
}
