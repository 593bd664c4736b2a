package types

// Tag keys applied to every resource this tool creates, on both the
// imperative and the CloudFormation path.
const (
	TagName        = "Name"
	TagManaged     = "vpcctl:managed"
	TagEnvironment = "vpcctl:environment"

	ManagedTagValue = "true"
)
