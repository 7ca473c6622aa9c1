package constants

// Tool name and related constants
const (
	// ToolName is the name of this tool
	ToolName = "ccgate"

	// DefaultConfigFileName is written by `ccgate init`
	DefaultConfigFileName = "ccgate.yaml"

	// IgnoreFileName holds gitignore-style patterns of report entries to skip
	IgnoreFileName = ".ccgateignore"

	// EnvVarPrefix is the prefix for environment variables
	EnvVarPrefix = "CCGATE"
)

// ConfigFileNames are searched, in order, when no --config is given
var ConfigFileNames = []string{
	"ccgate.yaml",
	"ccgate.yml",
	".ccgate.yaml",
	".ccgate.yml",
	"ccgate.json",
	".ccgate.json",
	".ccgate.toml",
}

// SuccessMessageFormat is printed when nothing exceeds the threshold
const SuccessMessageFormat = "All CC <=%d! Success!"
