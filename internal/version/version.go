package version

// Set via -ldflags at build time.
var (
	Version = "development"
	Commit  = "none"
)

func GetVersion() string {
	return Version
}

func GetCommit() string {
	return Commit
}
