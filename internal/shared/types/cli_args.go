package types

// CLIArgs represents the command-line arguments shared by all commands.
type CLIArgs struct {
	ConfigFile string
	APIURL     string
	StateDB    string
	ReportName string
	ReportType []string
	Dir        string
	Limit      int
	All        bool
	Custom     bool
}
