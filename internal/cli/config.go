package cli

// Config stores CLI options for a single generation run.
type Config struct {
	IterationPath  string
	Output         string
	DocsRoot       string
	CachePath      string
	ForceReparse   bool
	DebugDump      string
	ShortNamesPath string
	ArityPath      string
	Language       string
	Workers        int
	Strict         bool
	Verbose        bool
	NoColor        bool
	ShowVersion    bool
}

// OutputFilename returns the declaration file path for the generator layer.
func (c *Config) OutputFilename() string {
	return c.Output
}
