package domain

// DataSource names the directories a task crawls and the directory its
// outputs land in.
type DataSource struct {
	Name       string
	SourceDirs []string
	TargetDir  string
}

// Empty reports whether the record carries nothing to crawl.
func (d DataSource) Empty() bool {
	return len(d.SourceDirs) == 0
}
