package chatfs

import "github.com/brettbedarf/chatfs/filesystem"

// SampleEntry is one item of the sample content seeded into a fresh namespace
type SampleEntry struct {
	Path    string
	Dir     bool
	Content string
}

// Samples is the content offered to new users
var Samples = []SampleEntry{
	{Path: "/documents", Dir: true},
	{Path: "/documents/notes.txt", Content: "This is a note."},
	{Path: "/documents/work", Dir: true},
	{Path: "/documents/work/report.docx", Content: "Work report content."},
	{Path: "/readme.txt", Content: "Hello VFS!"},
	{Path: "/empty_folder", Dir: true},
}

// SeedSamples creates [Samples] in ns. Entries that already exist are
// skipped, so seeding is safe to repeat. Returns the number created.
func SeedSamples(ns *filesystem.Namespace) int {
	created := 0
	for _, s := range Samples {
		var err error
		if s.Dir {
			err = ns.CreateDirectory(s.Path)
		} else {
			err = ns.CreateFile(s.Path, s.Content)
		}
		if err == nil {
			created++
		}
	}
	return created
}
