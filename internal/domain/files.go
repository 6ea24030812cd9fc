package domain

import "time"

// FileStat is the subset of file metadata the coordinator needs.
type FileStat struct {
	Path    string
	Size    int64
	IsDir   bool
	ModTime time.Time
}

// DirEntry is one row of a directory listing.
type DirEntry struct {
	Name  string
	Size  int64
	IsDir bool
}
