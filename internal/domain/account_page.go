package domain

// FileRecord is one row of the files table on an account page. The service
// assigns FileID globally; the name is whatever the uploader chose.
type FileRecord struct {
	FileID   int64
	FileName string
	FileType string
	FileSize int64
}

// AccountPage is the parsed form of a rendered account page. File order
// matches document order; the page is parsed fresh on every fetch since the
// listing mutates between calls.
type AccountPage struct {
	Files  []FileRecord
	UserID int64
}

// FileByName returns the first file record with the given name and whether
// one was found.
func (p AccountPage) FileByName(name string) (FileRecord, bool) {
	for _, file := range p.Files {
		if file.FileName == name {
			return file, true
		}
	}

	return FileRecord{}, false
}
