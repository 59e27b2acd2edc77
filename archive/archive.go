// Package archive walks ZIP-based archives (.jar, .war, .zip) and feeds each
// .class entry's byte stream into the classfile decoder, one entry at a
// time, discarding the entry's buffer before moving to the next. No state
// crosses from one entry's parse to the next.
package archive

import (
	"archive/zip"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/classdump/classfile"
)

var log = commonlog.GetLogger("classdump.archive")

// Entry pairs a successfully decoded class with the archive path it came
// from.
type Entry struct {
	Name  string
	Class *classfile.ClassFile
}

// Failure records one entry that failed to decode. The walk continues past
// it and collects it in Result.Failures; Walk's own error return covers only
// a failure to open the archive.
type Failure struct {
	Name string
	Err  error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Name, f.Err)
}

// Result is the outcome of walking one archive: the classes that decoded
// and the entries that didn't, in archive order.
type Result struct {
	Entries  []Entry
	Failures []Failure
}

// Walk opens path as a ZIP archive and decodes every entry whose name ends
// in ".class", in the order listed in the ZIP central directory, not
// sorted — sort.Strings the caller's own view of Result if a canonical
// order is wanted.
func Walk(path string, opts classfile.ParseOptions) (*Result, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", path, err)
	}
	defer r.Close()

	return walkFiles(r.File, opts), nil
}

func walkFiles(files []*zip.File, opts classfile.ParseOptions) *Result {
	result := &Result{}

	for _, f := range files {
		if f.FileInfo().IsDir() || filepath.Ext(f.Name) != ".class" {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			log.Errorf("open %s: %v", f.Name, err)
			result.Failures = append(result.Failures, Failure{Name: f.Name, Err: err})
			continue
		}

		cf, err := classfile.ParseReader(rc, opts)
		rc.Close()
		if err != nil {
			log.Errorf("parse %s: %v", f.Name, err)
			result.Failures = append(result.Failures, Failure{Name: f.Name, Err: err})
			continue
		}

		log.Debugf("parsed %s", f.Name)
		result.Entries = append(result.Entries, Entry{Name: f.Name, Class: cf})
	}

	return result
}

// Names returns the names of every class entry in result, sorted.
func (r *Result) Names() []string {
	names := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		names[i] = e.Name
	}
	sort.Strings(names)
	return names
}
