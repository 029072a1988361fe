// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tagfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/jeranaias/rigtags/internal/extract"
	"github.com/jeranaias/rigtags/internal/writer"
)

// File is a parsed tag file indexed by name, input file and kind.
type File struct {
	Header  []writer.PseudoTag
	Records []Record

	// Format is the TAG_FILE_FORMAT value, 0 when the header omits it.
	Format int
	// Sorted reports TAG_FILE_SORTED=1.
	Sorted bool
	// Skipped counts lines that could not be parsed.
	Skipped int

	byName map[string][]int
	byFile map[string][]int
	byKind map[string][]int
	names  []string
}

// Load reads the tag file at path.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open tags file: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses a tag file. Malformed lines are counted in Skipped.
func Read(r io.Reader) (*File, error) {
	tf := &File{
		byName: make(map[string][]int),
		byFile: make(map[string][]int),
		byKind: make(map[string][]int),
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), extract.MaxLineLength+1024)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		if writer.IsPseudoTagLine(line) {
			p, err := ParsePseudoTag(line)
			if err != nil {
				tf.Skipped++
				continue
			}
			tf.addHeader(p)
			continue
		}
		rec, err := ParseRecord(line)
		if err != nil {
			tf.Skipped++
			continue
		}
		tf.add(rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("error reading tags file: %w", err)
	}

	tf.names = make([]string, 0, len(tf.byName))
	for name := range tf.byName {
		tf.names = append(tf.names, name)
	}
	sort.Strings(tf.names)
	return tf, nil
}

func (tf *File) addHeader(p writer.PseudoTag) {
	tf.Header = append(tf.Header, p)
	if v, ok := writer.FormatVersion(p); ok {
		tf.Format = v
	}
	if p.Name == "TAG_FILE_SORTED" && p.ParserName == "" {
		tf.Sorted = p.FileName == "1"
	}
}

func (tf *File) add(rec Record) {
	i := len(tf.Records)
	tf.Records = append(tf.Records, rec)
	tf.byName[rec.Name] = append(tf.byName[rec.Name], i)
	tf.byFile[rec.File] = append(tf.byFile[rec.File], i)
	if rec.Kind != "" {
		tf.byKind[rec.Kind] = append(tf.byKind[rec.Kind], i)
	}
}

func (tf *File) collect(idx []int) []Record {
	out := make([]Record, len(idx))
	for i, j := range idx {
		out[i] = tf.Records[j]
	}
	return out
}

// Lookup returns the records with the given name in file order.
func (tf *File) Lookup(name string) []Record {
	return tf.collect(tf.byName[name])
}

// LookupPrefix returns the records whose name starts with prefix, grouped
// by name in byte order.
func (tf *File) LookupPrefix(prefix string) []Record {
	start := sort.SearchStrings(tf.names, prefix)
	var out []Record
	for _, name := range tf.names[start:] {
		if !strings.HasPrefix(name, prefix) {
			break
		}
		out = append(out, tf.Lookup(name)...)
	}
	return out
}

// ByFile returns the records of one input file.
func (tf *File) ByFile(path string) []Record {
	return tf.collect(tf.byFile[path])
}

// ByKind returns the records of one kind, as written (letter or name).
func (tf *File) ByKind(kind string) []Record {
	return tf.collect(tf.byKind[kind])
}

// Kinds returns the kinds present, sorted.
func (tf *File) Kinds() []string {
	kinds := make([]string, 0, len(tf.byKind))
	for k := range tf.byKind {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// KindDescriptions returns the TAG_KIND_DESCRIPTION header records of one
// language.
func (tf *File) KindDescriptions(language string) []writer.PseudoTag {
	var out []writer.PseudoTag
	for _, p := range tf.Header {
		if p.Name == "TAG_KIND_DESCRIPTION" && p.ParserName == language {
			out = append(out, p)
		}
	}
	return out
}
