// Package epub models an EPUB container as an ordered collection of resource
// entries, loaded from and serialized back to a single zip archive. Entries
// that are not chapter documents pass through byte-for-byte.
package epub

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/epublate/epublate"
)

// ContainerPath is the fixed location of the OCF container descriptor.
const ContainerPath = "META-INF/container.xml"

// Entry is one internal resource of the book: an internal path, the media
// type declared by the manifest (empty if undeclared), and the raw bytes.
type Entry struct {
	Path      string
	MediaType string
	Data      []byte
}

// ChapterRef points at one chapter document in manifest reading order.
type ChapterRef struct {
	ID   string // manifest item id
	Path string // entry path within the archive
}

// Archive is an in-memory EPUB. Entry order is the zip order of the source
// file and is preserved on save; WriteEntry overwrites content in place and
// never reorders.
type Archive struct {
	entries []*Entry
	index   map[string]*Entry
	opfPath string
	pkg     packageDoc
}

// Open reads the container at path into memory. Duplicate entry paths and a
// missing or unparsable container/package document are open failures.
func Open(p string) (*Archive, error) {
	r, err := zip.OpenReader(p)
	if err != nil {
		return nil, &epublate.ArchiveError{Op: "open", Path: p, Cause: err}
	}
	defer r.Close()

	a, err := fromZip(&r.Reader)
	if err != nil {
		return nil, &epublate.ArchiveError{Op: "open", Path: p, Cause: err}
	}
	return a, nil
}

// OpenReader reads a container from an in-memory or seekable source.
func OpenReader(r io.ReaderAt, size int64) (*Archive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, &epublate.ArchiveError{Op: "open", Path: "(reader)", Cause: err}
	}

	a, err := fromZip(zr)
	if err != nil {
		return nil, &epublate.ArchiveError{Op: "open", Path: "(reader)", Cause: err}
	}
	return a, nil
}

func fromZip(zr *zip.Reader) (*Archive, error) {
	a := &Archive{index: make(map[string]*Entry)}

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if _, exists := a.index[f.Name]; exists {
			return nil, fmt.Errorf("duplicate entry path %q", f.Name)
		}

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("reading entry %q: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading entry %q: %w", f.Name, err)
		}

		e := &Entry{Path: f.Name, Data: data}
		a.entries = append(a.entries, e)
		a.index[f.Name] = e
	}

	if err := a.parsePackage(); err != nil {
		return nil, err
	}
	a.applyMediaTypes()

	return a, nil
}

func (a *Archive) parsePackage() error {
	container, ok := a.index[ContainerPath]
	if !ok {
		return fmt.Errorf("missing %s", ContainerPath)
	}

	var c containerXML
	if err := xml.Unmarshal(container.Data, &c); err != nil {
		return fmt.Errorf("parsing %s: %w", ContainerPath, err)
	}
	if len(c.Rootfiles) == 0 {
		return fmt.Errorf("no rootfiles in %s", ContainerPath)
	}

	a.opfPath = c.Rootfiles[0].FullPath
	opf, ok := a.index[a.opfPath]
	if !ok {
		return fmt.Errorf("missing package document %q", a.opfPath)
	}

	if err := xml.Unmarshal(opf.Data, &a.pkg); err != nil {
		return fmt.Errorf("parsing package document %q: %w", a.opfPath, err)
	}
	return nil
}

// applyMediaTypes copies manifest media types onto the matching entries.
func (a *Archive) applyMediaTypes() {
	opfDir := path.Dir(a.opfPath)
	for _, item := range a.pkg.Manifest.Items {
		full := resolveHref(opfDir, item.Href)
		if e, ok := a.index[full]; ok {
			e.MediaType = item.MediaType
		}
	}
}

func resolveHref(opfDir, href string) string {
	if opfDir == "." {
		return path.Clean(href)
	}
	return path.Clean(path.Join(opfDir, href))
}

// Entries returns the archive's entries in iteration order. The slice is
// shared; callers must not reorder it.
func (a *Archive) Entries() []*Entry {
	return a.entries
}

// Entry returns the entry at the given internal path.
func (a *Archive) Entry(p string) (*Entry, bool) {
	e, ok := a.index[p]
	return e, ok
}

// Chapters returns the chapter documents in spine (reading) order. Spine
// refs that point at missing manifest items or non-HTML media types are
// skipped.
func (a *Archive) Chapters() []ChapterRef {
	itemsByID := make(map[string]manifestItem, len(a.pkg.Manifest.Items))
	for _, item := range a.pkg.Manifest.Items {
		itemsByID[item.ID] = item
	}

	opfDir := path.Dir(a.opfPath)
	var refs []ChapterRef
	for _, ir := range a.pkg.Spine.ItemRefs {
		item, ok := itemsByID[ir.IDRef]
		if !ok || !isChapterType(item.MediaType) {
			continue
		}
		full := resolveHref(opfDir, item.Href)
		if _, ok := a.index[full]; !ok {
			continue
		}
		refs = append(refs, ChapterRef{ID: item.ID, Path: full})
	}
	return refs
}

func isChapterType(mediaType string) bool {
	return strings.Contains(mediaType, "html")
}

// WriteEntry overwrites one entry's content, preserving its position in
// iteration order. Writing to an unknown path is an error: the entry set is
// fixed at open time.
func (a *Archive) WriteEntry(p string, data []byte) error {
	e, ok := a.index[p]
	if !ok {
		return &epublate.ArchiveError{Op: "write", Path: p, Cause: fmt.Errorf("no such entry")}
	}
	e.Data = data
	return nil
}

// Save serializes the archive to a new container file. The mimetype entry is
// written first and uncompressed as EPUB requires; all other entries keep
// their original order.
func (a *Archive) Save(p string) error {
	f, err := os.Create(p) // #nosec G304 - output path is intentionally user-provided
	if err != nil {
		return &epublate.ArchiveError{Op: "save", Path: p, Cause: err}
	}

	if err := a.SaveTo(f); err != nil {
		f.Close()
		return &epublate.ArchiveError{Op: "save", Path: p, Cause: err}
	}

	if err := f.Close(); err != nil {
		return &epublate.ArchiveError{Op: "save", Path: p, Cause: err}
	}
	return nil
}

// SaveTo writes the archive as a zip stream.
func (a *Archive) SaveTo(w io.Writer) error {
	zw := zip.NewWriter(w)

	for _, e := range a.entries {
		var (
			fw  io.Writer
			err error
		)
		if e.Path == "mimetype" {
			fw, err = zw.CreateHeader(&zip.FileHeader{
				Name:   e.Path,
				Method: zip.Store,
			})
		} else {
			fw, err = zw.Create(e.Path)
		}
		if err != nil {
			return fmt.Errorf("creating entry %q: %w", e.Path, err)
		}
		if _, err := fw.Write(e.Data); err != nil {
			return fmt.Errorf("writing entry %q: %w", e.Path, err)
		}
	}

	return zw.Close()
}

// Title returns the dc:title from the package metadata.
func (a *Archive) Title() string {
	return strings.TrimSpace(a.pkg.Metadata.Title)
}

// Creator returns the dc:creator from the package metadata.
func (a *Archive) Creator() string {
	return strings.TrimSpace(a.pkg.Metadata.Creator)
}

// Language returns the dc:language from the package metadata.
func (a *Archive) Language() string {
	return strings.TrimSpace(a.pkg.Metadata.Language)
}

// SetLanguage rewrites the dc:language element inside the OPF entry so
// readers display the book under its new language. The replacement is
// surgical: the rest of the package document stays byte-identical.
func (a *Archive) SetLanguage(lang string) error {
	if err := a.setDCElement("language", lang); err != nil {
		return err
	}
	a.pkg.Metadata.Language = lang
	return nil
}

// SetTitle rewrites dc:title in the OPF entry.
func (a *Archive) SetTitle(title string) error {
	if err := a.setDCElement("title", title); err != nil {
		return err
	}
	a.pkg.Metadata.Title = title
	return nil
}

// SetCreator rewrites dc:creator in the OPF entry.
func (a *Archive) SetCreator(creator string) error {
	if err := a.setDCElement("creator", creator); err != nil {
		return err
	}
	a.pkg.Metadata.Creator = creator
	return nil
}

// setDCElement replaces the text content of one dc:* element inside the OPF
// entry without touching any other byte of the package document.
func (a *Archive) setDCElement(name, value string) error {
	opf, ok := a.index[a.opfPath]
	if !ok {
		return &epublate.ArchiveError{Op: "write", Path: a.opfPath, Cause: fmt.Errorf("no such entry")}
	}

	data := opf.Data
	open := bytes.Index(data, []byte("<dc:"+name))
	if open == -1 {
		return &epublate.ArchiveError{Op: "write", Path: a.opfPath, Cause: fmt.Errorf("no dc:%s element", name)}
	}
	openEnd := bytes.IndexByte(data[open:], '>')
	if openEnd == -1 {
		return &epublate.ArchiveError{Op: "write", Path: a.opfPath, Cause: fmt.Errorf("malformed dc:%s element", name)}
	}
	openEnd += open + 1
	end := bytes.Index(data[openEnd:], []byte("</dc:"+name+">"))
	if end == -1 {
		return &epublate.ArchiveError{Op: "write", Path: a.opfPath, Cause: fmt.Errorf("unterminated dc:%s element", name)}
	}
	end += openEnd

	var buf bytes.Buffer
	buf.Write(data[:openEnd])
	buf.WriteString(value)
	buf.Write(data[end:])
	opf.Data = buf.Bytes()
	return nil
}
