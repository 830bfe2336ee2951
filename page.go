package s3load

import (
	"log/slog"
	"path"
	"strings"
	"time"
)

// Key holding a page's publish date in its data.
const DateKey = "date"

// Src describes where a page was loaded from.
type Src struct {
	// Root anchored path of the source file (eg /posts/2019-01-01_hello.md)
	Path string

	// Creation time of the file if the filesystem reports it
	Created time.Time

	// Last modification time of the file
	LastModified time.Time
}

// Dest describes where a page will be published to.  Path has no extension,
// Ext holds the published extension (eg ".css") or "" for pages that get the
// pipeline's default (html).
type Dest struct {
	Path string
	Ext  string
}

// A Page is a source file on its way to becoming a published document.
//
// Pages are values.  Every post processing stage returns a new Page and never
// modifies the Data map of the page it was given.
type Page struct {
	Src  Src
	Dest Dest
	Data Data
}

// Returns the page's date if one has been set.
func (p Page) Date() (time.Time, bool) {
	if d, ok := p.Data[DateKey].(time.Time); ok {
		return d, true
	}
	return time.Time{}, false
}

// Returns the destination path including its extension.
func (p Page) DestPath() string {
	return p.Dest.Path + p.Dest.Ext
}

// Returns a copy of the page whose data can be modified without affecting p.
func (p Page) clone() Page {
	p.Data = p.Data.Clone()
	return p
}

// A PostProcess transforms a freshly loaded page into its final form.
type PostProcess func(page Page) (Page, error)

// Chains post processing stages, applying them in order and stopping at the
// first error.
func Chain(stages ...PostProcess) PostProcess {
	return func(page Page) (out Page, err error) {
		out = page
		for _, stage := range stages {
			if stage == nil {
				continue
			}
			if out, err = stage(out); err != nil {
				return page, err
			}
		}
		return
	}
}

// Moves a trailing extension left on the destination path into Dest.Ext, so a file
// named styles.css.njk (whose .njk was consumed by its loader) is published as
// styles + .css.  Pages whose Ext is already set are returned as is.
func SplitSubext(page Page) (Page, error) {
	if page.Dest.Ext != "" {
		return page, nil
	}
	if subext := subextension(page.Dest.Path); subext != "" {
		page.Dest.Path = page.Dest.Path[:len(page.Dest.Path)-len(subext)]
		page.Dest.Ext = subext
	}
	return page, nil
}

func subextension(p string) string {
	base := path.Base(p)
	ext := path.Ext(base)
	if ext == base {
		// dot files like ".htaccess" have no extension
		return ""
	}
	return ext
}

// DateFallback picks a date for pages that neither set one nor carry one in their
// file name.
type DateFallback func(src Src) (time.Time, bool)

// Uses the file's creation time, then its modification time.
func FileDates(src Src) (time.Time, bool) {
	if !src.Created.IsZero() {
		return src.Created, true
	}
	if !src.LastModified.IsZero() {
		return src.LastModified, true
	}
	return time.Time{}, false
}

// Returns the stage that guarantees a page's date is either absent or a time.Time.
//
// Pages without a date get the date (or order number) found at the start of their
// file name, whose prefix is then removed from Dest.Path.  If the name has neither,
// fallback (when not nil) is asked.  Dates given as strings in one of the
// DateLayouts are converted.  Any other value is rejected with a DateError.
func DeriveDate(fallback DateFallback) PostProcess {
	return func(page Page) (Page, error) {
		value := page.Data[DateKey]
		if !dateUnset(value) {
			if _, isTime := value.(time.Time); isTime {
				return page, nil
			}
			date, ok := ParseDate(value)
			if !ok {
				err := &DateError{Path: page.Src.Path, Value: value}
				slog.Error("Invalid page date", "path", page.Src.Path, "date", value)
				return page, panicOrError(err)
			}
			page = page.clone()
			page.Data[DateKey] = date
			return page, nil
		}

		if prefix, date, found := DateFromName(path.Base(page.Src.Path)); found {
			page = page.clone()
			page.Dest.Path = stripNamePrefix(page.Dest.Path, prefix)
			page.Data[DateKey] = date
			return page, nil
		}

		if fallback != nil {
			if date, ok := fallback(page.Src); ok {
				page = page.clone()
				page.Data[DateKey] = date
				return page, nil
			}
		}
		if value != nil {
			// an empty date ("") is dropped rather than left as a non date value
			page = page.clone()
			delete(page.Data, DateKey)
		}
		return page, nil
	}
}

// Removes prefix from the start of the last segment of p.
func stripNamePrefix(p string, prefix string) string {
	dir, base := path.Split(p)
	if rest, found := strings.CutPrefix(base, prefix); found {
		return dir + rest
	}
	return p
}
