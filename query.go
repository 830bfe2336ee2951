package s3load

import (
	"slices"

	gfn "github.com/panyam/goutils/fn"
)

const (
	TagsKey  = "tags"
	DraftKey = "draft"
)

// Tags of a page as listed under the "tags" key.  Non string entries are ignored.
func (p Page) Tags() (out []string) {
	switch tags := p.Data[TagsKey].(type) {
	case []string:
		return tags
	case []any:
		for _, tag := range tags {
			if t, ok := tag.(string); ok {
				out = append(out, t)
			}
		}
	case string:
		if tags != "" {
			out = append(out, tags)
		}
	}
	return
}

func (p Page) IsDraft() bool {
	return p.Data[DraftKey] == true
}

// Returns the pages having the given tag, in their original order.
func PagesByTag(pages []Page, tag string, hideDrafts bool) (out []Page) {
	for _, page := range pages {
		if hideDrafts && page.IsDraft() {
			continue
		}
		if slices.Contains(page.Tags(), tag) {
			out = append(out, page)
		}
	}
	return
}

// Counts how many pages carry each tag.
func AllTags(pages []Page) (tagCount map[string]int) {
	tagCount = make(map[string]int)
	for _, page := range pages {
		for _, tag := range page.Tags() {
			tagCount[tag] += 1
		}
	}
	return
}

// Keys of a tag count map, most used first and then alphabetically.
func KeysForTagMap(tagmap map[string]int) []string {
	out := gfn.MapKeys(tagmap)
	slices.SortFunc(out, func(a, b string) int {
		if c1, c2 := tagmap[a], tagmap[b]; c1 != c2 {
			return c2 - c1
		}
		if a < b {
			return -1
		} else if a > b {
			return 1
		}
		return 0
	})
	return out
}
