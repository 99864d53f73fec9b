package widgets

import (
	"fmt"
	"sort"
)

// TextChange is one substitutable string rewritten by RewriteText.
type TextChange struct {
	Path   string
	Before string
	After  string
}

// RewriteText applies fn to every substitutable string of props: the flat
// SubstitutableProps and the item fields listed in SubstitutableItems. Array
// props are replaced with rewritten copies, so slices shared with a stored
// document are never mutated. It returns the values fn changed.
func (d *Definition) RewriteText(props map[string]interface{}, fn func(string) string) []TextChange {
	if props == nil {
		return nil
	}

	var changes []TextChange
	for _, key := range d.SubstitutableProps {
		before, ok := props[key].(string)
		if !ok {
			continue
		}
		if after := fn(before); after != before {
			props[key] = after
			changes = append(changes, TextChange{Path: key, Before: before, After: after})
		}
	}

	arrays := make([]string, 0, len(d.SubstitutableItems))
	for key := range d.SubstitutableItems {
		arrays = append(arrays, key)
	}
	sort.Strings(arrays)

	for _, key := range arrays {
		items, ok := props[key].([]interface{})
		if !ok {
			continue
		}
		rewritten := make([]interface{}, len(items))
		for i, item := range items {
			fields, ok := item.(map[string]interface{})
			if !ok {
				rewritten[i] = item
				continue
			}
			copied := make(map[string]interface{}, len(fields))
			for k, v := range fields {
				copied[k] = v
			}
			for _, field := range d.SubstitutableItems[key] {
				before, ok := copied[field].(string)
				if !ok {
					continue
				}
				if after := fn(before); after != before {
					copied[field] = after
					changes = append(changes, TextChange{
						Path:   fmt.Sprintf("%s[%d].%s", key, i, field),
						Before: before,
						After:  after,
					})
				}
			}
			rewritten[i] = copied
		}
		props[key] = rewritten
	}

	return changes
}
