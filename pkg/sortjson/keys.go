package sortjson

import (
	"slices"
	"strconv"
	"strings"
)

// compareKeys orders keys by UTF-16 code units, the way Java and JavaScript
// compare strings. Characters outside the BMP therefore sort by their
// surrogates, not by code point.
func compareKeys(a, b []uint16) int {
	return slices.Compare(a, b)
}

// sortEntries sorts one object level in place. Entries with equal keys keep
// their source order. Unless skipDuplicates is set, equal keys are an error.
func sortEntries(entries []entry, skipDuplicates bool, path []segment) error {
	slices.SortStableFunc(entries, func(a, b entry) int {
		return compareKeys(a.units, b.units)
	})
	if skipDuplicates {
		return nil
	}
	for i := 1; i < len(entries); i++ {
		if compareKeys(entries[i-1].units, entries[i].units) == 0 {
			return &KeyDuplicationError{Key: entries[i].key, Path: pathText(path)}
		}
	}
	return nil
}

// segment is one level of a structural path: an object key or an array index.
type segment struct {
	key     string
	index   int
	isIndex bool
}

func pathText(path []segment) string {
	if len(path) == 0 {
		return "/"
	}
	var sb strings.Builder
	for _, s := range path {
		sb.WriteByte('/')
		if s.isIndex {
			sb.WriteString(strconv.Itoa(s.index))
		} else {
			sb.WriteString(strings.ReplaceAll(s.key, "/", `\/`))
		}
	}
	return sb.String()
}
