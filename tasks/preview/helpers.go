package preview

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/aymerick/raymond"
)

var tag = regexp.MustCompile(`<[^>]+>`)

// registerHelpers installs the template helpers on tpl. relativize is
// bound to the url of the page being rendered.
func registerHelpers(tpl *raymond.Template, page map[string]any) {
	pageURL, _ := page["url"].(string)

	tpl.RegisterHelper("eq", func(a, b any) bool { return equal(a, b) })
	tpl.RegisterHelper("ne", func(a, b any) bool { return !equal(a, b) })
	tpl.RegisterHelper("and", func(a, b any) bool { return raymond.IsTrue(a) && raymond.IsTrue(b) })
	tpl.RegisterHelper("or", func(a, b any) bool { return raymond.IsTrue(a) || raymond.IsTrue(b) })
	tpl.RegisterHelper("not", func(v any) bool { return !raymond.IsTrue(v) })
	tpl.RegisterHelper("increment", increment)
	tpl.RegisterHelper("detag", detag)
	tpl.RegisterHelper("year", func() string { return strconv.Itoa(time.Now().Year()) })
	tpl.RegisterHelper("relativize", func(to string) string { return relativize(pageURL, to) })
}

// equal compares template values by their string form, so a YAML number
// matches the same number given as a literal.
func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func increment(v any) int {
	switch n := v.(type) {
	case int:
		return n + 1
	case float64:
		return int(n) + 1
	case string:
		i, _ := strconv.Atoi(n)
		return i + 1
	}
	return 1
}

func detag(html string) string {
	return tag.ReplaceAllString(html, "")
}

// relativize turns the root-relative url to into a path relative to the
// page at from. Fragments, external and relative urls pass through.
func relativize(from, to string) string {
	if to == "" || !strings.HasPrefix(to, "/") || strings.HasPrefix(to, "//") {
		return to
	}
	if from == "" || !strings.HasPrefix(from, "/") {
		return to
	}

	target, hash, _ := strings.Cut(to, "#")
	if hash != "" {
		hash = "#" + hash
	}
	if target == from {
		if hash != "" {
			return hash
		}
		return path.Base(target)
	}

	fromDir := path.Dir(from)
	if strings.HasSuffix(from, "/") {
		fromDir = strings.TrimSuffix(from, "/")
	}
	rel := relPath(fromDir, target)
	if strings.HasSuffix(target, "/") && !strings.HasSuffix(rel, "/") {
		rel += "/"
	}
	return rel + hash
}

// relPath is filepath.Rel for slash-separated absolute paths.
func relPath(fromDir, to string) string {
	fromParts := splitPath(fromDir)
	toParts := splitPath(to)
	i := 0
	for i < len(fromParts) && i < len(toParts) && fromParts[i] == toParts[i] {
		i++
	}
	parts := make([]string, 0, len(fromParts)-i+len(toParts)-i)
	for range fromParts[i:] {
		parts = append(parts, "..")
	}
	parts = append(parts, toParts[i:]...)
	if len(parts) == 0 {
		return "./"
	}
	return strings.Join(parts, "/")
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
