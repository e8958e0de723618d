// Package npm reads tool versions declared in a project's package.json.
package npm

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
)

// ManifestFile is the npm package manifest name.
const ManifestFile = "package.json"

// dependencyFields are searched in order.
var dependencyFields = []string{"devDependencies", "dependencies"}

var exactVersion = regexp.MustCompile(`^\d+\.\d+\.\d+(?:[-+][0-9A-Za-z.-]+)?$`)

// DeclaredVersion returns the version of pkg pinned in the package.json
// under dir. Ranges are reduced to their base version when they are a
// single caret, tilde or "=" constraint; anything else is ignored.
// A missing manifest is not an error.
func DeclaredVersion(dir, pkg string) (string, bool, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read %s: %w", ManifestFile, err)
	}

	data = jsonc.ToJSON(data)
	if !gjson.ValidBytes(data) {
		return "", false, fmt.Errorf("parse %s: invalid JSON", filepath.Join(dir, ManifestFile))
	}

	for _, field := range dependencyFields {
		res := gjson.GetBytes(data, field+"."+escapePath(pkg))
		if !res.Exists() {
			continue
		}
		if v, ok := normalize(res.String()); ok {
			return v, true, nil
		}
		return "", false, nil
	}
	return "", false, nil
}

func normalize(version string) (string, bool) {
	version = strings.TrimSpace(version)
	version = strings.TrimLeft(version, "^~=v")
	if exactVersion.MatchString(version) {
		return version, true
	}
	return "", false
}

// escapePath escapes gjson path metacharacters in a package name such as
// "@stylistic/stylelint-plugin".
func escapePath(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
