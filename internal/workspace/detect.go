// Package workspace inspects the directory the server was launched in
// to give clients sensible defaults for search parameters.
package workspace

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// scanLimit caps the walk so huge trees stay cheap to inspect.
const scanLimit = 100

// Context describes what the scan found.
type Context struct {
	Workspace   string   `json:"workspace"`
	Languages   []string `json:"languages"`
	Frameworks  []string `json:"frameworks"`
	ConfigFiles []string `json:"config_files"`
	ScanLimited bool     `json:"scan_limited,omitempty"`
}

var skippedDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"__pycache__":  true,
	"venv":         true,
	".venv":        true,
	"dist":         true,
	"build":        true,
	"vendor":       true,
}

var languageByExt = map[string]string{
	".go":    "Go",
	".py":    "Python",
	".js":    "JavaScript",
	".jsx":   "JavaScript",
	".ts":    "TypeScript",
	".tsx":   "TypeScript",
	".rs":    "Rust",
	".java":  "Java",
	".rb":    "Ruby",
	".cs":    "C#",
	".cpp":   "C++",
	".c":     "C",
	".php":   "PHP",
	".kt":    "Kotlin",
	".swift": "Swift",
}

var frameworkByMarker = map[string]string{
	"next.config.js":     "Next.js",
	"next.config.mjs":    "Next.js",
	"angular.json":       "Angular",
	"vue.config.js":      "Vue",
	"nuxt.config.ts":     "Nuxt",
	"svelte.config.js":   "Svelte",
	"manage.py":          "Django",
	"Gemfile":            "Rails",
	"pom.xml":            "Maven",
	"build.gradle":       "Gradle",
	"docker-compose.yml": "Docker Compose",
	"Dockerfile":         "Docker",
}

var manifests = map[string]bool{
	"package.json":     true,
	"requirements.txt": true,
	"pyproject.toml":   true,
	"Cargo.toml":       true,
	"go.mod":           true,
	"pom.xml":          true,
	"Gemfile":          true,
	"composer.json":    true,
}

// Detect scans root for language, framework, and manifest signals. The
// walk stops after scanLimit files. Errors are treated as an empty scan.
func Detect(root string) Context {
	ctx := Context{
		Workspace:   root,
		Languages:   []string{},
		Frameworks:  []string{},
		ConfigFiles: []string{},
	}

	langs := map[string]bool{}
	fws := map[string]bool{}
	seen := 0

	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fs.SkipDir
		}
		if d.IsDir() {
			if path != root && skippedDirs[d.Name()] {
				return fs.SkipDir
			}
			return nil
		}
		if seen >= scanLimit {
			ctx.ScanLimited = true
			return fs.SkipAll
		}
		seen++

		name := d.Name()
		if lang, ok := languageByExt[strings.ToLower(filepath.Ext(name))]; ok {
			langs[lang] = true
		}
		if fw, ok := frameworkByMarker[name]; ok {
			fws[fw] = true
		}
		if manifests[name] {
			ctx.ConfigFiles = append(ctx.ConfigFiles, name)
		}
		return nil
	})

	for lang := range langs {
		ctx.Languages = append(ctx.Languages, lang)
	}
	for fw := range fws {
		ctx.Frameworks = append(ctx.Frameworks, fw)
	}
	sort.Strings(ctx.Languages)
	sort.Strings(ctx.Frameworks)
	sort.Strings(ctx.ConfigFiles)
	return ctx
}

// DetectCwd scans the process working directory.
func DetectCwd() Context {
	cwd, err := os.Getwd()
	if err != nil {
		return Context{Languages: []string{}, Frameworks: []string{}, ConfigFiles: []string{}}
	}
	return Detect(cwd)
}

// DefaultLanguage suggests a language parameter from the scan, or ""
// when the workspace gives no signal.
func (c Context) DefaultLanguage() string {
	if len(c.Languages) == 0 {
		return ""
	}
	return c.Languages[0]
}
