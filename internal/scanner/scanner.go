// Package scanner discovers practice files and groups them by language.
package scanner

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// languageByExt maps lowercase file extensions to language names.
var languageByExt = map[string]string{
	".py":    "Python",
	".js":    "JavaScript",
	".ts":    "TypeScript",
	".java":  "Java",
	".c":     "C",
	".cpp":   "C++",
	".cc":    "C++",
	".cxx":   "C++",
	".h":     "C/C++ Header",
	".hpp":   "C++ Header",
	".cs":    "C#",
	".go":    "Go",
	".rs":    "Rust",
	".rb":    "Ruby",
	".php":   "PHP",
	".swift": "Swift",
	".kt":    "Kotlin",
	".m":     "Objective-C",
	".scala": "Scala",
	".r":     "R",
	".dart":  "Dart",
	".lua":   "Lua",
	".pl":    "Perl",
	".sh":    "Shell",
	".bash":  "Bash",
	".zsh":   "Zsh",
	".fish":  "Fish",
	".ps1":   "PowerShell",
	".sql":   "SQL",
	".html":  "HTML",
	".htm":   "HTML",
	".css":   "CSS",
	".scss":  "SCSS",
	".sass":  "Sass",
	".less":  "Less",
	".xml":   "XML",
	".json":  "JSON",
	".yaml":  "YAML",
	".yml":   "YAML",
	".toml":  "TOML",
	".md":    "Markdown",
	".txt":   "Text",
}

// ignoredDirs are directory names skipped during scanning.
var ignoredDirs = map[string]struct{}{
	".git":          {},
	".venv":         {},
	"venv":          {},
	"env":           {},
	"node_modules":  {},
	"__pycache__":   {},
	".pytest_cache": {},
	".mypy_cache":   {},
	".tox":          {},
	"build":         {},
	"dist":          {},
	".egg-info":     {},
	"target":        {},
	"bin":           {},
	"obj":           {},
}

// Language returns the language name for a file path, or "Unknown".
func Language(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := languageByExt[ext]; ok {
		return lang
	}
	return "Unknown"
}

// Scan walks the given folders and groups recognized files by language.
// Folders that do not exist are skipped.
func Scan(folders []string) map[string][]string {
	byLanguage := map[string][]string{}
	for _, folder := range folders {
		_ = filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if _, ok := ignoredDirs[d.Name()]; ok && path != folder {
					return fs.SkipDir
				}
				return nil
			}
			ext := strings.ToLower(filepath.Ext(path))
			if lang, ok := languageByExt[ext]; ok {
				byLanguage[lang] = append(byLanguage[lang], path)
			}
			return nil
		})
	}
	return byLanguage
}
