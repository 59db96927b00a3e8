package extract

import (
	"path/filepath"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
)

// extToLanguage maps supported file extensions to canonical language names.
var extToLanguage = map[string]string{
	".tsx": "typescript",
	".ts":  "typescript",
	".jsx": "javascript",
	".js":  "javascript",
}

// Every supported file is parsed as TypeScript with JSX enabled; the TSX
// grammar is a superset of the other three dialects for import/export syntax.
var (
	grammar     *sitter.Language
	grammarOnce sync.Once
)

func tsxGrammar() *sitter.Language {
	grammarOnce.Do(func() {
		grammar = tsx.GetLanguage()
	})
	return grammar
}

// LanguageForFile returns the canonical language name for a file path based
// on its extension. Returns ("", false) if the extension is not recognized.
// Extensions are matched case-sensitively, as the resolver probes them.
func LanguageForFile(path string) (string, bool) {
	lang, ok := extToLanguage[filepath.Ext(path)]
	return lang, ok
}

// IsSourceFile reports whether path has one of the supported extensions.
func IsSourceFile(path string) bool {
	_, ok := LanguageForFile(path)
	return ok
}
