package domain

// Script languages understood by the engine.
const (
	// ScriptLanguageLua is the default language (github.com/yuin/gopher-lua).
	ScriptLanguageLua = "lua"
	// ScriptLanguageExpr evaluates scripts as expr-lang expressions.
	ScriptLanguageExpr = "expr"
)

// DefaultScriptLanguage is used when a Definition leaves ScriptLanguage empty.
const DefaultScriptLanguage = ScriptLanguageLua
