// Package lang implements the expression reduction and tree rendering engine
// behind press.
//
// # Values
//
// [Value] is a closed tagged union of the kinds the reducer understands:
// undefined (not-found), null, booleans, numbers, strings, times, lists,
// maps, callables, raw HTML, and one open kind wrapping any other Go value.
// External values take part in resolution only through the capability
// interfaces [ImplicitValuer], [PropertyGetter], [Formatter], and
// [Sequence].
//
// # Expressions
//
// An [Expression] is one of [Literal], [Variable], [Array], or [Group].
// [Reduce] resolves an expression against a [Scope]:
//
//	page.author.name     // lookup "page", then properties "author", "name"
//
// A path segment that cannot be resolved ends the walk at the last value
// reached, so page.author.missing resolves to page.author.
//
// # Formatting
//
// [Format] converts a value to text. Implicit values and callables are
// followed until a concrete value is reached, raw HTML becomes a placeholder
// token, numbers and times accept format specifiers, and collections are
// joined with commas:
//
//	F2         3.5   -> 3.50 (3,50 with lang: de)
//	N0         12345 -> 12,345
//	P1         0.25  -> 25.0%
//	%Y-%m-%d   time  -> 2024-03-01
//
// # Rendering
//
// A document is a [Root] of [Node] values: [Text], [Substitution], and
// [Iteration]. A [Template] drives the two-phase render of a root. The first
// phase walks the tree and replaces raw-HTML payloads with placeholder
// tokens. The second phase substitutes every token with its payload, so raw
// HTML is never escaped or re-parsed.
//
//	tmpl := lang.NewTemplate(root, lang.WithEscaper(lang.EscapeHTML))
//	out, err := tmpl.Render(ctx, metadata)
//
// # Scoping
//
// Scopes form a parent-linked chain allocated from a per-render arena.
// Lookups search the innermost scope first; writes are always local. Each
// iteration element and each nested template render spawns its own child,
// which is released when that unit finishes.
package lang
