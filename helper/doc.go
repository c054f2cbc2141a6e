// Package helper provides the built-in callable values of press.
//
// [Register] binds them into a root scope:
//
//	{env | HOME}                   process environment variable
//	{now | %Y-%m-%d}               current time
//	{upper | (page.title)}         case conversion (also lower, title)
//	{join | (", " a b c)}          join with a separator
//	{prefix | (PATH /opt/bin)}     prepend to a path list, deduplicated
//	{calc | "price * qty"}         expr-lang arithmetic over visible bindings
//	{raw | "<br>"}                 insert text as raw HTML
//
// The values target, platform, and hostname describe the host.
package helper
