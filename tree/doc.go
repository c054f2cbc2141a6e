// Package tree reads and writes press document trees and metadata.
//
// A tree document is the serialized form of a parsed template: a root unit
// whose body is a list of nodes. Each node is a mapping with exactly one of
// the keys text, sub, each, or root:
//
//	root: layouts/post.html
//	body:
//	  - text: "<h1>"
//	  - sub: page.title
//	  - sub: {lit: 3.5}
//	    param: F2
//	  - sub: page.key
//	    indirect: true
//	  - each: posts
//	    as: post
//	    body:
//	      - sub: post.value.title
//
// Expressions are written as a bare string (a variable path), a scalar (a
// literal), or a single-key mapping: {lit: v}, {var: path}, {array: [...]},
// or {group: [...]}. A bare string given as param is a literal format
// specifier.
//
// Metadata documents are YAML mappings. [LoadMetadata] merges several of them
// into the seed of a root scope.
package tree
