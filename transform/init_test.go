package transform

import (
	"github.com/richtext-go/prosemirror/test/builder"
)

var (
	schema     = builder.Schema
	doc        = builder.Doc
	p          = builder.P
	h1         = builder.H1
	blockquote = builder.Blockquote
	ul         = builder.Ul
	ol         = builder.Ol
	li         = builder.Li
	em         = builder.Em
	strong     = builder.Strong
	img        = builder.Img
	br         = builder.Br
)
