package mcpserver

// GraphSyntaxContract describes the note graph syntax the exporter
// understands, for LLM consumers that read or write graph pages.
const GraphSyntaxContract = `# logpub Graph Syntax

A graph is a directory with two collections of Markdown files:

- ` + "`pages/<Title>.md`" + ` – named pages. The file name without ` + "`.md`" + ` is the page title.
- ` + "`journals/<date>.md`" + ` – dated entries. They are never published on their own,
  but their blocks can be embedded.

## Page attributes

Attribute lines in the first paragraph of a page describe the page:

` + "```" + `markdown
public:: true
tags:: go, notes
` + "```" + `

A page is published only when ` + "`public`" + ` is exactly ` + "`true`" + ` (lower case).

## Block ids

Tag a block with an ` + "`id::`" + ` attribute line, either inside the block:

` + "```" + `markdown
- The block content
  id:: 6540f1c2-8a51-4f0e-9d7e-6a3d3c1f9b10
` + "```" + `

or as a properties paragraph right before the block it tags:

` + "```" + `markdown
- id:: 6540f1c2-8a51-4f0e-9d7e-6a3d3c1f9b10

  > The quoted block being tagged
` + "```" + `

Ids should be unique across the graph. On a duplicate the file enumerated last
wins (pages before journals, each sorted by file name).

## References

- ` + "`[[Page Title]]`" + ` links to a page. It becomes a link only when the target is
  a published page; otherwise it is shown as a dangling link.
- ` + "`((block-id))`" + ` alone in a paragraph embeds the tagged block, with a line naming
  the page it came from. Unknown ids, reference cycles and too deeply nested
  embeds are shown as ` + "`REFERENCE: <id>`" + `.

## Rules

1. Attribute names are ASCII letters only; the value is the rest of the line.
2. Attribute lines never appear in the output.
3. Encoding is UTF-8.
`
