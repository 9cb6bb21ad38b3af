/* Package markdoc compiles Markdown both ways against an operation-based
document service.

The forward direction, Compile, turns Markdown text into phases of edit
operations: ordered inserts and style updates against a growing document,
with a 1-based running position index threaded through the parse. Tables
break the stream into separate phases because inserting a native grid needs
the live end-of-document index, which only the executing caller can query;
CompileFlat instead draws tables as monospaced text so everything fits one
batch. The reverse direction, RenderMarkdown, walks a document model and
reconstitutes Markdown line by line.

Malformed input never errors: unmatched delimiters pass through as literal
text, ragged table rows are padded or truncated to the header width.
*/
package markdoc
