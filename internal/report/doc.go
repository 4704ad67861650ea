// Package report renders analysis results and failures.
//
// Writers for each output format:
//   - SimpleWriter: human-readable text for terminal display
//   - MarkdownWriter: GitHub-flavored Markdown with alerts and a confidence chart
//   - JSONWriter and FullJSONWriter: structured output for tool integration
//
// All writers implement Writer and can be combined with MultiWriter.
package report
