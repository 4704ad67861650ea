package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nao1215/mediclaim/internal/model"
)

const (
	ruleWidth = 70
	barWidth  = 20
)

// SimpleWriter outputs human-readable text for terminal display.
// It uses no ANSI colors, so the output can be piped to files.
type SimpleWriter struct {
	baseWriter

	// verbose adds normalized concepts and error causes.
	verbose bool

	printer *message.Printer
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// WithSource prints the document in the report header.
func WithSource(s Source) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.source = s
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		printer:    message.NewPrinter(language.English),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the result in human-readable format.
func (w *SimpleWriter) Write(result *model.AnalysisResult) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb)
	w.writePackages(&sb, result)
	w.writeConfidence(&sb, result)
	w.writeClinical(&sb, result)
	if w.verbose {
		w.writeConcepts(&sb, result)
	}
	w.writeRiskFlags(&sb, result)
	w.writeRequiredDocuments(&sb, result)
	w.writeSummary(&sb, result)
	w.writeFooter(&sb)

	return io.WriteString(w.output, sb.String())
}

// WriteFailure outputs the failed-state message box.
func (w *SimpleWriter) WriteFailure(failure *model.AnalysisError) (int, error) {
	var sb strings.Builder

	border := "+" + strings.Repeat("-", ruleWidth-2) + "+\n"
	sb.WriteString("\n")
	sb.WriteString(border)
	sb.WriteString(boxLine("ANALYSIS FAILED"))
	sb.WriteString(border)
	for _, line := range wrap(failure.Message(), ruleWidth-4) {
		sb.WriteString(boxLine(line))
	}
	sb.WriteString(border)

	if w.source.Name != "" {
		sb.WriteString(fmt.Sprintf("  Document: %s\n", w.source.Name))
	}
	if failure.StatusCode != 0 {
		sb.WriteString(fmt.Sprintf("  HTTP status: %d\n", failure.StatusCode))
	}
	if w.verbose {
		sb.WriteString(fmt.Sprintf("  Kind: %s\n", failure.Kind))
		if failure.Err != nil {
			sb.WriteString(fmt.Sprintf("  Cause: %v\n", failure.Err))
		}
	}
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("                    MEDICLAIM ANALYSIS REPORT\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")

	if w.source.IsZero() {
		return
	}
	sb.WriteString(w.printer.Sprintf("Document:     %s (%s, %d bytes)\n", w.source.Name, w.source.MediaType, w.source.Size))
	if w.source.Fingerprint != "" {
		sb.WriteString(fmt.Sprintf("Fingerprint:  %s\n", w.source.Fingerprint))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writePackages(sb *strings.Builder, result *model.AnalysisResult) {
	section(sb, "PACKAGE RECOMMENDATION")

	primary := result.PrimaryPackage()
	addOns := result.AddOnPackages()
	if primary.IsZero() && len(addOns) == 0 {
		sb.WriteString("  No package recommended\n\n")
	} else {
		rows := make([][]string, 0, len(addOns)+1)
		if !primary.IsZero() {
			rows = append(rows, []string{"Primary", primary.Code, primary.Name, primary.Reason})
		}
		for _, p := range addOns {
			rows = append(rows, []string{"Add-on", p.Code, p.Name, p.Reason})
		}

		table := tablewriter.NewWriter(sb)
		table.Header("Role", "Code", "Package", "Reason")
		// Writes go to a strings.Builder, which never fails.
		_ = table.Bulk(rows) //nolint:errcheck
		_ = table.Render()   //nolint:errcheck
		sb.WriteString("\n")
	}

	sb.WriteString(w.printer.Sprintf("  Total applicable packages: %d\n", result.TotalApplicablePackages()))

	if rejected := result.RejectedPackages(); len(rejected) > 0 {
		sb.WriteString("\n  Rejected:\n")
		for _, r := range rejected {
			sb.WriteString(fmt.Sprintf("    [x] %s", r.Code))
			if r.Reason != "" {
				sb.WriteString(" - " + r.Reason)
			}
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeConfidence(sb *strings.Builder, result *model.AnalysisResult) {
	section(sb, "CONFIDENCE")

	c := result.Confidence()
	filled := c.Percent * barWidth / 100
	sb.WriteString(fmt.Sprintf("  %d%%  %s\n", c.Percent, c.Tier))
	sb.WriteString(fmt.Sprintf("  [%s%s]\n\n", strings.Repeat("#", filled), strings.Repeat("-", barWidth-filled)))
}

func (w *SimpleWriter) writeClinical(sb *strings.Builder, result *model.AnalysisResult) {
	section(sb, "CLINICAL EXTRACTION")

	numbered(sb, "Diagnoses", result.Diagnoses())
	numbered(sb, "Procedures", result.Procedures())
	if complications := result.Complications(); len(complications) > 0 {
		numbered(sb, "Complications", complications)
	}

	details := [][2]string{
		{"Surgery type", result.SurgeryType()},
		{"Anesthesia", result.Anesthesia()},
		{"Admission type", result.AdmissionType()},
		{"Remarks", result.Remarks()},
	}
	for _, d := range details {
		if d[1] != "" {
			sb.WriteString(fmt.Sprintf("  %-15s %s\n", d[0]+":", d[1]))
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeConcepts(sb *strings.Builder, result *model.AnalysisResult) {
	section(sb, "NORMALIZED CONCEPTS")

	numbered(sb, "Primary conditions", result.PrimaryConditions())
	numbered(sb, "Definitive procedures", result.DefinitiveProcedures())
	numbered(sb, "Supporting procedures", result.SupportingProcedures())
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeRiskFlags(sb *strings.Builder, result *model.AnalysisResult) {
	section(sb, "RISK FLAGS")

	if result.AllClear() {
		sb.WriteString("  [+] All Clear - No risk flags detected\n\n")
		return
	}
	for _, flag := range result.RiskFlags() {
		sb.WriteString(fmt.Sprintf("  [!] %s\n", flag))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeRequiredDocuments(sb *strings.Builder, result *model.AnalysisResult) {
	docs := result.RequiredDocuments()
	if len(docs) == 0 {
		return
	}

	section(sb, "REQUIRED DOCUMENTS")
	for _, d := range docs {
		sb.WriteString(fmt.Sprintf("  [ ] %s\n", d))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSummary(sb *strings.Builder, result *model.AnalysisResult) {
	summary := result.Summary()
	if summary == "" {
		return
	}

	section(sb, "SUMMARY")
	for _, line := range wrap(summary, ruleWidth-2) {
		sb.WriteString("  " + line + "\n")
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	for _, line := range wrap(VerifyReminder, ruleWidth) {
		sb.WriteString(line + "\n")
	}
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
}

func section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}

func numbered(sb *strings.Builder, label string, items []string) {
	sb.WriteString(fmt.Sprintf("  %s:\n", label))
	if len(items) == 0 {
		sb.WriteString("    (none)\n")
		return
	}
	for i, item := range items {
		sb.WriteString(fmt.Sprintf("    %d. %s\n", i+1, item))
	}
}

func boxLine(text string) string {
	return fmt.Sprintf("| %-*s |\n", ruleWidth-4, text)
}

// wrap splits text into lines of at most width bytes at spaces.
// Words longer than width are kept whole.
func wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	line := words[0]
	for _, word := range words[1:] {
		if len(line)+1+len(word) > width {
			lines = append(lines, line)
			line = word
			continue
		}
		line += " " + word
	}
	return append(lines, line)
}
