package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/mediclaim/internal/model"
)

// MarkdownWriter outputs results in GitHub-flavored Markdown, for attaching
// the analysis to a claim ticket or sharing it for review.
type MarkdownWriter struct {
	baseWriter
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithMarkdownSource adds the document to the report header.
func WithMarkdownSource(s Source) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.source = s
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the result in Markdown format.
func (w *MarkdownWriter) Write(result *model.AnalysisResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md)
	w.writeConfidence(md, result)
	w.writePackages(md, result)
	w.writeClinical(md, result)
	w.writeRiskFlags(md, result)
	w.writeRequiredDocuments(md, result)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteFailure outputs a failed analysis as a caution alert.
func (w *MarkdownWriter) WriteFailure(failure *model.AnalysisError) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md)
	md.H2("Analysis Failed")
	md.PlainText("")
	md.Caution(failure.Message())
	md.PlainText("")

	rows := [][]string{{"Kind", "`" + failure.Kind.String() + "`"}}
	if failure.StatusCode != 0 {
		rows = append(rows, []string{"HTTP Status", strconv.Itoa(failure.StatusCode)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown) {
	md.H1("MediClaim Analysis Report")
	md.PlainText("")

	if w.source.IsZero() {
		return
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Document", "`" + w.source.Name + "`"},
			{"Type", string(w.source.MediaType)},
			{"Size", strconv.FormatInt(w.source.Size, 10) + " bytes"},
			{"Fingerprint", "`" + w.source.Fingerprint + "`"},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeConfidence(md *markdown.Markdown, result *model.AnalysisResult) {
	c := result.Confidence()

	md.H2("Confidence")
	md.PlainText("")
	md.PlainTextf("**%d%%** %s", c.Percent, c.Tier)
	md.PlainText("")

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Claim Confidence"),
		piechart.WithShowData(true),
	)
	if c.Percent > 0 {
		chart.LabelAndIntValue("Confidence", uint64(c.Percent))
	}
	if c.Percent < 100 {
		chart.LabelAndIntValue("Uncertainty", uint64(100-c.Percent))
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")

	w.writeAlert(md, result)
}

// writeAlert picks the alert from the tier, escalated by risk flags.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, result *model.AnalysisResult) {
	c := result.Confidence()
	flags := len(result.RiskFlags())

	switch {
	case c.Tier == model.TierLow:
		md.Cautionf("%s. A reviewer should check the extraction against the source document.", c.Tier)
	case flags > 0:
		md.Warningf("%d risk flag(s) detected. Resolve them before submitting the claim.", flags)
	case c.Tier == model.TierModerate:
		md.Important("Moderate confidence. Double-check the package selection.")
	default:
		md.Tip("High confidence and no risk flags detected.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writePackages(md *markdown.Markdown, result *model.AnalysisResult) {
	md.H2("Package Recommendation")
	md.PlainText("")

	primary := result.PrimaryPackage()
	addOns := result.AddOnPackages()
	if primary.IsZero() && len(addOns) == 0 {
		md.PlainText("No package recommended.")
		md.PlainText("")
	} else {
		rows := make([][]string, 0, len(addOns)+1)
		if !primary.IsZero() {
			rows = append(rows, []string{"**Primary**", "`" + primary.Code + "`", cell(primary.Name), cell(primary.Reason)})
		}
		for _, p := range addOns {
			rows = append(rows, []string{"Add-on", "`" + p.Code + "`", cell(p.Name), cell(p.Reason)})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Role", "Code", "Package", "Reason"},
			Rows:   rows,
		})
		md.PlainText("")
	}
	md.PlainTextf("Total applicable packages: **%d**", result.TotalApplicablePackages())
	md.PlainText("")

	if rejected := result.RejectedPackages(); len(rejected) > 0 {
		md.H3("Rejected Packages")
		md.PlainText("")
		rows := make([][]string, len(rejected))
		for i, r := range rejected {
			rows[i] = []string{"`" + r.Code + "`", cell(r.Reason)}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Code", "Reason"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeClinical(md *markdown.Markdown, result *model.AnalysisResult) {
	md.H2("Clinical Extraction")
	md.PlainText("")

	orderedList(md, "Diagnoses", result.Diagnoses())
	orderedList(md, "Procedures", result.Procedures())
	if complications := result.Complications(); len(complications) > 0 {
		orderedList(md, "Complications", complications)
	}

	var rows [][]string
	for _, d := range [][2]string{
		{"Surgery Type", result.SurgeryType()},
		{"Anesthesia", result.Anesthesia()},
		{"Admission Type", result.AdmissionType()},
		{"Remarks", result.Remarks()},
	} {
		if d[1] != "" {
			rows = append(rows, []string{d[0], cell(d[1])})
		}
	}
	if len(rows) > 0 {
		md.Table(markdown.TableSet{
			Header: []string{"Detail", "Value"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	if summary := result.Summary(); summary != "" {
		md.H3("Summary")
		md.PlainText("")
		md.PlainText(summary)
		md.PlainText("")
	}

	concepts := strings.Join(result.PrimaryConditions(), ", ")
	if concepts != "" {
		md.Details("Normalized concepts",
			"Primary conditions: "+concepts+
				"\n\nDefinitive procedures: "+strings.Join(result.DefinitiveProcedures(), ", ")+
				"\n\nSupporting procedures: "+strings.Join(result.SupportingProcedures(), ", "))
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeRiskFlags(md *markdown.Markdown, result *model.AnalysisResult) {
	md.H2("Risk Flags")
	md.PlainText("")

	if result.AllClear() {
		md.PlainText("✅ All Clear - No risk flags detected")
		md.PlainText("")
		return
	}
	md.BulletList(result.RiskFlags()...)
	md.PlainText("")
}

func (w *MarkdownWriter) writeRequiredDocuments(md *markdown.Markdown, result *model.AnalysisResult) {
	docs := result.RequiredDocuments()
	if len(docs) == 0 {
		return
	}

	md.H2("Required Documents")
	md.PlainText("")
	md.BulletList(docs...)
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.Note(VerifyReminder)
	md.PlainText("")
	md.PlainTextf("*Report generated by [MediClaim](https://github.com/nao1215/mediclaim)*")
}

func orderedList(md *markdown.Markdown, title string, items []string) {
	md.H3(title)
	md.PlainText("")
	if len(items) == 0 {
		md.PlainText("_None_")
	} else {
		md.OrderedList(items...)
	}
	md.PlainText("")
}

// cell makes text safe inside a table cell.
func cell(s string) string {
	if s == "" {
		return "-"
	}
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
