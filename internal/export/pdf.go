package export

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/upnext/upnext/internal/agenda"
	"github.com/upnext/upnext/internal/todoist"
)

// WritePDF renders a printable agenda: the tasks grouped into overdue,
// today, and upcoming sections, with undated tasks collected at the end.
func WritePDF(w io.Writer, tasks []todoist.Task, projectNames map[string]string, now time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Agenda", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "Agenda", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, now.Format("Monday, 2 January 2006"), "", 1, "C", false, 0, "")
	hr(pdf)

	buckets := agenda.Classify(tasks, now)
	writeSection(pdf, "Overdue", buckets.Overdue, projectNames)
	writeSection(pdf, "Today", buckets.Today, projectNames)
	writeSection(pdf, "Upcoming", buckets.Upcoming, projectNames)

	var undated []todoist.Task
	for _, t := range tasks {
		if t.Due == nil {
			undated = append(undated, t)
		}
	}
	writeSection(pdf, "No due date", undated, projectNames)

	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, 10, fmt.Sprintf("%d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	return pdf.Output(w)
}

func writeSection(pdf *gofpdf.Fpdf, title string, tasks []todoist.Task, projectNames map[string]string) {
	if len(tasks) == 0 {
		return
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, fmt.Sprintf("%s (%d)", title, len(tasks)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)

	for _, r := range Records(tasks, projectNames) {
		line := r.Content
		if r.Due != "" {
			line += "  -  " + r.Due
		}
		if r.Project != "" {
			line += "  [" + r.Project + "]"
		}
		pdf.MultiCell(0, 6, line, "", "L", false)
	}
	hr(pdf)
}

func hr(pdf *gofpdf.Fpdf) {
	pdf.Ln(2)
	x, y := pdf.GetX(), pdf.GetY()
	pdf.SetLineWidth(0.3)
	pdf.Line(x, y, 190, y)
	pdf.Ln(3)
}
