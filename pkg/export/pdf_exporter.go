package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/noah-isme/smd-api/internal/models"
)

// PDFExporter renders a syllabus into a printable document.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Syllabus renders the full syllabus document including the current
// content version number.
func (e *PDFExporter) Syllabus(syllabus *models.Syllabus, version string) ([]byte, error) {
	if syllabus == nil {
		return nil, fmt.Errorf("pdf requires a syllabus")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, strings.ToUpper(syllabus.CourseName), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	subtitle := fmt.Sprintf("%s | %s | %d credits", syllabus.CourseCode, syllabus.Department, syllabus.Credits)
	pdf.CellFormat(0, 7, subtitle, "", 1, "C", false, 0, "")
	if version != "" {
		pdf.CellFormat(0, 7, fmt.Sprintf("Version %s", version), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	e.section(pdf, "Semester", fmt.Sprintf("%s %s", syllabus.Semester, syllabus.AcademicYear))
	e.section(pdf, "Description", syllabus.Description)
	e.section(pdf, "Objectives", syllabus.Objectives)
	e.section(pdf, "Prerequisites", syllabus.Prerequisites)
	e.section(pdf, "Assessment Methods", syllabus.AssessmentMethods)
	e.section(pdf, "Textbooks", syllabus.Textbooks)
	e.section(pdf, "References", syllabus.References)

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) section(pdf *gofpdf.Fpdf, heading, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, heading, "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.MultiCell(0, 5, body, "", "", false)
	pdf.Ln(3)
}
