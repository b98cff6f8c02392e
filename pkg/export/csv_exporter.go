package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/noah-isme/smd-api/internal/models"
)

// CSVExporter renders syllabus listings into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// SyllabusList produces one CSV row per syllabus.
func (e *CSVExporter) SyllabusList(syllabi []models.Syllabus) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	header := []string{"course_code", "course_name", "department", "credits", "semester", "academic_year", "status", "updated_at"}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, s := range syllabi {
		record := []string{
			s.CourseCode,
			s.CourseName,
			s.Department,
			fmt.Sprintf("%d", s.Credits),
			s.Semester,
			s.AcademicYear,
			string(s.Status),
			s.UpdatedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
