package dto

// SemanticDiffRequest asks the AI service to compare two syllabi.
type SemanticDiffRequest struct {
	SyllabusID1 string `json:"syllabus_id_1" binding:"required"`
	SyllabusID2 string `json:"syllabus_id_2" binding:"required"`
}

// SummaryRequest asks the AI service to summarize one syllabus.
type SummaryRequest struct {
	SyllabusID string `json:"syllabus_id" binding:"required"`
}

// CLOPLOCheckRequest asks the AI service to check outcome alignment.
type CLOPLOCheckRequest struct {
	SyllabusID string `json:"syllabus_id" binding:"required"`
}

// OCRRequest submits an uploaded document for text extraction.
type OCRRequest struct {
	FileData string `json:"file_data" binding:"required"`
	FileType string `json:"file_type" binding:"required"`
}

// AITaskResponse returns the generated task id for polling elsewhere.
type AITaskResponse struct {
	TaskID string `json:"task_id"`
}
