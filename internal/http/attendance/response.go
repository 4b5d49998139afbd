package attendance

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/bursar/internal/attendance"
)

type recordResponse struct {
	ID        uuid.UUID         `json:"id"`
	Student   uuid.UUID         `json:"student"`
	Date      string            `json:"date"`
	Subject   string            `json:"subject"`
	Course    string            `json:"course"`
	Semester  int               `json:"semester"`
	Section   string            `json:"section"`
	Status    attendance.Status `json:"status"`
	MarkedBy  string            `json:"markedBy"`
	Remarks   string            `json:"remarks,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt *time.Time        `json:"updatedAt,omitempty"`
}

type statsResponse struct {
	Subject    string  `json:"subject,omitempty"`
	Total      int     `json:"total"`
	Present    int     `json:"present"`
	Absent     int     `json:"absent"`
	Late       int     `json:"late"`
	Percentage float64 `json:"percentage"`
}

type reportResponse struct {
	Attendance []recordResponse `json:"attendance"`
	Stats      []statsResponse  `json:"stats"`
	Overall    statsResponse    `json:"overall"`
}

type markResponse struct {
	Message string                  `json:"message"`
	Count   int                     `json:"count"`
	Records []recordResponse        `json:"records"`
	Errors  []attendance.EntryError `json:"errors,omitempty"`
}

func toResponse(rec *attendance.Record) recordResponse {
	return recordResponse{
		ID:        rec.ID,
		Student:   rec.StudentID,
		Date:      rec.Date.Format(time.DateOnly),
		Subject:   rec.Subject,
		Course:    rec.Course,
		Semester:  rec.Semester,
		Section:   rec.Section,
		Status:    rec.Status,
		MarkedBy:  rec.MarkedBy,
		Remarks:   rec.Remarks,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

func toResponseList(recs []*attendance.Record) []recordResponse {
	resp := make([]recordResponse, len(recs))
	for i, rec := range recs {
		resp[i] = toResponse(rec)
	}

	return resp
}

func toStatsResponse(s attendance.Stats) statsResponse {
	return statsResponse{
		Subject:    s.Subject,
		Total:      s.Total,
		Present:    s.Present,
		Absent:     s.Absent,
		Late:       s.Late,
		Percentage: s.Percentage,
	}
}

func toReportResponse(report *attendance.Report) reportResponse {
	resp := reportResponse{
		Attendance: toResponseList(report.Records),
		Stats:      make([]statsResponse, 0, len(report.Subjects)),
		Overall:    toStatsResponse(report.Overall),
	}

	for _, s := range report.Subjects {
		resp.Stats = append(resp.Stats, toStatsResponse(s))
	}

	return resp
}
