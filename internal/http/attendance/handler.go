package attendance

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/bursar/internal/attendance"
	"github.com/MrJamesThe3rd/bursar/internal/auth"
	"github.com/MrJamesThe3rd/bursar/internal/http/request"
	"github.com/MrJamesThe3rd/bursar/internal/http/respond"
)

var markers = []auth.Role{auth.RoleSuperAdmin, auth.RoleAdmin, auth.RoleTeacher}

type Handler struct {
	svc *attendance.Service
}

func NewHandler(svc *attendance.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes expects auth.Middleware to have run.
func (h *Handler) Routes(r chi.Router) {
	r.With(auth.RequireRole(auth.RoleStudent)).Get("/my-attendance", h.myReport)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(markers...))

		r.Post("/mark", h.mark)
		r.Get("/", h.list)
		r.Get("/student/{studentId}", h.studentReport)
		r.Delete("/{id}", h.delete)
	})
}

type markEntry struct {
	StudentID string            `json:"studentId" validate:"required,uuid"`
	Status    attendance.Status `json:"status" validate:"required,oneof=present absent late"`
}

type markRequest struct {
	Date     request.Date `json:"date"`
	Subject  string       `json:"subject" validate:"notblank"`
	Course   string       `json:"course" validate:"notblank"`
	Semester int          `json:"semester" validate:"gte=1,lte=12"`
	Section  string       `json:"section" validate:"max=8"`
	Students []markEntry  `json:"students" validate:"required,min=1,dive"`
}

func (h *Handler) mark(w http.ResponseWriter, r *http.Request) {
	var req markRequest
	if err := request.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	caller, _ := auth.FromContext(r.Context())

	params := attendance.MarkParams{
		Date:     req.Date.Time,
		Subject:  req.Subject,
		Course:   req.Course,
		Semester: req.Semester,
		Section:  req.Section,
		MarkedBy: caller.Subject,
		Entries:  make([]attendance.Entry, 0, len(req.Students)),
	}

	for _, s := range req.Students {
		// Validated as a uuid above.
		params.Entries = append(params.Entries, attendance.Entry{StudentID: uuid.MustParse(s.StudentID), Status: s.Status})
	}

	result, err := h.svc.Mark(r.Context(), params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, markResponse{
		Message: "Attendance marked successfully",
		Count:   len(result.Records),
		Records: toResponseList(result.Records),
		Errors:  result.Errors,
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := attendance.Filter{
		Subject: q.Get("subject"),
		Course:  q.Get("course"),
		Section: q.Get("section"),
	}

	if s := q.Get("date"); s != "" {
		d, err := request.ParseTime(s)
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		filter.Date = &d
	}

	if s := q.Get("semester"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			respond.Status(w, http.StatusBadRequest, "bad_request", "invalid semester")
			return
		}

		filter.Semester = &n
	}

	if s := q.Get("studentId"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			respond.Status(w, http.StatusBadRequest, "bad_request", "invalid studentId")
			return
		}

		filter.StudentID = &id
	}

	recs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(recs))
}

func (h *Handler) studentReport(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "studentId")
	if !ok {
		return
	}

	report, err := h.svc.StudentReport(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toReportResponse(report))
}

func (h *Handler) myReport(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.FromContext(r.Context())

	report, err := h.svc.MyReport(r.Context(), caller.Subject)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toReportResponse(report))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]string{"message": "Attendance record deleted successfully"})
}

func pathID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		respond.Status(w, http.StatusBadRequest, "bad_request", "invalid id")
		return uuid.Nil, false
	}

	return id, true
}
