package fee

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/bursar/internal/auth"
	"github.com/MrJamesThe3rd/bursar/internal/export"
	"github.com/MrJamesThe3rd/bursar/internal/fee"
	"github.com/MrJamesThe3rd/bursar/internal/http/request"
	"github.com/MrJamesThe3rd/bursar/internal/http/respond"
	"github.com/MrJamesThe3rd/bursar/internal/importer"
	"github.com/MrJamesThe3rd/bursar/internal/money"
	"github.com/MrJamesThe3rd/bursar/internal/student"
)

const maxUploadSize = 10 << 20

var (
	staff    = []auth.Role{auth.RoleSuperAdmin, auth.RoleAdmin, auth.RoleAccountant}
	managers = []auth.Role{auth.RoleSuperAdmin, auth.RoleAdmin}
)

type Handler struct {
	svc       *fee.Service
	students  student.Getter
	importSvc *importer.Service
	exportSvc *export.Service
}

func NewHandler(svc *fee.Service, students student.Getter, importSvc *importer.Service, exportSvc *export.Service) *Handler {
	return &Handler{svc: svc, students: students, importSvc: importSvc, exportSvc: exportSvc}
}

// respondRecord writes rec with its student's details. A failed lookup only
// costs the details: rec may already carry a committed payment.
func (h *Handler) respondRecord(w http.ResponseWriter, r *http.Request, status int, message string, rec *fee.Record) {
	ref := studentRef{ID: rec.StudentID}

	st, err := student.NewCache(h.students).Get(r.Context(), rec.StudentID)
	if err != nil {
		zap.L().Warn("failed to resolve student for fee response",
			zap.Stringer("fee_id", rec.ID), zap.Error(err))
	} else {
		ref = toStudentRef(st)
	}

	resp := toResponse(rec, ref)
	if message == "" {
		respond.JSON(w, status, resp)
		return
	}

	respond.JSON(w, status, messageResponse{Message: message, Fee: &resp})
}

func (h *Handler) respondRecords(w http.ResponseWriter, r *http.Request, recs []*fee.Record) {
	resp, err := toStaffResponseList(r.Context(), student.NewCache(h.students), recs)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, resp)
}

// Routes expects auth.Middleware to have run.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/student/{studentId}", h.listByStudent)
	r.With(auth.RequireRole(auth.RoleStudent)).Get("/my-fees", h.myFees)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(staff...))

		r.Post("/", h.create)
		r.Post("/import", h.importCSV)
		r.Get("/", h.list)
		r.Get("/due-list", h.dueList)
		r.Get("/reports/collection", h.collectionReport)
		r.Get("/reports/collection/export", h.exportCollection)
		r.Get("/{id}", h.get)
		r.Post("/{id}/pay", h.collect)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(managers...))

		r.Patch("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

type createFeeRequest struct {
	StudentID    string       `json:"studentId" validate:"required,uuid"`
	AcademicYear string       `json:"academicYear" validate:"notblank"`
	FeeType      fee.FeeType  `json:"feeType" validate:"required"`
	TotalAmount  money.Amount `json:"totalAmount" validate:"gte=0"`
	DueDate      request.Date `json:"dueDate"`
	Remarks      string       `json:"remarks"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createFeeRequest
	if err := request.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		respond.Error(w, r, &request.ValidationError{Fields: map[string]string{"studentId": "studentId must be a valid UUID"}})
		return
	}

	rec, err := h.svc.Create(r.Context(), fee.CreateParams{
		StudentID:    studentID,
		AcademicYear: req.AcademicYear,
		FeeType:      req.FeeType,
		TotalAmount:  req.TotalAmount,
		DueDate:      req.DueDate.Time,
		Remarks:      req.Remarks,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := toResponse(rec, studentRef{ID: rec.StudentID})
	respond.JSON(w, http.StatusCreated, messageResponse{Message: "Fee record created successfully", Fee: &resp})
}

type payRequest struct {
	Amount        money.Amount    `json:"amount"`
	PaymentMode   fee.PaymentMode `json:"paymentMode"`
	TransactionID string          `json:"transactionId" validate:"max=128"`
	Remarks       string          `json:"remarks" validate:"max=500"`
}

func (h *Handler) collect(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req payRequest
	if err := request.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	caller, _ := auth.FromContext(r.Context())

	rec, err := h.svc.CollectPayment(r.Context(), fee.PaymentParams{
		RecordID:      id,
		Amount:        req.Amount,
		Mode:          req.PaymentMode,
		TransactionID: req.TransactionID,
		Remarks:       req.Remarks,
		CollectedBy:   caller.Subject,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	h.respondRecord(w, r, http.StatusOK, "Payment collected successfully", rec)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := fee.ListFilter{AcademicYear: r.URL.Query().Get("academicYear")}

	if s := r.URL.Query().Get("status"); s != "" {
		for part := range strings.SplitSeq(s, ",") {
			filter.Statuses = append(filter.Statuses, fee.Status(strings.TrimSpace(part)))
		}
	}

	recs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	h.respondRecords(w, r, recs)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	rec, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	h.respondRecord(w, r, http.StatusOK, "", rec)
}

func (h *Handler) listByStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "studentId")
	if !ok {
		return
	}

	sum, err := h.svc.StudentSummary(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toStudentFeesResponse(sum))
}

func (h *Handler) myFees(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.FromContext(r.Context())

	sum, err := h.svc.MySummary(r.Context(), caller.Subject)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toStudentFeesResponse(sum))
}

func (h *Handler) dueList(w http.ResponseWriter, r *http.Request) {
	recs, err := h.svc.DueList(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	h.respondRecords(w, r, recs)
}

// reportFilter reads startDate and endDate. A date-only endDate covers that
// whole day.
func reportFilter(r *http.Request) (fee.ReportFilter, error) {
	var filter fee.ReportFilter

	if s := r.URL.Query().Get("startDate"); s != "" {
		t, err := request.ParseTime(s)
		if err != nil {
			return filter, err
		}

		filter.Start = &t
	}

	if s := r.URL.Query().Get("endDate"); s != "" {
		t, err := request.ParseEndTime(s)
		if err != nil {
			return filter, err
		}

		filter.End = &t
	}

	return filter, nil
}

func (h *Handler) collectionReport(w http.ResponseWriter, r *http.Request) {
	filter, err := reportFilter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	report, err := h.svc.CollectionReport(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp, err := toReportResponse(r.Context(), student.NewCache(h.students), report)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) exportCollection(w http.ResponseWriter, r *http.Request) {
	filter, err := reportFilter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var buf bytes.Buffer
	if _, err := h.exportSvc.WriteCollectionCSV(r.Context(), &buf, filter); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.Filename(filter, time.Now())))

	if _, err := buf.WriteTo(w); err != nil {
		zap.L().Error("failed to write export", zap.Error(err))
	}
}

type updateFeeRequest struct {
	DueDate *request.Date `json:"dueDate,omitempty"`
	Remarks *string       `json:"remarks,omitempty" validate:"omitempty,max=500"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req updateFeeRequest
	if err := request.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	update := fee.MetadataUpdate{Remarks: req.Remarks}
	if req.DueDate != nil {
		update.DueDate = &req.DueDate.Time
	}

	rec, err := h.svc.UpdateMetadata(r.Context(), id, update)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(rec, studentRef{ID: rec.StudentID}))
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

	respond.JSON(w, http.StatusOK, messageResponse{Message: "Fee record deleted successfully"})
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respond.Status(w, http.StatusBadRequest, "bad_request", "failed to parse form: "+err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Status(w, http.StatusBadRequest, "bad_request", "file field is required")
		return
	}
	defer file.Close()

	rows, err := h.importSvc.Import(importer.Format(r.FormValue("format")), file)
	if err != nil {
		respond.Error(w, r, badImport(err))
		return
	}

	recs, err := h.svc.ImportBatch(r.Context(), rows)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, importResponse{Imported: len(recs), Fees: toResponseList(recs)})
}

// badImport marks parser failures as client errors; row-level failures keep
// their own mapping.
func badImport(err error) error {
	var importErr *fee.ImportError
	if errors.As(err, &importErr) {
		return err
	}

	return fmt.Errorf("%w: %v", request.ErrMalformed, err)
}

func pathID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		respond.Status(w, http.StatusBadRequest, "bad_request", "invalid id")
		return uuid.Nil, false
	}

	return id, true
}
