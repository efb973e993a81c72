package api

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"apple-sales-reservations/internal/domain/user"
	reqdto "apple-sales-reservations/internal/handler/dto/request"
	resdto "apple-sales-reservations/internal/handler/dto/response"
	"apple-sales-reservations/internal/handler/httperr"
	"apple-sales-reservations/internal/handler/middleware"
	"apple-sales-reservations/internal/pkg/config"
	"apple-sales-reservations/internal/pkg/errs"
	"apple-sales-reservations/internal/pkg/ptr"
	"apple-sales-reservations/internal/usecase/commands"
	"apple-sales-reservations/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var (
	ErrProofTooLarge = errs.NewKind(errs.ErrValidation, "proof of payment exceeds the size limit")
	ErrProofType     = errs.NewKind(errs.ErrValidation, "proof of payment must be an image or a PDF")
)

// accepted multipart field names for the proof file
var proofFields = []string{"proof", "comprobante"}

type ReservationHandler struct {
	cmds          commands.ReservationCommands
	q             queries.ReservationQueries
	maxProofBytes int64
}

func NewReservationHandler(cmds commands.ReservationCommands, q queries.ReservationQueries, cfg config.ReservationConfig) *ReservationHandler {
	return &ReservationHandler{
		cmds:          cmds,
		q:             q,
		maxProofBytes: cfg.MaxProofBytes,
	}
}

// Request creates a reservation for the calling customer.
func (h *ReservationHandler) Request(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req reqdto.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortBinding(c, err)
		return
	}

	view, err := h.cmds.Request(c.Request.Context(), actor, req.ToInput())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	h.respondView(c, http.StatusCreated, view)
}

func (h *ReservationHandler) Get(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	view, err := h.q.GetByID(c.Request.Context(), id, actor)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	h.respondView(c, http.StatusOK, view)
}

// PayDeposit takes a multipart form with the proof file and an optional paymentMethod.
func (h *ReservationHandler) PayDeposit(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var form reqdto.PayDepositForm
	if err := c.ShouldBind(&form); err != nil {
		httperr.AbortBinding(c, err)
		return
	}

	proof, contentType, err := h.readProof(c)
	if err != nil {
		httperr.Abort(c, err)
		return
	}

	in := commands.PayDepositInput{
		Proof:         proof,
		ContentType:   contentType,
		PaymentMethod: ptr.NonEmpty(form.PaymentMethod),
	}
	view, err := h.cmds.PayDeposit(c.Request.Context(), id, actor, in)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	h.respondView(c, http.StatusOK, view)
}

func (h *ReservationHandler) Confirm(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	view, err := h.cmds.Confirm(c.Request.Context(), id, actor)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	h.respondView(c, http.StatusOK, view)
}

// Complete accepts an optional body with finalPaymentAmount and paymentMethod.
func (h *ReservationHandler) Complete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req reqdto.CompleteReservationRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	view, err := h.cmds.Complete(c.Request.Context(), id, actor, req.ToInput())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	h.respondView(c, http.StatusOK, view)
}

func (h *ReservationHandler) Cancel(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req reqdto.CancelReservationRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	view, err := h.cmds.Cancel(c.Request.Context(), id, actor, req.Reason)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	h.respondView(c, http.StatusOK, view)
}

// Mine expires the caller's overdue reservations before listing them.
func (h *ReservationHandler) Mine(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if _, err := h.cmds.ExpireOverdue(ctx, actor.Username); err != nil {
		httperr.Abort(c, err)
		return
	}
	views, err := h.q.ListMine(ctx, actor)
	if err != nil {
		httperr.Abort(c, err)
		return
	}

	items, err := resdto.FromReservationViews(views)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *ReservationHandler) List(c *gin.Context) {
	var query reqdto.ListReservationsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httperr.AbortBinding(c, err)
		return
	}
	filters, err := query.ToFilters()
	if err != nil {
		httperr.Abort(c, err)
		return
	}

	page, err := h.q.List(c.Request.Context(), filters, query.ToPage())
	if err != nil {
		httperr.Abort(c, err)
		return
	}

	resp, err := resdto.FromReservationPage(page)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReservationHandler) DepositQuote(c *gin.Context) {
	var req reqdto.DepositQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortBinding(c, err)
		return
	}

	quote, err := h.cmds.QuoteDeposit(*req.Amount)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromDepositQuote(quote))
}

func (h *ReservationHandler) ReservedDevices(c *gin.Context) {
	ids, err := h.q.ReservedDeviceIDs(c.Request.Context())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deviceIds": ids})
}

// SyncFailures lists completions whose inventory update failed and still need reconciling.
func (h *ReservationHandler) SyncFailures(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		if iv, e := strconv.Atoi(v); e == nil {
			limit = iv
		}
	}

	jobs, err := h.q.ListSyncFailures(c.Request.Context(), limit)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": resdto.FromSyncFailures(jobs)})
}

func (h *ReservationHandler) actor(c *gin.Context) (actor user.Actor, ok bool) {
	actor, ok = middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, httperr.KindUnauthorized, nil, "Unauthorized", nil)
	}
	return actor, ok
}

func (h *ReservationHandler) respondView(c *gin.Context, status int, view *queries.ReservationView) {
	resp, err := resdto.FromReservationView(view)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(status, resp)
}

// readProof returns a nil body when no file was sent; the usecase decides whether that is an error.
func (h *ReservationHandler) readProof(c *gin.Context) ([]byte, string, error) {
	var fh *multipart.FileHeader
	for _, field := range proofFields {
		if f, err := c.FormFile(field); err == nil {
			fh = f
			break
		}
	}
	if fh == nil {
		return nil, "", nil
	}
	if h.maxProofBytes > 0 && fh.Size > h.maxProofBytes {
		return nil, "", ErrProofTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, "", errs.Wrap(err, "open proof")
	}
	defer f.Close()

	r := io.Reader(f)
	if h.maxProofBytes > 0 {
		r = io.LimitReader(f, h.maxProofBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", errs.Wrap(err, "read proof")
	}
	if h.maxProofBytes > 0 && int64(len(data)) > h.maxProofBytes {
		return nil, "", ErrProofTooLarge
	}
	if len(data) == 0 {
		return nil, "", nil
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	if !allowedProofType(contentType) {
		return nil, "", ErrProofType
	}
	return data, contentType, nil
}

func allowedProofType(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	return strings.HasPrefix(ct, "image/") || ct == "application/pdf"
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, httperr.KindValidation, err, "Invalid reservation id", nil)
		return uuid.Nil, false
	}
	return id, true
}

// bindOptionalJSON treats an empty body as an empty request.
func bindOptionalJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		httperr.AbortBinding(c, err)
		return false
	}
	return true
}
