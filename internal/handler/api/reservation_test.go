//go:build unit

package api_test

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"apple-sales-reservations/internal/domain/reservation"
	"apple-sales-reservations/internal/domain/user"
	"apple-sales-reservations/internal/handler/api"
	"apple-sales-reservations/internal/handler/httperr"
	"apple-sales-reservations/internal/handler/middleware"
	"apple-sales-reservations/internal/pkg/config"
	"apple-sales-reservations/internal/pkg/errs"
	"apple-sales-reservations/internal/usecase/commands"
	"apple-sales-reservations/internal/usecase/queries"
	"apple-sales-reservations/tests/common/builder"
	"apple-sales-reservations/tests/common/httptest"
	"apple-sales-reservations/tests/common/testutil"
	commandsmock "apple-sales-reservations/tests/mock/commands"
	queriesmock "apple-sales-reservations/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

const (
	customerToken = "ana:viewer"
	otherToken    = "bruno:viewer"
	salesToken    = "seller:sales"
	maxProofBytes = 1024
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

type ReservationHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockReservationCommands
	mockQueries  *queriesmock.MockReservationQueries
	handler      *api.ReservationHandler
}

func (s *ReservationHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	httperr.UseJSONFieldNames()
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockReservationCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockReservationQueries(s.mockCtrl)
	s.handler = api.NewReservationHandler(s.mockCommands, s.mockQueries, config.ReservationConfig{MaxProofBytes: maxProofBytes})

	// Tokens are "username:role" so tests can pick the caller.
	authMiddleware := func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		name, role, found := strings.Cut(token, ":")
		if !found {
			httperr.AbortWithError(c, http.StatusUnauthorized, httperr.KindUnauthorized, nil, "Access token required", nil)
			return
		}
		middleware.SetActor(c, user.Actor{Username: name, Role: user.Role(role)})
		c.Next()
	}

	s.router.POST("/reservations/deposit-quote", s.handler.DepositQuote)
	s.router.GET("/reservations/reserved-devices", s.handler.ReservedDevices)
	s.router.POST("/reservations", authMiddleware, s.handler.Request)
	s.router.GET("/reservations", authMiddleware, s.handler.List)
	s.router.GET("/reservations/mine", authMiddleware, s.handler.Mine)
	s.router.GET("/reservations/sync-failures", authMiddleware, s.handler.SyncFailures)
	s.router.GET("/reservations/:id", authMiddleware, s.handler.Get)
	s.router.POST("/reservations/:id/deposit-payment", authMiddleware, s.handler.PayDeposit)
	s.router.POST("/reservations/:id/confirm", authMiddleware, s.handler.Confirm)
	s.router.POST("/reservations/:id/complete", authMiddleware, s.handler.Complete)
	s.router.POST("/reservations/:id/cancel", authMiddleware, s.handler.Cancel)
}

func (s *ReservationHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestReservationHandlerSuite(t *testing.T) {
	suite.Run(t, new(ReservationHandlerTestSuite))
}

type reservationBody struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	DeviceID string `json:"deviceId"`
	Deposit  struct {
		Amount            string  `json:"amount"`
		Status            string  `json:"status"`
		ProofOfPaymentURL *string `json:"proofOfPaymentUrl"`
	} `json:"deposit"`
	Sale *struct {
		Total         string  `json:"total"`
		Deposit       string  `json:"deposit"`
		Remaining     string  `json:"remaining"`
		PaymentMethod *string `json:"paymentMethod"`
	} `json:"sale"`
}

// ================================================================================
// TestRequest
// ================================================================================

func (s *ReservationHandlerTestSuite) TestRequest() {
	url := "/reservations"
	b := builder.NewReservationBuilder().WithCustomer("ana")
	reqBody := b.BuildCreateRequestDTO()
	view := b.BuildView()

	s.Run("success: returns 201 Created", func() {
		s.mockCommands.EXPECT().Request(gomock.Any(), user.Actor{Username: "ana", Role: user.RoleViewer}, gomock.Any()).
			DoAndReturn(func(_ any, _ user.Actor, in commands.RequestReservationInput) (*queries.ReservationView, error) {
				s.Equal(b.DeviceID, in.DeviceID)
				s.Require().NotNil(in.DepositAmount)
				s.True(b.DepositAmount.Equal(*in.DepositAmount))
				return view, nil
			})

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, customerToken)

		var body reservationBody
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &body)
		s.Equal(view.ID.String(), body.ID)
		s.Equal("requested", body.Status)
		s.Equal("requested", body.Deposit.Status)
		s.Equal("150", body.Deposit.Amount)
	})

	s.Run("success: trade-in is passed through", func() {
		health := decimal.RequireFromString("0.8")
		req := builder.NewReservationBuilder().WithTradeIn("iPhone", "iPhone 11", &health).BuildCreateRequestDTO()
		s.mockCommands.EXPECT().Request(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, _ user.Actor, in commands.RequestReservationInput) (*queries.ReservationView, error) {
				s.Require().NotNil(in.TradeIn)
				s.Equal("iPhone 11", in.TradeIn.Model)
				s.True(health.Equal(*in.TradeIn.BatteryHealth))
				return view, nil
			})

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, req, customerToken)
		s.Equal(http.StatusCreated, rec.Code)
	})

	s.Run("error: missing input from the usecase is 400", func() {
		requestMap := testutil.DtoMap(s.T(), reqBody, testutil.Field("deviceId", nil))
		s.mockCommands.EXPECT().Request(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, reservation.ErrDeviceRequired)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, requestMap, customerToken)
		body := httptest.AssertErrorKind(s.T(), rec, http.StatusBadRequest, "MISSING_INPUT")
		s.Equal("device id is required", body.Error.Message)
	})

	s.Run("error: malformed amount", func() {
		requestMap := testutil.DtoMap(s.T(), reqBody, testutil.Field("depositAmount", "lots"))

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, requestMap, customerToken)
		httptest.AssertErrorKind(s.T(), rec, http.StatusBadRequest, "VALIDATION")
	})

	s.Run("error: device not in inventory", func() {
		s.mockCommands.EXPECT().Request(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errs.Mark(errs.New("inventory 404"), commands.ErrDeviceNotFound))

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, customerToken)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "device not found in inventory")
	})

	s.Run("error: unauthenticated", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
		httptest.AssertErrorKind(s.T(), rec, http.StatusUnauthorized, "UNAUTHORIZED")
	})
}

// ================================================================================
// TestGet
// ================================================================================

func (s *ReservationHandlerTestSuite) TestGet() {
	view := builder.NewReservationBuilder().WithCustomer("ana").BuildView()
	url := "/reservations/" + view.ID.String()

	s.Run("success", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), view.ID, gomock.Any()).Return(view, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, customerToken)
		var body reservationBody
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(view.ID.String(), body.ID)
	})

	s.Run("error: invalid id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations/not-a-uuid", nil, customerToken)
		httptest.AssertErrorKind(s.T(), rec, http.StatusBadRequest, "VALIDATION")
	})

	s.Run("error: not found", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), view.ID, gomock.Any()).
			Return(nil, errs.Mark(errs.New("no rows"), errs.ErrReservationNotFound))

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, customerToken)
		body := httptest.AssertErrorKind(s.T(), rec, http.StatusNotFound, "NOT_FOUND")
		s.Equal("reservation not found", body.Error.Message)
	})

	s.Run("error: another customer's reservation", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), view.ID, user.Actor{Username: "bruno", Role: user.RoleViewer}).
			Return(nil, errs.ErrForbidden)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, otherToken)
		httptest.AssertErrorKind(s.T(), rec, http.StatusForbidden, "FORBIDDEN")
	})

	s.Run("error: unexpected failure hides details", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), view.ID, gomock.Any()).Return(nil, errs.New("pq: connection refused"))

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, customerToken)
		body := httptest.AssertErrorKind(s.T(), rec, http.StatusInternalServerError, "INTERNAL")
		s.Equal("Internal server error", body.Error.Message)
		s.NotContains(rec.Body.String(), "connection refused")
	})
}

// ================================================================================
// TestPayDeposit
// ================================================================================

func (s *ReservationHandlerTestSuite) TestPayDeposit() {
	id := uuid.New()
	url := "/reservations/" + id.String() + "/deposit-payment"
	paid := builder.NewReservationBuilder().WithID(id).AsPaid().BuildView()

	s.Run("success: png proof with payment method", func() {
		s.mockCommands.EXPECT().PayDeposit(gomock.Any(), id, gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, _ uuid.UUID, _ user.Actor, in commands.PayDepositInput) (*queries.ReservationView, error) {
				s.Equal(pngBytes, in.Proof)
				s.Equal("image/png", in.ContentType)
				s.Require().NotNil(in.PaymentMethod)
				s.Equal("mercadopago", *in.PaymentMethod)
				return paid, nil
			})

		rec := httptest.PerformMultipartRequest(s.T(), s.router, url,
			map[string]string{"paymentMethod": "mercadopago"},
			&httptest.FormFile{Field: "proof", Filename: "receipt.png", ContentType: "image/png", Content: pngBytes},
			customerToken)

		var body reservationBody
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("paid", body.Deposit.Status)
		s.NotNil(body.Deposit.ProofOfPaymentURL)
	})

	s.Run("success: legacy field name and sniffed type", func() {
		pdf := []byte("%PDF-1.4\n%some pdf body")
		s.mockCommands.EXPECT().PayDeposit(gomock.Any(), id, gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, _ uuid.UUID, _ user.Actor, in commands.PayDepositInput) (*queries.ReservationView, error) {
				s.Equal("application/pdf", in.ContentType)
				s.Nil(in.PaymentMethod)
				return paid, nil
			})

		rec := httptest.PerformMultipartRequest(s.T(), s.router, url, nil,
			&httptest.FormFile{Field: "comprobante", Filename: "receipt.pdf", ContentType: "application/octet-stream", Content: pdf},
			customerToken)
		s.Equal(http.StatusOK, rec.Code, rec.Body.String())
	})

	s.Run("error: no file reaches the usecase as missing input", func() {
		s.mockCommands.EXPECT().PayDeposit(gomock.Any(), id, gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, _ uuid.UUID, _ user.Actor, in commands.PayDepositInput) (*queries.ReservationView, error) {
				s.Nil(in.Proof)
				return nil, reservation.ErrProofRequired
			})

		rec := httptest.PerformMultipartRequest(s.T(), s.router, url, nil, nil, customerToken)
		httptest.AssertErrorKind(s.T(), rec, http.StatusBadRequest, "MISSING_INPUT")
	})

	s.Run("error: unsupported file type", func() {
		rec := httptest.PerformMultipartRequest(s.T(), s.router, url, nil,
			&httptest.FormFile{Field: "proof", Filename: "notes.txt", ContentType: "text/plain", Content: []byte("hello")},
			customerToken)
		body := httptest.AssertErrorKind(s.T(), rec, http.StatusBadRequest, "VALIDATION")
		s.Equal(api.ErrProofType.Error(), body.Error.Message)
	})

	s.Run("error: file too large", func() {
		rec := httptest.PerformMultipartRequest(s.T(), s.router, url, nil,
			&httptest.FormFile{Field: "proof", Filename: "big.png", ContentType: "image/png", Content: bytes.Repeat([]byte{1}, maxProofBytes+1)},
			customerToken)
		body := httptest.AssertErrorKind(s.T(), rec, http.StatusBadRequest, "VALIDATION")
		s.Equal(api.ErrProofTooLarge.Error(), body.Error.Message)
	})

	s.Run("error: unknown payment method", func() {
		rec := httptest.PerformMultipartRequest(s.T(), s.router, url,
			map[string]string{"paymentMethod": "bitcoin"},
			&httptest.FormFile{Field: "proof", Filename: "receipt.png", ContentType: "image/png", Content: pngBytes},
			customerToken)
		body := httptest.AssertErrorKind(s.T(), rec, http.StatusBadRequest, "VALIDATION")
		s.Require().Len(body.Detail, 1)
		s.Equal("paymentMethod", body.Detail[0].Field)
	})

	s.Run("error: second payment is an invalid transition", func() {
		s.mockCommands.EXPECT().PayDeposit(gomock.Any(), id, gomock.Any(), gomock.Any()).
			Return(nil, &reservation.TransitionError{Machine: reservation.MachineDeposit, From: "paid", To: "paid"})

		rec := httptest.PerformMultipartRequest(s.T(), s.router, url, nil,
			&httptest.FormFile{Field: "proof", Filename: "receipt.png", ContentType: "image/png", Content: pngBytes},
			customerToken)
		body := httptest.AssertErrorKind(s.T(), rec, http.StatusConflict, "INVALID_TRANSITION")
		s.Contains(body.Error.Message, `from "paid" to "paid"`)
	})

	s.Run("error: storage down", func() {
		s.mockCommands.EXPECT().PayDeposit(gomock.Any(), id, gomock.Any(), gomock.Any()).
			Return(nil, errs.Mark(errs.New("r2 503"), errs.ErrUpstreamFailure))

		rec := httptest.PerformMultipartRequest(s.T(), s.router, url, nil,
			&httptest.FormFile{Field: "proof", Filename: "receipt.png", ContentType: "image/png", Content: pngBytes},
			customerToken)
		httptest.AssertErrorKind(s.T(), rec, http.StatusBadGateway, "UPSTREAM_FAILURE")
	})
}

// ================================================================================
// TestConfirm / TestComplete / TestCancel
// ================================================================================

func (s *ReservationHandlerTestSuite) TestConfirm() {
	id := uuid.New()
	url := "/reservations/" + id.String() + "/confirm"

	s.Run("success", func() {
		view := builder.NewReservationBuilder().WithID(id).AsConfirmed().BuildView()
		s.mockCommands.EXPECT().Confirm(gomock.Any(), id, user.Actor{Username: "seller", Role: user.RoleSales}).Return(view, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, salesToken)
		var body reservationBody
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("confirmed", body.Status)
		s.Equal("confirmed", body.Deposit.Status)
	})

	s.Run("error: deposit not paid", func() {
		s.mockCommands.EXPECT().Confirm(gomock.Any(), id, gomock.Any()).Return(nil, reservation.ErrDepositNotPaid)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, salesToken)
		body := httptest.AssertErrorKind(s.T(), rec, http.StatusConflict, "INVALID_STATE")
		s.Equal("deposit has not been paid", body.Error.Message)
	})

	s.Run("error: concurrent change", func() {
		s.mockCommands.EXPECT().Confirm(gomock.Any(), id, gomock.Any()).
			Return(nil, errs.Mark(errs.New("0 rows"), commands.ErrConcurrentChange))

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, salesToken)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "reservation was modified concurrently")
	})
}

func (s *ReservationHandlerTestSuite) TestComplete() {
	id := uuid.New()
	url := "/reservations/" + id.String() + "/complete"
	completed := builder.NewReservationBuilder().WithID(id).AsCompleted("850", reservation.PaymentCash).BuildView()

	s.Run("success: with final payment", func() {
		s.mockCommands.EXPECT().Complete(gomock.Any(), id, gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, _ uuid.UUID, _ user.Actor, in commands.CompleteReservationInput) (*queries.ReservationView, error) {
				s.Require().NotNil(in.FinalPaymentAmount)
				s.True(decimal.RequireFromString("850").Equal(*in.FinalPaymentAmount))
				return completed, nil
			})

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url,
			map[string]any{"finalPaymentAmount": "850", "paymentMethod": "cash"}, salesToken)
		var body reservationBody
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Require().NotNil(body.Sale)
		s.Equal("1000", body.Sale.Total)
		s.Equal(completed.Sale.Deposit.String(), body.Sale.Deposit)
		s.Equal(completed.Sale.FinalPayment.String(), body.Sale.Remaining)
		s.NotContains(rec.Body.String(), `"finalPayment"`)
	})

	s.Run("success: empty body", func() {
		s.mockCommands.EXPECT().Complete(gomock.Any(), id, gomock.Any(), commands.CompleteReservationInput{}).Return(completed, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, salesToken)
		s.Equal(http.StatusOK, rec.Code, rec.Body.String())
	})

	s.Run("error: unknown payment method", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"paymentMethod": "cheque"}, salesToken)
		body := httptest.AssertErrorKind(s.T(), rec, http.StatusBadRequest, "VALIDATION")
		s.Require().NotEmpty(body.Detail)
		s.Equal("paymentMethod", body.Detail[0].Field)
	})

	s.Run("error: customer is not staff", func() {
		s.mockCommands.EXPECT().Complete(gomock.Any(), id, gomock.Any(), gomock.Any()).Return(nil, commands.ErrStaffOnly)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, customerToken)
		httptest.AssertErrorKind(s.T(), rec, http.StatusForbidden, "FORBIDDEN")
	})
}

func (s *ReservationHandlerTestSuite) TestCancel() {
	id := uuid.New()
	url := "/reservations/" + id.String() + "/cancel"

	s.Run("success: reason forwarded", func() {
		view := builder.NewReservationBuilder().WithID(id).AsCancelled("changed my mind").BuildView()
		s.mockCommands.EXPECT().Cancel(gomock.Any(), id, gomock.Any(), "changed my mind").Return(view, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"reason": "changed my mind"}, customerToken)
		var body reservationBody
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("cancelled", body.Status)
	})

	s.Run("error: reason too long", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"reason": strings.Repeat("a", 501)}, customerToken)
		body := httptest.AssertErrorKind(s.T(), rec, http.StatusBadRequest, "VALIDATION")
		s.Require().NotEmpty(body.Detail)
		s.Equal("reason", body.Detail[0].Field)
		s.Equal("must be at most 500", body.Detail[0].Problem)
	})

	s.Run("error: already completed", func() {
		s.mockCommands.EXPECT().Cancel(gomock.Any(), id, gomock.Any(), "").Return(nil, reservation.ErrNotCancellable)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, customerToken)
		httptest.AssertErrorKind(s.T(), rec, http.StatusConflict, "INVALID_STATE")
	})
}

// ================================================================================
// Listing
// ================================================================================

func (s *ReservationHandlerTestSuite) TestMine() {
	url := "/reservations/mine"
	actor := user.Actor{Username: "ana", Role: user.RoleViewer}

	s.Run("success: overdue sweep runs first", func() {
		views := []*queries.ReservationView{
			builder.NewReservationBuilder().WithCustomer("ana").BuildView(),
			builder.NewReservationBuilder().WithCustomer("ana").WithState(reservation.StatusExpired, reservation.DepositExpired).BuildView(),
		}
		gomock.InOrder(
			s.mockCommands.EXPECT().ExpireOverdue(gomock.Any(), "ana").Return(1, nil),
			s.mockQueries.EXPECT().ListMine(gomock.Any(), actor).Return(views, nil),
		)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, customerToken)
		var body struct {
			Items []reservationBody `json:"items"`
		}
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Len(body.Items, 2)
		s.Equal("expired", body.Items[1].Status)
	})

	s.Run("error: sweep failure", func() {
		s.mockCommands.EXPECT().ExpireOverdue(gomock.Any(), "ana").Return(0, errs.New("db down"))

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, customerToken)
		httptest.AssertErrorKind(s.T(), rec, http.StatusInternalServerError, "INTERNAL")
	})
}

func (s *ReservationHandlerTestSuite) TestList() {
	s.Run("success: filters and page are parsed", func() {
		page := &queries.ReservationPage{
			Items:      []*queries.ReservationView{builder.NewReservationBuilder().AsConfirmed().BuildView()},
			Total:      11,
			Page:       2,
			PageSize:   5,
			TotalPages: 3,
		}
		s.mockQueries.EXPECT().List(gomock.Any(), gomock.Any(), queries.Page{Number: 2, Size: 5}).
			DoAndReturn(func(_ any, f queries.ListFilters, _ queries.Page) (*queries.ReservationPage, error) {
				s.Require().NotNil(f.Status)
				s.Equal("confirmed", *f.Status)
				s.Require().NotNil(f.Customer)
				s.Equal("an", *f.Customer)
				s.Require().NotNil(f.DateFrom)
				s.Require().NotNil(f.DateTo)
				s.Equal(2025, f.DateFrom.Year())
				s.Equal(23, f.DateTo.Hour())
				return page, nil
			})

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet,
			"/reservations?status=confirmed&customer=an&dateFrom=2025-01-01&dateTo=2025-01-31&page=2&pageSize=5", nil, salesToken)

		var body struct {
			Items      []reservationBody `json:"items"`
			Pagination struct {
				Total      int64 `json:"total"`
				Page       int   `json:"page"`
				PageSize   int   `json:"pageSize"`
				TotalPages int   `json:"totalPages"`
			} `json:"pagination"`
		}
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Len(body.Items, 1)
		s.Equal(int64(11), body.Pagination.Total)
		s.Equal(3, body.Pagination.TotalPages)
	})

	s.Run("error: validation", func() {
		cases := []struct {
			name  string
			query string
		}{
			{name: "unknown status", query: "status=lost"},
			{name: "negative page", query: "page=-1"},
			{name: "page size above max", query: "pageSize=101"},
			{name: "bad date", query: "dateFrom=yesterday"},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations?"+tc.query, nil, salesToken)
				httptest.AssertErrorKind(s.T(), rec, http.StatusBadRequest, "VALIDATION")
			})
		}
	})
}

func (s *ReservationHandlerTestSuite) TestDepositQuote() {
	url := "/reservations/deposit-quote"

	s.Run("success", func() {
		s.mockCommands.EXPECT().QuoteDeposit(decimal.RequireFromString("1000")).Return(&commands.DepositQuote{
			Amount:     decimal.RequireFromString("1000"),
			Percentage: decimal.RequireFromString("0.2"),
			Deposit:    decimal.RequireFromString("200"),
		}, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"amount": "1000"}, "")
		var body map[string]string
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("200", body["deposit"])
		s.Equal("0.2", body["percentage"])
	})

	s.Run("error: amount required", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{}, "")
		body := httptest.AssertErrorKind(s.T(), rec, http.StatusBadRequest, "VALIDATION")
		s.Require().NotEmpty(body.Detail)
		s.Equal("amount", body.Detail[0].Field)
		s.Equal("is required", body.Detail[0].Problem)
	})

	s.Run("error: non-positive amount", func() {
		s.mockCommands.EXPECT().QuoteDeposit(gomock.Any()).Return(nil, reservation.ErrNonPositiveAmount)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"amount": "-1"}, "")
		httptest.AssertErrorKind(s.T(), rec, http.StatusBadRequest, "VALIDATION")
	})
}

func (s *ReservationHandlerTestSuite) TestReservedDevices() {
	s.mockQueries.EXPECT().ReservedDeviceIDs(gomock.Any()).Return([]string{"dev-1", "dev-9"}, nil)

	rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations/reserved-devices", nil, "")
	var body struct {
		DeviceIDs []string `json:"deviceIds"`
	}
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
	s.Equal([]string{"dev-1", "dev-9"}, body.DeviceIDs)
}

func (s *ReservationHandlerTestSuite) TestSyncFailures() {
	failure := "inventory returned 503"
	resID := uuid.New()
	s.mockQueries.EXPECT().ListSyncFailures(gomock.Any(), 25).Return([]*queries.NotificationJobView{
		{
			ID:        uuid.New(),
			Topic:     "inventory.mark_sold",
			Payload:   []byte(`{"device_id":"dev-1"}`),
			Subject:   &queries.JobSubject{ReservationID: resID, DeviceID: "dev-1", SoldOn: "2026-10-15"},
			Attempts:  1,
			Status:    "failed",
			LastError: &failure,
		},
	}, nil)

	rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/reservations/sync-failures?limit=25", nil, salesToken)
	var body struct {
		Items []struct {
			ReservationID string         `json:"reservationId"`
			DeviceID      string         `json:"deviceId"`
			FechaVenta    string         `json:"fechaVenta"`
			Payload       map[string]any `json:"payload"`
			LastError     string         `json:"lastError"`
		} `json:"items"`
	}
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
	s.Require().Len(body.Items, 1)
	s.Equal(resID.String(), body.Items[0].ReservationID)
	s.Equal("dev-1", body.Items[0].DeviceID)
	s.Equal("2026-10-15", body.Items[0].FechaVenta)
	s.Equal("dev-1", body.Items[0].Payload["device_id"])
	s.Equal(failure, body.Items[0].LastError)
}
