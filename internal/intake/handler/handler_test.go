package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	visitmodels "gatepass/internal/visit/models"
	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/formdata"
	"gatepass/pkg/testutil"
)

type stubIntake struct {
	visit *visitmodels.Visit
	err   error

	gotIdentifier string
	gotRaw        map[string]string
}

func (s *stubIntake) Submit(_ context.Context, qrIdentifier string, raw map[string]string) (*visitmodels.Visit, error) {
	s.gotIdentifier = qrIdentifier
	s.gotRaw = raw
	if s.err != nil {
		return nil, s.err
	}
	return s.visit, nil
}

type IntakeHandlerSuite struct {
	suite.Suite
	stub   *stubIntake
	router *chi.Mux
}

func TestIntakeHandlerSuite(t *testing.T) {
	suite.Run(t, new(IntakeHandlerSuite))
}

func (s *IntakeHandlerSuite) SetupTest() {
	s.stub = &stubIntake{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = chi.NewRouter()
	New(s.stub, logger).Register(s.router)
}

func (s *IntakeHandlerSuite) TestSubmitAccepted() {
	visit, err := visitmodels.NewVisit(id.NewVisitID(), id.NewPremiseID(), id.NewFormID(),
		id.NewQRCodeID(), 1, formdata.Normalize(map[string]string{"Full Name": "Dana"}), time.Now())
	s.Require().NoError(err)
	s.stub.visit = visit

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/checkin/qr-abc", map[string]any{
		"form_data": map[string]string{"Full Name": "Dana"},
	})
	rr := testutil.DoRequest(s.router, req)

	s.Equal(http.StatusCreated, rr.Code)
	s.Equal("qr-abc", s.stub.gotIdentifier)
	s.Equal("Dana", s.stub.gotRaw["Full Name"])

	var resp SubmitResponse
	testutil.DecodeJSONResponse(s.T(), rr, &resp)
	s.Equal(visit.ID.String(), resp.VisitID)
	s.Equal("pending_approval", resp.Status)
}

func (s *IntakeHandlerSuite) TestSubmitMalformedBody() {
	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/checkin/qr-abc", `{not json`)
	rr := testutil.DoRequest(s.router, req)

	s.Equal(http.StatusBadRequest, rr.Code)

	var body map[string]string
	testutil.DecodeJSONResponse(s.T(), rr, &body)
	s.Equal("bad_request", body["error"])
}

func (s *IntakeHandlerSuite) TestSubmitUnknownQRCode() {
	s.stub.err = dErrors.New(dErrors.CodeNotFound, "qr code not found")

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/checkin/qr-missing", map[string]any{
		"form_data": map[string]string{"Full Name": "Dana"},
	})
	rr := testutil.DoRequest(s.router, req)

	s.Equal(http.StatusNotFound, rr.Code)

	var body map[string]string
	testutil.DecodeJSONResponse(s.T(), rr, &body)
	s.Equal("qr code not found", body["error_description"])
}

// A premise mismatch is broken premise wiring; the response must not explain
// the misconfiguration to an anonymous visitor.
func (s *IntakeHandlerSuite) TestSubmitConfigFaultIsOpaque() {
	s.stub.err = dErrors.New(dErrors.CodeConfigFault, "qr code is misconfigured")

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/checkin/qr-abc", map[string]any{
		"form_data": map[string]string{"Full Name": "Dana"},
	})
	rr := testutil.DoRequest(s.router, req)

	s.Equal(http.StatusInternalServerError, rr.Code)

	var body map[string]string
	testutil.DecodeJSONResponse(s.T(), rr, &body)
	s.Equal("internal_error", body["error"])
	s.NotContains(body, "error_description")
}
