package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/expenses-tracker/reports-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// Filter field names as the client sends them
const (
	FieldStartDate = "fechaInicio"
	FieldEndDate   = "fechaFin"
)

// ReportAssembler builds a report for a session and optional range
type ReportAssembler interface {
	AssembleReport(ctx context.Context, session domain.Session, rng *domain.DateRange) (*domain.Report, error)
}

// RenderFunc turns a report into the payload sent to the client
type RenderFunc func(report *domain.Report) interface{}

// Sender queues a frame for the peer
type Sender interface {
	Send(data []byte) error
}

// FilterRequest is the frame a client sends to change the report window.
// Empty dates mean all time.
type FilterRequest struct {
	Seq         uint64 `json:"seq"`
	FechaInicio string `json:"fechaInicio"`
	FechaFin    string `json:"fechaFin"`
}

// ReportSession recomputes a user's report each time the client changes the
// filter. Only the result of the latest request is ever sent; older
// computations are cancelled and their results dropped.
type ReportSession struct {
	sender   Sender
	reports  ReportAssembler
	session  domain.Session
	location *time.Location
	render   RenderFunc

	seq    Sequencer
	filter domain.DateFilter

	mu         sync.Mutex
	base       context.Context
	stop       context.CancelFunc
	cancelLast context.CancelFunc
	wg         sync.WaitGroup
}

// NewReportSession creates a session bound to one connection
func NewReportSession(sender Sender, reports ReportAssembler, session domain.Session, loc *time.Location, render RenderFunc) *ReportSession {
	if loc == nil {
		loc = time.Local
	}
	if render == nil {
		render = func(report *domain.Report) interface{} { return report }
	}
	base, stop := context.WithCancel(context.Background())
	return &ReportSession{
		sender:   sender,
		reports:  reports,
		session:  session,
		location: loc,
		render:   render,
		base:     base,
		stop:     stop,
	}
}

// HandleMessage decodes a filter frame and refreshes the report
func (s *ReportSession) HandleMessage(data []byte) {
	var req FilterRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendEvent(NewEvent(EventTypeError, EntityTypeReport, ErrorPayload{
			Code:    ErrorCodeBadMessage,
			Message: "message must be {\"seq\", \"fechaInicio\", \"fechaFin\"}",
		}))
		return
	}
	s.Refresh(req)
}

// Refresh starts computing the report for req, superseding any request in
// flight. Requests older than the latest one seen are ignored.
func (s *ReportSession) Refresh(req FilterRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.base.Err() != nil {
		return
	}

	seq, ok := s.seq.Next(req.Seq)
	if !ok {
		log.Debug().Str("user_id", s.session.UserID).Uint64("seq", req.Seq).Msg("Ignoring stale report request")
		return
	}

	if s.cancelLast != nil {
		s.cancelLast()
		s.cancelLast = nil
	}

	if err := s.applyFilter(req); err != nil {
		s.sendEvent(ReportError(seq, errorPayload(err)))
		return
	}
	rng := s.filter.Range()

	ctx, cancel := context.WithCancel(s.base)
	s.cancelLast = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()

		report, err := s.reports.AssembleReport(ctx, s.session, rng)
		if err != nil {
			if ctx.Err() == nil {
				log.Warn().Err(err).Str("user_id", s.session.UserID).Uint64("seq", seq).Msg("Live report failed")
			}
			s.sendIfCurrent(seq, ReportError(seq, errorPayload(err)))
			return
		}
		s.sendIfCurrent(seq, ReportUpdated(seq, s.render(report)))
	}()
}

// applyFilter must be called with s.mu held. An invalid filter leaves the
// previous one active.
func (s *ReportSession) applyFilter(req FilterRequest) error {
	if strings.TrimSpace(req.FechaInicio) == "" && strings.TrimSpace(req.FechaFin) == "" {
		s.filter.Clear()
		return nil
	}
	return s.filter.Apply(req.FechaInicio, req.FechaFin, s.location)
}

// ActiveRange returns the filter of the latest accepted request, nil for all time
func (s *ReportSession) ActiveRange() *domain.DateRange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter.Range()
}

// Close cancels the computation in flight and waits for it to return
func (s *ReportSession) Close() {
	s.mu.Lock()
	s.stop()
	s.mu.Unlock()

	s.wg.Wait()
}

// Wait blocks until no computation is running
func (s *ReportSession) Wait() {
	s.wg.Wait()
}

func (s *ReportSession) sendIfCurrent(seq uint64, event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.base.Err() != nil || !s.seq.IsCurrent(seq) {
		return
	}
	s.sendEvent(event)
}

// sendEvent must be called with s.mu held
func (s *ReportSession) sendEvent(event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().Err(err).Str("event_type", event.Type).Msg("Failed to serialize event")
		return
	}
	if err := s.sender.Send(data); err != nil {
		log.Debug().Err(err).Str("user_id", s.session.UserID).Msg("Dropping report frame")
	}
}

func errorPayload(err error) ErrorPayload {
	var fieldErr *domain.ValidationError
	switch {
	case errors.As(err, &fieldErr):
		return ErrorPayload{Code: ErrorCodeValidation, Message: fieldErr.Err.Error(), Field: filterField(fieldErr.Field)}
	case errors.Is(err, domain.ErrValidation):
		return ErrorPayload{Code: ErrorCodeValidation, Message: err.Error()}
	case errors.Is(err, domain.ErrUnauthorized):
		return ErrorPayload{Code: ErrorCodeUnauthorized, Message: "session is not authenticated"}
	case errors.Is(err, domain.ErrDataUnavailable):
		return ErrorPayload{Code: ErrorCodeDataUnavailable, Message: "report data is temporarily unavailable"}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrorPayload{Code: ErrorCodeDataUnavailable, Message: "report request was cancelled"}
	default:
		return ErrorPayload{Code: ErrorCodeInternal, Message: "failed to build report"}
	}
}

func filterField(field string) string {
	switch field {
	case domain.FieldStart:
		return FieldStartDate
	case domain.FieldEnd:
		return FieldEndDate
	default:
		return field
	}
}
