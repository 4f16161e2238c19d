package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/preuniversitario/assessment-analysis-service/internal/analyzer"
	"github.com/preuniversitario/assessment-analysis-service/internal/email"
	"github.com/preuniversitario/assessment-analysis-service/internal/events"
	"github.com/preuniversitario/assessment-analysis-service/internal/ledger"
	"github.com/preuniversitario/assessment-analysis-service/internal/models"
)

// Assessment keys used in report inputs. M1 and CL drive the monthly plan;
// Ciencias and Historia only contribute their level rows.
const (
	AssessmentM1       = "M1"
	AssessmentCL       = "CL"
	AssessmentCiencias = "CIEN"
	AssessmentHistoria = "HYST"
)

// ReportInput carries everything needed to render and deliver one user's
// study-plan report.
type ReportInput struct {
	UserID    string
	UserName  string
	UserEmail string

	// ReportTitle identifies the report in the delivery ledger.
	ReportTitle string

	// Results holds the user's latest result per assessment key. Missing
	// assessments degrade to level 1 rather than failing the report.
	Results map[string]*models.AssessmentResult
}

// RenderedReport is the outcome of token substitution.
type RenderedReport struct {
	HTML         string
	LectureLevel models.Level
	CLLevel      models.Level
	OverallLevel models.Level
	MonthlyPlans map[string]string
}

// ReportService renders study-plan reports from an HTML template and
// delivers them by email, exactly once per (user, report).
type ReportService interface {
	Render(input *ReportInput) (*RenderedReport, error)
	Deliver(ctx context.Context, input *ReportInput) error
}

type reportService struct {
	templatePath string
	ledger       ledger.Ledger
	sender       email.Sender
	publisher    events.EventPublisher
	logger       *slog.Logger
}

func NewReportService(
	templatePath string,
	deliveryLedger ledger.Ledger,
	sender email.Sender,
	publisher events.EventPublisher,
	logger *slog.Logger,
) ReportService {
	return &reportService{
		templatePath: templatePath,
		ledger:       deliveryLedger,
		sender:       sender,
		publisher:    publisher,
		logger:       logger,
	}
}

// Render loads the HTML template and substitutes every report token with the
// user's levels and monthly plans.
func (s *reportService) Render(input *ReportInput) (*RenderedReport, error) {
	template, err := os.ReadFile(s.templatePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, s.templatePath)
		}
		return nil, fmt.Errorf("failed to read report template: %w", err)
	}

	m1Level := s.levelFor(input.Results[AssessmentM1])
	clLevel := s.levelFor(input.Results[AssessmentCL])
	cienLevel := s.levelFor(input.Results[AssessmentCiencias])
	hystLevel := s.levelFor(input.Results[AssessmentHistoria])

	plans := make(map[string]string, len(models.PlanMonths))
	for _, month := range models.PlanMonths {
		plan, err := analyzer.MonthlyPlan(m1Level, clLevel, month)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve plan for %s: %w", month, err)
		}
		plans[string(month)] = plan
	}

	var all []*models.AssessmentResult
	completed := 0
	for _, r := range input.Results {
		if r != nil {
			all = append(all, r)
			completed++
		}
	}
	overall := analyzer.DeriveOverallLevel(all)

	tokens := map[string]string{
		"<<ALUMNO>>":         input.UserName,
		"<<Nombre>>":         input.UserName,
		"<<MATERIA>>":        "Plan de Estudio Completo",
		"<<Prueba>>":         "Plan de Estudio Completo",
		"<<PD%>>":            fmt.Sprintf("%d/%d evaluaciones completadas", completed, len(input.Results)),
		"<<Nivel>>":          strconv.Itoa(int(overall)),
		"<<Nivel M1>>":       m1Level.String(),
		"<<Nivel CL>>":       clLevel.String(),
		"<<Nivel Ciencias>>": cienLevel.String(),
		"<<Nivel Historia>>": hystLevel.String(),
		"<<PlanAgosto>>":     plans[string(models.MonthAugust)],
		"<<PlanSeptiembre>>": plans[string(models.MonthSeptember)],
		"<<PlanOctubre>>":    plans[string(models.MonthOctober)],
	}

	html := string(template)
	for token, value := range tokens {
		html = strings.ReplaceAll(html, token, value)
	}

	return &RenderedReport{
		HTML:         html,
		LectureLevel: m1Level,
		CLLevel:      clLevel,
		OverallLevel: overall,
		MonthlyPlans: plans,
	}, nil
}

// Deliver renders the report and emails it, unless the ledger shows this
// user already received it.
func (s *reportService) Deliver(ctx context.Context, input *ReportInput) error {
	if s.ledger.IsProcessed(input.UserID, input.ReportTitle) {
		s.logger.Info("report already delivered, skipping",
			"user_id", input.UserID, "report", input.ReportTitle)
		s.publishEvent(ctx, events.NewReportSkippedEvent(input.UserID, input.ReportTitle))
		return fmt.Errorf("%w: user %s, report %q", ErrReportAlreadySent, input.UserID, input.ReportTitle)
	}

	rendered, err := s.Render(input)
	if err != nil {
		return err
	}

	msg := &email.Message{
		ToName:    input.UserName,
		ToAddress: input.UserEmail,
		Subject:   fmt.Sprintf("Tu plan de estudio: %s", input.ReportTitle),
		TextBody:  s.textSummary(rendered),
		HTMLBody:  rendered.HTML,
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to deliver report: %w", err)
	}

	if err := s.ledger.MarkProcessed(input.UserID, input.ReportTitle); err != nil {
		// The report went out; a ledger write failure must be visible because
		// the next run would deliver a duplicate.
		return fmt.Errorf("report delivered but ledger update failed: %w", err)
	}

	s.publishEvent(ctx, events.NewReportReadyEvent(
		input.UserID, rendered.LectureLevel, rendered.CLLevel, rendered.OverallLevel, rendered.MonthlyPlans))

	s.logger.Info("report delivered",
		"user_id", input.UserID,
		"report", input.ReportTitle,
		"overall_level", int(rendered.OverallLevel))
	return nil
}

// levelFor degrades a missing or unscorable result to level 1, mirroring how
// the report treats absent assessments.
func (s *reportService) levelFor(result *models.AssessmentResult) models.Level {
	if result == nil {
		return models.Level1
	}
	level, err := analyzer.DeriveLevel(result)
	if err != nil {
		return models.Level1
	}
	return level
}

func (s *reportService) textSummary(r *RenderedReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Nivel M1: %s\n", r.LectureLevel)
	fmt.Fprintf(&b, "Nivel CL: %s\n", r.CLLevel)
	for _, month := range models.PlanMonths {
		fmt.Fprintf(&b, "Plan %s: %s\n", month, r.MonthlyPlans[string(month)])
	}
	return b.String()
}

func (s *reportService) publishEvent(ctx context.Context, event *events.ReportEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishReportEvent(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "event_type", event.Type, "error", err)
	}
}
