package services

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/preuniversitario/assessment-analysis-service/internal/email"
	"github.com/preuniversitario/assessment-analysis-service/internal/events"
	"github.com/preuniversitario/assessment-analysis-service/internal/ledger"
	"github.com/preuniversitario/assessment-analysis-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reportTemplate = `<html>
<body>
<h1><<ALUMNO>></h1>
<p>Nivel general: <<Nivel>></p>
<p>M1: <<Nivel M1>> | CL: <<Nivel CL>></p>
<p>Ciencias: <<Nivel Ciencias>> | Historia: <<Nivel Historia>></p>
<p>Agosto: <<PlanAgosto>></p>
<p>Septiembre: <<PlanSeptiembre>></p>
<p>Octubre: <<PlanOctubre>></p>
</body>
</html>`

type reportFixture struct {
	svc       ReportService
	sender    *email.ConsoleSender
	publisher *events.MockEventPublisher
	ledger    ledger.Ledger
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	dir := t.TempDir()

	templatePath := filepath.Join(dir, "template.html")
	require.NoError(t, os.WriteFile(templatePath, []byte(reportTemplate), 0o644))

	l, err := ledger.NewCSVLedger(filepath.Join(dir, "processed.csv"), slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	sender := email.NewConsoleSenderSilent()
	publisher := events.NewMockEventPublisher(slog.New(slog.DiscardHandler))

	return &reportFixture{
		svc:       NewReportService(templatePath, l, sender, publisher, slog.New(slog.DiscardHandler)),
		sender:    sender,
		publisher: publisher,
		ledger:    l,
	}
}

func lectureBasedResult(passed, analyzed int) *models.AssessmentResult {
	return &models.AssessmentResult{
		Type:              models.LectureBased,
		LecturesPassed:    passed,
		LecturesAnalyzed:  analyzed,
		OverallPercentage: float64(passed) / float64(analyzed) * 100,
	}
}

func percentageBasedResult(pct float64) *models.AssessmentResult {
	return &models.AssessmentResult{
		Type:              models.PercentageBased,
		OverallPercentage: pct,
	}
}

func TestReportService_Render(t *testing.T) {
	t.Run("substitutes levels and plans", func(t *testing.T) {
		f := newReportFixture(t)

		rendered, err := f.svc.Render(&ReportInput{
			UserID:      "user-1",
			UserName:    "Maria Perez",
			ReportTitle: "Plan de Estudio",
			Results: map[string]*models.AssessmentResult{
				AssessmentM1: lectureBasedResult(18, 20),
				AssessmentCL: percentageBasedResult(92.0),
			},
		})
		require.NoError(t, err)

		assert.Equal(t, models.Level3, rendered.LectureLevel)
		assert.Equal(t, models.Level3, rendered.CLLevel)
		assert.Contains(t, rendered.HTML, "<h1>Maria Perez</h1>")
		assert.Contains(t, rendered.HTML, "M1: Nivel 3 | CL: Nivel 3")
		assert.Contains(t, rendered.HTML, "Agosto: Electivo")
		assert.Contains(t, rendered.HTML, "Septiembre: Electivo")
		assert.Contains(t, rendered.HTML, "Octubre: Electivo")
		assert.NotContains(t, rendered.HTML, "<<")
	})

	t.Run("missing assessments degrade to level 1", func(t *testing.T) {
		f := newReportFixture(t)

		rendered, err := f.svc.Render(&ReportInput{
			UserID:      "user-1",
			UserName:    "Maria Perez",
			ReportTitle: "Plan de Estudio",
			Results:     map[string]*models.AssessmentResult{},
		})
		require.NoError(t, err)

		assert.Equal(t, models.Level1, rendered.LectureLevel)
		assert.Equal(t, models.Level1, rendered.CLLevel)
		assert.Equal(t, models.Level1, rendered.OverallLevel)
		assert.Contains(t, rendered.HTML, "Agosto: CL")
		assert.Contains(t, rendered.HTML, "Septiembre: M1")
		assert.Contains(t, rendered.HTML, "Octubre: M1")
	})

	t.Run("missing template", func(t *testing.T) {
		f := newReportFixture(t)
		broken := NewReportService("does-not-exist.html", f.ledger, f.sender, f.publisher, slog.New(slog.DiscardHandler))

		_, err := broken.Render(&ReportInput{UserName: "X"})
		assert.ErrorIs(t, err, ErrTemplateNotFound)
	})
}

func TestReportService_Deliver(t *testing.T) {
	input := func() *ReportInput {
		return &ReportInput{
			UserID:      "user-1",
			UserName:    "Maria Perez",
			UserEmail:   "maria@example.com",
			ReportTitle: "Plan de Estudio 2026",
			Results: map[string]*models.AssessmentResult{
				AssessmentM1: lectureBasedResult(12, 20),
				AssessmentCL: percentageBasedResult(70.0),
			},
		}
	}

	t.Run("sends the report and records delivery", func(t *testing.T) {
		f := newReportFixture(t)

		require.NoError(t, f.svc.Deliver(context.Background(), input()))

		sent := f.sender.SentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, "maria@example.com", sent[0].ToAddress)
		assert.Contains(t, sent[0].Subject, "Plan de Estudio 2026")
		assert.Contains(t, sent[0].HTMLBody, "Maria Perez")

		assert.True(t, f.ledger.IsProcessed("user-1", "Plan de Estudio 2026"))

		published := f.publisher.PublishedEvents()
		require.Len(t, published, 1)
		assert.Equal(t, events.EventReportReady, published[0].Type)
	})

	t.Run("second delivery is suppressed by the ledger", func(t *testing.T) {
		f := newReportFixture(t)

		require.NoError(t, f.svc.Deliver(context.Background(), input()))
		err := f.svc.Deliver(context.Background(), input())
		assert.ErrorIs(t, err, ErrReportAlreadySent)
		assert.True(t, IsConflict(err))

		// Still only one email out.
		assert.Len(t, f.sender.SentMessages(), 1)

		published := f.publisher.PublishedEvents()
		require.Len(t, published, 2)
		assert.Equal(t, events.EventReportSkipped, published[1].Type)
	})
}
