package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the assessment pipeline.
type Metrics struct {
	AnswersSubmitted     prometheus.Counter
	AssessmentsFinalized prometheus.Counter
	FinalizeRejected     prometheus.Counter
	AnomaliesFlagged     *prometheus.CounterVec
	ReportJobs           *prometheus.CounterVec
}

// New creates a Metrics instance registered on the default registry.
func New() *Metrics {
	return &Metrics{
		AnswersSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "avalia_answers_submitted_total",
			Help: "Total answers accepted, including overwrites of earlier values",
		}),
		AssessmentsFinalized: promauto.NewCounter(prometheus.CounterOpts{
			Name: "avalia_assessments_finalized_total",
			Help: "Total assessments transitioned to completed",
		}),
		FinalizeRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "avalia_finalize_rejected_total",
			Help: "Finalize attempts rejected for incomplete answer sets",
		}),
		AnomaliesFlagged: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "avalia_score_anomalies_total",
			Help: "Scores flagged by the anomaly detector, by reason",
		}, []string{"reason"}),
		ReportJobs: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "avalia_report_jobs_total",
			Help: "Organization report jobs by outcome",
		}, []string{"outcome"}), // outcome: "completed", "failed"
	}
}

// IncrementAnswers records an accepted answer submission.
func (m *Metrics) IncrementAnswers() {
	if m != nil {
		m.AnswersSubmitted.Inc()
	}
}

// IncrementFinalized records a completed assessment.
func (m *Metrics) IncrementFinalized() {
	if m != nil {
		m.AssessmentsFinalized.Inc()
	}
}

// IncrementFinalizeRejected records a finalize attempt blocked by the
// completeness gate.
func (m *Metrics) IncrementFinalizeRejected() {
	if m != nil {
		m.FinalizeRejected.Inc()
	}
}

// IncrementAnomaly records a flagged score.
func (m *Metrics) IncrementAnomaly(reason string) {
	if m != nil {
		m.AnomaliesFlagged.WithLabelValues(reason).Inc()
	}
}

// IncrementReportJob records a finished report job.
func (m *Metrics) IncrementReportJob(outcome string) {
	if m != nil {
		m.ReportJobs.WithLabelValues(outcome).Inc()
	}
}
