package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "gearguard"

var (
	StageTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stage_transitions_total",
		Help:      "Успешные переходы стадий заявок",
	}, []string{"from", "to"})

	OverdueRequests = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "overdue_requests",
		Help:      "Количество просроченных заявок на момент последней проверки",
	})

	PreventiveGenerated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "preventive_requests_generated_total",
		Help:      "Профилактические заявки, созданные генератором",
	})

	JobRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "job_runs_total",
		Help:      "Запуски периодических задач по результату",
	}, []string{"job", "result"})

	JobItemFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "job_item_failures_total",
		Help:      "Ошибки по отдельным элементам внутри периодических задач",
	}, []string{"job"})
)

// Register регистрирует коллекторы; повторная регистрация не считается ошибкой.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{StageTransitions, OverdueRequests, PreventiveGenerated, JobRuns, JobItemFailures}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return err
		}
	}
	return nil
}
