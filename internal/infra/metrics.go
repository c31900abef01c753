package infra

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	VentasTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boleteria_ventas_total",
		Help: "Total number of sales committed",
	})

	TicketsAnuladosTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boleteria_tickets_anulados_total",
		Help: "Total number of tickets annulled, individually or through their sale",
	})

	AuditoriaErroresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boleteria_auditoria_errores_total",
		Help: "Total number of configuration audit entries that could not be written",
	})

	CierresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "boleteria_cierres_total",
		Help: "Cash closures written, by outcome",
	}, []string{"accion"})
)
