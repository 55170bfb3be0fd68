package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// queriesTotal counts answered legal queries by matched topic and reply
// language. The HTTP middleware already tracks request rates; this tracks
// what people actually ask about.
var queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "legalhelp_queries_total",
	Help: "Legal queries answered, by matched topic and reply language.",
}, []string{"topic", "language"})
