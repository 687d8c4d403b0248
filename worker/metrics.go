package worker

import "github.com/prometheus/client_golang/prometheus"

var (
	ticksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "snake",
			Subsystem: "worker",
			Name:      "ticks_total",
			Help:      "Ticks applied to running games.",
		},
	)
	preyEatenTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "snake",
			Subsystem: "worker",
			Name:      "prey_eaten_total",
			Help:      "Prey eaten across all games.",
		},
	)
	gamesOverTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "snake",
			Subsystem: "worker",
			Name:      "games_over_total",
			Help:      "Games that ended, by cause of death.",
		},
		[]string{"cause"},
	)
	finalScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "snake",
			Subsystem: "worker",
			Name:      "final_score",
			Help:      "Score of games when the snake dies.",
			Buckets:   prometheus.LinearBuckets(0, 5, 20),
		},
	)
)

func init() {
	prometheus.MustRegister(ticksTotal, preyEatenTotal, gamesOverTotal, finalScore)
}
