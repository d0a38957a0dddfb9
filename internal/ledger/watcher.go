package ledger

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Watcher keeps Prometheus gauges in line with the latest transaction
// snapshot. Every snapshot is treated as the complete current set and the
// summary is recomputed from scratch.
type Watcher struct {
	defaultOwner string
	logger       *slog.Logger

	ownerNet   *prometheus.GaugeVec
	totalOwing prometheus.Gauge
	excluded   prometheus.Gauge
	snapshots  prometheus.Counter

	mu     sync.RWMutex
	latest Summary
}

// NewWatcher registers the ledger gauges. A nil registerer uses the default
// Prometheus registerer.
func NewWatcher(defaultOwner string, reg prometheus.Registerer, logger *slog.Logger) (*Watcher, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if logger == nil {
		logger = slog.Default()
	}
	w := &Watcher{
		defaultOwner: defaultOwner,
		logger:       logger,
		ownerNet: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fleetdesk_ledger_owner_net",
			Help: "Net position per vehicle owner from the latest snapshot.",
		}, []string{"owner"}),
		totalOwing: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleetdesk_ledger_total_owing",
			Help: "Total amount owed by owners in deficit.",
		}),
		excluded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleetdesk_ledger_excluded_transactions",
			Help: "Transactions left out of the latest summary.",
		}),
		snapshots: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fleetdesk_ledger_snapshots_total",
			Help: "Transaction snapshots processed.",
		}),
	}
	for _, c := range []prometheus.Collector{w.ownerNet, w.totalOwing, w.excluded, w.snapshots} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// Run consumes snapshots until ctx is done or the channel closes.
func (w *Watcher) Run(ctx context.Context, snapshots <-chan []Transaction) {
	for {
		select {
		case <-ctx.Done():
			return
		case txs, ok := <-snapshots:
			if !ok {
				return
			}
			w.Apply(txs)
		}
	}
}

// Apply recomputes the summary for one snapshot and updates the gauges.
func (w *Watcher) Apply(txs []Transaction) Summary {
	summary := Aggregate(txs, SelectAll(), w.defaultOwner)

	w.ownerNet.Reset()
	for owner, net := range summary.PerOwnerNet {
		w.ownerNet.WithLabelValues(owner).Set(net)
	}
	w.totalOwing.Set(summary.TotalOwing)
	w.excluded.Set(float64(len(summary.Excluded)))
	w.snapshots.Inc()

	if len(summary.Excluded) > 0 {
		w.logger.Warn("ledger snapshot has excluded transactions", slog.Int("count", len(summary.Excluded)))
	}

	w.mu.Lock()
	w.latest = summary
	w.mu.Unlock()
	return summary
}

// Latest returns the summary of the most recent snapshot.
func (w *Watcher) Latest() Summary {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.latest
}
