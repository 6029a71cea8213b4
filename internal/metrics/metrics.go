// internal/metrics/metrics.go
package metrics

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tamzrod/vlcb-node/internal/node"
)

const namespace = "vlcbnode"

// Collector exports the latest published node stats. The dispatch goroutine
// publishes; the HTTP handler collects.
type Collector struct {
	mu    sync.Mutex
	stats node.Stats
	label string

	capacity     *prometheus.Desc
	stored       *prometheus.Desc
	free         *prometheus.Desc
	learning     *prometheus.Desc
	eventAck     *prometheus.Desc
	resetPending *prometheus.Desc
	taught       *prometheus.Desc
	consumed     *prometheus.Desc
	acknowledged *prometheus.Desc
	actedOn      *prometheus.Desc
	received     *prometheus.Desc
	sent         *prometheus.Desc
	sendErrors   *prometheus.Desc

	frameDuration *prometheus.HistogramVec
}

func New(nodeNumber uint16) *Collector {
	desc := func(subsystem, name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, name), help, []string{"node"}, nil)
	}

	return &Collector{
		label: strconv.Itoa(int(nodeNumber)),

		capacity:     desc("events", "capacity", "Rows in the event table."),
		stored:       desc("events", "stored", "Occupied rows in the event table."),
		free:         desc("events", "free", "Free rows in the event table."),
		learning:     desc("node", "learning", "1 while the node is in learn mode."),
		eventAck:     desc("node", "event_ack", "1 while consumed events are acknowledged."),
		resetPending: desc("node", "reset_pending", "1 while the node waits for a restart."),
		taught:       desc("teach", "taught_total", "Successful learn commands."),
		consumed:     desc("consume", "consumed_total", "Accessory events matched against the table."),
		acknowledged: desc("consume", "acknowledged_total", "ENACK frames sent."),
		actedOn:      desc("node", "acted_on_total", "Frames that caused the node to act."),
		received:     desc("frames", "received_total", "Frames handed to the node."),
		sent:         desc("frames", "sent_total", "Frames accepted by the transport."),
		sendErrors:   desc("frames", "send_errors_total", "Frames the transport failed to send."),

		frameDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "frames",
				Name:      "handle_duration_seconds",
				Help:      "Time spent handling one inbound frame.",
				Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
			},
			[]string{"node", "opcode"},
		),
	}
}

// Register adds the collector and its histogram to reg.
func (c *Collector) Register(reg prometheus.Registerer) error {
	if err := reg.Register(c); err != nil {
		return fmt.Errorf("metrics: register collector: %w", err)
	}
	if err := reg.Register(c.frameDuration); err != nil {
		return fmt.Errorf("metrics: register histogram: %w", err)
	}
	return nil
}

// Publish replaces the exported stats.
func (c *Collector) Publish(s node.Stats) {
	c.mu.Lock()
	c.stats = s
	c.mu.Unlock()
}

// ObserveFrame records how long one inbound frame took to handle.
func (c *Collector) ObserveFrame(opcode byte, d time.Duration) {
	c.frameDuration.WithLabelValues(c.label, fmt.Sprintf("%02X", opcode)).Observe(d.Seconds())
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.capacity, c.stored, c.free, c.learning, c.eventAck, c.resetPending,
		c.taught, c.consumed, c.acknowledged, c.actedOn, c.received, c.sent, c.sendErrors,
	} {
		ch <- d
	}
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	s := c.stats
	c.mu.Unlock()

	gauge := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v, c.label)
	}
	counter := func(d *prometheus.Desc, v uint32) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), c.label)
	}

	gauge(c.capacity, float64(s.Capacity))
	gauge(c.stored, float64(s.Stored))
	gauge(c.free, float64(s.Free))
	gauge(c.learning, boolValue(s.Learning))
	gauge(c.eventAck, boolValue(s.EventAck))
	gauge(c.resetPending, boolValue(s.ResetPending))

	counter(c.taught, s.Taught)
	counter(c.consumed, s.Consumed)
	counter(c.acknowledged, s.Acknowledged)
	counter(c.actedOn, s.ActedOn)
	counter(c.received, s.Received)
	counter(c.sent, s.Sent)
	counter(c.sendErrors, s.SendErrors)
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
