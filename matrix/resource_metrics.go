// SPDX-License-Identifier: MIT

// Package matrix: Prometheus view of a memory resource.
//
// MeteredResource decorates any Resource, counting reservations and
// refusals, and doubles as a prometheus.Collector that reports them at
// scrape time. Backends see an ordinary Resource:
//
//	res := matrix.NewMeteredResource(matrix.NewBoundedResource(1<<30), "solver")
//	prometheus.MustRegister(res)
//	c, _ := matrix.NewCSR[float64, uint32](m, n, matrix.WithResource(res))
//
// Like every Resource it is not synchronized; a scrape concurrent with
// backend mutation needs external locking.

package matrix

import "github.com/prometheus/client_golang/prometheus"

// MeteredResource wraps a Resource with acquisition counters.
type MeteredResource struct {
	inner Resource

	acquires  uint64
	refusals  uint64
	acquired  int64
	released  int64
	highWater int64

	inUseDesc     *prometheus.Desc
	highWaterDesc *prometheus.Desc
	acquiresDesc  *prometheus.Desc
	refusalsDesc  *prometheus.Desc
	acquiredDesc  *prometheus.Desc
	releasedDesc  *prometheus.Desc
}

var (
	_ Resource             = (*MeteredResource)(nil)
	_ prometheus.Collector = (*MeteredResource)(nil)
)

// NewMeteredResource wraps inner; name becomes the "resource" const label.
// Panics on a nil inner resource (programmer error).
func NewMeteredResource(inner Resource, name string) *MeteredResource {
	if inner == nil {
		panic(panicNilResource)
	}
	labels := prometheus.Labels{"resource": name}
	desc := func(metric, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName("grb", "resource", metric), help, nil, labels)
	}

	return &MeteredResource{
		inner:         inner,
		inUseDesc:     desc("in_use_bytes", "Bytes currently reserved by sparse backends"),
		highWaterDesc: desc("high_water_bytes", "Largest reservation level observed"),
		acquiresDesc:  desc("acquires_total", "Successful Acquire calls"),
		refusalsDesc:  desc("refusals_total", "Acquire calls refused for capacity"),
		acquiredDesc:  desc("acquired_bytes_total", "Bytes granted by Acquire"),
		releasedDesc:  desc("released_bytes_total", "Bytes returned by Release"),
	}
}

// Acquire forwards to the wrapped resource and records the outcome.
func (r *MeteredResource) Acquire(bytes int64) error {
	if err := r.inner.Acquire(bytes); err != nil {
		r.refusals++

		return err
	}
	r.acquires++
	r.acquired += bytes
	if in := r.inner.InUse(); in > r.highWater {
		r.highWater = in
	}

	return nil
}

// Release forwards to the wrapped resource.
func (r *MeteredResource) Release(bytes int64) {
	r.inner.Release(bytes)
	r.released += bytes
}

// InUse reports the wrapped resource's usage.
func (r *MeteredResource) InUse() int64 { return r.inner.InUse() }

// HighWater reports the largest usage seen after a successful Acquire.
func (r *MeteredResource) HighWater() int64 { return r.highWater }

// Refusals reports how many Acquire calls failed.
func (r *MeteredResource) Refusals() uint64 { return r.refusals }

// Describe implements prometheus.Collector.
func (r *MeteredResource) Describe(ch chan<- *prometheus.Desc) {
	ch <- r.inUseDesc
	ch <- r.highWaterDesc
	ch <- r.acquiresDesc
	ch <- r.refusalsDesc
	ch <- r.acquiredDesc
	ch <- r.releasedDesc
}

// Collect implements prometheus.Collector.
func (r *MeteredResource) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(r.inUseDesc, prometheus.GaugeValue, float64(r.inner.InUse()))
	ch <- prometheus.MustNewConstMetric(r.highWaterDesc, prometheus.GaugeValue, float64(r.highWater))
	ch <- prometheus.MustNewConstMetric(r.acquiresDesc, prometheus.CounterValue, float64(r.acquires))
	ch <- prometheus.MustNewConstMetric(r.refusalsDesc, prometheus.CounterValue, float64(r.refusals))
	ch <- prometheus.MustNewConstMetric(r.acquiredDesc, prometheus.CounterValue, float64(r.acquired))
	ch <- prometheus.MustNewConstMetric(r.releasedDesc, prometheus.CounterValue, float64(r.released))
}
