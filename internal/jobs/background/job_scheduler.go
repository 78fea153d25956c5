package background

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"

	"restobill/internal/caching"
	"restobill/internal/common"
	"restobill/internal/models"
)

const (
	metricsInterval      = 30 * time.Second
	staleOrdersInterval  = 30 * time.Minute
	subscriptionInterval = time.Hour
	pingTimeout          = 5 * time.Second

	// MetricsCapacity is how many samples the sampler keeps (one hour at 30s)
	MetricsCapacity = 120
)

// Pinger is a store the metrics sampler can ping
type Pinger interface {
	Ping(ctx context.Context) error
}

// StaleOrderFinder lists open orders created before a cut-off
type StaleOrderFinder interface {
	ListStaleActive(ctx context.Context, before time.Time) ([]*models.Order, error)
}

// SubscriptionExpirer flips lapsed subscriptions to inactive
type SubscriptionExpirer interface {
	ExpireSubscriptions(ctx context.Context) (int64, error)
}

// JobDependencies are the collaborators the background jobs use
type JobDependencies struct {
	Database      Pinger
	Cache         caching.Cache
	Orders        StaleOrderFinder
	Subscriptions SubscriptionExpirer
}

// JobScheduler runs the periodic maintenance and sampling jobs
type JobScheduler struct {
	scheduler gocron.Scheduler
	deps      JobDependencies
	samples   *MetricsBuffer
	logger    *logrus.Entry
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
	now       func() time.Time
}

// NewJobScheduler creates the scheduler and registers every job
func NewJobScheduler(deps JobDependencies, logger *logrus.Logger) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	js := &JobScheduler{
		scheduler: scheduler,
		deps:      deps,
		samples:   NewMetricsBuffer(MetricsCapacity),
		logger:    logger.WithField("component", "job_scheduler"),
		jobs:      make(map[string]gocron.Job),
		now:       time.Now,
	}

	if err := js.registerJobs(); err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	js.logger.Info("starting background job scheduler")
	js.scheduler.Start()
}

// Stop stops the job scheduler and waits for running jobs
func (js *JobScheduler) Stop() error {
	js.logger.Info("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() error {
	ctx := context.Background()

	if err := js.addJob("system-metrics-sampler", metricsInterval, js.sampleSystemMetrics, ctx); err != nil {
		return err
	}
	if js.deps.Orders != nil {
		if err := js.addJob("stale-active-orders", staleOrdersInterval, js.checkStaleActiveOrders, ctx); err != nil {
			return err
		}
	}
	if js.deps.Subscriptions != nil {
		if err := js.addJob("subscription-expiry", subscriptionInterval, js.expireSubscriptions, ctx); err != nil {
			return err
		}
	}

	js.logger.WithField("jobs", len(js.jobs)).Info("registered background jobs")
	return nil
}

func (js *JobScheduler) addJob(name string, interval time.Duration, taskFn interface{}, params ...interface{}) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(taskFn, params...),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to create %s job: %w", name, err)
	}
	js.jobs[name] = job
	return nil
}

// sampleSystemMetrics records runtime and store latency figures
func (js *JobScheduler) sampleSystemMetrics(ctx context.Context) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	sample := models.SystemMetricsSample{
		Timestamp:      js.now().UTC(),
		Goroutines:     runtime.NumGoroutine(),
		HeapAllocBytes: mem.HeapAlloc,
		HeapSysBytes:   mem.HeapSys,
		NumGC:          mem.NumGC,
	}

	if js.deps.Database != nil {
		sample.MongoLatencyMs, sample.MongoOK = timePing(ctx, js.deps.Database)
	}
	if js.deps.Cache != nil {
		sample.CacheBackend = js.deps.Cache.Backend()
		sample.CacheLatencyMs, sample.CacheOK = timePing(ctx, js.deps.Cache)
	}

	js.samples.Add(sample)
	if !sample.MongoOK && js.deps.Database != nil {
		js.logger.WithField("latency_ms", sample.MongoLatencyMs).Warn("mongo ping failed")
	}
}

func timePing(ctx context.Context, p Pinger) (float64, bool) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	start := time.Now()
	err := p.Ping(ctx)
	return float64(time.Since(start).Microseconds()) / 1000, err == nil
}

// checkStaleActiveOrders reports open orders left over from previous business days
func (js *JobScheduler) checkStaleActiveOrders(ctx context.Context) (map[string]int, error) {
	todayStart := common.TodayStartUTC(js.now())
	orders, err := js.deps.Orders.ListStaleActive(ctx, todayStart)
	if err != nil {
		js.logger.WithError(err).Error("failed to list stale active orders")
		return nil, err
	}

	perOrg := make(map[string]int)
	for _, o := range orders {
		perOrg[o.OrganizationID]++
	}

	orgs := make([]string, 0, len(perOrg))
	for org := range perOrg {
		orgs = append(orgs, org)
	}
	sort.Strings(orgs)
	for _, org := range orgs {
		js.logger.WithFields(logrus.Fields{
			"organization_id": org,
			"stale_orders":    perOrg[org],
			"before":          todayStart,
		}).Warn("open orders from previous business days")
	}
	return perOrg, nil
}

func (js *JobScheduler) expireSubscriptions(ctx context.Context) error {
	n, err := js.deps.Subscriptions.ExpireSubscriptions(ctx)
	if err != nil {
		js.logger.WithError(err).Error("failed to expire subscriptions")
		return err
	}
	if n > 0 {
		js.logger.WithField("expired", n).Info("expired subscriptions")
	}
	return nil
}

// Samples returns the collected metrics, oldest first
func (js *JobScheduler) Samples() []models.SystemMetricsSample {
	return js.samples.Snapshot()
}

// JobStatus reports the registered jobs and their next run
func (js *JobScheduler) JobStatus() map[string]interface{} {
	js.mu.RLock()
	defer js.mu.RUnlock()

	jobs := make(map[string]interface{}, len(js.jobs))
	for name, job := range js.jobs {
		info := map[string]interface{}{}
		if next, err := job.NextRun(); err == nil {
			info["next_run"] = next.UTC()
		}
		if last, err := job.LastRun(); err == nil && !last.IsZero() {
			info["last_run"] = last.UTC()
		}
		jobs[name] = info
	}
	return map[string]interface{}{
		"total_jobs": len(js.jobs),
		"jobs":       jobs,
	}
}

// MetricsBuffer is a fixed-size ring of metrics samples
type MetricsBuffer struct {
	mu    sync.RWMutex
	items []models.SystemMetricsSample
	next  int
	full  bool
}

func NewMetricsBuffer(capacity int) *MetricsBuffer {
	if capacity <= 0 {
		capacity = MetricsCapacity
	}
	return &MetricsBuffer{items: make([]models.SystemMetricsSample, capacity)}
}

// Add stores a sample, overwriting the oldest once full
func (b *MetricsBuffer) Add(sample models.SystemMetricsSample) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items[b.next] = sample
	b.next = (b.next + 1) % len(b.items)
	if b.next == 0 {
		b.full = true
	}
}

// Snapshot copies the samples out, oldest first
func (b *MetricsBuffer) Snapshot() []models.SystemMetricsSample {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.full {
		out := make([]models.SystemMetricsSample, b.next)
		copy(out, b.items[:b.next])
		return out
	}
	out := make([]models.SystemMetricsSample, 0, len(b.items))
	out = append(out, b.items[b.next:]...)
	return append(out, b.items[:b.next]...)
}
