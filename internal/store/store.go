// Package store holds the client-side invoice collection, its derived
// supplier aggregate and the cached analysis, and notifies subscribers of
// every change.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MarcoMadridG27/Thesaurus/internal/model"
	"github.com/MarcoMadridG27/Thesaurus/internal/service"
)

// recentLimit is the number of invoices reported in Stats.RecentInvoices.
const recentLimit = 5

// Analyzer runs a full-collection analysis against the insights service.
type Analyzer interface {
	AnalyzeInvoices(ctx context.Context, invoices []model.Invoice, period string) (*model.Analysis, error)
}

// TaskResult describes one finished background analysis.
type TaskResult struct {
	Err      error
	Analysis *model.Analysis
	Trigger  string
	Invoices int
}

// Store is the single writer of the invoice collection.
type Store struct {
	ctx       context.Context
	kv        service.KeyValueStore
	analyzer  Analyzer
	now       func() time.Time
	newID     func() string
	onTask    func(TaskResult)
	listeners map[uint64]func()
	period    string
	invoices  []model.Invoice
	suppliers []model.Supplier
	tasks     sync.WaitGroup
	nextID    uint64
	version   uint64
	cachedAt  uint64
	mu        sync.RWMutex
	lmu       sync.Mutex
	amu       sync.Mutex

	skipLoadAnalysis bool
}

// New creates a store backed by kv and loads any previously persisted
// collection. Storage problems are logged and leave the store empty; New
// only fails on missing collaborators.
func New(ctx context.Context, kv service.KeyValueStore, analyzer Analyzer, opts ...Option) (*Store, error) {
	if kv == nil {
		return nil, errors.New("store: key/value storage is required")
	}
	if analyzer == nil {
		return nil, errors.New("store: analyzer is required")
	}

	s := &Store{
		ctx:       context.WithoutCancel(ctx),
		kv:        kv,
		analyzer:  analyzer,
		now:       time.Now,
		newID:     placeholderID,
		period:    DefaultPeriod,
		listeners: make(map[uint64]func()),
		invoices:  []model.Invoice{},
		suppliers: []model.Supplier{},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.load()
	return s, nil
}

func (s *Store) load() {
	raw, ok, err := s.kv.Get(s.ctx, service.KeyInvoices)
	if err != nil {
		slog.Error("Failed to read stored invoices", "error", err)
		return
	}
	if !ok || len(raw) == 0 {
		return
	}

	var invoices []model.Invoice
	if err := json.Unmarshal(raw, &invoices); err != nil {
		slog.Error("Failed to parse stored invoices, starting empty", "error", err)
		return
	}
	if len(invoices) == 0 {
		return
	}

	s.mu.Lock()
	s.invoices = invoices
	s.suppliers = model.BuildSuppliers(invoices)
	s.mu.Unlock()

	slog.Debug("Loaded stored invoices", "count", len(invoices))
	if !s.skipLoadAnalysis {
		s.analyzeInBackground("load")
	}
}

// AddInvoice stores the invoice built from an extraction result at the
// head of the collection and returns it.
func (s *Store) AddInvoice(result model.ExtractionResult) model.Invoice {
	inv := model.NewInvoice(result, s.now(), s.newID)

	s.mu.Lock()
	next := make([]model.Invoice, 0, len(s.invoices)+1)
	next = append(next, inv)
	next = append(next, s.invoices...)
	s.replaceLocked(next)
	s.mu.Unlock()

	slog.Debug("Invoice added", "id", inv.ID, "ruc", inv.RUC, "total", inv.Total.String())

	s.notify()
	s.analyzeInBackground("add")
	return inv.Clone()
}

// RemoveInvoice deletes the invoice with the given id. It reports whether
// anything was removed; an unknown id changes nothing and notifies no one.
func (s *Store) RemoveInvoice(id string) bool {
	removed := s.removeWhere(func(inv model.Invoice) bool { return inv.ID == id })
	return removed > 0
}

// RemoveSupplier deletes every invoice issued by the supplier with the
// given tax identifier and returns how many were removed.
func (s *Store) RemoveSupplier(ruc string) int {
	return s.removeWhere(func(inv model.Invoice) bool { return inv.RUC == ruc })
}

func (s *Store) removeWhere(match func(model.Invoice) bool) int {
	s.mu.Lock()
	next := make([]model.Invoice, 0, len(s.invoices))
	for _, inv := range s.invoices {
		if !match(inv) {
			next = append(next, inv)
		}
	}
	removed := len(s.invoices) - len(next)
	if removed > 0 {
		s.replaceLocked(next)
	}
	s.mu.Unlock()

	if removed > 0 {
		s.notify()
	}
	return removed
}

// ClearAll empties the collection and persists the empty state.
func (s *Store) ClearAll() {
	s.mu.Lock()
	s.replaceLocked([]model.Invoice{})
	s.mu.Unlock()

	s.notify()
}

// replaceLocked swaps in a new collection together with its aggregate and
// persists it. Callers must hold s.mu for writing.
func (s *Store) replaceLocked(invoices []model.Invoice) {
	s.version++
	s.invoices = invoices
	s.suppliers = model.BuildSuppliers(invoices)

	data, err := json.Marshal(invoices)
	if err != nil {
		slog.Error("Failed to encode invoices", "error", err)
		return
	}
	if err := s.kv.Set(s.ctx, service.KeyInvoices, data); err != nil {
		slog.Error("Failed to persist invoices", "error", err, "count", len(invoices))
	}
}

// Invoices returns a copy of the collection, most recent first.
func (s *Store) Invoices() []model.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneInvoices(s.invoices)
}

// Suppliers returns a copy of the supplier aggregate.
func (s *Store) Suppliers() []model.Supplier {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Supplier, len(s.suppliers))
	copy(out, s.suppliers)
	return out
}

// Stats computes the dashboard figures. Monthly spend covers invoices
// dated in the current local calendar month.
func (s *Store) Stats() model.Stats {
	now := s.now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	monthly := decimal.Zero
	for _, inv := range s.invoices {
		total = total.Add(inv.Total)
		if d, ok := model.ParseInvoiceDate(inv.Fecha, now.Location()); ok &&
			d.Year() == now.Year() && d.Month() == now.Month() {
			monthly = monthly.Add(inv.Total)
		}
	}

	return model.Stats{
		TotalSpent:     total,
		MonthlySpent:   monthly,
		InvoiceCount:   len(s.invoices),
		SupplierCount:  len(s.suppliers),
		RecentInvoices: cloneInvoices(s.invoices[:min(recentLimit, len(s.invoices))]),
	}
}

// ChatContext returns the aggregate figures sent with chat traffic.
func (s *Store) ChatContext() model.ChatContext {
	return s.Stats().ChatContext()
}

// Subscribe registers fn to be called after every change. The returned
// function removes the subscription and may be called more than once.
func (s *Store) Subscribe(fn func()) func() {
	s.lmu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.lmu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.lmu.Lock()
			delete(s.listeners, id)
			s.lmu.Unlock()
		})
	}
}

func (s *Store) notify() {
	s.lmu.Lock()
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.lmu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// GenerateInsight analyses the current collection and caches the result.
// It returns nil without contacting the analyzer when there is nothing to
// analyse.
func (s *Store) GenerateInsight(ctx context.Context) (*model.Analysis, error) {
	invoices, version := s.snapshot()
	return s.analyze(ctx, invoices, version)
}

// snapshot copies the collection together with the version it belongs to.
func (s *Store) snapshot() ([]model.Invoice, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneInvoices(s.invoices), s.version
}

// ForceAnalyze re-runs the analysis regardless of when it last ran.
func (s *Store) ForceAnalyze(ctx context.Context) (*model.Analysis, error) {
	slog.Info("Forcing invoice re-analysis")
	return s.GenerateInsight(ctx)
}

func (s *Store) analyze(ctx context.Context, invoices []model.Invoice, version uint64) (*model.Analysis, error) {
	if len(invoices) == 0 {
		slog.Debug("No invoices to analyse")
		return nil, nil
	}

	analysis, err := s.analyzer.AnalyzeInvoices(ctx, invoices, s.period)
	if err != nil {
		return nil, fmt.Errorf("failed to analyse %d invoices: %w", len(invoices), err)
	}
	if analysis == nil {
		return nil, nil
	}

	s.cacheAnalysis(ctx, analysis, version)
	return analysis, nil
}

// cacheAnalysis stores analysis unless a result for a newer version of the
// collection has already been cached.
func (s *Store) cacheAnalysis(ctx context.Context, analysis *model.Analysis, version uint64) {
	s.amu.Lock()
	defer s.amu.Unlock()

	if version < s.cachedAt {
		slog.Debug("Discarding analysis of an outdated collection", "version", version, "cached", s.cachedAt)
		return
	}

	data, err := json.Marshal(analysis)
	if err != nil {
		slog.Error("Failed to encode analysis", "error", err)
		return
	}
	if err := s.kv.Set(ctx, service.KeyLatestAnalysis, data); err != nil {
		slog.Error("Failed to cache analysis", "error", err)
		return
	}
	s.cachedAt = version
	stamp := s.now().UTC().Format(time.RFC3339Nano)
	if err := s.kv.Set(ctx, service.KeyAnalysisTimestamp, []byte(stamp)); err != nil {
		slog.Error("Failed to cache analysis timestamp", "error", err)
	}
}

// analyzeInBackground starts a detached analysis of a snapshot of the
// collection. Its outcome is only logged and reported to the task hook.
func (s *Store) analyzeInBackground(trigger string) {
	snapshot, version := s.snapshot()
	if len(snapshot) == 0 {
		return
	}

	s.tasks.Add(1)
	go func() {
		defer s.tasks.Done()

		analysis, err := s.analyze(s.ctx, snapshot, version)
		if err != nil {
			slog.Warn("Background analysis failed", "trigger", trigger, "error", err)
		} else {
			slog.Debug("Background analysis finished", "trigger", trigger, "invoices", len(snapshot))
		}

		if s.onTask != nil {
			s.onTask(TaskResult{
				Trigger:  trigger,
				Invoices: len(snapshot),
				Analysis: analysis,
				Err:      err,
			})
		}
	}()
}

// Wait blocks until every background analysis started so far has finished.
func (s *Store) Wait() {
	s.tasks.Wait()
}

// LatestAnalysis returns the cached analysis and when it was produced.
// A missing or unreadable cache is reported as absent.
func (s *Store) LatestAnalysis() (*model.Analysis, time.Time, bool) {
	raw, ok, err := s.kv.Get(s.ctx, service.KeyLatestAnalysis)
	if err != nil {
		slog.Error("Failed to read cached analysis", "error", err)
		return nil, time.Time{}, false
	}
	if !ok {
		return nil, time.Time{}, false
	}

	var analysis model.Analysis
	if err := json.Unmarshal(raw, &analysis); err != nil {
		slog.Error("Failed to parse cached analysis", "error", err)
		return nil, time.Time{}, false
	}

	var at time.Time
	if stamp, ok, err := s.kv.Get(s.ctx, service.KeyAnalysisTimestamp); err == nil && ok {
		if t, perr := time.Parse(time.RFC3339Nano, string(stamp)); perr == nil {
			at = t
		}
	}
	return &analysis, at, true
}

func cloneInvoices(in []model.Invoice) []model.Invoice {
	out := make([]model.Invoice, len(in))
	for i, inv := range in {
		out[i] = inv.Clone()
	}
	return out
}
