package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/footcache/footcache/internal/estimate"
)

// ReadState 描述 Manager 读路径所处的阶段。
type ReadState string

const (
	ReadStateInit          ReadState = "init"
	ReadStateLoading       ReadState = "loading"
	ReadStateLoaded        ReadState = "loaded"
	ReadStateEmptyCreated  ReadState = "empty_created"
	ReadStateEmptyDegraded ReadState = "empty_degraded"
	ReadStateAnalyzed      ReadState = "analyzed"
)

// Manager 持有一次会话内的缓存状态：cachedEstimates 来自最近一次加载（或 Prime 注入），
// fetchedEstimates 仅记录最近一次 SetEstimates 写入的增量。
//
// Manager 不是并发安全的；同一缓存路径同一时间只应存在一个写入者。
type Manager struct {
	store   Store
	logger  logrus.FieldLogger
	session string

	state            ReadState
	lastLoad         LoadState
	cachedEstimates  []estimate.Estimate
	fetchedEstimates []estimate.Estimate
	persisted        int
}

// NewManager 为一次逻辑会话创建 Manager，每个会话分配独立的 session ID 用于日志关联。
func NewManager(store Store, logger logrus.FieldLogger) *Manager {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	session := uuid.NewString()
	return &Manager{
		store:   store,
		logger:  logger.WithField("cache_session", session),
		session: session,
		state:   ReadStateInit,
	}
}

// Session 返回会话 ID。
func (m *Manager) Session() string {
	return m.session
}

// State 返回读路径当前阶段。
func (m *Manager) State() ReadState {
	return m.state
}

// LastLoad 返回最近一次 Load 的结果类别，尚未加载时为空。
func (m *Manager) LastLoad() LoadState {
	return m.lastLoad
}

// Estimates 返回当前内存中缓存记录的副本，不触发磁盘访问。
func (m *Manager) Estimates() []estimate.Estimate {
	return append([]estimate.Estimate(nil), m.cachedEstimates...)
}

// FetchedEstimates 返回最近一次 SetEstimates 写入的增量（不是合并后的全集）的副本。
func (m *Manager) FetchedEstimates() []estimate.Estimate {
	return append([]estimate.Estimate(nil), m.fetchedEstimates...)
}

// Persisted 返回最近一次 SetEstimates 写回磁盘的记录总数。
func (m *Manager) Persisted() int {
	return m.persisted
}

// Prime 直接注入 cachedEstimates，供已持有数据的协作方或测试使用。
func (m *Manager) Prime(estimates []estimate.Estimate) {
	m.cachedEstimates = append([]estimate.Estimate(nil), estimates...)
}

// MissingDates 返回 req 区间内缓存缺失的周期。文件缺失或损坏时退化为完整区间，
// 只有其它 I/O 错误才会返回 error。
func (m *Manager) MissingDates(ctx context.Context, req estimate.Request, grouping estimate.GroupBy) ([]time.Time, error) {
	if !grouping.Valid() {
		return nil, fmt.Errorf("unsupported groupBy %q", grouping)
	}

	fields := logrus.Fields{
		"action":       "missing_dates",
		"group_by":     grouping,
		"start":        estimate.FormatDate(req.StartDate),
		"end":          estimate.FormatDate(req.EndDate),
		"ignore_cache": req.IgnoreCache,
	}

	if req.IgnoreCache {
		missing := MissingDates(req, nil, grouping)
		m.state = ReadStateAnalyzed
		fields["missing"] = len(missing)
		m.logger.WithFields(fields).Debug("cache bypassed")
		return missing, nil
	}

	m.state = ReadStateLoading
	result := m.store.Load(ctx)
	m.lastLoad = result.State

	switch result.State {
	case LoadStateLoaded:
		m.state = ReadStateLoaded
	case LoadStateNotFound:
		m.state = ReadStateEmptyCreated
	case LoadStateCorrupt:
		m.state = ReadStateEmptyDegraded
	default:
		m.state = ReadStateInit
		if result.Err == nil {
			result.Err = errors.New("cache load failed")
		}
		return nil, result.Err
	}
	m.cachedEstimates = result.Estimates

	missing := MissingDates(req, m.cachedEstimates, grouping)
	m.state = ReadStateAnalyzed

	fields["cached"] = len(m.cachedEstimates)
	fields["missing"] = len(missing)
	fields["load_state"] = result.State
	m.logger.WithFields(fields).Debug("cache gap analyzed")
	return missing, nil
}

// SetEstimates 将 newEstimates 合并进磁盘上的现有缓存（同键以新记录为准）并整体写回，
// 随后把 fetchedEstimates 设为本次增量。缺失 GroupBy 的记录以 grouping 补齐，
// 时间戳对齐到所属周期起点。
//
// 读-改-写过程不是原子的，并发调用会互相覆盖。
func (m *Manager) SetEstimates(ctx context.Context, newEstimates []estimate.Estimate, grouping estimate.GroupBy) error {
	if !grouping.Valid() {
		return fmt.Errorf("unsupported groupBy %q", grouping)
	}

	increment := make([]estimate.Estimate, 0, len(newEstimates))
	for _, est := range newEstimates {
		if est.GroupBy == "" {
			est.GroupBy = grouping
		}
		increment = append(increment, est.Normalize())
	}

	// 随后会整体写回，缺失文件无需先写 `[]`。
	current := m.store.Snapshot(ctx)
	if !current.Recovered() {
		return current.Err
	}
	if current.State == LoadStateCorrupt {
		m.logger.WithFields(logrus.Fields{
			"action":   "set_estimates",
			"group_by": grouping,
		}).Warn("cache file unreadable, replacing it with fetched estimates")
	}

	merged := Merge(current.Estimates, increment)
	if err := m.store.Write(ctx, merged); err != nil {
		return err
	}
	m.fetchedEstimates = increment
	m.persisted = len(merged)

	m.logger.WithFields(logrus.Fields{
		"action":     "set_estimates",
		"group_by":   grouping,
		"fetched":    len(increment),
		"cached":     len(merged),
		"load_state": current.State,
	}).Info("cache updated")
	return nil
}

// EstimatesInRange 返回落在 req 区间内的记录：cachedEstimates 与 fetchedEstimates 合并后过滤，
// 同键时以 fetchedEstimates 为准。req.GroupBy 非空时只保留该粒度。
func (m *Manager) EstimatesInRange(req estimate.Request) []estimate.Estimate {
	combined := Merge(m.cachedEstimates, m.fetchedEstimates)
	result := make([]estimate.Estimate, 0, len(combined))
	for _, est := range combined {
		if req.GroupBy != "" && est.GroupBy != req.GroupBy {
			continue
		}
		if req.Contains(est) {
			result = append(result, est)
		}
	}
	return result
}
