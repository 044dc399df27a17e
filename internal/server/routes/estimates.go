package routes

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/footcache/footcache/internal/cache"
	"github.com/footcache/footcache/internal/estimate"
)

// EstimateService 把 HTTP 请求转换为 cache.Manager 会话。所有可能写文件的调用（包括读路径上的
// 首次创建）都由 mu 串行化。
type EstimateService struct {
	Store          cache.Store
	Logger         logrus.FieldLogger
	DefaultGroupBy estimate.GroupBy

	mu sync.Mutex
}

// RegisterEstimateRoutes 挂载 /api 下的缺口分析与写入接口。
func RegisterEstimateRoutes(app *fiber.App, svc *EstimateService) {
	if app == nil || svc == nil {
		return
	}
	api := app.Group("/api")
	api.Get("/missing", svc.handleMissing)
	api.Get("/estimates", svc.handleEstimates)
	api.Post("/estimates", svc.handleSetEstimates)
}

func (s *EstimateService) handleMissing(c fiber.Ctx) error {
	req, grouping, err := s.parseRequest(c)
	if err != nil {
		return badRequest(c, err)
	}

	manager, missing, err := s.analyze(c, req, grouping)
	if err != nil {
		return err
	}

	dates := make([]string, 0, len(missing))
	for _, ts := range missing {
		dates = append(dates, estimate.FormatDate(ts))
	}
	return c.JSON(fiber.Map{
		"groupBy": grouping,
		"missing": dates,
		"state":   manager.LastLoad(),
	})
}

func (s *EstimateService) handleEstimates(c fiber.Ctx) error {
	req, grouping, err := s.parseRequest(c)
	if err != nil {
		return badRequest(c, err)
	}
	req.GroupBy = grouping
	req.IgnoreCache = false

	manager, _, err := s.analyze(c, req, grouping)
	if err != nil {
		return err
	}

	body, err := cache.EncodeEstimates(manager.EstimatesInRange(req), cache.EncodeOptions{})
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(fiber.StatusOK).Send(body)
}

func (s *EstimateService) handleSetEstimates(c fiber.Ctx) error {
	grouping, err := s.parseGroupBy(c.Query("groupBy"))
	if err != nil {
		return badRequest(c, err)
	}
	incoming, err := cache.DecodeIncoming(c.Body(), grouping)
	if err != nil {
		return badRequest(c, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	manager := cache.NewManager(s.Store, s.logger(c))
	if err := manager.SetEstimates(c.Context(), incoming, grouping); err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"fetched": len(manager.FetchedEstimates()),
		"cached":  manager.Persisted(),
	})
}

// analyze 在写锁内执行缺口分析：文件缺失时 Load 会写入 `[]`，必须与 POST 串行。
func (s *EstimateService) analyze(c fiber.Ctx, req estimate.Request, grouping estimate.GroupBy) (*cache.Manager, []time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	manager := cache.NewManager(s.Store, s.logger(c))
	missing, err := manager.MissingDates(c.Context(), req, grouping)
	if err != nil {
		return nil, nil, err
	}
	return manager, missing, nil
}

func (s *EstimateService) parseRequest(c fiber.Ctx) (estimate.Request, estimate.GroupBy, error) {
	var req estimate.Request

	grouping, err := s.parseGroupBy(c.Query("groupBy"))
	if err != nil {
		return req, "", err
	}
	if req.StartDate, err = parseDateParam("start", c.Query("start")); err != nil {
		return req, "", err
	}
	if req.EndDate, err = parseDateParam("end", c.Query("end")); err != nil {
		return req, "", err
	}
	if raw := strings.TrimSpace(c.Query("ignoreCache")); raw != "" {
		if req.IgnoreCache, err = strconv.ParseBool(raw); err != nil {
			return req, "", errors.New("ignoreCache must be a boolean")
		}
	}
	req.GroupBy = grouping
	if err := req.Validate(); err != nil {
		return req, "", err
	}
	return req, grouping, nil
}

func (s *EstimateService) parseGroupBy(raw string) (estimate.GroupBy, error) {
	if strings.TrimSpace(raw) == "" {
		if s.DefaultGroupBy.Valid() {
			return s.DefaultGroupBy, nil
		}
		return estimate.DefaultGroupBy, nil
	}
	return estimate.ParseGroupBy(raw)
}

func parseDateParam(name, raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, fmt.Errorf("%s is required", name)
	}
	ts, err := estimate.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", name, err)
	}
	return ts, nil
}

// logger 附带请求 ID，使 Manager 日志与访问日志可以关联。
func (s *EstimateService) logger(c fiber.Ctx) logrus.FieldLogger {
	base := s.Logger
	if base == nil {
		base = logrus.StandardLogger()
	}
	if reqID := c.GetRespHeader(fiber.HeaderXRequestID); reqID != "" {
		return base.WithField("request_id", reqID)
	}
	return base
}

func badRequest(c fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
}
