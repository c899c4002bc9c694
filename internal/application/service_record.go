package application

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/bnema/internode-usage-cli/internal/domain"
	"github.com/bnema/internode-usage-cli/internal/ports"
)

var (
	ErrServiceNotListed = errors.New("service is not an eligible service of this account")
	ErrInvalidDays      = errors.New("history days must be positive")
)

// HistoryOptions narrows a history request.
type HistoryOptions struct {
	// Days keeps at most this many leading days. Nil requests the full
	// history.
	Days *int
	// Verbose asks for the metered and unmetered breakdown.
	Verbose bool
}

// Days is a convenience for building HistoryOptions.
func Days(n int) *int {
	return &n
}

// ServiceRecord fetches the facets of one service. Every call is a fresh
// request; nothing is cached.
type ServiceRecord struct {
	id  domain.ServiceID
	api ports.API
}

func NewServiceRecord(id domain.ServiceID, api ports.API) *ServiceRecord {
	return &ServiceRecord{id: id, api: api}
}

func (s *ServiceRecord) ID() domain.ServiceID {
	return s.id
}

func (s *ServiceRecord) Metadata(ctx context.Context) (domain.ServiceMetadata, error) {
	root, err := s.api.Get(ctx, s.path("service"), nil)
	if err != nil {
		return nil, fmt.Errorf("get service %s metadata: %w", s.id, err)
	}

	node := root.FindElement("api/service")
	if node == nil {
		return nil, fmt.Errorf("get service %s metadata: %w: api/service element missing", s.id, domain.ErrSchema)
	}

	meta := domain.ServiceMetadata{}
	for _, child := range node.ChildElements() {
		if text := child.Text(); text != "" {
			meta[child.Tag] = text
		} else {
			meta[child.Tag] = nil
		}
	}

	if err := meta.Coerce(); err != nil {
		return nil, fmt.Errorf("get service %s metadata: %w", s.id, err)
	}

	return meta, nil
}

func (s *ServiceRecord) History(ctx context.Context, opts HistoryOptions) (domain.History, error) {
	query := url.Values{"verbose": {"0"}}
	if opts.Verbose {
		query.Set("verbose", "1")
	}
	if opts.Days != nil {
		if *opts.Days <= 0 {
			return nil, fmt.Errorf("get service %s history: %w, got %d", s.id, ErrInvalidDays, *opts.Days)
		}
		// The API counts back from today inclusive, so one extra day is
		// requested and the leading days are kept.
		query.Set("count", strconv.Itoa(*opts.Days+1))
	}

	root, err := s.api.Get(ctx, s.path("history"), query)
	if err != nil {
		return nil, fmt.Errorf("get service %s history: %w", s.id, err)
	}

	usageList := root.FindElement("api/usagelist")
	if usageList == nil {
		return nil, fmt.Errorf("get service %s history: %w: api/usagelist element missing", s.id, domain.ErrSchema)
	}

	entries := usageList.ChildElements()
	history := make(domain.History, 0, len(entries))
	// A repeated day replaces the earlier entry in place.
	positions := make(map[string]int, len(entries))
	for _, entry := range entries {
		day, err := parseHistoryDay(entry)
		if err != nil {
			return nil, fmt.Errorf("get service %s history: %w", s.id, err)
		}
		if i, ok := positions[day.Date]; ok {
			history[i] = day
			continue
		}
		positions[day.Date] = len(history)
		history = append(history, day)
	}

	if opts.Days != nil {
		history = history.First(*opts.Days)
	}

	return history, nil
}

func (s *ServiceRecord) Usage(ctx context.Context) (domain.UsageSnapshot, error) {
	root, err := s.api.Get(ctx, s.path("usage"), nil)
	if err != nil {
		return domain.UsageSnapshot{}, fmt.Errorf("get service %s usage: %w", s.id, err)
	}

	traffic := root.FindElement("api/traffic")
	if traffic == nil {
		return domain.UsageSnapshot{}, fmt.Errorf("get service %s usage: %w: api/traffic element missing", s.id, domain.ErrSchema)
	}

	quota, err := domain.ParseCount(traffic.SelectAttrValue("quota", ""))
	if err != nil {
		return domain.UsageSnapshot{}, fmt.Errorf("get service %s usage quota: %w", s.id, err)
	}
	used, err := domain.ParseCount(traffic.Text())
	if err != nil {
		return domain.UsageSnapshot{}, fmt.Errorf("get service %s usage: %w", s.id, err)
	}

	return domain.UsageSnapshot{
		Name:         traffic.SelectAttrValue("name", ""),
		PlanInterval: traffic.SelectAttrValue("plan-interval", ""),
		Quota:        quota,
		Rollover:     traffic.SelectAttrValue("rollover", ""),
		Unit:         traffic.SelectAttrValue("unit", ""),
		Usage:        used,
	}, nil
}

// Bundle fetches the requested facets, in metadata, history, usage order.
// Nothing is returned unless every requested facet succeeded.
func (s *ServiceRecord) Bundle(ctx context.Context, facets domain.Facets, opts HistoryOptions, generated time.Time) (domain.ExportBundle, error) {
	bundle := domain.ExportBundle{
		Generated: generated,
		ServiceID: s.id,
		Facets:    facets,
	}

	if facets.Metadata {
		meta, err := s.Metadata(ctx)
		if err != nil {
			return domain.ExportBundle{}, err
		}
		bundle.Service = meta
	}

	if facets.History {
		history, err := s.History(ctx, opts)
		if err != nil {
			return domain.ExportBundle{}, err
		}
		bundle.History = history
	}

	if facets.Usage {
		usage, err := s.Usage(ctx)
		if err != nil {
			return domain.ExportBundle{}, err
		}
		bundle.Usage = &usage
	}

	return bundle, nil
}

func (s *ServiceRecord) path(facet string) string {
	return "/" + s.id.String() + "/" + facet
}

func parseHistoryDay(entry *etree.Element) (domain.HistoryDay, error) {
	date := entry.SelectAttrValue("day", "")
	if date == "" {
		return domain.HistoryDay{}, fmt.Errorf("%w: usage entry without day", domain.ErrSchema)
	}

	day := domain.HistoryDay{Date: date}

	total, err := trafficValue(entry, "traffic[@name='total']")
	if err != nil {
		return domain.HistoryDay{}, fmt.Errorf("day %s total: %w", date, err)
	}
	day.Total = total

	metered, err := trafficSplit(entry, "metered")
	if err != nil {
		return domain.HistoryDay{}, fmt.Errorf("day %s: %w", date, err)
	}
	day.Metered = metered

	unmetered, err := trafficSplit(entry, "unmetered")
	if err != nil {
		return domain.HistoryDay{}, fmt.Errorf("day %s: %w", date, err)
	}
	day.Unmetered = unmetered

	return day, nil
}

// trafficSplit returns nil when neither direction was reported.
func trafficSplit(entry *etree.Element, name string) (*domain.TrafficSplit, error) {
	up, err := trafficValue(entry, fmt.Sprintf("traffic[@direction='up'][@name='%s']", name))
	if err != nil {
		return nil, fmt.Errorf("%s up: %w", name, err)
	}
	down, err := trafficValue(entry, fmt.Sprintf("traffic[@direction='down'][@name='%s']", name))
	if err != nil {
		return nil, fmt.Errorf("%s down: %w", name, err)
	}

	if up == nil && down == nil {
		return nil, nil
	}

	return &domain.TrafficSplit{Up: up, Down: down}, nil
}

func trafficValue(entry *etree.Element, path string) (*int64, error) {
	node := entry.FindElement(path)
	if node == nil {
		return nil, nil
	}

	value, err := domain.ParseCount(node.Text())
	if err != nil {
		return nil, err
	}

	return &value, nil
}
