package application

import (
	"context"
	"fmt"

	"github.com/bnema/internode-usage-cli/internal/domain"
)

// ServiceStatus is the current-period view of one service.
type ServiceStatus struct {
	ServiceID domain.ServiceID
	Plan      string
	Speed     string
	Usage     domain.UsageSnapshot
}

func (s ServiceStatus) OverThreshold(percent float64) bool {
	return percent > 0 && s.Usage.PercentUsed() >= percent
}

// Statuses fetches plan details and usage for every eligible service, or for
// only one when id is non-zero.
func Statuses(ctx context.Context, account *Account, id domain.ServiceID) ([]ServiceStatus, error) {
	var services []*ServiceRecord
	if id != 0 {
		service, err := account.Service(ctx, id)
		if err != nil {
			return nil, err
		}
		services = []*ServiceRecord{service}
	} else {
		listed, err := account.ListServices(ctx)
		if err != nil {
			return nil, err
		}
		services = listed
	}

	statuses := make([]ServiceStatus, 0, len(services))
	for _, service := range services {
		meta, err := service.Metadata(ctx)
		if err != nil {
			return nil, fmt.Errorf("status of service %s: %w", service.ID(), err)
		}
		usage, err := service.Usage(ctx)
		if err != nil {
			return nil, fmt.Errorf("status of service %s: %w", service.ID(), err)
		}

		status := ServiceStatus{ServiceID: service.ID(), Usage: usage}
		status.Plan, _ = meta.String("plan")
		status.Speed, _ = meta.String("speed")
		statuses = append(statuses, status)
	}

	return statuses, nil
}
