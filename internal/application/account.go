package application

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bnema/internode-usage-cli/internal/domain"
	"github.com/bnema/internode-usage-cli/internal/ports"
)

// AccountOptions controls which listed services are eligible.
type AccountOptions struct {
	// ServiceType is the listing type kept when FilterType is set.
	ServiceType string
	// FilterType drops listing entries of other types. When unset every
	// listed service is returned, as the first API revisions did.
	FilterType bool
}

func DefaultAccountOptions() AccountOptions {
	return AccountOptions{ServiceType: domain.DefaultServiceType, FilterType: true}
}

// Account resolves the services owned by the credentials of its API.
type Account struct {
	api  ports.API
	opts AccountOptions
}

func NewAccount(api ports.API, opts AccountOptions) *Account {
	if opts.ServiceType == "" {
		opts.ServiceType = domain.DefaultServiceType
	}

	return &Account{api: api, opts: opts}
}

// Listing returns every entry of the service listing, eligible or not.
func (a *Account) Listing(ctx context.Context) ([]domain.ServiceListing, error) {
	root, err := a.api.Get(ctx, "", nil)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}

	servicesNode := root.FindElement("api/services")
	if servicesNode == nil {
		return nil, fmt.Errorf("list services: %w: api/services element missing", domain.ErrSchema)
	}

	count, err := strconv.Atoi(strings.TrimSpace(servicesNode.SelectAttrValue("count", "")))
	if err != nil || count <= 0 {
		return nil, fmt.Errorf("list services: %w", domain.ErrNoServices)
	}

	children := servicesNode.ChildElements()
	listing := make([]domain.ServiceListing, 0, len(children))
	seen := make(map[domain.ServiceID]struct{}, len(children))
	for _, child := range children {
		id, err := domain.ParseCount(child.Text())
		if err != nil || id == 0 {
			return nil, fmt.Errorf("list services: %w: invalid service id %q", domain.ErrSchema, child.Text())
		}

		serviceID := domain.ServiceID(id)
		if _, ok := seen[serviceID]; ok {
			continue
		}
		seen[serviceID] = struct{}{}

		listing = append(listing, domain.ServiceListing{
			ID:   serviceID,
			Type: child.SelectAttrValue("type", ""),
		})
	}

	return listing, nil
}

// ListServices returns one record per eligible service, in listing order.
func (a *Account) ListServices(ctx context.Context) ([]*ServiceRecord, error) {
	listing, err := a.Listing(ctx)
	if err != nil {
		return nil, err
	}

	services := make([]*ServiceRecord, 0, len(listing))
	for _, entry := range listing {
		if a.opts.FilterType && entry.Type != a.opts.ServiceType {
			continue
		}
		services = append(services, NewServiceRecord(entry.ID, a.api))
	}

	if len(services) == 0 {
		return nil, fmt.Errorf("list services: %w of type %q", domain.ErrNoServices, a.opts.ServiceType)
	}

	return services, nil
}

// Service returns the eligible service with the given id.
func (a *Account) Service(ctx context.Context, id domain.ServiceID) (*ServiceRecord, error) {
	services, err := a.ListServices(ctx)
	if err != nil {
		return nil, err
	}

	for _, service := range services {
		if service.ID() == id {
			return service, nil
		}
	}

	return nil, fmt.Errorf("service %s: %w", id, ErrServiceNotListed)
}
