package filters

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/store/sales"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
)

const DefaultMinObservations = 24

// DimensionSpec pairs a dimension with the hierarchically senior dimensions
// its candidates are constrained by. Specs are processed in fixed order so the
// dependency contract stays testable per dimension.
type DimensionSpec struct {
	Dimension        domain.Dimension
	DependsOn        []domain.Dimension
	RequireMinPoints bool
}

// Chain declares the cascading dependency order: the geographic hierarchy
// descends from organization, the product hierarchy from product line. The
// leaf (city) additionally filters out forecast-ineligible candidates.
var Chain = []DimensionSpec{
	{Dimension: domain.DimOrganization},
	{Dimension: domain.DimCountry, DependsOn: []domain.Dimension{domain.DimOrganization}},
	{Dimension: domain.DimRegion, DependsOn: []domain.Dimension{domain.DimOrganization, domain.DimCountry}},
	{Dimension: domain.DimState, DependsOn: []domain.Dimension{domain.DimOrganization, domain.DimCountry, domain.DimRegion}},
	{
		Dimension:        domain.DimCity,
		DependsOn:        []domain.Dimension{domain.DimOrganization, domain.DimCountry, domain.DimRegion, domain.DimState},
		RequireMinPoints: true,
	},
	{Dimension: domain.DimProductLine},
	{Dimension: domain.DimProductCategory, DependsOn: []domain.Dimension{domain.DimProductLine}},
}

// Resolver turns a partial selection into validated, cascading option lists.
type Resolver interface {
	ResolveOptions(ctx context.Context, sel domain.FilterSelection) (domain.FilterOptions, error)
}

type Config struct {
	MinObservations int
	CacheTTL        time.Duration
}

type resolver struct {
	store     sales.Store
	specs     []DimensionSpec
	minPoints int
	cache     *cache.Cache
}

func NewResolver(store sales.Store, cfg Config) Resolver {
	minPoints := cfg.MinObservations
	if minPoints <= 0 {
		minPoints = DefaultMinObservations
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &resolver{
		store:     store,
		specs:     Chain,
		minPoints: minPoints,
		cache:     cache.New(ttl, 2*ttl),
	}
}

func (r *resolver) ResolveOptions(ctx context.Context, sel domain.FilterSelection) (domain.FilterOptions, error) {
	results := make([][]string, len(r.specs))

	// Per-dimension queries are pure reads with no ordering dependency.
	g, ctx := errgroup.WithContext(ctx)
	for i, spec := range r.specs {
		g.Go(func() error {
			values, err := r.resolveDimension(ctx, spec, sel)
			if err != nil {
				return err
			}
			results[i] = values
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	options := make(domain.FilterOptions, len(r.specs))
	for i, spec := range r.specs {
		options[spec.Dimension] = withAll(results[i])
	}
	return options, nil
}

func (r *resolver) resolveDimension(
	ctx context.Context,
	spec DimensionSpec,
	sel domain.FilterSelection,
) ([]string, error) {
	upstream := sel.Subset(spec.DependsOn...)

	key := string(spec.Dimension) + "@" + upstream.Key()
	if cached, ok := r.cache.Get(key); ok {
		return cached.([]string), nil
	}

	minCount := 0
	if spec.RequireMinPoints {
		minCount = r.minPoints
	}

	raw, err := r.store.DistinctValues(ctx, spec.Dimension, upstream, minCount)
	if err != nil {
		return nil, err
	}

	values := cleanValues(raw)
	r.cache.Set(key, values, cache.DefaultExpiration)
	return values, nil
}

// cleanValues trims, drops empties, de-duplicates, and sorts.
func cleanValues(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	cleaned := make([]string, 0, len(raw))
	for _, v := range raw {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		cleaned = append(cleaned, trimmed)
	}
	sort.Strings(cleaned)
	return cleaned
}

func withAll(values []string) []string {
	return append([]string{"All"}, values...)
}
