package server

import (
	"context"
	"fmt"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/yairfalse/regiondex/internal/catalog"
	"github.com/yairfalse/regiondex/internal/daemon"
	"github.com/yairfalse/regiondex/internal/query"
	"github.com/yairfalse/regiondex/pkg/region"
)

// Refresher reloads the catalog on demand.
type Refresher interface {
	ForceRefresh(ctx context.Context) (*catalog.Snapshot, error)
	Health() daemon.HealthStatus
}

// PolicyEvaluator filters regions through an eligibility policy.
type PolicyEvaluator interface {
	Allowed(ctx context.Context, regions []region.Region) ([]region.Region, error)
}

// RPCHandler dispatches RPC requests to the query engine.
type RPCHandler struct {
	Engine    *query.Engine
	Refresher Refresher       // optional
	Policy    PolicyEvaluator // optional
}

// HandleRPC handles all RPC requests
func (h *RPCHandler) HandleRPC(c *fiber.Ctx) error {
	var req RPCRequest
	if err := c.BodyParser(&req); err != nil {
		return respondWithRPCError(c, fiber.StatusBadRequest, ErrMsgInvalidReqFormat, err.Error(), req.ID)
	}

	if req.Method == "" {
		return respondWithRPCError(c, fiber.StatusBadRequest, ErrMsgMethodRequired, nil, req.ID)
	}

	e := h.Engine
	switch req.Method {
	case MethodListRegions:
		return call(c, req, "", func(ctx context.Context, p ListRegionsParams) (any, error) {
			return e.ListRegions(ctx, p.ListParams), nil
		})
	case MethodGetRegion:
		return call(c, req, ErrMsgRegionNotFound, func(ctx context.Context, p IDParams) (any, error) {
			r, ok := e.GetRegion(ctx, p.ID)
			if !ok {
				return nil, ErrNotFound
			}
			return r, nil
		})
	case MethodListProviders:
		return call(c, req, "", func(ctx context.Context, p ListProvidersParams) (any, error) {
			return e.ListProviders(ctx, p.Tiers), nil
		})
	case MethodGetProvider:
		return call(c, req, ErrMsgProviderNotFound, func(ctx context.Context, p IDParams) (any, error) {
			d, ok := e.GetProvider(ctx, p.ID)
			if !ok {
				return nil, ErrNotFound
			}
			return d, nil
		})
	case MethodFindNearby:
		return call(c, req, "", func(ctx context.Context, p NearbyParams) (any, error) {
			return e.Nearby(ctx, p.NearbyParams), nil
		})
	case MethodSearchRegions:
		return call(c, req, "", func(ctx context.Context, p SearchParams) (any, error) {
			return e.Search(ctx, p.SearchParams), nil
		})
	case MethodFindCompliant:
		return call(c, req, "", func(ctx context.Context, p ComplianceParams) (any, error) {
			return e.Compliant(ctx, p.ComplianceParams), nil
		})
	case MethodFindSustainable:
		return call(c, req, "", func(ctx context.Context, p SustainabilityParams) (any, error) {
			return e.Sustainable(ctx, p.SustainabilityParams), nil
		})
	case MethodFindGPU:
		return call(c, req, "", func(ctx context.Context, p GPUParams) (any, error) {
			return e.GPU(ctx, p.GPUParams), nil
		})
	case MethodCompareCoverage:
		return call(c, req, "", func(ctx context.Context, p CoverageParams) (any, error) {
			return e.Coverage(ctx, p.CoverageParams), nil
		})
	case MethodListCountries:
		return call(c, req, "", func(ctx context.Context, p GroupingParams) (any, error) {
			return e.Countries(ctx, p.Filter), nil
		})
	case MethodListCities:
		return call(c, req, "", func(ctx context.Context, p GroupingParams) (any, error) {
			return e.Cities(ctx, p.Filter), nil
		})
	case MethodGetStats:
		return call(c, req, "", func(ctx context.Context, _ noParams) (any, error) {
			return e.Stats(ctx), nil
		})
	case MethodRegionsByCountry:
		return call(c, req, "", func(ctx context.Context, p CountryParams) (any, error) {
			return e.RegionsByCountry(ctx, p.CountryCode), nil
		})
	case MethodRegionsByContinent:
		return call(c, req, "", func(ctx context.Context, p ContinentParams) (any, error) {
			return e.RegionsByContinent(ctx, p.Continent), nil
		})
	case MethodDataInfo:
		return call(c, req, "", func(ctx context.Context, _ noParams) (any, error) {
			return e.Info(ctx), nil
		})
	case MethodRefreshData:
		return call(c, req, "", h.refresh)
	case MethodEvaluatePolicy:
		return call(c, req, "", h.evaluatePolicy)
	default:
		return respondWithRPCError(c, fiber.StatusBadRequest, ErrMsgUnknownMethod, req.Method, req.ID)
	}
}

func (h *RPCHandler) refresh(ctx context.Context, _ noParams) (any, error) {
	if h.Refresher == nil {
		return nil, fmt.Errorf("refresh: %w", errUnavailable)
	}
	if _, err := h.Refresher.ForceRefresh(ctx); err != nil {
		return nil, err
	}
	return h.Engine.Info(ctx), nil
}

func (h *RPCHandler) evaluatePolicy(ctx context.Context, p PolicyParams) (any, error) {
	if h.Policy == nil {
		return nil, fmt.Errorf("policy: %w", errUnavailable)
	}
	candidates := h.Engine.ListRegions(ctx, query.ListParams{Filter: p.Filter})
	allowed, err := h.Policy.Allowed(ctx, candidates)
	if err != nil {
		return nil, err
	}
	return allowed, nil
}

// HandleHealth reports liveness and the state of the published snapshot.
func (h *RPCHandler) HandleHealth(c *fiber.Ctx) error {
	snap := h.Engine.Snapshot()
	body := fiber.Map{
		"status":  "healthy",
		"source":  snap.Source(),
		"regions": len(snap.Regions()),
	}
	if h.Refresher != nil {
		body["refresher"] = h.Refresher.Health()
	}
	return c.JSON(body)
}
