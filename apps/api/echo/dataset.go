package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mwalimu/darasa/core"
	"github.com/mwalimu/darasa/core/cache"
	"github.com/mwalimu/darasa/core/dataset"
)

type datasetApi struct {
	cache *cache.DataCache
	feed  *dataset.LiveFeed
}

func registerDatasetAPI(g *echo.Group, dataCache *cache.DataCache, feed *dataset.LiveFeed) {
	api := datasetApi{cache: dataCache, feed: feed}

	dg := g.Group("/datasets")
	dg.GET("/live/latest", api.liveLatest)
	dg.GET("/:name", api.retrieve)

	cg := g.Group("/cache")
	cg.GET("/stats", api.cacheStats)
	cg.DELETE("", api.cacheClear)
}

type DatasetResponse struct {
	Name      string        `json:"name"`
	Cached    bool          `json:"cached"`
	ElapsedMs int64         `json:"elapsed_ms"`
	Data      dataset.Table `json:"data"`
}

// retrieve serves a synthetic "expensive" dataset through the data cache; the
// response reports whether the cache answered and how long the call took, so
// the caching chapter's before/after comparison is visible.
func (api *datasetApi) retrieve(ctx echo.Context) error {
	name := ctx.Param("name")

	var ttl time.Duration
	if raw := ctx.QueryParam("ttl"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs < 0 {
			return core.NewValidationError(nil,
				core.FieldError{Field: "ttl", Error: "ttl must be a non-negative number of seconds"})
		}
		ttl = time.Duration(secs) * time.Second
	}

	start := time.Now()
	val, cached, err := api.cache.GetOrLoad(cache.Key("load_dataset", name), ttl, func() (interface{}, error) {
		return dataset.Load(name)
	})
	if err != nil {
		if errors.Cause(err) == dataset.ErrUnknownDataset {
			return errHttpNotFound
		}
		return errors.Wrap(err, "loading dataset")
	}

	return ctx.JSON(http.StatusOK, DatasetResponse{
		Name:      name,
		Cached:    cached,
		ElapsedMs: time.Since(start).Milliseconds(),
		Data:      val.(dataset.Table),
	})
}

func (api *datasetApi) liveLatest(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.feed.Latest())
}

func (api *datasetApi) cacheStats(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.cache.Stats())
}

func (api *datasetApi) cacheClear(ctx echo.Context) error {
	api.cache.Clear()
	return ctx.NoContent(http.StatusNoContent)
}
