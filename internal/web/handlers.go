package web

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"math"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/htarver/tidesat/internal/export"
	"github.com/htarver/tidesat/internal/geo"
	"github.com/htarver/tidesat/internal/models"
	"github.com/htarver/tidesat/internal/mosaic"
	"github.com/htarver/tidesat/internal/planet"
	"github.com/htarver/tidesat/internal/results"
	"github.com/htarver/tidesat/internal/tides"
)

// loadMarks reads the exposure marks shared with the terminal UI. The
// search degrades to unmarked rows when the database is unavailable.
func (s *Server) loadMarks() map[string]models.Exposure {
	if s.exposures == nil {
		return nil
	}
	marks, err := s.exposures.All()
	if err != nil {
		s.log.Warn("loading exposure marks", "error", err)
		return nil
	}
	return marks
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"uptime": time.Since(s.startedAt).String(),
	})
}

type aoiRequest struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	GridSize int     `json:"grid_size"`
}

// handleAOI converts a center point and grid size into the search footprint.
func (s *Server) handleAOI(c *gin.Context) {
	var req aoiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body: "+err.Error())
		return
	}
	if req.GridSize == 0 {
		req.GridSize = s.cfg.Search.GridSize
	}

	aoi, err := geo.ComputeAOI(req.Lat, req.Lon, req.GridSize)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"polygon": aoi.GeoJSON(),
		"bounds":  aoi.Bounds(),
		"zoom":    geo.PreviewZoom,
	})
}

// handleTidesUpload parses an uploaded tide file and stores the series.
func (s *Server) handleTidesUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, `multipart field "file" is required`)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		writeError(c, err)
		return
	}
	defer f.Close()

	var parsed *tides.ParseResult
	if strings.EqualFold(filepath.Ext(fileHeader.Filename), ".txt") {
		parsed, err = s.parser.ParseTXT(f)
	} else {
		parsed, err = s.parser.ParseCSV(f)
	}
	if err != nil {
		tideParseFailures.Inc()
		writeError(c, err)
		return
	}

	id := s.store.Put(parsed.Series)
	start, end, _ := parsed.Series.Span()

	s.log.Info("tide series uploaded",
		"series_id", id,
		"schema", parsed.Schema.String(),
		"samples", len(parsed.Series),
		"skipped", len(parsed.Skipped),
	)
	c.JSON(http.StatusCreated, gin.H{
		"series_id": id,
		"schema":    parsed.Schema.String(),
		"samples":   len(parsed.Series),
		"skipped":   len(parsed.Skipped),
		"start":     start,
		"end":       end,
	})
}

// handleNearestTide matches a timestamp against an uploaded series.
func (s *Server) handleNearestTide(c *gin.Context) {
	series, err := s.store.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	target, err := time.Parse(time.RFC3339, c.Query("t"))
	if err != nil {
		badRequest(c, "query parameter t must be RFC3339, like 2025-05-30T00:22:44Z")
		return
	}

	sample, err := series.NearestHeight(target)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"time":        sample.Time,
		"height":      sample.Height,
		"gap_seconds": math.Abs(sample.Time.Sub(target).Seconds()),
	})
}

type searchRequest struct {
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	GridSize       int     `json:"grid_size"`
	Start          string  `json:"start"`
	End            string  `json:"end"`
	DaysBack       int     `json:"days_back"`
	MinVisible     float64 `json:"min_visible"`
	SeriesID       string  `json:"series_id"`
	MaxTideGapMins int     `json:"max_tide_gap_mins"`
}

// handleSearch runs a catalog search and correlates the scenes against an
// uploaded tide series when one is named.
func (s *Server) handleSearch(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body: "+err.Error())
		return
	}
	if req.GridSize == 0 {
		req.GridSize = s.cfg.Search.GridSize
	}
	if req.MinVisible == 0 {
		req.MinVisible = s.cfg.Search.MinVisible
	}
	if req.MaxTideGapMins == 0 {
		req.MaxTideGapMins = s.cfg.Search.MaxTideGapMins
	}

	aoi, err := geo.ComputeAOI(req.Lat, req.Lon, req.GridSize)
	if err != nil {
		writeError(c, err)
		return
	}

	end := time.Now().UTC()
	if req.End != "" {
		if end, err = time.Parse(time.RFC3339, req.End); err != nil {
			badRequest(c, "end must be RFC3339")
			return
		}
	}
	daysBack := s.cfg.Search.DaysBack
	if req.DaysBack > 0 {
		daysBack = req.DaysBack
	}
	start := end.AddDate(0, 0, -daysBack)
	if req.Start != "" {
		if start, err = time.Parse(time.RFC3339, req.Start); err != nil {
			badRequest(c, "start must be RFC3339")
			return
		}
	}

	var series tides.Series
	if req.SeriesID != "" {
		if series, err = s.store.Get(req.SeriesID); err != nil {
			writeError(c, err)
			return
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	scenes, err := s.search.Search(ctx, planet.SearchParams{
		AOI:        aoi,
		Start:      start,
		End:        end,
		MinVisible: req.MinVisible,
		ItemType:   s.cfg.Search.ItemType,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	searchesTotal.Inc()

	rows := results.BuildRows(scenes, series, time.Duration(req.MaxTideGapMins)*time.Minute, s.loadMarks())
	results.SortByTime(rows, true)

	c.JSON(http.StatusOK, gin.H{"count": len(rows), "results": rows})
}

// handleScenePreview composes and returns the preview mosaic PNG.
func (s *Server) handleScenePreview(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		badRequest(c, "query parameter lat is required")
		return
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		badRequest(c, "query parameter lon is required")
		return
	}
	gridSize := s.cfg.Search.GridSize
	if g := c.Query("grid_size"); g != "" {
		if gridSize, err = strconv.Atoi(g); err != nil {
			badRequest(c, "grid_size must be a whole number")
			return
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	builder := mosaic.NewBuilder(s.tiles)
	mos, err := builder.Build(ctx, c.Param("itemType"), c.Param("id"), geo.Point{Lat: lat, Lon: lon}, gridSize)
	if err != nil {
		writeError(c, err)
		return
	}
	mos.MarkCenter()
	tilesFetchedTotal.Add(float64(mos.Side*mos.Side - mos.Failed))

	var buf bytes.Buffer
	if err := png.Encode(&buf, mos.Image); err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

type orderRequest struct {
	ItemID   string  `json:"item_id"`
	ItemType string  `json:"item_type"`
	Name     string  `json:"name"`
	ClipLat  float64 `json:"clip_lat"`
	ClipLon  float64 `json:"clip_lon"`
	GridSize int     `json:"grid_size"`
}

// handleCreateOrder places a clip-and-ship order for one scene.
func (s *Server) handleCreateOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body: "+err.Error())
		return
	}
	if req.ItemID == "" {
		badRequest(c, "item_id is required")
		return
	}
	if req.ItemType == "" {
		req.ItemType = s.cfg.Search.ItemType
	}
	if req.Name == "" {
		req.Name = "tidesat " + req.ItemID
	}

	var clip geo.Polygon
	if req.GridSize > 0 {
		var err error
		clip, err = geo.ComputeAOI(req.ClipLat, req.ClipLon, req.GridSize)
		if err != nil {
			writeError(c, err)
			return
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	order, err := s.orders.CreateOrder(ctx, planet.OrderParams{
		Name:     req.Name,
		ItemID:   req.ItemID,
		ItemType: req.ItemType,
		ClipAOI:  clip,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	s.log.Info("order created", "order_id", order.ID, "item_id", req.ItemID)
	c.JSON(http.StatusCreated, order)
}

// handleGetOrder reports the current state of an order.
func (s *Server) handleGetOrder(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	order, err := s.orders.GetOrder(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type exportRequest struct {
	Results []results.Row `json:"results"`
}

// handleExportCSV streams the posted rows back as a CSV attachment.
func (s *Server) handleExportCSV(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body: "+err.Error())
		return
	}
	if len(req.Results) == 0 {
		badRequest(c, "results must not be empty")
		return
	}

	name := export.DefaultCSVName(time.Now())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Header("Content-Type", "text/csv")
	c.Status(http.StatusOK)
	if err := export.WriteResultsCSV(c.Writer, req.Results); err != nil {
		s.log.Error("writing CSV export", "error", err)
	}
}
