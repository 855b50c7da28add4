package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-table/pkg/engine/routingalgorithm"
	"github.com/lintang-b-s/navigatorx-table/pkg/server/rest/service"
	"github.com/twpayne/go-polyline"
)

type TableService interface {
	Table(ctx context.Context, coords []datastructure.Coordinate, sources,
		destinations []int) (*routingalgorithm.DistanceTable, error)
	OneToMany(ctx context.Context, coords []datastructure.Coordinate) ([]service.OneToManyRow, error)
	PoiTable(ctx context.Context, coord datastructure.Coordinate, limit datastructure.EdgeWeight) ([]service.PoiRow, error)
	Distance(ctx context.Context, source, destination datastructure.Coordinate) (datastructure.EdgeWeight, error)
}

type TableHandler struct {
	svc      TableService
	metrics  *Metrics
	validate *validator.Validate
	trans    ut.Translator
}

func TableRouter(r *chi.Mux, svc TableService, m *Metrics) {
	validate := validator.New()
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)

	handler := &TableHandler{svc, m, validate, trans}

	r.Group(func(r chi.Router) {
		r.Route("/api", func(r chi.Router) {
			r.Post("/table", handler.Table)
			r.Post("/one-to-many", handler.OneToMany)
			r.Post("/poi-table", handler.PoiTable)
			r.Post("/distance", handler.Distance)
		})
	})
}

// Coord model info
//
//	@Description	model untuk koordinat
type Coord struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

func toCoordinates(coords []Coord) []datastructure.Coordinate {
	out := make([]datastructure.Coordinate, len(coords))
	for i, c := range coords {
		out[i] = datastructure.NewCoordinate(c.Lat, c.Lon)
	}
	return out
}

// decodeLocations fills coords from an encoded polyline if coords is empty.
func decodeLocations(coords []Coord, encoded string) ([]Coord, error) {
	if len(coords) != 0 && encoded != "" {
		return nil, errors.New("use either coordinates or polyline, not both")
	}
	if encoded == "" {
		if len(coords) == 0 {
			return nil, errors.New("coordinates or polyline is required")
		}
		return coords, nil
	}

	decoded, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("invalid polyline: %w", err)
	}
	coords = make([]Coord, len(decoded))
	for i, c := range decoded {
		coords[i] = Coord{Lat: c[0], Lon: c[1]}
	}
	return coords, nil
}

// TableRequest model info
//
//	@Description	request body distance table. lokasi bisa dikirim sebagai list koordinat atau encoded polyline
type TableRequest struct {
	Coordinates  []Coord `json:"coordinates" validate:"dive"`
	Polyline     string  `json:"polyline"`
	Sources      []int   `json:"sources" validate:"omitempty,dive,gte=0"`
	Destinations []int   `json:"destinations" validate:"omitempty,dive,gte=0"`
}

func (s *TableRequest) Bind(r *http.Request) error {
	coords, err := decodeLocations(s.Coordinates, s.Polyline)
	if err != nil {
		return err
	}
	s.Coordinates = coords
	return nil
}

// TableResponse model info
//
//	@Description	response body distance table, distance dalam decimeter. null = tidak ada rute
type TableResponse struct {
	Distances  [][]*int32 `json:"distances"`
	TimeUsedMs int64      `json:"time_used_ms"`
}

func distancePtr(d datastructure.EdgeWeight) *int32 {
	if d == datastructure.InvalidEdgeWeight {
		return nil
	}
	v := int32(d)
	return &v
}

func RenderTableResponse(table *routingalgorithm.DistanceTable, took time.Duration) *TableResponse {
	distances := make([][]*int32, table.NumSources)
	for i := 0; i < table.NumSources; i++ {
		row := make([]*int32, table.NumTargets)
		for j, d := range table.Row(i) {
			row[j] = distancePtr(d)
		}
		distances[i] = row
	}
	return &TableResponse{
		Distances:  distances,
		TimeUsedMs: took.Milliseconds(),
	}
}

func (h *TableHandler) validateRequest(w http.ResponseWriter, r *http.Request, data any) bool {
	if err := h.validate.Struct(data); err != nil {
		render.Render(w, r, ErrValidation(err, translateError(err, h.trans)))
		return false
	}
	return true
}

func (h *TableHandler) observe(kind string, took time.Duration) {
	if h.metrics != nil {
		h.metrics.ObserveQuery(kind, took)
	}
}

// Table
//
//	@Summary		distance table (many to many) antar semua lokasi
//	@Tags			table
//	@Param			body	body	TableRequest	true	"request body distance table"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/table [post]
//	@Success		200	{object}	TableResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *TableHandler) Table(w http.ResponseWriter, r *http.Request) {
	data := &TableRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if !h.validateRequest(w, r, data) {
		return
	}

	start := time.Now()
	table, err := h.svc.Table(r.Context(), toCoordinates(data.Coordinates), data.Sources, data.Destinations)
	if err != nil {
		render.Render(w, r, getStatusCode(err))
		return
	}
	took := time.Since(start)
	h.observe("table", took)

	render.Status(r, http.StatusOK)
	render.JSON(w, r, RenderTableResponse(table, took))
}

// OneToManyRequest model info
//
//	@Description	request body one to many. lokasi pertama adalah source
type OneToManyRequest struct {
	Coordinates []Coord `json:"coordinates" validate:"dive"`
	Polyline    string  `json:"polyline"`
}

func (s *OneToManyRequest) Bind(r *http.Request) error {
	coords, err := decodeLocations(s.Coordinates, s.Polyline)
	if err != nil {
		return err
	}
	s.Coordinates = coords
	return nil
}

type OneToManyRowResponse struct {
	Distance    *int32  `json:"distance"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	AirDistance float64 `json:"air_distance"`
}

// OneToManyResponse model info
//
//	@Description	response body one to many, satu row per lokasi request
type OneToManyResponse struct {
	DistanceTable []OneToManyRowResponse `json:"distance_table"`
	TimeUsedMs    int64                  `json:"time_used_ms"`
}

func RenderOneToManyResponse(rows []service.OneToManyRow, took time.Duration) *OneToManyResponse {
	resp := make([]OneToManyRowResponse, len(rows))
	for i, row := range rows {
		resp[i] = OneToManyRowResponse{
			Distance:    distancePtr(row.Distance),
			Lat:         row.Coord.Lat,
			Lon:         row.Coord.Lon,
			AirDistance: row.AirDistance,
		}
	}
	return &OneToManyResponse{
		DistanceTable: resp,
		TimeUsedMs:    took.Milliseconds(),
	}
}

// OneToMany
//
//	@Summary		distance dari lokasi pertama ke semua lokasi
//	@Tags			table
//	@Param			body	body	OneToManyRequest	true	"request body one to many"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/one-to-many [post]
//	@Success		200	{object}	OneToManyResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *TableHandler) OneToMany(w http.ResponseWriter, r *http.Request) {
	data := &OneToManyRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if !h.validateRequest(w, r, data) {
		return
	}

	start := time.Now()
	rows, err := h.svc.OneToMany(r.Context(), toCoordinates(data.Coordinates))
	if err != nil {
		render.Render(w, r, getStatusCode(err))
		return
	}
	took := time.Since(start)
	h.observe("one_to_many", took)

	render.Status(r, http.StatusOK)
	render.JSON(w, r, RenderOneToManyResponse(rows, took))
}

// PoiTableRequest model info
//
//	@Description	request body poi distance table. limit dalam decimeter, 0 = default
type PoiTableRequest struct {
	Lat   float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon   float64 `json:"lon" validate:"gte=-180,lte=180"`
	Limit int32   `json:"limit" validate:"gte=0"`
}

func (s *PoiTableRequest) Bind(r *http.Request) error {
	return nil
}

type PoiRowResponse struct {
	NodeID   int64  `json:"node_id"`
	Amenity  string `json:"amenity"`
	Name     string `json:"name,omitempty"`
	Distance int32  `json:"distance"`
}

// PoiTableResponse model info
//
//	@Description	response body poi distance table, poi terdekat duluan
type PoiTableResponse struct {
	DistanceTable []PoiRowResponse `json:"distance_table"`
	TimeUsedMs    int64            `json:"time_used_ms"`
}

func RenderPoiTableResponse(rows []service.PoiRow, took time.Duration) *PoiTableResponse {
	resp := make([]PoiRowResponse, len(rows))
	for i, row := range rows {
		resp[i] = PoiRowResponse{
			NodeID:   row.Poi.OsmID,
			Amenity:  row.Poi.Amenity,
			Name:     row.Poi.Name,
			Distance: int32(row.Distance),
		}
	}
	return &PoiTableResponse{
		DistanceTable: resp,
		TimeUsedMs:    took.Milliseconds(),
	}
}

// PoiTable
//
//	@Summary		distance dari satu lokasi ke semua poi dalam limit
//	@Tags			table
//	@Param			body	body	PoiTableRequest	true	"request body poi distance table"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/poi-table [post]
//	@Success		200	{object}	PoiTableResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *TableHandler) PoiTable(w http.ResponseWriter, r *http.Request) {
	data := &PoiTableRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if !h.validateRequest(w, r, data) {
		return
	}

	start := time.Now()
	rows, err := h.svc.PoiTable(r.Context(), datastructure.NewCoordinate(data.Lat, data.Lon),
		datastructure.EdgeWeight(data.Limit))
	if err != nil {
		render.Render(w, r, getStatusCode(err))
		return
	}
	took := time.Since(start)
	h.observe("poi_table", took)

	render.Status(r, http.StatusOK)
	render.JSON(w, r, RenderPoiTableResponse(rows, took))
}

// DistanceRequest model info
//
//	@Description	request body shortest distance antara dua lokasi
type DistanceRequest struct {
	Source      Coord `json:"source"`
	Destination Coord `json:"destination"`
}

func (s *DistanceRequest) Bind(r *http.Request) error {
	return nil
}

// DistanceResponse model info
//
//	@Description	response body shortest distance dalam decimeter. null = tidak ada rute
type DistanceResponse struct {
	Distance   *int32 `json:"distance"`
	TimeUsedMs int64  `json:"time_used_ms"`
}

// Distance
//
//	@Summary		shortest distance (bidirectional dijkstra contraction hierarchies) antara dua lokasi
//	@Tags			table
//	@Param			body	body	DistanceRequest	true	"request body shortest distance"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/distance [post]
//	@Success		200	{object}	DistanceResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *TableHandler) Distance(w http.ResponseWriter, r *http.Request) {
	data := &DistanceRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if !h.validateRequest(w, r, data) {
		return
	}

	start := time.Now()
	dist, err := h.svc.Distance(r.Context(), datastructure.NewCoordinate(data.Source.Lat, data.Source.Lon),
		datastructure.NewCoordinate(data.Destination.Lat, data.Destination.Lon))
	if err != nil {
		render.Render(w, r, getStatusCode(err))
		return
	}
	took := time.Since(start)
	h.observe("distance", took)

	render.Status(r, http.StatusOK)
	render.JSON(w, r, &DistanceResponse{
		Distance:   distancePtr(dist),
		TimeUsedMs: took.Milliseconds(),
	})
}
