package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/lintang-b-s/navigatorx-table/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-table/pkg/engine/routingalgorithm"
	"github.com/lintang-b-s/navigatorx-table/pkg/server"
	"github.com/lintang-b-s/navigatorx-table/pkg/server/rest/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-polyline"
)

type fakeTableService struct {
	gotCoords  []datastructure.Coordinate
	gotSources []int
	gotLimit   datastructure.EdgeWeight
	err        error
}

func (f *fakeTableService) Table(ctx context.Context, coords []datastructure.Coordinate, sources,
	destinations []int) (*routingalgorithm.DistanceTable, error) {
	f.gotCoords, f.gotSources = coords, sources
	if f.err != nil {
		return nil, f.err
	}
	return &routingalgorithm.DistanceTable{
		NumSources: 2,
		NumTargets: 2,
		Distances:  []datastructure.EdgeWeight{0, 120, datastructure.InvalidEdgeWeight, 0},
	}, nil
}

func (f *fakeTableService) OneToMany(ctx context.Context, coords []datastructure.Coordinate) ([]service.OneToManyRow, error) {
	f.gotCoords = coords
	if f.err != nil {
		return nil, f.err
	}
	rows := make([]service.OneToManyRow, len(coords))
	for i, c := range coords {
		rows[i] = service.OneToManyRow{Distance: datastructure.EdgeWeight(i * 10), Coord: c, AirDistance: float64(i)}
	}
	return rows, nil
}

func (f *fakeTableService) PoiTable(ctx context.Context, coord datastructure.Coordinate,
	limit datastructure.EdgeWeight) ([]service.PoiRow, error) {
	f.gotCoords, f.gotLimit = []datastructure.Coordinate{coord}, limit
	if f.err != nil {
		return nil, f.err
	}
	return []service.PoiRow{
		{Poi: datastructure.Poi{OsmID: 77, Amenity: "hospital", Name: "RS Sardjito"}, Distance: 150},
	}, nil
}

func (f *fakeTableService) Distance(ctx context.Context, source,
	destination datastructure.Coordinate) (datastructure.EdgeWeight, error) {
	f.gotCoords = []datastructure.Coordinate{source, destination}
	if f.err != nil {
		return datastructure.InvalidEdgeWeight, f.err
	}
	if destination.Lat > 0 {
		return datastructure.InvalidEdgeWeight, nil
	}
	return 2050, nil
}

func newTestRouter(svc TableService, m *Metrics) *chi.Mux {
	r := chi.NewRouter()
	if m != nil {
		r.Use(PromeHttpMiddleware(m))
	}
	TableRouter(r, svc, m)
	return r
}

func doPost(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	bb, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(bb))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestTableHandler(t *testing.T) {
	svc := &fakeTableService{}
	r := newTestRouter(svc, nil)

	rec := doPost(t, r, "/api/table", map[string]any{
		"coordinates": []Coord{{Lat: -7.76, Lon: 110.37}, {Lat: -7.78, Lon: 110.40}},
		"sources":     []int{1},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Distances [][]*int32 `json:"distances"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Distances, 2)
	require.NotNil(t, resp.Distances[0][1])
	assert.Equal(t, int32(120), *resp.Distances[0][1])
	assert.Nil(t, resp.Distances[1][0])

	assert.Equal(t, []int{1}, svc.gotSources)
	assert.Equal(t, datastructure.NewCoordinate(-7.78, 110.40), svc.gotCoords[1])
}

func TestTableHandlerPolyline(t *testing.T) {
	svc := &fakeTableService{}
	r := newTestRouter(svc, nil)

	encoded := string(polyline.EncodeCoords([][]float64{{-7.76, 110.37}, {-7.78, 110.4}}))
	rec := doPost(t, r, "/api/table", map[string]any{"polyline": encoded})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.Len(t, svc.gotCoords, 2)
	assert.InDelta(t, -7.76, svc.gotCoords[0].Lat, 1e-5)
	assert.InDelta(t, 110.4, svc.gotCoords[1].Lon, 1e-5)
}

func TestTableHandlerInvalidRequest(t *testing.T) {
	r := newTestRouter(&fakeTableService{}, nil)

	cases := []struct {
		name string
		body any
	}{
		{"no locations", map[string]any{}},
		{"coordinates and polyline", map[string]any{
			"coordinates": []Coord{{Lat: 1, Lon: 1}},
			"polyline":    "_p~iF~ps|U",
		}},
		{"latitude out of range", map[string]any{"coordinates": []Coord{{Lat: 91, Lon: 1}}}},
		{"negative source", map[string]any{"coordinates": []Coord{{Lat: 1, Lon: 1}}, "sources": []int{-1}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := doPost(t, r, "/api/table", c.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestTableHandlerServiceErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"bad param", server.NewErrorf(server.ErrBadParamInput, "too many coordinates"), http.StatusBadRequest},
		{"not found", server.NewErrorf(server.ErrNotFound, "coordinate 0 is not near any road"), http.StatusNotFound},
		{"internal", server.WrapErrorf(errors.New("heap pool"), server.ErrInternalServerError, "internal server error"),
			http.StatusInternalServerError},
		{"untyped", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := newTestRouter(&fakeTableService{err: c.err}, nil)
			rec := doPost(t, r, "/api/table", map[string]any{"coordinates": []Coord{{Lat: 1, Lon: 1}}})
			assert.Equal(t, c.code, rec.Code)

			var resp ErrResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			if c.code == http.StatusInternalServerError {
				assert.Equal(t, "internal server error", resp.ErrorText)
			}
		})
	}
}

func TestOneToManyHandler(t *testing.T) {
	svc := &fakeTableService{}
	r := newTestRouter(svc, nil)

	rec := doPost(t, r, "/api/one-to-many", map[string]any{
		"coordinates": []Coord{{Lat: -7.76, Lon: 110.37}, {Lat: -7.78, Lon: 110.40}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp OneToManyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.DistanceTable, 2)
	assert.Equal(t, int32(10), *resp.DistanceTable[1].Distance)
	assert.Equal(t, -7.78, resp.DistanceTable[1].Lat)
	assert.Equal(t, 1.0, resp.DistanceTable[1].AirDistance)
}

func TestPoiTableHandler(t *testing.T) {
	svc := &fakeTableService{}
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	r := newTestRouter(svc, m)

	rec := doPost(t, r, "/api/poi-table", map[string]any{"lat": -7.76, "lon": 110.37, "limit": 2500})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp PoiTableResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.DistanceTable, 1)
	assert.Equal(t, PoiRowResponse{NodeID: 77, Amenity: "hospital", Name: "RS Sardjito", Distance: 150}, resp.DistanceTable[0])
	assert.Equal(t, datastructure.EdgeWeight(2500), svc.gotLimit)

	rec = doPost(t, r, "/api/poi-table", map[string]any{"lat": -7.76, "lon": 110.37, "limit": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/api/poi-table", http.MethodPost, "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/api/poi-table", http.MethodPost, "400")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.queryLatency, "navigatorx_table_query_duration_seconds"))
}

func TestDistanceHandler(t *testing.T) {
	svc := &fakeTableService{}
	r := newTestRouter(svc, nil)

	rec := doPost(t, r, "/api/distance", map[string]any{
		"source":      Coord{Lat: -7.76, Lon: 110.37},
		"destination": Coord{Lat: -7.78, Lon: 110.40},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Distance *int32 `json:"distance"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Distance)
	assert.Equal(t, int32(2050), *resp.Distance)
	assert.Equal(t, []datastructure.Coordinate{
		datastructure.NewCoordinate(-7.76, 110.37),
		datastructure.NewCoordinate(-7.78, 110.40),
	}, svc.gotCoords)

	// tidak ada rute
	rec = doPost(t, r, "/api/distance", map[string]any{
		"source":      Coord{Lat: -7.76, Lon: 110.37},
		"destination": Coord{Lat: 7.78, Lon: 110.40},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp.Distance = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.Distance)

	rec = doPost(t, r, "/api/distance", map[string]any{
		"source":      Coord{Lat: -97, Lon: 110.37},
		"destination": Coord{Lat: -7.78, Lon: 110.40},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.err = server.NewErrorf(server.ErrNotFound, "coordinate 1 is not near any road")
	rec = doPost(t, r, "/api/distance", map[string]any{
		"source":      Coord{Lat: -7.76, Lon: 110.37},
		"destination": Coord{Lat: -7.78, Lon: 110.40},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
