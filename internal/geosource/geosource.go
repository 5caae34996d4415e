// Package geosource fetches the vector geography the world map is built from.
// Each source is downloaded at most once and cached on disk; later runs read
// only the cache.
package geosource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"

	"levelforge/internal/artifact"
	"levelforge/internal/config"
	"levelforge/internal/geometry"
	"levelforge/internal/logging"
)

var (
	ErrFetch            = errors.New("geography fetch failed")
	ErrTooManyRedirects = errors.New("too many redirects")
)

// unranked is assigned to features without a scalerank so they never count
// as major.
const unranked = 99

// Source names one remote GeoJSON file and its cache file name.
type Source struct {
	Name string
	URL  string
	File string
}

// Sources returns the land and river sources from the configuration.
func Sources(cfg config.GeographyConfig) (Source, Source) {
	return Source{Name: "land", URL: cfg.LandURL, File: cfg.LandFile},
		Source{Name: "rivers", URL: cfg.RiversURL, File: cfg.RiversFile}
}

type Fetcher struct {
	client    *http.Client
	cacheDir  string
	userAgent string
	log       logrus.FieldLogger
}

func NewFetcher(cfg config.GeographyConfig, logger logrus.FieldLogger) *Fetcher {
	maxRedirects := cfg.MaxRedirects
	client := &http.Client{
		Timeout: cfg.Timeout.Duration(),
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > maxRedirects {
				return fmt.Errorf("%w: stopped after %d", ErrTooManyRedirects, maxRedirects)
			}
			return nil
		},
	}
	return &Fetcher{
		client:    client,
		cacheDir:  cfg.CacheDir,
		userAgent: cfg.UserAgent,
		log:       logging.Or(logger).WithField("component", "geosource"),
	}
}

// CachePath is where src is stored locally.
func (f *Fetcher) CachePath(src Source) string {
	return filepath.Join(f.cacheDir, src.File)
}

// Load returns the bytes of src, fetching and caching them on first use. A
// fetched body is cached only once it parses as a feature collection.
func (f *Fetcher) Load(ctx context.Context, src Source) ([]byte, error) {
	path := f.CachePath(src)
	data, err := os.ReadFile(path)
	if err == nil {
		f.log.WithFields(logrus.Fields{"source": src.Name, "path": path}).Debug("using cached geography")
		return data, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read cached %s: %w", src.Name, err)
	}

	f.log.WithFields(logrus.Fields{"source": src.Name, "url": src.URL}).Info("fetching geography")
	data, err = f.fetch(ctx, src.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s from %s: %w; place the file at %s or check connectivity",
			ErrFetch, src.Name, src.URL, err, path)
	}
	if _, err := geojson.UnmarshalFeatureCollection(data); err != nil {
		return nil, fmt.Errorf("%w: %s from %s is not a feature collection: %w; place the file at %s or check connectivity",
			ErrFetch, src.Name, src.URL, err, path)
	}
	if err := artifact.WriteFile(path, data); err != nil {
		return nil, fmt.Errorf("cache %s: %w", src.Name, err)
	}
	f.log.WithFields(logrus.Fields{"source": src.Name, "bytes": len(data), "path": path}).Info("geography cached")
	return data, nil
}

func (f *Fetcher) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

// LoadFeatures loads src and decodes it into features of the given kind.
func (f *Fetcher) LoadFeatures(ctx context.Context, src Source, kind geometry.Kind) ([]geometry.Feature, error) {
	data, err := f.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	features, err := Decode(data, kind)
	if err != nil {
		return nil, fmt.Errorf("decode %s (%s): %w", src.Name, f.CachePath(src), err)
	}
	return features, nil
}

// Decode parses a GeoJSON feature collection. Geometries that do not match
// kind are skipped; multi-geometries are flattened.
func Decode(data []byte, kind geometry.Kind) ([]geometry.Feature, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse feature collection: %w", err)
	}

	var out []geometry.Feature
	for _, feat := range fc.Features {
		rank := scaleRank(feat.Properties)
		switch g := feat.Geometry.(type) {
		case orb.Polygon:
			if kind == geometry.KindPolygon {
				out = append(out, geometry.NewPolygon(rings(g), rank))
			}
		case orb.MultiPolygon:
			if kind == geometry.KindPolygon {
				for _, poly := range g {
					out = append(out, geometry.NewPolygon(rings(poly), rank))
				}
			}
		case orb.LineString:
			if kind == geometry.KindPolyline {
				out = append(out, geometry.NewPolyline([][]geometry.Vec{vecs(g)}, rank))
			}
		case orb.MultiLineString:
			if kind == geometry.KindPolyline {
				lines := make([][]geometry.Vec, len(g))
				for i, ls := range g {
					lines[i] = vecs(ls)
				}
				out = append(out, geometry.NewPolyline(lines, rank))
			}
		}
	}
	return out, nil
}

func rings(p orb.Polygon) [][]geometry.Vec {
	out := make([][]geometry.Vec, len(p))
	for i, ring := range p {
		out[i] = vecs(ring)
	}
	return out
}

func vecs[T ~[]orb.Point](points T) []geometry.Vec {
	out := make([]geometry.Vec, len(points))
	for i, pt := range points {
		out[i] = geometry.Vec{X: pt.Lon(), Y: pt.Lat()}
	}
	return out
}

func scaleRank(props geojson.Properties) int {
	switch v := props["scalerank"].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	}
	return unranked
}
