package stock

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// LoadGeoJSON parses a GeoJSON FeatureCollection into a footprint
// collection. Each feature must carry a Polygon (or a single-part
// MultiPolygon, which hand-drawn sources often wrap polygons in); anything
// else is an input error. All properties other than the id and shading
// markers are carried through untouched.
func LoadGeoJSON(data []byte, idProp, shadingProp string) (*Stock, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parsing GeoJSON: %w", err)
	}

	s := NewStock()
	for i, feat := range fc.Features {
		id := featureID(feat, idProp, i)

		var poly orb.Polygon
		switch g := feat.Geometry.(type) {
		case orb.Polygon:
			poly = g
		case orb.MultiPolygon:
			if len(g) != 1 {
				return nil, &InvalidInputGeometryError{ID: id, Reason: fmt.Errorf("multi-part polygon with %d parts", len(g))}
			}
			poly = g[0]
		default:
			return nil, &InvalidInputGeometryError{ID: id, Reason: fmt.Errorf("geometry type %T is not a polygon", feat.Geometry)}
		}

		shading := false
		if v, ok := feat.Properties[shadingProp].(bool); ok {
			shading = v
		}

		attrs := make(map[string]interface{}, len(feat.Properties))
		for k, v := range feat.Properties {
			if k == idProp || k == shadingProp {
				continue
			}
			attrs[k] = v
		}

		s.Add(&Footprint{
			ID:      id,
			Polygon: poly,
			Shading: shading,
			Attrs:   attrs,
		})
	}
	return s, nil
}

func featureID(feat *geojson.Feature, idProp string, index int) string {
	if v, ok := feat.Properties[idProp]; ok {
		return fmt.Sprint(v)
	}
	if feat.ID != nil {
		return fmt.Sprint(feat.ID)
	}
	return fmt.Sprintf("footprint_%d", index)
}

// MarshalGeoJSON serializes the surviving footprints, with their cleaned
// geometry and derived touching/island fields, back to a GeoJSON
// FeatureCollection.
func (s *Stock) MarshalGeoJSON(idProp, shadingProp string) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, id := range s.IDs() {
		f := s.byID[id]
		feat := geojson.NewFeature(f.Polygon)
		for k, v := range f.Attrs {
			feat.Properties[k] = v
		}
		feat.Properties[idProp] = f.ID
		feat.Properties[shadingProp] = f.Shading
		feat.Properties["touching"] = append([]string(nil), f.Touching...)
		feat.Properties["bi"] = f.Island
		fc.Append(feat)
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshaling GeoJSON: %w", err)
	}
	return data, nil
}
