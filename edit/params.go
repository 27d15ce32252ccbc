package edit

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	apperrors "github.com/Skryldev/snapweave/errors"
)

// Parameter keys of a crop mapping.
const (
	ParamCropStart = "crop_start"
	ParamCropEnd   = "crop_end"
)

// NewScalingFromParams builds a crop edit from a loosely typed mapping such
// as decoded JSON or CLI input.  Both ParamCropStart and ParamCropEnd must be
// present and hold a pair of integers: a Point, a two-element array or slice
// of integers, integral floats, json.Number or numeric strings.  Unknown keys
// are ignored.
func NewScalingFromParams(name string, params map[string]any) (Scaling, error) {
	if params == nil {
		return Scaling{}, invalidCrop("", "no parameters")
	}
	start, err := pointParam(params, ParamCropStart)
	if err != nil {
		return Scaling{}, err
	}
	end, err := pointParam(params, ParamCropEnd)
	if err != nil {
		return Scaling{}, err
	}
	return NewScaling(name, CropRegion{Start: start, End: end})
}

func pointParam(params map[string]any, key string) (Point, error) {
	v, ok := params[key]
	if !ok {
		return Point{}, invalidCrop(key, "missing")
	}
	switch p := v.(type) {
	case Point:
		return p, nil
	case *Point:
		if p == nil {
			return Point{}, invalidCrop(key, "nil point")
		}
		return *p, nil
	case string:
		// "x,y"
		return pointFromSlice(key, reflect.ValueOf(strings.Split(p, ",")))
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return Point{}, invalidCrop(key, fmt.Sprintf("expected a pair of integers, got %T", v))
	}
	return pointFromSlice(key, rv)
}

func pointFromSlice(key string, rv reflect.Value) (Point, error) {
	if rv.Len() != 2 {
		return Point{}, invalidCrop(key, fmt.Sprintf("expected 2 values, got %d", rv.Len()))
	}
	x, err := toInt(rv.Index(0).Interface())
	if err != nil {
		return Point{}, invalidCrop(key+".x", err.Error())
	}
	y, err := toInt(rv.Index(1).Interface())
	if err != nil {
		return Point{}, invalidCrop(key+".y", err.Error())
	}
	return Point{X: x, Y: y}, nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int8:
		return int(n), nil
	case int16:
		return int(n), nil
	case int32:
		return int(n), nil
	case int64:
		return int64ToInt(n)
	case uint:
		return uint64ToInt(uint64(n))
	case uint8:
		return int(n), nil
	case uint16:
		return int(n), nil
	case uint32:
		return uint64ToInt(uint64(n))
	case uint64:
		return uint64ToInt(n)
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int64ToInt(i)
		}
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", n.String())
		}
		return floatToInt(f)
	case string:
		s := strings.TrimSpace(n)
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("not an integer: %q", n)
		}
		return int64ToInt(i)
	}
	return 0, fmt.Errorf("not an integer: %T", v)
}

func int64ToInt(n int64) (int, error) {
	if int64(int(n)) != n {
		return 0, fmt.Errorf("out of range: %d", n)
	}
	return int(n), nil
}

func uint64ToInt(n uint64) (int, error) {
	if n > math.MaxInt {
		return 0, fmt.Errorf("out of range: %d", n)
	}
	return int(n), nil
}

func floatToInt(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer: %v", f)
	}
	if f < math.MinInt || f >= math.MaxInt {
		return 0, fmt.Errorf("out of range: %v", f)
	}
	return int(f), nil
}

func invalidCrop(field, reason string) error {
	return &apperrors.InvalidEditParametersError{Edit: "crop", Field: field, Reason: reason}
}
