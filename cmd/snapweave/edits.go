package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Skryldev/snapweave/edit"
)

// editArg is one edit flag as given on the command line.
type editArg struct {
	kind  string // "brighten", "contrast" or "crop"
	value string
}

// editList collects edit flags in command-line order across all flag names.
type editList struct {
	args []editArg
}

// editFlag is the flag.Value for one edit kind; all kinds share a list.
type editFlag struct {
	kind string
	list *editList
}

func (f editFlag) String() string {
	if f.list == nil {
		return ""
	}
	var vals []string
	for _, a := range f.list.args {
		if a.kind == f.kind {
			vals = append(vals, a.value)
		}
	}
	return strings.Join(vals, " ")
}

func (f editFlag) Set(v string) error {
	if _, err := parseEdit(editArg{kind: f.kind, value: v}); err != nil {
		return err
	}
	f.list.args = append(f.list.args, editArg{kind: f.kind, value: v})
	return nil
}

// parseEdit converts a flag into the edit the photo facade will add.
func parseEdit(a editArg) (edit.Edit, error) {
	switch a.kind {
	case "brighten":
		f, err := strconv.ParseFloat(a.value, 64)
		if err != nil {
			return nil, fmt.Errorf("brighten: %w", err)
		}
		return edit.NewBrightness(a.kind, f)
	case "contrast":
		f, err := strconv.ParseFloat(a.value, 64)
		if err != nil {
			return nil, fmt.Errorf("contrast: %w", err)
		}
		return edit.NewContrast(a.kind, f)
	case "crop":
		parts := strings.Split(a.value, ",")
		if len(parts) != 4 {
			return nil, fmt.Errorf("crop: want x0,y0,x1,y1, got %q", a.value)
		}
		return edit.NewScalingFromParams(a.kind, map[string]any{
			edit.ParamCropStart: parts[:2],
			edit.ParamCropEnd:   parts[2:],
		})
	}
	return nil, fmt.Errorf("unknown edit flag %q", a.kind)
}
