package convert

import (
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

var filters = map[string]imaging.ResampleFilter{
	"nearest":    imaging.NearestNeighbor,
	"box":        imaging.Box,
	"linear":     imaging.Linear,
	"catmullrom": imaging.CatmullRom,
	"lanczos":    imaging.Lanczos,
}

const DefaultFilter = "box"

func ParseFilter(name string) (imaging.ResampleFilter, error) {
	f, ok := filters[strings.ToLower(name)]
	if !ok {
		return imaging.ResampleFilter{}, errors.Wrapf(ErrArgument, "unknown filter %q, want one of %s",
			name, strings.Join(FilterNames(), ", "))
	}
	return f, nil
}

func FilterNames() []string {
	names := lo.Keys(filters)
	sort.Strings(names)
	return names
}
