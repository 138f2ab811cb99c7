package luci

import (
	"fmt"
	"strings"
)

// Calibrators are the standard flux calibrators.
var Calibrators = []Target{
	{"3C48", MustParseEquatorial("01h37m41.2994s +33d09m35.134s")},
	{"3C196", MustParseEquatorial("08h13m36.033s +48d13m02.56s")},
	{"3C295", MustParseEquatorial("14h11m20.519s +52d12m09.97s")},
	{"3C147", MustParseEquatorial("05h42m36.1379s +49d51m07.234s")},
}

// ATeam are the brightest radio sources in the northern sky, in the order they
// are reported by the separation table.
var ATeam = []Target{
	{"CasA", MustParseEquatorial("23h23m24.000s +58d48m54.00s")},
	{"CygA", MustParseEquatorial("19h59m28.3566s +40d44m02.096s")},
	{"TauA", MustParseEquatorial("05h34m31.94s +22d00m52.2s")},
	{"VirA", MustParseEquatorial("12h30m49.4233s +12d23m28.043s")},
}

// CatalogueSource returns a calibrator or A-team source from its name.
func CatalogueSource(name string) (Target, error) {
	for _, list := range [][]Target{Calibrators, ATeam} {
		for _, src := range list {
			if strings.EqualFold(src.Name, strings.TrimSpace(name)) {
				return src, nil
			}
		}
	}
	return Target{}, fmt.Errorf("%w: `%s` is not in the built-in catalogue", ErrUnresolved, name)
}

// CatalogueSources resolves a list of names, failing on the first unknown one.
func CatalogueSources(names []string) ([]Target, error) {
	srcs := make([]Target, 0, len(names))
	for _, name := range names {
		src, err := CatalogueSource(name)
		if err != nil {
			return nil, err
		}
		srcs = append(srcs, src)
	}
	return srcs, nil
}
