// Package discovery finds the GP mean-response file for a grid point.
//
// GP outputs live under <gp-out>/{baseline,optimised,}/lat<lat>/ and their
// names have been written with varying lat/lon precision over time, so the
// search relaxes in tiers before falling back to the raw demo input.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gpgam/domain/core"
	"gpgam/domain/grid"
	"gpgam/internal/config"
)

// Tier records which search stage produced a match
type Tier string

const (
	TierExact    Tier = "exact"
	TierRelaxed  Tier = "relaxed"
	TierToken    Tier = "token"
	TierRawInput Tier = "raw_input"
)

// Match is a located response file
type Match struct {
	Path string
	Tier Tier
	Root string
}

// Locator searches the configured layout for response files
type Locator struct {
	paths config.PathConfig
}

// NewLocator creates a locator over the given path layout
func NewLocator(paths config.PathConfig) *Locator {
	return &Locator{paths: paths}
}

// SearchRoots lists the GP output folders in search order
func (l *Locator) SearchRoots(p grid.Point) []string {
	base := l.paths.GPOutDir()
	return []string{
		filepath.Join(base, "baseline", p.LatDir()),
		filepath.Join(base, "optimised", p.LatDir()),
		filepath.Join(base, p.LatDir()),
	}
}

// Locate returns the response file for (p, month). Within the first root
// holding any candidate, the most recently modified candidate wins.
func (l *Locator) Locate(p grid.Point, month string) (Match, error) {
	for _, root := range l.SearchRoots(p) {
		names, err := listDatFiles(root)
		if err != nil {
			return Match{}, err
		}
		if len(names) == 0 {
			continue
		}

		candidates, tier := searchNames(names, p, month)
		if len(candidates) == 0 {
			continue
		}

		path, err := newest(root, candidates)
		if err != nil {
			return Match{}, err
		}
		return Match{Path: path, Tier: tier, Root: root}, nil
	}

	inputDir := l.paths.InputDir(grid.Variable, month)
	tried := rawInputNames(p)
	for _, name := range tried {
		path := filepath.Join(inputDir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return Match{Path: path, Tier: TierRawInput, Root: inputDir}, nil
		}
	}

	return Match{}, fmt.Errorf("%w in %s for ilat=%s, ilon=%s, month=%s (tried baseline, optimised and root lat folders, then %s in %s)",
		core.ErrResponseNotFound, l.paths.GPOutDir(), p.LatToken(), p.LonToken(4), month,
		strings.Join(tried, ", "), inputDir)
}

// searchNames applies the tiers to one folder's .dat names
func searchNames(names []string, p grid.Point, month string) ([]string, Tier) {
	exact := responsePattern(month, p.LatToken(), p.LonToken(4))
	if found := matchAll(names, exact); len(found) > 0 {
		return found, TierExact
	}

	relaxed := []*regexp.Regexp{
		responsePattern(month, p.LatToken(), p.LonToken(3)),
		responsePattern(month, grid.Repr(p.Lat), grid.Repr(p.Lon)),
	}
	for _, pat := range relaxed {
		if found := matchAll(names, pat); len(found) > 0 {
			return found, TierRelaxed
		}
	}

	lat3, lon3 := p.LatToken(), p.LonToken(3)
	var found []string
	for _, name := range names {
		if strings.Contains(name, grid.ResponsePrefix) &&
			strings.Contains(name, month) &&
			strings.Contains(name, lat3) &&
			strings.Contains(name, lon3) {
			found = append(found, name)
		}
	}
	if len(found) > 0 {
		return found, TierToken
	}
	return nil, ""
}

func responsePattern(month, latTok, lonTok string) *regexp.Regexp {
	return regexp.MustCompile("^" + regexp.QuoteMeta(grid.ResponsePrefix+month+"_ilat_"+latTok+"_ilon_"+lonTok) +
		`_(\d+)_w_o_carb\.dat$`)
}

func matchAll(names []string, pat *regexp.Regexp) []string {
	var found []string
	for _, name := range names {
		if pat.MatchString(name) {
			found = append(found, name)
		}
	}
	return found
}

// rawInputNames lists demo input names, 3-decimal longitude first
func rawInputNames(p grid.Point) []string {
	var names []string
	seen := make(map[string]bool)
	for _, prec := range []int{3, 4, -1} {
		name := grid.RawInputFileName(p, p.LonToken(prec))
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// listDatFiles returns regular *.dat names in dir; a missing dir is empty
func listDatFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), ".dat") {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// newest picks the most recently modified name, breaking ties by name
func newest(dir string, names []string) (string, error) {
	type cand struct {
		name  string
		mtime int64
	}
	cands := make([]cand, 0, len(names))
	for _, name := range names {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			return "", fmt.Errorf("failed to stat candidate %s: %w", name, err)
		}
		cands = append(cands, cand{name: name, mtime: info.ModTime().UnixNano()})
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].mtime != cands[j].mtime {
			return cands[i].mtime > cands[j].mtime
		}
		return cands[i].name < cands[j].name
	})
	return filepath.Join(dir, cands[0].name), nil
}
