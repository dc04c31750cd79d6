package assets

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	pkgerrors "github.com/osinbeats/beatstore-backend/pkg/errors"
)

// StemsSource is a resolved stems asset: either a directory of stem
// files or a single pre-packed archive file.
type StemsSource struct {
	Dir  string
	File string
}

// Resolver locates beat assets under a root directory by slug.
// Matching is name-based because uploads are hand-named by the artist;
// see matchName for the normalization rules.
type Resolver struct {
	root string
}

// NewResolver builds a resolver rooted at the asset directory.
func NewResolver(root string) (*Resolver, error) {
	if strings.TrimSpace(root) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "asset root required")
	}
	return &Resolver{root: root}, nil
}

// ResolveFile finds the single audio file for a slug and extension
// ("mp3" or "wav"). An exact "{slug}.{ext}" filename wins outright;
// otherwise the sorted listing is fuzzy-matched.
func (r *Resolver) ResolveFile(slug, ext string) (string, error) {
	if slug == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "slug required")
	}

	exact := filepath.Join(r.root, slug+"."+ext)
	if info, err := os.Stat(exact); err == nil && !info.IsDir() {
		return exact, nil
	}

	names, err := r.listFiles("." + ext)
	if err != nil {
		return "", err
	}
	bases := make([]string, len(names))
	for i, name := range names {
		bases[i] = baseName(name)
	}
	matched, ok := matchName(bases, slug)
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "no "+ext+" asset for slug")
	}
	for i, base := range bases {
		if base == matched {
			return filepath.Join(r.root, names[i]), nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeNotFound, "no "+ext+" asset for slug")
}

// ResolveStems finds the stems source for a slug. A matching directory
// is preferred; failing that, a loose file that both matches the slug
// and carries a stem/trackout keyword is accepted.
func (r *Resolver) ResolveStems(slug string) (*StemsSource, error) {
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug required")
	}

	entries, err := os.ReadDir(r.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "asset root missing")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list asset root")
	}

	var dirs, files []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		} else {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(dirs)
	sort.Strings(files)

	if matched, ok := matchName(dirs, slug); ok {
		return &StemsSource{Dir: filepath.Join(r.root, matched)}, nil
	}

	var candidates []string
	for _, name := range files {
		if stemKeyword(name) {
			candidates = append(candidates, name)
		}
	}
	bases := make([]string, len(candidates))
	for i, name := range candidates {
		bases[i] = baseName(name)
	}
	if matched, ok := matchName(bases, slug); ok {
		for i, base := range bases {
			if base == matched {
				return &StemsSource{File: filepath.Join(r.root, candidates[i])}, nil
			}
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no stems asset for slug")
}

func (r *Resolver) listFiles(suffix string) ([]string, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "asset root missing")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list asset root")
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), suffix) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
