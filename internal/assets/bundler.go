package assets

import (
	"archive/zip"
	"compress/flate"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/multierr"

	"github.com/osinbeats/beatstore-backend/pkg/enums"
	pkgerrors "github.com/osinbeats/beatstore-backend/pkg/errors"
	"github.com/osinbeats/beatstore-backend/pkg/logger"
)

// FileDownload describes a single raw-file download.
type FileDownload struct {
	Path        string
	Filename    string
	ContentType string
}

// Service resolves purchased assets and streams them to buyers.
type Service interface {
	// ResolveSingle locates the raw mp3/wav file for a slug.
	ResolveSingle(ctx context.Context, slug string, kind enums.DownloadKind) (*FileDownload, error)
	// WriteBundle streams a zip of the stems plus any resolvable mp3/wav
	// extras. The stems source is mandatory; extras are best-effort.
	WriteBundle(ctx context.Context, w io.Writer, slug string) error
}

type service struct {
	resolver *Resolver
	logg     *logger.Logger
}

// NewService builds the asset service over a resolver.
func NewService(resolver *Resolver, logg *logger.Logger) (Service, error) {
	if resolver == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "asset resolver required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &service{resolver: resolver, logg: logg}, nil
}

func (s *service) ResolveSingle(ctx context.Context, slug string, kind enums.DownloadKind) (*FileDownload, error) {
	var ext, contentType string
	switch kind {
	case enums.DownloadKindMP3:
		ext, contentType = "mp3", "audio/mpeg"
	case enums.DownloadKindWAV:
		ext, contentType = "wav", "audio/wav"
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "kind must be mp3 or wav")
	}

	path, err := s.resolver.ResolveFile(slug, ext)
	if err != nil {
		return nil, err
	}
	return &FileDownload{
		Path:        path,
		Filename:    slug + "." + ext,
		ContentType: contentType,
	}, nil
}

func (s *service) WriteBundle(ctx context.Context, w io.Writer, slug string) error {
	stems, err := s.resolver.ResolveStems(slug)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	if stems.Dir != "" {
		if err := s.addStemsDir(zw, stems.Dir); err != nil {
			return err
		}
	} else {
		if err := addFile(zw, stems.File, filepath.Join("Stems", filepath.Base(stems.File))); err != nil {
			return err
		}
	}

	// Extras are best-effort: an exclusive buyer gets the mp3/wav when
	// they exist, and only the miss is logged when they don't.
	var misses error
	for _, ext := range []string{"mp3", "wav"} {
		path, err := s.resolver.ResolveFile(slug, ext)
		if err != nil {
			misses = multierr.Append(misses, err)
			continue
		}
		if err := addFile(zw, path, slug+"."+ext); err != nil {
			return err
		}
	}
	if misses != nil {
		s.logg.Warn(s.logg.WithBeatSlug(ctx, slug), "bundle extras missing: "+misses.Error())
	}

	return zw.Close()
}

func (s *service) addStemsDir(zw *zip.Writer, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list stems dir")
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	if len(names) == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "stems dir is empty")
	}
	for _, name := range names {
		if err := addFile(zw, filepath.Join(dir, name), filepath.Join("Stems", name)); err != nil {
			return err
		}
	}
	return nil
}

func addFile(zw *zip.Writer, path, entryName string) error {
	f, err := os.Open(path)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "open asset file")
	}
	defer f.Close()

	entry, err := zw.Create(filepath.ToSlash(entryName))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create zip entry")
	}
	if _, err := io.Copy(entry, f); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write zip entry")
	}
	return nil
}
