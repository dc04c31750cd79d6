package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/osinbeats/beatstore-backend/api/responses"
	"github.com/osinbeats/beatstore-backend/internal/assets"
	"github.com/osinbeats/beatstore-backend/pkg/enums"
	pkgerrors "github.com/osinbeats/beatstore-backend/pkg/errors"
	"github.com/osinbeats/beatstore-backend/pkg/logger"
	"github.com/osinbeats/beatstore-backend/pkg/metrics"
)

// Download streams a purchased asset: a raw audio file for mp3/wav, a zip
// bundle for the exclusive tiers. Access control is possession of the slug
// and type from the success page.
func Download(svc assets.Service, fm *metrics.FulfillmentMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "asset service unavailable"))
			return
		}

		slug := strings.TrimSpace(r.URL.Query().Get("slug"))
		if slug == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "slug query parameter required"))
			return
		}
		kind, err := enums.ParseDownloadKind(strings.TrimSpace(r.URL.Query().Get("type")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid download type"))
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithBeatSlug(ctx, slug)
		}

		if !kind.IsBundle() {
			download, err := svc.ResolveSingle(ctx, slug, kind)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			w.Header().Set("Content-Type", download.ContentType)
			w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download.Filename))
			http.ServeFile(w, r, download.Path)
			if fm != nil {
				fm.IncDownloadServed(kind.String())
			}
			return
		}

		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", slug+"-stems.zip"))

		counting := &countingWriter{w: w}
		if err := svc.WriteBundle(ctx, counting, slug); err != nil {
			if counting.written == 0 {
				// Nothing flushed yet; the error response can still go out.
				w.Header().Del("Content-Disposition")
				responses.WriteError(ctx, logg, w, err)
				return
			}
			if logg != nil {
				logg.Error(ctx, "bundle stream aborted mid-flight", err)
			}
			return
		}
		if fm != nil {
			fm.IncDownloadServed(kind.String())
		}
	}
}

type countingWriter struct {
	w       http.ResponseWriter
	written int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.written += int64(n)
	return n, err
}
