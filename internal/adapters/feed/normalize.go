package feed

import (
	"log/slog"
	"strings"

	"github.com/alejandrodnm/flipscore/internal/domain"
)

// normalize limpia los anuncios recibidos: recorta textos, pone el estado en
// mayúsculas y descarta los que no tienen ninguna forma de identificarse.
func normalize(raw []domain.Listing, platform string) []domain.Listing {
	out := make([]domain.Listing, 0, len(raw))
	skipped := 0
	for _, l := range raw {
		l.ID = strings.TrimSpace(l.ID)
		l.Title = strings.TrimSpace(l.Title)
		l.URL = strings.TrimSpace(l.URL)
		l.Platform = strings.ToLower(strings.TrimSpace(l.Platform))
		if l.Platform == "" {
			l.Platform = platform
		}
		l.Location.State = strings.ToUpper(strings.TrimSpace(l.Location.State))

		if l.ID == "" && l.URL == "" && l.Title == "" {
			skipped++
			continue
		}
		out = append(out, l)
	}
	if skipped > 0 {
		slog.Warn("listings without id, url or title skipped", "count", skipped)
	}
	return out
}
