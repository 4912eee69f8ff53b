package activity

import (
	"log/slog"
	"net/http"

	"adminconsole/frontend/shared/html"
	"adminconsole/frontend/shared/paging"
	"adminconsole/infrastructure/sqlite"
)

const path = "/console/audit"

func ActivityPageQueryHandler(db *sqlite.DB, settings html.Settings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page, size := paging.Parse(q, settings.PageSize)
		filter := Filter{EntityType: NormalizeEntityType(q.Get("entity")), Page: page, Size: size}

		data := PageData{
			Page:        html.NewPage(r, "Actividad", path, settings),
			Filter:      filter,
			EntityTypes: entityOptions,
			Sizes:       paging.Sizes,
		}
		rows, err := LoadRows(r.Context(), db, filter)
		if err != nil {
			slog.Error("load activity", slog.Any("err", err))
			data.Error = "Error al cargar la actividad"
			rows = paging.Bounds[Row](0, 1, size)
		}
		data.Rows = rows

		html.Write(w, r, http.StatusOK, ActivityPage(data))
	}
}
