package web

import (
	"embed"
	"html/template"
	"net/http"

	"golang.org/x/exp/slog"

	"natively/internal/app/host"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

type indexData struct {
	Title   string
	SiteURL string
}

// indexHandler страница-оболочка: транспорт websocket, window.natively и сайт во фрейме
func indexHandler(siteURL string, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := pages.ExecuteTemplate(w, "index.html.tmpl", indexData{Title: "natively", SiteURL: siteURL}); err != nil {
			log.Error("Ошибка отрисовки страницы", "error", err)
		}
	}
}

// bootstrapHandler скрипт установки window.natively
func bootstrapHandler(app *host.App, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		script, err := app.Bootstrap()
		if err != nil {
			log.Error("Ошибка сборки скрипта моста", "error", err)
			http.Error(w, "bootstrap unavailable", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write([]byte(script))
	}
}
