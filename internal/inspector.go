package internal

import (
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"

	"chat-relay/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/go-chi/chi/v5"
)

//go:embed inspect.html
var templatesFS embed.FS

const (
	defaultInspectPrefix = "msg:"
	defaultInspectLimit  = 200
)

type RowMapper func(key string, val []byte) repositories.Record

type StatsProvider func() map[string]any

type PageData struct {
	Prefix string
	Items  []repositories.Record
	Stats  map[string]any
}

// Inspector browses raw badger keys by prefix. It is mounted only in debug mode.
type Inspector struct {
	db     *badger.DB
	mapper RowMapper
	stats  StatsProvider
	tmpl   *template.Template
}

func NewInspector(db *badger.DB, mapper RowMapper, stats StatsProvider) *Inspector {
	if mapper == nil {
		mapper = repositories.Describe
	}
	return &Inspector{
		db:     db,
		mapper: mapper,
		stats:  stats,
		tmpl:   template.Must(template.ParseFS(templatesFS, "inspect.html")),
	}
}

// Routes serves GET /inspect (HTML) and GET /keys (JSON), both taking ?prefix=&limit=.
func (i *Inspector) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/inspect", i.page)
	r.Get("/keys", i.keys)
	return r
}

func (i *Inspector) page(w http.ResponseWriter, r *http.Request) {
	data, err := i.collect(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = i.tmpl.Execute(w, data)
}

func (i *Inspector) keys(w http.ResponseWriter, r *http.Request) {
	data, err := i.collect(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

func (i *Inspector) collect(r *http.Request) (PageData, error) {
	prefix := r.URL.Query().Get("prefix")
	if prefix == "" {
		prefix = defaultInspectPrefix
	}
	limit := defaultInspectLimit
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
		limit = n
	}

	data := PageData{Prefix: prefix, Items: []repositories.Record{}, Stats: make(map[string]any)}
	if i.stats != nil {
		data.Stats = i.stats()
	}
	err := i.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)) && len(data.Items) < limit; it.Next() {
			item := it.Item()
			if err := item.Value(func(val []byte) error {
				data.Items = append(data.Items, i.mapper(string(item.Key()), val))
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	return data, err
}
