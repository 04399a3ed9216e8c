package queries

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"arequita-backend/internal/domain/camping"
	"arequita-backend/internal/pkg/errs"
	"arequita-backend/internal/usecase/shared"

	"github.com/google/uuid"
)

type CatalogFilter struct {
	Lang        string
	ServiceType string
	Search      string
}

type PreReservationFilter struct {
	Status    string
	ServiceID *uuid.UUID
	// From/To bound the check-in date, both inclusive.
	From   *time.Time
	To     *time.Time
	Search string
	Pagination
}

type CampingReader interface {
	ListCatalog(ctx context.Context, db shared.DBTX, lang, serviceType, search string) ([]ServiceCatalogItem, error)
	ListPreReservations(ctx context.Context, db shared.DBTX, f PreReservationFilter) ([]PreReservationListItem, int64, error)
	GetPreReservation(ctx context.Context, db shared.DBTX, id uuid.UUID) (*PreReservationListItem, error)
}

// CatalogCache holds rendered catalog pages keyed by language, type and
// search term. A miss is never an error; reads fall through to the DB.
type CatalogCache interface {
	Get(ctx context.Context, key string) ([]ServiceCatalogItem, bool)
	Set(ctx context.Context, key string, items []ServiceCatalogItem)
	Invalidate(ctx context.Context)
}

// Sweeper runs the expiry pass. Catalog and listing reads trigger it first
// so neither visitors nor operators see already-expired records as live.
type Sweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

type CampingQueries struct {
	db      shared.DBTX
	reader  CampingReader
	cache   CatalogCache
	sweeper Sweeper
	logger  *slog.Logger
}

func NewCampingQueries(db shared.DBTX, reader CampingReader, cache CatalogCache, sweeper Sweeper, logger *slog.Logger) *CampingQueries {
	return &CampingQueries{db: db, reader: reader, cache: cache, sweeper: sweeper, logger: logger}
}

func (q *CampingQueries) PublicCatalog(ctx context.Context, f CatalogFilter) ([]ServiceCatalogItem, error) {
	lang := string(camping.SafeLang(f.Lang))

	q.sweep(ctx)

	key := catalogKey(lang, f.ServiceType, f.Search)
	if items, ok := q.cache.Get(ctx, key); ok {
		return items, nil
	}

	items, err := q.reader.ListCatalog(ctx, q.db, lang, f.ServiceType, f.Search)
	if err != nil {
		return nil, errs.Wrap(err, "list catalog")
	}
	q.cache.Set(ctx, key, items)
	return items, nil
}

// sweep settles expirations before a read. A failed sweep only means the
// read may show stale rows, so it is logged and the read proceeds.
func (q *CampingQueries) sweep(ctx context.Context) {
	if _, err := q.sweeper.SweepExpired(ctx); err != nil {
		q.logger.Warn("expiry sweep failed", slog.String("error", err.Error()))
	}
}

func (q *CampingQueries) ListPreReservations(ctx context.Context, f PreReservationFilter) ([]PreReservationListItem, int64, error) {
	q.sweep(ctx)

	f.Pagination = f.Pagination.Normalize()
	items, total, err := q.reader.ListPreReservations(ctx, q.db, f)
	if err != nil {
		return nil, 0, errs.Wrap(err, "list pre-reservations")
	}
	return items, total, nil
}

func (q *CampingQueries) GetPreReservation(ctx context.Context, id uuid.UUID) (*PreReservationListItem, error) {
	item, err := q.reader.GetPreReservation(ctx, q.db, id)
	if err != nil {
		return nil, errs.Wrap(err, "get pre-reservation")
	}
	return item, nil
}

// ExportPreReservationsCSV renders the filtered listing as a CSV document
// for back-office download. Pagination is ignored; exports are whole.
func (q *CampingQueries) ExportPreReservationsCSV(ctx context.Context, f PreReservationFilter) ([]byte, error) {
	q.sweep(ctx)

	f.Pagination = Pagination{Page: 1, PerPage: maxPerPage}
	var rows []PreReservationListItem
	for {
		page, _, err := q.reader.ListPreReservations(ctx, q.db, f)
		if err != nil {
			return nil, errs.Wrap(err, "export pre-reservations")
		}
		rows = append(rows, page...)
		if len(page) < f.PerPage {
			break
		}
		f.Page++
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"Código", "Servicio", "Nombre", "Email", "Teléfono", "Personas", "Ingreso", "Salida", "Estado", "Origen", "Creada"}
	if err := w.Write(header); err != nil {
		return nil, errs.Wrap(err, "write csv header")
	}
	for _, r := range rows {
		record := []string{
			r.Code,
			r.ServiceName,
			r.FullName,
			r.Email,
			r.Phone,
			strconv.Itoa(r.Guests),
			r.CheckIn.Format("2006-01-02"),
			r.CheckOut.Format("2006-01-02"),
			r.Status,
			r.Source,
			r.CreatedAt.Format("2006-01-02 15:04"),
		}
		if err := w.Write(record); err != nil {
			return nil, errs.Wrap(err, "write csv row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errs.Wrap(err, "flush csv")
	}
	return buf.Bytes(), nil
}

func catalogKey(lang, serviceType, search string) string {
	return fmt.Sprintf("catalog:%s:%s:%s", lang, serviceType, strings.ToLower(strings.TrimSpace(search)))
}
