package repository

import (
	"context"

	"arequita-backend/internal/domain/camping"
	"arequita-backend/internal/infra"
	"arequita-backend/internal/pkg/pgconv"
	"arequita-backend/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const campingServiceColumns = `
	id, slug, service_type,
	name_es, name_en, name_pt,
	description_es, description_en, description_pt,
	price, currency, capacity, total_units, available_units,
	is_featured, is_promo, is_active,
	created_at, updated_at`

type CampingServiceRepository struct{}

func NewCampingServiceRepository() *CampingServiceRepository {
	return &CampingServiceRepository{}
}

func (r *CampingServiceRepository) FindByID(ctx context.Context, db shared.DBTX, id uuid.UUID) (*camping.Service, error) {
	row := db.QueryRow(ctx, `SELECT`+campingServiceColumns+` FROM camping_services WHERE id = $1`, id)
	return scanCampingService(row)
}

func (r *CampingServiceRepository) FindByIDForUpdate(ctx context.Context, tx shared.DBTX, id uuid.UUID) (*camping.Service, error) {
	row := tx.QueryRow(ctx, `SELECT`+campingServiceColumns+` FROM camping_services WHERE id = $1 FOR UPDATE`, id)
	return scanCampingService(row)
}

func (r *CampingServiceRepository) UpdateAvailableUnits(ctx context.Context, tx shared.DBTX, id uuid.UUID, availableUnits int) error {
	tag, err := tx.Exec(ctx,
		`UPDATE camping_services SET available_units = $2, updated_at = now() WHERE id = $1`,
		id, availableUnits)
	if err != nil {
		return infra.WrapRepoErr("failed to update available units", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("service not found", nil, infra.KindNotFound)
	}
	return nil
}

func scanCampingService(row pgx.Row) (*camping.Service, error) {
	var (
		id                                           uuid.UUID
		slug, serviceType                            string
		nameES, nameEN, namePT                       string
		descES, descEN, descPT                       string
		price                                        int
		currency                                     string
		capacity, totalUnits, availableUnits         int
		isFeatured, isPromo, isActive                bool
		createdAt, updatedAt                         pgtype.Timestamptz
	)
	err := row.Scan(
		&id, &slug, &serviceType,
		&nameES, &nameEN, &namePT,
		&descES, &descEN, &descPT,
		&price, &currency, &capacity, &totalUnits, &availableUnits,
		&isFeatured, &isPromo, &isActive,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to scan camping service", err)
	}
	return camping.ReconstructService(
		id, slug, serviceType,
		camping.LocalizedText{ES: nameES, EN: nameEN, PT: namePT},
		camping.LocalizedText{ES: descES, EN: descEN, PT: descPT},
		price, currency,
		capacity, totalUnits, availableUnits,
		isFeatured, isPromo, isActive,
		createdAt.Time, updatedAt.Time,
	), nil
}
