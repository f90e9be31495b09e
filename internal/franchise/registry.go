// Package franchise implements the franchise and store registry: lifecycle,
// admin linkage, revenue aggregation and paginated listing.
package franchise

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	apperrors "pizza-service/internal/common/errors"
	"pizza-service/internal/common/logger"
	"pizza-service/internal/common/metrics"
	"pizza-service/internal/models"
)

const storeName = "franchise"

// Viewer exposes the role capability check of an authenticated caller.
// Satisfied by models.User and by resolved token claims.
type Viewer interface {
	IsRole(kind models.RoleKind) bool
}

type Registry struct {
	db  *sql.DB
	log logger.Logger
}

func NewRegistry(db *sql.DB, log logger.Logger) *Registry {
	return &Registry{
		db:  db,
		log: log.WithFields(map[string]interface{}{"store": storeName}),
	}
}

// CreateFranchise resolves every admin email before writing anything; any
// unknown admin fails the whole operation with nothing inserted. On success
// the franchise row and one franchisee-role link per admin are created.
func (r *Registry) CreateFranchise(ctx context.Context, franchise models.Franchise) (_ models.Franchise, err error) {
	start := time.Now()
	defer func() { metrics.Record(storeName, "create_franchise", start, err) }()

	for i, admin := range franchise.Admins {
		var id int64
		var name string
		err = r.db.QueryRowContext(ctx, `
			SELECT id, name FROM users WHERE email = $1`,
			admin.Email).Scan(&id, &name)
		if errors.Is(err, sql.ErrNoRows) {
			return models.Franchise{}, apperrors.NewBadRequest(
				fmt.Sprintf("unknown user for franchise admin %s provided", admin.Email))
		}
		if err != nil {
			return models.Franchise{}, fmt.Errorf("resolve admin: %w", err)
		}
		franchise.Admins[i].ID = id
		franchise.Admins[i].Name = name
	}

	err = r.db.QueryRowContext(ctx, `
		INSERT INTO franchises (name) VALUES ($1) RETURNING id`,
		franchise.Name).Scan(&franchise.ID)
	if err != nil {
		return models.Franchise{}, fmt.Errorf("insert franchise: %w", err)
	}

	for _, admin := range franchise.Admins {
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO user_roles (user_id, role, object_id)
			VALUES ($1, $2, $3)`,
			admin.ID, string(models.RoleFranchisee), franchise.ID)
		if err != nil {
			return models.Franchise{}, fmt.Errorf("insert admin link: %w", err)
		}
	}

	r.log.Info("franchise created", map[string]interface{}{
		"franchiseId": franchise.ID,
		"admins":      len(franchise.Admins),
	})
	return franchise, nil
}

// DeleteFranchise removes the franchise and its stores atomically. Any
// failure rolls the transaction back so partial deletion is never
// observable.
func (r *Registry) DeleteFranchise(ctx context.Context, franchiseID int64) (err error) {
	start := time.Now()
	defer func() { metrics.Record(storeName, "delete_franchise", start, err) }()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewInternal("unable to delete franchise", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM stores WHERE franchise_id = $1`, franchiseID); err != nil {
		tx.Rollback()
		return apperrors.NewInternal("unable to delete franchise", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM franchises WHERE id = $1`, franchiseID); err != nil {
		tx.Rollback()
		return apperrors.NewInternal("unable to delete franchise", err)
	}
	if err = tx.Commit(); err != nil {
		tx.Rollback()
		return apperrors.NewInternal("unable to delete franchise", err)
	}

	r.log.Info("franchise deleted", map[string]interface{}{"franchiseId": franchiseID})
	return nil
}

// CreateStore inserts a store scoped to the franchise.
func (r *Registry) CreateStore(ctx context.Context, franchiseID int64, name string) (_ models.Store, err error) {
	start := time.Now()
	defer func() { metrics.Record(storeName, "create_store", start, err) }()

	store := models.Store{FranchiseID: franchiseID, Name: name}
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO stores (franchise_id, name) VALUES ($1, $2) RETURNING id`,
		franchiseID, name).Scan(&store.ID)
	if err != nil {
		return models.Store{}, fmt.Errorf("insert store: %w", err)
	}
	return store, nil
}

// DeleteStore removes the store matching both ids. A pair that matches
// nothing, including a store belonging to another franchise, is a silent
// no-op.
func (r *Registry) DeleteStore(ctx context.Context, franchiseID, storeID int64) (err error) {
	start := time.Now()
	defer func() { metrics.Record(storeName, "delete_store", start, err) }()

	_, err = r.db.ExecContext(ctx, `
		DELETE FROM stores WHERE franchise_id = $1 AND id = $2`,
		franchiseID, storeID)
	if err != nil {
		return fmt.Errorf("delete store: %w", err)
	}
	return nil
}

// GetFranchises lists franchises matching nameFilter (with * wildcards),
// fetching pageSize+1 rows to detect whether more results exist. page is
// zero-based. Admin viewers get full records; everyone else a reduced
// projection without revenue detail.
func (r *Registry) GetFranchises(ctx context.Context, viewer Viewer, page, pageSize int, nameFilter string) (_ []models.Franchise, more bool, err error) {
	start := time.Now()
	defer func() { metrics.Record(storeName, "get_franchises", start, err) }()

	filter := strings.ReplaceAll(nameFilter, "*", "%")
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name FROM franchises WHERE name LIKE $1 ORDER BY id LIMIT $2 OFFSET $3`,
		filter, pageSize+1, page*pageSize)
	if err != nil {
		return nil, false, fmt.Errorf("select franchises: %w", err)
	}
	defer rows.Close()

	franchises := []models.Franchise{}
	for rows.Next() {
		var f models.Franchise
		if err = rows.Scan(&f.ID, &f.Name); err != nil {
			return nil, false, fmt.Errorf("scan franchise: %w", err)
		}
		franchises = append(franchises, f)
	}
	if err = rows.Err(); err != nil {
		return nil, false, err
	}

	if more = len(franchises) > pageSize; more {
		franchises = franchises[:pageSize]
	}

	admin := viewer != nil && viewer.IsRole(models.RoleAdmin)
	for i := range franchises {
		if admin {
			if err = r.GetFranchise(ctx, &franchises[i]); err != nil {
				return nil, false, err
			}
			continue
		}
		if franchises[i].Stores, err = r.storeNames(ctx, franchises[i].ID); err != nil {
			return nil, false, err
		}
	}

	return franchises, more, nil
}

// GetUserFranchises returns the franchises where the user holds a
// franchisee role link, fully populated. Users with none get an empty list.
func (r *Registry) GetUserFranchises(ctx context.Context, userID int64) (_ []models.Franchise, err error) {
	start := time.Now()
	defer func() { metrics.Record(storeName, "get_user_franchises", start, err) }()

	rows, err := r.db.QueryContext(ctx, `
		SELECT object_id FROM user_roles WHERE role = $1 AND user_id = $2`,
		string(models.RoleFranchisee), userID)
	if err != nil {
		return nil, fmt.Errorf("select role links: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan role link: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.Franchise{}, nil
	}

	frows, err := r.db.QueryContext(ctx, `
		SELECT id, name FROM franchises WHERE id = ANY($1) ORDER BY id`,
		pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("select franchises: %w", err)
	}
	defer frows.Close()

	franchises := []models.Franchise{}
	for frows.Next() {
		var f models.Franchise
		if err = frows.Scan(&f.ID, &f.Name); err != nil {
			return nil, fmt.Errorf("scan franchise: %w", err)
		}
		franchises = append(franchises, f)
	}
	if err = frows.Err(); err != nil {
		return nil, err
	}

	for i := range franchises {
		if err = r.GetFranchise(ctx, &franchises[i]); err != nil {
			return nil, err
		}
	}
	return franchises, nil
}

// GetFranchise populates the franchise's admins and its stores with
// totalRevenue computed from order item prices.
func (r *Registry) GetFranchise(ctx context.Context, franchise *models.Franchise) (err error) {
	start := time.Now()
	defer func() { metrics.Record(storeName, "get_franchise", start, err) }()

	arows, err := r.db.QueryContext(ctx, `
		SELECT u.id, u.name, u.email
		FROM user_roles ur
		JOIN users u ON u.id = ur.user_id
		WHERE ur.object_id = $1 AND ur.role = $2
		ORDER BY u.id`,
		franchise.ID, string(models.RoleFranchisee))
	if err != nil {
		return fmt.Errorf("select admins: %w", err)
	}
	defer arows.Close()

	franchise.Admins = []models.User{}
	for arows.Next() {
		var admin models.User
		if err = arows.Scan(&admin.ID, &admin.Name, &admin.Email); err != nil {
			return fmt.Errorf("scan admin: %w", err)
		}
		franchise.Admins = append(franchise.Admins, admin)
	}
	if err = arows.Err(); err != nil {
		return err
	}

	srows, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.name, COALESCE(SUM(oi.price), 0) AS total_revenue
		FROM stores s
		LEFT JOIN orders o ON o.store_id = s.id
		LEFT JOIN order_items oi ON oi.order_id = o.id
		WHERE s.franchise_id = $1
		GROUP BY s.id, s.name
		ORDER BY s.id`,
		franchise.ID)
	if err != nil {
		return fmt.Errorf("select stores: %w", err)
	}
	defer srows.Close()

	franchise.Stores = []models.Store{}
	for srows.Next() {
		var store models.Store
		if err = srows.Scan(&store.ID, &store.Name, &store.TotalRevenue); err != nil {
			return fmt.Errorf("scan store: %w", err)
		}
		franchise.Stores = append(franchise.Stores, store)
	}
	return srows.Err()
}

func (r *Registry) storeNames(ctx context.Context, franchiseID int64) ([]models.Store, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name FROM stores WHERE franchise_id = $1 ORDER BY id`,
		franchiseID)
	if err != nil {
		return nil, fmt.Errorf("select stores: %w", err)
	}
	defer rows.Close()

	stores := []models.Store{}
	for rows.Next() {
		var store models.Store
		if err := rows.Scan(&store.ID, &store.Name); err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		stores = append(stores, store)
	}
	return stores, rows.Err()
}
