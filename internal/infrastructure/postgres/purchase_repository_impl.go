package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/vendora-app/vendora/internal/domain/entity"
	"github.com/vendora-app/vendora/internal/domain/errs"
	"github.com/vendora-app/vendora/internal/domain/repository"
)

const purchaseColumns = `
		SELECT p.id, p.user_id, p.name, p.description, p.total_amount, p.owner_invest, p.partner_invest,
		       p.status, p.sale_amount, p.sale_date, p.created_at, p.updated_at, u.name, u.email
		FROM purchases p
		JOIN users u ON u.id = p.user_id`

const visibleTo = `(p.user_id = $1 OR EXISTS (
			SELECT 1 FROM purchase_participants pp WHERE pp.purchase_id = p.id AND pp.user_id = $1
		))`

type PurchaseRepository struct {
	pool PgxPool
}

func NewPurchaseRepository(pool PgxPool) *PurchaseRepository {
	return &PurchaseRepository{pool: pool}
}

func (r *PurchaseRepository) Create(ctx context.Context, p *entity.Purchase) error {
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
		INSERT INTO purchases (user_id, name, description, total_amount, owner_invest, partner_invest, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, p.UserID, p.Name, p.Description, p.TotalAmount, p.OwnerInvest, p.PartnerInvest, string(p.Status))
		if err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return err
		}

		for i := range p.Images {
			if err := insertImage(ctx, tx, p.ID, &p.Images[i], i); err != nil {
				return err
			}
		}

		for _, u := range p.Participants {
			if _, err := tx.Exec(ctx, `
		INSERT INTO purchase_participants (purchase_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, p.ID, u.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if isForeignKeyViolation(err) {
		return errs.Validation("unknown participant")
	}
	return err
}

func insertImage(ctx context.Context, tx pgx.Tx, purchaseID string, img *entity.Image, position int) error {
	row := tx.QueryRow(ctx, `
		INSERT INTO purchase_images (purchase_id, url, position)
		VALUES ($1, $2, $3)
		RETURNING id
	`, purchaseID, img.URL, position)
	return row.Scan(&img.ID)
}

func (r *PurchaseRepository) GetByID(ctx context.Context, id string) (*entity.Purchase, error) {
	p, err := scanPurchase(r.pool.QueryRow(ctx, purchaseColumns+`
		WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadRelations(ctx, []*entity.Purchase{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PurchaseRepository) ListVisibleTo(ctx context.Context, userID string) ([]*entity.Purchase, error) {
	return r.list(ctx, purchaseColumns+`
		WHERE `+visibleTo+`
		ORDER BY p.created_at DESC`, userID)
}

func (r *PurchaseRepository) ListSold(ctx context.Context, f repository.SalesFilter) ([]*entity.Purchase, error) {
	var b strings.Builder
	b.WriteString(purchaseColumns)
	b.WriteString(`
		WHERE p.status = 'VENDIDO' AND p.sale_date >= $2 AND p.sale_date <= $3 AND `)
	b.WriteString(visibleTo)
	switch f.Partner {
	case repository.PartnerWith:
		b.WriteString(`
		AND EXISTS (SELECT 1 FROM purchase_participants x WHERE x.purchase_id = p.id)`)
	case repository.PartnerWithout:
		b.WriteString(`
		AND NOT EXISTS (SELECT 1 FROM purchase_participants x WHERE x.purchase_id = p.id)`)
	}
	b.WriteString(`
		ORDER BY p.sale_date DESC`)
	return r.list(ctx, b.String(), f.UserID, f.From, f.To)
}

func (r *PurchaseRepository) list(ctx context.Context, q string, args ...any) ([]*entity.Purchase, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*entity.Purchase, 0)
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadRelations(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// loadRelations fills participants and images for ps with one query each.
func (r *PurchaseRepository) loadRelations(ctx context.Context, ps []*entity.Purchase) error {
	if len(ps) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Purchase, len(ps))
	ids := make([]string, 0, len(ps))
	for _, p := range ps {
		p.Participants = []entity.UserSummary{}
		p.Images = []entity.Image{}
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT pp.purchase_id, u.id, u.name, u.email
		FROM purchase_participants pp
		JOIN users u ON u.id = pp.user_id
		WHERE pp.purchase_id = ANY($1)
		ORDER BY u.name, u.email`, ids)
	if err != nil {
		return err
	}
	for rows.Next() {
		var pid string
		var u entity.UserSummary
		if err := rows.Scan(&pid, &u.ID, &u.Name, &u.Email); err != nil {
			rows.Close()
			return err
		}
		if p, ok := byID[pid]; ok {
			p.Participants = append(p.Participants, u)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.pool.Query(ctx, `
		SELECT purchase_id, id, url
		FROM purchase_images
		WHERE purchase_id = ANY($1)
		ORDER BY position, created_at`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var pid string
		var img entity.Image
		if err := rows.Scan(&pid, &img.ID, &img.URL); err != nil {
			return err
		}
		if p, ok := byID[pid]; ok {
			p.Images = append(p.Images, img)
		}
	}
	return rows.Err()
}

func (r *PurchaseRepository) UpdateSale(ctx context.Context, p *entity.Purchase, expected entity.Status) error {
	row := r.pool.QueryRow(ctx, `
		UPDATE purchases
		SET status = $2, sale_amount = $3, sale_date = $4, updated_at = now()
		WHERE id = $1 AND status = $5
		RETURNING updated_at
	`, p.ID, string(p.Status), p.SaleAmount, p.SaleDate, string(expected))
	if err := row.Scan(&p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.missedUpdate(ctx, p.ID)
		}
		return err
	}
	return nil
}

// missedUpdate tells a purchase deleted under us apart from one whose status moved on.
func (r *PurchaseRepository) missedUpdate(ctx context.Context, id string) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM purchases WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return errs.ErrNotFound
	}
	return errs.ErrConflict
}

func (r *PurchaseRepository) AddImages(ctx context.Context, purchaseID string, urls []string) ([]entity.Image, error) {
	out := make([]entity.Image, 0, len(urls))
	err := inTx(ctx, r.pool, func(tx pgx.Tx) error {
		var next int
		if err := tx.QueryRow(ctx, `
		SELECT COALESCE(MAX(position) + 1, 0) FROM purchase_images WHERE purchase_id = $1
	`, purchaseID).Scan(&next); err != nil {
			return err
		}
		for i, u := range urls {
			img := entity.Image{URL: u}
			if err := insertImage(ctx, tx, purchaseID, &img, next+i); err != nil {
				return err
			}
			out = append(out, img)
		}
		return nil
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return out, nil
}

// Delete removes the purchase; images and participant links go with it via ON DELETE CASCADE.
func (r *PurchaseRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM purchases WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func scanPurchase(row pgx.Row) (*entity.Purchase, error) {
	var (
		p      entity.Purchase
		status string
		owner  entity.UserSummary
	)
	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.TotalAmount, &p.OwnerInvest,
		&p.PartnerInvest, &status, &p.SaleAmount, &p.SaleDate, &p.CreatedAt, &p.UpdatedAt,
		&owner.Name, &owner.Email); err != nil {
		return nil, err
	}
	p.Status = entity.Status(status)
	owner.ID = p.UserID
	p.User = &owner
	return &p, nil
}

var _ repository.PurchaseRepository = (*PurchaseRepository)(nil)
