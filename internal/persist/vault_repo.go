package persist

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/alivechess/server/internal/world"
)

// VaultRepo stores castle resource vaults and unit rosters.
type VaultRepo struct {
	db *DB
}

func NewVaultRepo(db *DB) *VaultRepo {
	return &VaultRepo{db: db}
}

// ResourceStore loads a vault together with the resources stored in it.
func (r *VaultRepo) ResourceStore(ctx context.Context, id int32) (*world.ResourceStore, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT resource_id, resource_type, resource_count, point_id
		 FROM resources WHERE vault_id = $1 ORDER BY resource_id`, id)
	if err != nil {
		return nil, fmt.Errorf("load resource vault %d: %w", id, err)
	}
	defer rows.Close()

	store := world.NewResourceStore(id)
	for rows.Next() {
		var (
			resID, count, pointID int32
			typ                   int16
		)
		if err := rows.Scan(&resID, &typ, &count, &pointID); err != nil {
			return nil, fmt.Errorf("scan resource: %w", err)
		}
		res := world.NewResource(resID, world.ResourceType(typ), int(count), world.WithStoredIDs(0, pointID))
		res.SetVault(store)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return store, nil
}

// FigureStore loads a roster and its unit rows.
func (r *VaultRepo) FigureStore(ctx context.Context, id int32) (*world.FigureStore, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT unit_type, count FROM figure_units WHERE vault_id = $1 ORDER BY unit_type`, id)
	if err != nil {
		return nil, fmt.Errorf("load figure vault %d: %w", id, err)
	}
	defer rows.Close()

	store := world.NewFigureStore(id)
	for rows.Next() {
		var (
			typ   int16
			count int32
		)
		if err := rows.Scan(&typ, &count); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		store.AddUnit(world.Unit{Type: world.UnitType(typ), Count: int(count)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return store, nil
}

// SaveFigureStore replaces the stored roster with s's units.
func (r *VaultRepo) SaveFigureStore(ctx context.Context, s *world.FigureStore) error {
	return r.db.InTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO figure_vaults (vault_id) VALUES ($1) ON CONFLICT DO NOTHING`, s.ID(),
		); err != nil {
			return fmt.Errorf("save figure vault %d: %w", s.ID(), err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM figure_units WHERE vault_id = $1`, s.ID()); err != nil {
			return fmt.Errorf("clear figure vault %d: %w", s.ID(), err)
		}
		batch := &pgx.Batch{}
		for _, u := range s.Units() {
			batch.Queue(`INSERT INTO figure_units (vault_id, unit_type, count) VALUES ($1, $2, $3)`,
				s.ID(), int16(u.Type), int32(u.Count))
		}
		if batch.Len() == 0 {
			return nil
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

// SaveResourceStore records the vault row.
func (r *VaultRepo) SaveResourceStore(ctx context.Context, s *world.ResourceStore) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO resource_vaults (vault_id) VALUES ($1) ON CONFLICT DO NOTHING`, s.ID())
	if err != nil {
		return fmt.Errorf("save resource vault %d: %w", s.ID(), err)
	}
	return nil
}
