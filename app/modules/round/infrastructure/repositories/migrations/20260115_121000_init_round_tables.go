package roundmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	roundtypes "github.com/trycohn/1337-sub004/app/modules/round/domain/types"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating round tables...")

		if _, err := db.NewCreateTable().
			Model((*roundtypes.Round)(nil)).
			IfNotExists().
			ForeignKey(`("tournament_id") REFERENCES "tournaments" ("id") ON DELETE CASCADE`).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create rounds table: %w", err)
		}

		if _, err := db.NewCreateIndex().
			Model((*roundtypes.Round)(nil)).
			IfNotExists().
			Unique().
			Index("idx_rounds_tournament_number").
			Column("tournament_id", "number").
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create round index: %w", err)
		}

		if _, err := db.NewCreateTable().
			Model((*roundtypes.Match)(nil)).
			IfNotExists().
			ForeignKey(`("tournament_id") REFERENCES "tournaments" ("id") ON DELETE CASCADE`).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create matches table: %w", err)
		}

		if _, err := db.NewCreateIndex().
			Model((*roundtypes.Match)(nil)).
			IfNotExists().
			Index("idx_matches_tournament_round").
			Column("tournament_id", "round_number").
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create match index: %w", err)
		}

		fmt.Println("Round tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Rolling back round tables...")

		for _, model := range []interface{}{
			(*roundtypes.Match)(nil),
			(*roundtypes.Round)(nil),
		} {
			if _, err := db.NewDropTable().Model(model).IfExists().Cascade().Exec(ctx); err != nil {
				return fmt.Errorf("failed to drop round table: %w", err)
			}
		}
		return nil
	})
}
