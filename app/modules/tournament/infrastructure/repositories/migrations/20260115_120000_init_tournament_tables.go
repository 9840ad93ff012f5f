package tournamentmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	tournamenttypes "github.com/trycohn/1337-sub004/app/modules/tournament/domain/types"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating tournament tables...")

		if _, err := db.NewCreateTable().
			Model((*tournamenttypes.Tournament)(nil)).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create tournaments table: %w", err)
		}

		if _, err := db.NewCreateTable().
			Model((*tournamenttypes.Participant)(nil)).
			IfNotExists().
			ForeignKey(`("tournament_id") REFERENCES "tournaments" ("id") ON DELETE CASCADE`).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create tournament_participants table: %w", err)
		}

		if _, err := db.NewCreateTable().
			Model((*tournamenttypes.StandingsEntry)(nil)).
			IfNotExists().
			ForeignKey(`("tournament_id") REFERENCES "tournaments" ("id") ON DELETE CASCADE`).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create tournament_standings table: %w", err)
		}

		if _, err := db.NewCreateIndex().
			Model((*tournamenttypes.Participant)(nil)).
			IfNotExists().
			Index("idx_participants_tournament_eligible").
			Column("tournament_id", "eliminated").
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create participant index: %w", err)
		}

		fmt.Println("Tournament tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Rolling back tournament tables...")

		for _, model := range []interface{}{
			(*tournamenttypes.StandingsEntry)(nil),
			(*tournamenttypes.Participant)(nil),
			(*tournamenttypes.Tournament)(nil),
		} {
			if _, err := db.NewDropTable().Model(model).IfExists().Cascade().Exec(ctx); err != nil {
				return fmt.Errorf("failed to drop tournament table: %w", err)
			}
		}
		return nil
	})
}
