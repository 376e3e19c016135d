package data

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/mdobak/go-xerrors"

	"github.com/martinkb/blog/internal/utils/databaseutils"
)

// ActivityModel records one audit row per post mutation. Writes are expected
// to run inside the same transaction as the mutation they describe.
type ActivityModel struct {
	sqlTemplate *databaseutils.SQLTemplate
	log         *slog.Logger
}

func (activityModel ActivityModel) Insert(ctx context.Context, action string, postID int64) error {
	query := `
		INSERT INTO activity_log (action, post_id)
		VALUES ($1, $2)
		RETURNING id
	`

	var id int64
	_, err := databaseutils.ExecuteSingleQuery(activityModel.sqlTemplate, ctx, query, func(rows *sql.Rows) (int64, error) {
		if err := rows.Scan(&id); err != nil {
			return 0, xerrors.New(err)
		}
		return id, nil
	}, action, postID)

	if err != nil {
		return xerrors.New(err)
	}

	return nil
}
