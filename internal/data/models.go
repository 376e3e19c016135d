package data

import (
	"log/slog"
	"time"

	"github.com/mdobak/go-xerrors"

	"github.com/martinkb/blog/internal/utils/databaseutils"
)

var (
	ErrNoRecordFound       = xerrors.Message("No record found")
	ErrDuplicateUsername   = xerrors.Message("Duplicate username")
	ErrForeignKeyViolation = xerrors.Message("Foreign key violation")
)

type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	PasswordHash []byte `json:"-"`
}

// Post content is HTML. Markdown is rendered before storage, not at read
// time.
type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	OwnerID   int64     `json:"owner_id"`
	CreatedOn time.Time `json:"created_on"`
	Tags      []string  `json:"tags"`
	Published bool      `json:"published"`
}

type Models struct {
	Users    UserModel
	Posts    PostModel
	Activity ActivityModel
}

func NewModels(sqlTemplate *databaseutils.SQLTemplate, log *slog.Logger) Models {
	return Models{
		Users: UserModel{
			sqlTemplate: sqlTemplate,
			log:         log,
		},
		Posts: PostModel{
			sqlTemplate: sqlTemplate,
			log:         log,
		},
		Activity: ActivityModel{
			sqlTemplate: sqlTemplate,
			log:         log,
		},
	}
}
