// internal/app/store/directory/directory.go
package directory

import (
	"context"

	unitstore "github.com/Deepak-cell311/GreenBook/internal/app/store/units"
	userstore "github.com/Deepak-cell311/GreenBook/internal/app/store/users"
	"github.com/Deepak-cell311/GreenBook/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Directory joins the unit and user stores into the lookup surface the
// access engine scopes over.
type Directory struct {
	Units *unitstore.Store
	Users *userstore.Store
}

func New(units *unitstore.Store, users *userstore.Store) *Directory {
	return &Directory{Units: units, Users: users}
}

func (d *Directory) GetUnit(ctx context.Context, id primitive.ObjectID) (models.Unit, error) {
	return d.Units.GetByID(ctx, id)
}

func (d *Directory) GetAllUnits(ctx context.Context) ([]models.Unit, error) {
	return d.Units.GetAll(ctx)
}

func (d *Directory) GetUser(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return d.Users.GetByID(ctx, id)
}

func (d *Directory) GetUsersByUnit(ctx context.Context, unitID primitive.ObjectID) ([]models.User, error) {
	return d.Users.GetByUnit(ctx, unitID)
}
