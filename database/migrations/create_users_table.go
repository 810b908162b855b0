// Package migrations defines the schema migrations, registered in
// timestamp order from init().
package migrations

import (
	"gorm.io/gorm"

	"github.com/dukaanlabs/dukaan/app/models"
	"github.com/dukaanlabs/dukaan/pkg/migration"
)

func init() {
	migration.Register("20260815000001_create_users_table", &CreateUsersTable{})
}

type CreateUsersTable struct{}

func (CreateUsersTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{})
}

func (CreateUsersTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.User{})
}
