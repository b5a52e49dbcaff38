// Package access реализует статическую политику доступа «роль → разрешённые действия».
// Сервисы получают Principal явным аргументом и вызывают Authorize до любой
// изменяющей или чувствительной операции.
package access

import (
	"fmt"

	"github.com/magabrotheeeer/aviary/internal/lib/apperr"
	"github.com/magabrotheeeer/aviary/internal/models"
)

// Action: действие, на которое проверяются права.
type Action int

const (
	// ManageUsers: назначение ролей, флага ассоциации и удаление пользователей.
	ManageUsers Action = iota + 1
	// ViewMembers: просмотр инвентаря ассоциированных членов.
	ViewMembers
	// EditFeed: изменение полей корма у ассоциированных членов.
	EditFeed
	// RecordAward: запись результата конкурса.
	RecordAward
	// DeleteAward: удаление награды.
	DeleteAward
	// ViewReports: сводные отчёты по ассоциации.
	ViewReports
	// ManageCatalog: изменение справочников категорий и кормов.
	ManageCatalog
	// ViewCatalog: чтение справочников.
	ViewCatalog
	// EditOwnProfile: изменение собственного профиля и инвентаря.
	EditOwnProfile
	// ViewOwnAwards: просмотр собственных наград.
	ViewOwnAwards
)

var actionNames = map[Action]string{
	ManageUsers:    "manage_users",
	ViewMembers:    "view_members",
	EditFeed:       "edit_feed",
	RecordAward:    "record_award",
	DeleteAward:    "delete_award",
	ViewReports:    "view_reports",
	ManageCatalog:  "manage_catalog",
	ViewCatalog:    "view_catalog",
	EditOwnProfile: "edit_own_profile",
	ViewOwnAwards:  "view_own_awards",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Principal: аутентифицированный субъект запроса.
type Principal struct {
	UserID int64
	Role   models.Role
}

// Allowed сообщает, разрешено ли действие роли.
func Allowed(role models.Role, action Action) bool {
	switch role {
	case models.RoleAdmin:
		switch action {
		case ManageUsers, ViewMembers, RecordAward, DeleteAward, ViewReports,
			ManageCatalog, ViewCatalog, EditOwnProfile, ViewOwnAwards:
			return true
		}
	case models.RoleSpecialist:
		switch action {
		case ViewMembers, EditFeed, RecordAward, DeleteAward, ViewReports,
			ViewCatalog, EditOwnProfile, ViewOwnAwards:
			return true
		}
	case models.RoleDependiente:
		switch action {
		case ViewMembers, ViewCatalog, EditOwnProfile, ViewOwnAwards:
			return true
		}
	case models.RoleUser:
		switch action {
		case ViewCatalog, EditOwnProfile, ViewOwnAwards:
			return true
		}
	}
	return false
}

// Authorize возвращает apperr.ErrForbidden, если субъекту действие не разрешено.
func Authorize(p Principal, action Action) error {
	if p.UserID == 0 || !Allowed(p.Role, action) {
		return fmt.Errorf("%w: %s may not %s", apperr.ErrForbidden, roleName(p.Role), action)
	}
	return nil
}

func roleName(r models.Role) string {
	if r == "" {
		return "anonymous"
	}
	return string(r)
}
